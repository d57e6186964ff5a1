// internal/model/outbound_message.go
package model

import "time"

type DeliveryMode string

const (
	ModeImmediate DeliveryMode = "IMMEDIATE"
	ModeScheduled DeliveryMode = "SCHEDULED"
)

// Attachment is an opaque file carried with a single send.
type Attachment struct {
	Filename string
	Data     []byte
}

// OutboundMessage is a single mail submission. It is built fresh for every
// attempt and never reused.
type OutboundMessage struct {
	To          string
	Subject     string
	Body        string
	Attachment  *Attachment
	Mode        DeliveryMode
	ScheduledAt time.Time // set only when Mode == ModeScheduled
}
