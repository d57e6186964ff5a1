// internal/model/mail_record.go
package model

import "time"

// MailRecord is a sent-mail log entry kept by the delivery side.
type MailRecord struct {
	ID             int        `db:"id" json:"id"`
	Recipient      string     `db:"recipient" json:"recipient"`
	Subject        string     `db:"subject" json:"subject"`
	Body           string     `db:"body" json:"body"`
	AttachmentName string     `db:"attachment_name" json:"attachment_name,omitempty"`
	Status         string     `db:"status" json:"status"` // scheduled, sent, failed
	LastError      string     `db:"last_error" json:"last_error,omitempty"`
	ScheduledAt    *time.Time `db:"scheduled_at" json:"scheduled_at,omitempty"`
	SentAt         *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}
