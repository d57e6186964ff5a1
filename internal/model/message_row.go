// internal/model/message_row.go
package model

// RowStatus is the delivery state of one campaign row.
type RowStatus string

const (
	StatusPending RowStatus = "PENDING"
	StatusSending RowStatus = "SENDING"
	StatusSent    RowStatus = "SENT"
	StatusFailed  RowStatus = "FAILED"
)

// MessageRow is one recipient line within an imported campaign.
// Key is stable for the lifetime of the batch; RowNumber is the 1-based
// source-file line and is display-only.
type MessageRow struct {
	Key              int       `json:"key"`
	RowNumber        int       `json:"rowNumber"`
	RecipientLabel   string    `json:"companyName"`
	RecipientAddress string    `json:"email"`
	Subject          string    `json:"subject"`
	Body             string    `json:"body"`
	Selected         bool      `json:"selected"`
	Status           RowStatus `json:"status"`
	ErrorMessage     string    `json:"errorMessage,omitempty"`
}

// RowResult is the per-row outcome the delivery service reports back
// after a bulk dispatch.
type RowResult struct {
	Key          int       `json:"key"`
	Status       RowStatus `json:"status"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	Selected     bool      `json:"selected"`
}

// Stats are derived counts over a batch. They are always recomputed from
// the row sequence, never stored or incremented on their own.
type Stats struct {
	Total    int `json:"total"`
	Selected int `json:"selected"`
	Sent     int `json:"sent"`
	Failed   int `json:"failed"`
	Pending  int `json:"pending"`
}
