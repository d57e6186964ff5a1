// internal/service/mail_service.go
package service

import (
	"strings"
	"time"

	"github.com/unclebandit/mailpanel-backend/internal/delivery"
	appErrors "github.com/unclebandit/mailpanel-backend/internal/errors"
	"github.com/unclebandit/mailpanel-backend/internal/model"
	"github.com/unclebandit/mailpanel-backend/internal/schedule"
)

// SendRequest carries one single-send attempt as entered in the form.
type SendRequest struct {
	To            string
	Subject       string
	Body          string
	Attachment    *model.Attachment
	Scheduled     bool
	ScheduledDate string // 2006-01-02
	ScheduledTime string // 15:04
}

// MailService is the single-message composer. Every gate must pass before
// anything touches the network.
type MailService struct {
	Delivery delivery.Service
	Now      func() time.Time // defaults to time.Now
}

func (s *MailService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SendSingle validates the request, builds a fresh OutboundMessage and
// submits it. A scheduled send is committed once the delivery service
// accepts it; the service owns delivery at the scheduled time.
func (s *MailService) SendSingle(req *SendRequest) (string, error) {
	msg, err := s.compose(req)
	if err != nil {
		return "", err
	}
	return s.Delivery.SendSingle(msg)
}

func (s *MailService) compose(req *SendRequest) (*model.OutboundMessage, error) {
	if strings.TrimSpace(req.To) == "" {
		return nil, appErrors.NewValidation("to", "recipient address is required")
	}
	if strings.TrimSpace(req.Subject) == "" {
		return nil, appErrors.NewValidation("subject", "subject is required")
	}
	// Either a body or an attachment satisfies the has-content rule.
	if strings.TrimSpace(req.Body) == "" && req.Attachment == nil {
		return nil, appErrors.NewValidation("body", "write a message or attach a file")
	}

	msg := &model.OutboundMessage{
		To:         req.To,
		Subject:    req.Subject,
		Body:       req.Body,
		Attachment: req.Attachment,
		Mode:       model.ModeImmediate,
	}

	if !req.Scheduled {
		return msg, nil
	}

	if req.ScheduledDate == "" || req.ScheduledTime == "" {
		return nil, appErrors.NewValidation("schedule", "scheduled sends need both a date and a time")
	}

	now := s.now()
	date, err := time.ParseInLocation("2006-01-02", req.ScheduledDate, now.Location())
	if err != nil {
		return nil, appErrors.NewValidation("scheduledDate", "expected format 2006-01-02")
	}
	clock, err := time.ParseInLocation("15:04", req.ScheduledTime, now.Location())
	if err != nil {
		return nil, appErrors.NewValidation("scheduledTime", "expected format 15:04")
	}

	// Re-checked on every attempt: "now" keeps advancing.
	if !schedule.IsFutureInstant(date, clock, now) {
		return nil, appErrors.NewValidation("schedule", "scheduled moment must be in the future")
	}

	msg.Mode = model.ModeScheduled
	msg.ScheduledAt = schedule.Compose(date, clock, now)
	return msg, nil
}
