package service_test

import (
	"errors"
	"testing"
	"time"

	appErrors "github.com/unclebandit/mailpanel-backend/internal/errors"
	"github.com/unclebandit/mailpanel-backend/internal/model"
	"github.com/unclebandit/mailpanel-backend/internal/service"
)

func fixedNow() time.Time {
	return time.Date(2025, 3, 14, 10, 30, 0, 0, time.Local)
}

func newMailService(mock *MockDelivery) *service.MailService {
	return &service.MailService{Delivery: mock, Now: fixedNow}
}

func expectValidation(t *testing.T, mock *MockDelivery, req *service.SendRequest, field string) {
	t.Helper()
	svc := newMailService(mock)
	_, err := svc.SendSingle(req)

	var validation *appErrors.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if validation.Field != field {
		t.Errorf("failing gate = %s, want %s", validation.Field, field)
	}
	if mock.SendCalls != 0 {
		t.Error("validation failure still reached the network")
	}
}

func TestSendSingleGates(t *testing.T) {
	expectValidation(t, &MockDelivery{}, &service.SendRequest{
		Subject: "hi", Body: "there",
	}, "to")

	expectValidation(t, &MockDelivery{}, &service.SendRequest{
		To: "a@x.com", Body: "there",
	}, "subject")

	// Empty body and no attachment: nothing to send.
	expectValidation(t, &MockDelivery{}, &service.SendRequest{
		To: "a@x.com", Subject: "hi",
	}, "body")

	expectValidation(t, &MockDelivery{}, &service.SendRequest{
		To: "a@x.com", Subject: "hi", Body: "there",
		Scheduled: true, ScheduledDate: "2025-03-15",
	}, "schedule")

	expectValidation(t, &MockDelivery{}, &service.SendRequest{
		To: "a@x.com", Subject: "hi", Body: "there",
		Scheduled: true, ScheduledDate: "2025-03-14", ScheduledTime: "10:29",
	}, "schedule")
}

func TestSendSingleAttachmentSatisfiesContentGate(t *testing.T) {
	mock := &MockDelivery{SendReply: "mail sent"}
	svc := newMailService(mock)

	_, err := svc.SendSingle(&service.SendRequest{
		To:         "a@x.com",
		Subject:    "hi",
		Attachment: &model.Attachment{Filename: "report.pdf", Data: []byte("pdf")},
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if mock.SendCalls != 1 {
		t.Fatal("delivery service was not called")
	}
	if mock.LastMessage.Attachment == nil || mock.LastMessage.Attachment.Filename != "report.pdf" {
		t.Errorf("attachment lost in transit: %+v", mock.LastMessage)
	}
	if mock.LastMessage.Mode != model.ModeImmediate {
		t.Errorf("mode = %s, want IMMEDIATE", mock.LastMessage.Mode)
	}
}

func TestSendSingleScheduledComposesInstant(t *testing.T) {
	mock := &MockDelivery{SendReply: "mail scheduled"}
	svc := newMailService(mock)

	reply, err := svc.SendSingle(&service.SendRequest{
		To: "a@x.com", Subject: "hi", Body: "there",
		Scheduled: true, ScheduledDate: "2025-03-14", ScheduledTime: "10:31",
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if reply != "mail scheduled" {
		t.Errorf("reply = %q", reply)
	}

	msg := mock.LastMessage
	if msg.Mode != model.ModeScheduled {
		t.Fatalf("mode = %s, want SCHEDULED", msg.Mode)
	}
	want := time.Date(2025, 3, 14, 10, 31, 0, 0, time.Local)
	if !msg.ScheduledAt.Equal(want) {
		t.Errorf("scheduledAt = %v, want %v", msg.ScheduledAt, want)
	}
}

func TestSendSingleSurfacesTransportError(t *testing.T) {
	mock := &MockDelivery{SendErr: appErrors.NewTransport("send", errors.New("boom"))}
	svc := newMailService(mock)

	_, err := svc.SendSingle(&service.SendRequest{
		To: "a@x.com", Subject: "hi", Body: "there",
	})
	var transport *appErrors.TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("err = %v, want TransportError", err)
	}
}
