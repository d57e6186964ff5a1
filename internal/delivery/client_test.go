package delivery_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/unclebandit/mailpanel-backend/internal/delivery"
	appErrors "github.com/unclebandit/mailpanel-backend/internal/errors"
	"github.com/unclebandit/mailpanel-backend/internal/model"
	"github.com/unclebandit/mailpanel-backend/internal/session"
)

func newClient(url string) *delivery.HTTPClient {
	return delivery.NewHTTPClient(url, session.NewStaticTokenSource("test-token"))
}

func TestEveryRequestCarriesBearerToken(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{"rows": []any{}})
	}))
	defer ts.Close()

	newClient(ts.URL).ImportBatch("bulk.csv", strings.NewReader("a,b,c,d"))
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestImportBatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/mail/upload-csv" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("Content-Type = %s, want multipart", r.Header.Get("Content-Type"))
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("no file part: %v", err)
		}
		file.Close()
		if header.Filename != "bulk.csv" {
			t.Errorf("filename = %s", header.Filename)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"rows": []map[string]any{
				{"rowNumber": 1, "companyName": "Acme", "email": "a@x.com", "subject": "s", "body": "b"},
			},
		})
	}))
	defer ts.Close()

	rows, err := newClient(ts.URL).ImportBatch("bulk.csv", strings.NewReader("Acme,a@x.com,s,b"))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].RecipientAddress != "a@x.com" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestDispatchBatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/mail/send-bulk" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var rows []model.MessageRow
		if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if len(rows) != 2 {
			t.Errorf("got %d rows, want the whole sequence", len(rows))
		}

		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"key": 1, "status": "SENT", "selected": false},
			},
		})
	}))
	defer ts.Close()

	results, err := newClient(ts.URL).DispatchBatch([]model.MessageRow{
		{Key: 1, Status: model.StatusSending, Selected: true},
		{Key: 2, Status: model.StatusPending},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Status != model.StatusSent {
		t.Errorf("results = %+v", results)
	}
}

func TestSendSingleUsesJSONWithoutAttachment(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/mail/send" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %s", ct)
		}
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["to"] != "a@x.com" || payload["isScheduled"] != false {
			t.Errorf("payload = %+v", payload)
		}
		w.Write([]byte("mail sent to a@x.com"))
	}))
	defer ts.Close()

	reply, err := newClient(ts.URL).SendSingle(&model.OutboundMessage{
		To: "a@x.com", Subject: "hi", Body: "there", Mode: model.ModeImmediate,
	})
	if err != nil {
		t.Fatal(err)
	}
	if reply != "mail sent to a@x.com" {
		t.Errorf("reply = %q", reply)
	}
}

func TestSendSingleUsesMultipartWithAttachment(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/mail/send-attachment" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("not multipart: %v", err)
		}
		if r.FormValue("isScheduled") != "true" {
			t.Errorf("isScheduled = %s", r.FormValue("isScheduled"))
		}
		if r.FormValue("scheduledDate") != "2025-03-15" || r.FormValue("scheduledTime") != "09:00" {
			t.Errorf("schedule fields = %s %s", r.FormValue("scheduledDate"), r.FormValue("scheduledTime"))
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("no file part: %v", err)
		}
		file.Close()
		if header.Filename != "report.pdf" {
			t.Errorf("filename = %s", header.Filename)
		}
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	_, err := newClient(ts.URL).SendSingle(&model.OutboundMessage{
		To:          "a@x.com",
		Subject:     "hi",
		Body:        "there",
		Mode:        model.ModeScheduled,
		ScheduledAt: time.Date(2025, 3, 15, 9, 0, 0, 0, time.Local),
		Attachment:  &model.Attachment{Filename: "report.pdf", Data: []byte("pdf")},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestNon2xxBecomesTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "session expired", http.StatusUnauthorized)
	}))
	defer ts.Close()

	_, err := newClient(ts.URL).DispatchBatch([]model.MessageRow{{Key: 1}})
	var transport *appErrors.TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("err = %v, want TransportError", err)
	}
}

func TestUnreachableServiceBecomesTransportError(t *testing.T) {
	_, err := newClient("http://127.0.0.1:1").CountMail("2025-01-01", "2025-01-31")
	var transport *appErrors.TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("err = %v, want TransportError", err)
	}
}
