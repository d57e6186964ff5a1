// internal/delivery/client.go
package delivery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	appErrors "github.com/unclebandit/mailpanel-backend/internal/errors"
	"github.com/unclebandit/mailpanel-backend/internal/model"
	"github.com/unclebandit/mailpanel-backend/internal/session"
)

// ImportedRow is one candidate message line as parsed by the delivery
// service from an uploaded file.
type ImportedRow struct {
	RowNumber        int    `json:"rowNumber"`
	RecipientLabel   string `json:"companyName"`
	RecipientAddress string `json:"email"`
	Subject          string `json:"subject"`
	Body             string `json:"body"`
}

// Service is the delivery service contract. It parses uploads, performs
// single and bulk sends, and answers contact and report lookups. All
// methods surface transport problems as *appErrors.TransportError.
type Service interface {
	ImportBatch(filename string, file io.Reader) ([]ImportedRow, error)
	DispatchBatch(rows []model.MessageRow) ([]model.RowResult, error)
	SendSingle(msg *model.OutboundMessage) (string, error)
	SearchContacts(keyword string) ([]model.Contact, error)
	CountMail(startDate, endDate string) (int, error)
	ExportMail(startDate, endDate string) ([]byte, error)
}

// HTTPClient talks to the real delivery service. Every request carries the
// bearer credential from the token source; a 401/403 comes back as a plain
// transport error, the session redirect is not handled here.
type HTTPClient struct {
	BaseURL string
	Tokens  session.TokenSource
	HTTP    *http.Client
}

func NewHTTPClient(baseURL string, tokens session.TokenSource) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		Tokens:  tokens,
		HTTP:    http.DefaultClient,
	}
}

func (c *HTTPClient) do(op string, req *http.Request) (*http.Response, error) {
	if token := c.Tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, appErrors.NewTransport(op, err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(res.Body)
		res.Body.Close()
		return nil, appErrors.NewTransport(op, fmt.Errorf("HTTP %d - %s", res.StatusCode, string(body)))
	}
	return res, nil
}

func (c *HTTPClient) ImportBatch(filename string, file io.Reader) ([]ImportedRow, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, appErrors.NewTransport("upload-csv", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, appErrors.NewTransport("upload-csv", err)
	}
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/api/mail/upload-csv", &buf)
	if err != nil {
		return nil, appErrors.NewTransport("upload-csv", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	res, err := c.do("upload-csv", req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var payload struct {
		Rows []ImportedRow `json:"rows"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, appErrors.NewTransport("upload-csv", err)
	}
	return payload.Rows, nil
}

func (c *HTTPClient) DispatchBatch(rows []model.MessageRow) ([]model.RowResult, error) {
	body, err := json.Marshal(rows)
	if err != nil {
		return nil, appErrors.NewTransport("send-bulk", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/api/mail/send-bulk", bytes.NewReader(body))
	if err != nil {
		return nil, appErrors.NewTransport("send-bulk", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.do("send-bulk", req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var payload struct {
		Results []model.RowResult `json:"results"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, appErrors.NewTransport("send-bulk", err)
	}
	return payload.Results, nil
}

// SendSingle picks the transport shape by attachment presence: multipart
// when a file rides along, JSON otherwise. Both shapes carry the same
// logical message.
func (c *HTTPClient) SendSingle(msg *model.OutboundMessage) (string, error) {
	if msg.Attachment != nil {
		return c.sendWithAttachment(msg)
	}
	return c.sendJSON(msg)
}

func (c *HTTPClient) sendJSON(msg *model.OutboundMessage) (string, error) {
	payload := map[string]any{
		"to":          msg.To,
		"subject":     msg.Subject,
		"body":        msg.Body,
		"isScheduled": msg.Mode == model.ModeScheduled,
		"timestamp":   time.Now().Format(time.RFC3339),
	}
	if msg.Mode == model.ModeScheduled {
		payload["scheduledDate"] = msg.ScheduledAt.Format("2006-01-02")
		payload["scheduledTime"] = msg.ScheduledAt.Format("15:04")
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/api/mail/send", bytes.NewReader(body))
	if err != nil {
		return "", appErrors.NewTransport("send", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.do("send", req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	text, err := io.ReadAll(res.Body)
	if err != nil {
		return "", appErrors.NewTransport("send", err)
	}
	return string(text), nil
}

func (c *HTTPClient) sendWithAttachment(msg *model.OutboundMessage) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	mw.WriteField("to", msg.To)
	mw.WriteField("subject", msg.Subject)
	mw.WriteField("body", msg.Body)
	mw.WriteField("isScheduled", strconv.FormatBool(msg.Mode == model.ModeScheduled))
	if msg.Mode == model.ModeScheduled {
		mw.WriteField("scheduledDate", msg.ScheduledAt.Format("2006-01-02"))
		mw.WriteField("scheduledTime", msg.ScheduledAt.Format("15:04"))
	}
	part, err := mw.CreateFormFile("file", msg.Attachment.Filename)
	if err != nil {
		return "", appErrors.NewTransport("send-attachment", err)
	}
	if _, err := part.Write(msg.Attachment.Data); err != nil {
		return "", appErrors.NewTransport("send-attachment", err)
	}
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/api/mail/send-attachment", &buf)
	if err != nil {
		return "", appErrors.NewTransport("send-attachment", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	res, err := c.do("send-attachment", req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	text, err := io.ReadAll(res.Body)
	if err != nil {
		return "", appErrors.NewTransport("send-attachment", err)
	}
	return string(text), nil
}

func (c *HTTPClient) SearchContacts(keyword string) ([]model.Contact, error) {
	endpoint := c.BaseURL + "/api/email-contacts"
	if keyword != "" {
		endpoint += "/search?keyword=" + url.QueryEscape(keyword)
	}

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, appErrors.NewTransport("email-contacts", err)
	}

	res, err := c.do("email-contacts", req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var contacts []model.Contact
	if err := json.NewDecoder(res.Body).Decode(&contacts); err != nil {
		return nil, appErrors.NewTransport("email-contacts", err)
	}
	return contacts, nil
}

func (c *HTTPClient) CountMail(startDate, endDate string) (int, error) {
	res, err := c.postRange("count", startDate, endDate)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	var count int
	if err := json.NewDecoder(res.Body).Decode(&count); err != nil {
		return 0, appErrors.NewTransport("count", err)
	}
	return count, nil
}

func (c *HTTPClient) ExportMail(startDate, endDate string) ([]byte, error) {
	res, err := c.postRange("export", startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, appErrors.NewTransport("export", err)
	}
	return data, nil
}

func (c *HTTPClient) postRange(op, startDate, endDate string) (*http.Response, error) {
	body, _ := json.Marshal(map[string]string{
		"startDate": startDate,
		"endDate":   endDate,
	})
	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/api/mail/"+op, bytes.NewReader(body))
	if err != nil {
		return nil, appErrors.NewTransport(op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(op, req)
}

var _ Service = (*HTTPClient)(nil)
