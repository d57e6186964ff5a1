// internal/controller/mail_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/mailpanel-backend/internal/delivery"
	appErrors "github.com/unclebandit/mailpanel-backend/internal/errors"
	"github.com/unclebandit/mailpanel-backend/internal/model"
	"github.com/unclebandit/mailpanel-backend/internal/service"
)

type MailController struct {
	DispatchService *service.DispatchService
	MailService     *service.MailService
	Delivery        delivery.Service
}

// UploadCSV imports an uploaded tabular file into a fresh campaign batch.
func (c *MailController) UploadCSV(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	view, err := c.DispatchService.ImportCampaign(header.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}

	log.Printf("📥 Imported batch %s with %d rows\n", view.BatchID, view.Stats.Total)
	writeJSON(w, view)
}

func (c *MailController) GetBatch(w http.ResponseWriter, r *http.Request) {
	view, err := c.DispatchService.Get(chi.URLParam(r, "batchID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, view)
}

// UpdateSelection replaces the selection with the posted keys.
func (c *MailController) UpdateSelection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Keys []int `json:"keys"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	view, err := c.DispatchService.SetSelection(chi.URLParam(r, "batchID"), body.Keys)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, view)
}

func (c *MailController) SelectAll(w http.ResponseWriter, r *http.Request) {
	view, err := c.DispatchService.SelectAll(chi.URLParam(r, "batchID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, view)
}

func (c *MailController) ClearSelection(w http.ResponseWriter, r *http.Request) {
	view, err := c.DispatchService.ClearSelection(chi.URLParam(r, "batchID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, view)
}

// SendBulk dispatches the selected rows of a batch.
func (c *MailController) SendBulk(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")
	view, err := c.DispatchService.Dispatch(batchID)
	if err != nil {
		writeError(w, err)
		return
	}

	log.Printf("✅ Batch %s dispatched: %d sent, %d failed\n", batchID, view.Stats.Sent, view.Stats.Failed)
	writeJSON(w, view)
}

func (c *MailController) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	c.DispatchService.Discard(chi.URLParam(r, "batchID"))
	w.WriteHeader(http.StatusNoContent)
}

// SendMail handles a single send. The form posts JSON, or multipart when
// an attachment rides along; both carry the same logical message.
func (c *MailController) SendMail(w http.ResponseWriter, r *http.Request) {
	req, err := decodeSendRequest(r)
	if err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}

	msg, err := c.MailService.SendSingle(req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]any{
		"success": true,
		"message": msg,
	})
}

func decodeSendRequest(r *http.Request) (*service.SendRequest, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, err
		}
		req := &service.SendRequest{
			To:            r.FormValue("to"),
			Subject:       r.FormValue("subject"),
			Body:          r.FormValue("body"),
			ScheduledDate: r.FormValue("scheduledDate"),
			ScheduledTime: r.FormValue("scheduledTime"),
		}
		req.Scheduled, _ = strconv.ParseBool(r.FormValue("isScheduled"))

		if file, header, err := r.FormFile("file"); err == nil {
			defer file.Close()
			data, err := io.ReadAll(file)
			if err != nil {
				return nil, err
			}
			req.Attachment = &model.Attachment{Filename: header.Filename, Data: data}
		}
		return req, nil
	}

	var body struct {
		To            string `json:"to"`
		Subject       string `json:"subject"`
		Body          string `json:"body"`
		IsScheduled   bool   `json:"isScheduled"`
		ScheduledDate string `json:"scheduledDate"`
		ScheduledTime string `json:"scheduledTime"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}
	return &service.SendRequest{
		To:            body.To,
		Subject:       body.Subject,
		Body:          body.Body,
		Scheduled:     body.IsScheduled,
		ScheduledDate: body.ScheduledDate,
		ScheduledTime: body.ScheduledTime,
	}, nil
}

// SearchContacts proxies the contact directory autocomplete.
func (c *MailController) SearchContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := c.Delivery.SearchContacts(r.URL.Query().Get("keyword"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, contacts)
}

func (c *MailController) CountMail(w http.ResponseWriter, r *http.Request) {
	start, end, err := decodeRange(r)
	if err != nil {
		writeError(w, err)
		return
	}

	count, err := c.Delivery.CountMail(start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, count)
}

func (c *MailController) ExportMail(w http.ResponseWriter, r *http.Request) {
	start, end, err := decodeRange(r)
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := c.Delivery.ExportMail(start, end)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="mail_report_`+start+"_"+end+`.csv"`)
	w.Write(data)
}

func decodeRange(r *http.Request) (string, string, error) {
	var body struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return "", "", appErrors.NewValidation("range", "invalid body")
	}
	if body.StartDate == "" || body.EndDate == "" {
		return "", "", appErrors.NewValidation("range", "startDate and endDate are required")
	}
	if body.StartDate > body.EndDate {
		return "", "", appErrors.NewValidation("range", "startDate cannot be after endDate")
	}
	return body.StartDate, body.EndDate, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP statuses. Local failures
// stay 4xx; only a missing delivery-service response becomes a 502.
func writeError(w http.ResponseWriter, err error) {
	var (
		notFound   *appErrors.BatchNotFoundError
		busy       *appErrors.BusyError
		transport  *appErrors.TransportError
		validation *appErrors.ValidationError
		noSel      *appErrors.NoSelectionError
		imp        *appErrors.ImportError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &busy):
		status = http.StatusConflict
	case errors.As(err, &validation), errors.As(err, &noSel), errors.As(err, &imp):
		status = http.StatusBadRequest
	case errors.As(err, &transport):
		status = http.StatusBadGateway
	}

	http.Error(w, err.Error(), status)
}
