// internal/service/dispatch_service.go
package service

import (
	"io"

	"github.com/unclebandit/mailpanel-backend/internal/batch"
	"github.com/unclebandit/mailpanel-backend/internal/delivery"
	appErrors "github.com/unclebandit/mailpanel-backend/internal/errors"
	"github.com/unclebandit/mailpanel-backend/internal/model"
	"github.com/unclebandit/mailpanel-backend/internal/store"
)

// DispatchService is the campaign side of the panel: it imports uploaded
// files into batches, manages the selection, and coordinates bulk sends
// against the delivery service.
type DispatchService struct {
	Delivery delivery.Service
	Store    *store.BatchStore
}

// BatchView is what callers see of a batch after any operation.
type BatchView struct {
	BatchID string             `json:"batch_id"`
	Rows    []model.MessageRow `json:"rows"`
	Stats   model.Stats        `json:"stats"`
}

// ImportCampaign uploads the file to the delivery service and registers the
// parsed rows as a new batch. On any failure no batch is created and any
// prior batch is left untouched.
func (s *DispatchService) ImportCampaign(filename string, file io.Reader) (*BatchView, error) {
	imported, err := s.Delivery.ImportBatch(filename, file)
	if err != nil {
		return nil, appErrors.NewImport("delivery service could not parse the file", err)
	}
	if len(imported) == 0 {
		return nil, appErrors.NewImport("file contains no rows", nil)
	}

	rows := make([]model.MessageRow, len(imported))
	for i, r := range imported {
		key := r.RowNumber
		if key <= 0 {
			key = i + 1 // source supplied no row number, fall back to ordinal
		}
		rows[i] = model.MessageRow{
			Key:              key,
			RowNumber:        r.RowNumber,
			RecipientLabel:   r.RecipientLabel,
			RecipientAddress: r.RecipientAddress,
			Subject:          r.Subject,
			Body:             r.Body,
		}
	}

	b := batch.New(rows)
	id := s.Store.Put(b)
	return &BatchView{BatchID: id, Rows: b.Rows(), Stats: b.Stats()}, nil
}

// Get returns the current rows and stats of a batch.
func (s *DispatchService) Get(batchID string) (*BatchView, error) {
	return s.view(batchID, func(b *batch.Batch) {})
}

// SetSelection replaces the selection with the given keys. Unknown keys
// are ignored and FAILED rows are refused.
func (s *DispatchService) SetSelection(batchID string, keys []int) (*BatchView, error) {
	return s.view(batchID, func(b *batch.Batch) { b.SetSelected(keys) })
}

// SelectAll selects every row that is not FAILED.
func (s *DispatchService) SelectAll(batchID string) (*BatchView, error) {
	return s.view(batchID, func(b *batch.Batch) { b.SelectAll() })
}

// ClearSelection empties the selection.
func (s *DispatchService) ClearSelection(batchID string) (*BatchView, error) {
	return s.view(batchID, func(b *batch.Batch) { b.ClearAll() })
}

// Discard drops the batch. The panel calls this when the campaign view
// closes; batches never outlive their view.
func (s *DispatchService) Discard(batchID string) {
	s.Store.Delete(batchID)
}

func (s *DispatchService) view(batchID string, mutate func(b *batch.Batch)) (*BatchView, error) {
	var view *BatchView
	err := s.Store.With(batchID, func(b *batch.Batch) error {
		mutate(b)
		view = &BatchView{BatchID: batchID, Rows: b.Rows(), Stats: b.Stats()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Dispatch submits the whole row sequence to the delivery service in one
// request and merges the reported outcomes back into the batch.
//
// Preconditions: at least one selected row, otherwise NoSelectionError and
// no network call. Selected rows go SENDING for the duration of the call;
// if the service gives no usable response every one of them rolls back to
// its pre-dispatch status and a single TransportError surfaces. Per-row
// failures in a received response are a success path here, visible only
// through the stats.
func (s *DispatchService) Dispatch(batchID string) (*BatchView, error) {
	var snapshot map[int]model.RowStatus
	var outgoing []model.MessageRow

	err := s.Store.BeginDispatch(batchID, func(b *batch.Batch) error {
		if !b.HasSelection() {
			return appErrors.NewNoSelection()
		}
		snapshot = b.MarkSending()
		outgoing = b.Rows()
		return nil
	})
	if err != nil {
		return nil, err
	}

	results, sendErr := s.Delivery.DispatchBatch(outgoing)

	var view *BatchView
	endErr := s.Store.EndDispatch(batchID, func(b *batch.Batch) error {
		if sendErr != nil {
			b.Rollback(snapshot)
			return nil
		}
		b.Merge(results, snapshot)
		view = &BatchView{BatchID: batchID, Rows: b.Rows(), Stats: b.Stats()}
		return nil
	})
	if endErr != nil {
		return nil, endErr
	}
	if sendErr != nil {
		return nil, sendErr
	}
	return view, nil
}
