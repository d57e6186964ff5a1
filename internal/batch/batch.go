// internal/batch/batch.go
package batch

import (
	"github.com/unclebandit/mailpanel-backend/internal/model"
)

// Batch owns the ordered row sequence of one campaign import. Rows are
// never deleted, only transitioned; keys are never reused within the
// lifetime of the batch.
type Batch struct {
	rows []model.MessageRow
}

// New builds a batch from imported rows. Every row starts PENDING and
// unselected regardless of what the import carried.
func New(rows []model.MessageRow) *Batch {
	owned := make([]model.MessageRow, len(rows))
	copy(owned, rows)
	for i := range owned {
		owned[i].Status = model.StatusPending
		owned[i].Selected = false
		owned[i].ErrorMessage = ""
	}
	return &Batch{rows: owned}
}

// Rows returns a copy of the row sequence in import order.
func (b *Batch) Rows() []model.MessageRow {
	out := make([]model.MessageRow, len(b.rows))
	copy(out, b.rows)
	return out
}

func (b *Batch) Len() int { return len(b.rows) }

// SetSelected replaces the whole selection. Keys not present in the batch
// are ignored; FAILED rows are refused, which keeps the invariant
// selected => status != FAILED without any later cleanup.
func (b *Batch) SetSelected(keys []int) {
	wanted := make(map[int]bool, len(keys))
	for _, k := range keys {
		wanted[k] = true
	}
	for i := range b.rows {
		b.rows[i].Selected = wanted[b.rows[i].Key] && b.rows[i].Status != model.StatusFailed
	}
}

// SelectAll selects every row that is not FAILED. Failed rows are terminal
// and stay unselectable until a fresh import.
func (b *Batch) SelectAll() {
	for i := range b.rows {
		b.rows[i].Selected = b.rows[i].Status != model.StatusFailed
	}
}

func (b *Batch) ClearAll() {
	for i := range b.rows {
		b.rows[i].Selected = false
	}
}

func (b *Batch) HasSelection() bool {
	for i := range b.rows {
		if b.rows[i].Selected {
			return true
		}
	}
	return false
}

// MarkSending flips every selected row to SENDING for optimistic feedback
// and returns the previous status per key so a transport failure can roll
// the batch back to its pre-dispatch state.
func (b *Batch) MarkSending() map[int]model.RowStatus {
	snapshot := make(map[int]model.RowStatus)
	for i := range b.rows {
		if b.rows[i].Selected {
			snapshot[b.rows[i].Key] = b.rows[i].Status
			b.rows[i].Status = model.StatusSending
		}
	}
	return snapshot
}

// Rollback restores the statuses captured by MarkSending. Used when the
// dispatch got no response at all; no partial state is committed.
func (b *Batch) Rollback(snapshot map[int]model.RowStatus) {
	for i := range b.rows {
		if prev, ok := snapshot[b.rows[i].Key]; ok {
			b.rows[i].Status = prev
		}
	}
}

// Merge applies the server-reported outcomes. The server echo is the
// source of truth for status and selection; rows absent from the response
// fall back to their snapshot status. A FAILED result can never remain
// selected.
func (b *Batch) Merge(results []model.RowResult, snapshot map[int]model.RowStatus) {
	byKey := make(map[int]model.RowResult, len(results))
	for _, r := range results {
		byKey[r.Key] = r
	}
	for i := range b.rows {
		row := &b.rows[i]
		res, ok := byKey[row.Key]
		if !ok {
			// Not processed by the server; SENDING was only local feedback.
			if prev, has := snapshot[row.Key]; has && row.Status == model.StatusSending {
				row.Status = prev
			}
			continue
		}
		row.Status = res.Status
		row.Selected = res.Selected && res.Status != model.StatusFailed
		if res.Status == model.StatusFailed {
			row.ErrorMessage = res.ErrorMessage
		} else {
			row.ErrorMessage = ""
		}
	}
}

// Stats recomputes the derived counts from the current row sequence.
func (b *Batch) Stats() model.Stats {
	return ComputeStats(b.rows)
}

// ComputeStats is the only source of displayed counts. It is a pure
// derivation over the rows; no counter is maintained alongside mutation.
func ComputeStats(rows []model.MessageRow) model.Stats {
	s := model.Stats{Total: len(rows)}
	for i := range rows {
		if rows[i].Selected {
			s.Selected++
		}
		switch rows[i].Status {
		case model.StatusSent:
			s.Sent++
		case model.StatusFailed:
			s.Failed++
		case model.StatusPending:
			s.Pending++
		}
	}
	return s
}
