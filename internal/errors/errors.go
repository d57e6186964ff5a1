// internal/errors/errors.go
package appErrors

import "fmt"

// ImportError means the uploaded file could not be turned into a batch.
// No batch is created when this is returned.
type ImportError struct {
	Reason string
	Err    error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("import failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("import failed: %s", e.Reason)
}

func (e *ImportError) Unwrap() error { return e.Err }

func NewImport(reason string, err error) error {
	return &ImportError{Reason: reason, Err: err}
}

// NoSelectionError is the local pre-flight failure when a dispatch is
// requested with nothing selected. The network is never touched.
type NoSelectionError struct{}

func (e *NoSelectionError) Error() string {
	return "no rows selected for dispatch"
}

func NewNoSelection() error { return &NoSelectionError{} }

// TransportError means the delivery service gave no usable response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("delivery service %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func NewTransport(op string, err error) error {
	return &TransportError{Op: op, Err: err}
}

// ValidationError is a composer gate failure; submission was never attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// BatchNotFoundError is a sentinel error
type BatchNotFoundError struct {
	BatchID string
}

func (e *BatchNotFoundError) Error() string {
	return fmt.Sprintf("batch %s not found", e.BatchID)
}

// Helper constructor
func NewBatchNotFound(id string) error {
	return &BatchNotFoundError{BatchID: id}
}

// BusyError means the same logical operation is already in flight for the
// batch and the new request was refused.
type BusyError struct {
	BatchID string
	Op      string
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("batch %s is busy: %s already in progress", e.BatchID, e.Op)
}

func NewBusy(id, op string) error {
	return &BusyError{BatchID: id, Op: op}
}
