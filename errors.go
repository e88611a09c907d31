package checkbook

import "fmt"

// ValidationError reports malformed input to a mutating call. The store is unchanged.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ImmutableRecordError reports an attempt to delete a bank transaction, or to
// alter one of its locked fields (date, payee, amount). The store is unchanged.
type ImmutableRecordError struct {
	ID    string
	Field string // empty for a deletion
}

func (e *ImmutableRecordError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("transaction %s is bank sourced and cannot be deleted", e.ID)
	}
	return fmt.Sprintf("transaction %s is bank sourced, its %s cannot be changed", e.ID, e.Field)
}

// SyncTransportError reports a bank source that failed to deliver a batch.
// Nothing was ingested.
type SyncTransportError struct {
	AccountID string
	Err       error
}

func (e *SyncTransportError) Error() string {
	return fmt.Sprintf("bank sync for account %s failed: %v", e.AccountID, e.Err)
}

func (e *SyncTransportError) Unwrap() error { return e.Err }
