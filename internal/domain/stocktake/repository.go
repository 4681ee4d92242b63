package stocktake

import (
	"context"
	"encoding/json"
	"time"

	"storeops/internal/core/id"
)

// Repository defines persistence for check aggregates. No business rules
// live here; lifecycle enforcement belongs to the service and the model.
type Repository interface {
	// Create inserts the check row. Items are written via SaveItems inside
	// the same transaction.
	Create(ctx context.Context, chk *Check) error

	// GetByID loads a check with its items.
	GetByID(ctx context.Context, checkID id.ID) (*Check, error)

	// Update writes the check row with optimistic locking: the stored
	// version must equal chk.Version or the write fails with a
	// CONCURRENT_MODIFICATION conflict. On success chk.Version is bumped.
	Update(ctx context.Context, chk *Check) error

	// SaveItems rewrites the full item list for a check.
	SaveItems(ctx context.Context, checkID id.ID, items []Item) error

	// Delete removes the whole aggregate (check and items).
	Delete(ctx context.Context, checkID id.ID) error

	// List returns checks (with items) matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]*Check, error)
}

// ListFilter narrows List results.
type ListFilter struct {
	CreatedBy *string
	Status    *Status

	// Limit of 0 means no limit (used by stats, which needs full history).
	Limit  int
	Offset int
}

// DefaultListFilter returns defaults for API listings.
func DefaultListFilter() ListFilter {
	return ListFilter{Limit: 50}
}

// AuditAction labels a lifecycle transition in the audit trail.
type AuditAction string

const (
	AuditCreate  AuditAction = "create"
	AuditSubmit  AuditAction = "submit"
	AuditApprove AuditAction = "approve"
	AuditReject  AuditAction = "reject"
	AuditDelete  AuditAction = "delete"
)

// Auditor records lifecycle transitions. Implementations must be safe to
// call after the business write; failures are logged, never propagated.
type Auditor interface {
	Record(ctx context.Context, action AuditAction, chk *Check) error
}

// HistoryEntry is one recorded transition of a check, with the snapshot
// the auditor captured at that moment.
type HistoryEntry struct {
	ID        id.ID           `json:"id"`
	CheckID   id.ID           `json:"check_id"`
	Code      string          `json:"code"`
	Action    AuditAction     `json:"action"`
	Status    Status          `json:"status"`
	Actor     string          `json:"actor"`
	Snapshot  json.RawMessage `json:"snapshot,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// HistoryProvider is implemented by auditors that can read the trail back.
type HistoryProvider interface {
	History(ctx context.Context, checkID id.ID, limit int) ([]HistoryEntry, error)
}
