package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"storeops/internal/core/id"
	"storeops/internal/domain/stocktake"
)

// AuditEntry is one recorded lifecycle transition.
type AuditEntry struct {
	ID       id.ID
	Action   stocktake.AuditAction
	CheckID  id.ID
	Code     string
	Status   stocktake.Status
	Actor    string
	Snapshot json.RawMessage
	At       time.Time
}

// AuditLog is an in-memory stocktake.Auditor with a readable trail.
type AuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
}

// NewAuditLog creates an empty audit log.
func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

func (l *AuditLog) Record(_ context.Context, action stocktake.AuditAction, chk *stocktake.Check) error {
	snapshot, err := json.Marshal(chk)
	if err != nil {
		return fmt.Errorf("marshal check snapshot: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, AuditEntry{
		ID:       id.New(),
		Action:   action,
		CheckID:  chk.ID,
		Code:     chk.Code,
		Status:   chk.Status,
		Actor:    chk.CreatedBy,
		Snapshot: snapshot,
		At:       time.Now().UTC(),
	})
	return nil
}

// History returns the entries of one check, newest first.
func (l *AuditLog) History(_ context.Context, checkID id.ID, limit int) ([]stocktake.HistoryEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]stocktake.HistoryEntry, 0, limit)
	for i := len(l.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := l.entries[i]
		if e.CheckID != checkID {
			continue
		}
		out = append(out, stocktake.HistoryEntry{
			ID:        e.ID,
			CheckID:   e.CheckID,
			Code:      e.Code,
			Action:    e.Action,
			Status:    e.Status,
			Actor:     e.Actor,
			Snapshot:  e.Snapshot,
			CreatedAt: e.At,
		})
	}
	return out, nil
}

// Entries returns a copy of all recorded entries.
func (l *AuditLog) Entries() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

var (
	_ stocktake.Auditor         = (*AuditLog)(nil)
	_ stocktake.HistoryProvider = (*AuditLog)(nil)
)
