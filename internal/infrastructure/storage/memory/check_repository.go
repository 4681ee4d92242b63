// Package memory provides map-backed implementations of the engine's
// storage ports. Used by tests and by memory-storage local runs; semantics
// mirror the PostgreSQL adapters, including optimistic locking.
package memory

import (
	"context"
	"sort"
	"sync"

	"storeops/internal/core/apperror"
	"storeops/internal/core/id"
	"storeops/internal/domain/stocktake"
)

// CheckRepository is an in-memory stocktake.Repository.
type CheckRepository struct {
	mu     sync.RWMutex
	checks map[id.ID]*stocktake.Check
}

// NewCheckRepository creates an empty repository.
func NewCheckRepository() *CheckRepository {
	return &CheckRepository{
		checks: make(map[id.ID]*stocktake.Check),
	}
}

func (r *CheckRepository) Create(_ context.Context, chk *stocktake.Check) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.checks[chk.ID]; exists {
		return apperror.NewConflict("check already exists").
			WithDetail("check_id", chk.ID.String())
	}

	r.checks[chk.ID] = cloneCheck(chk)
	return nil
}

func (r *CheckRepository) GetByID(_ context.Context, checkID id.ID) (*stocktake.Check, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chk, ok := r.checks[checkID]
	if !ok {
		return nil, apperror.NewNotFound("check", checkID.String())
	}
	return cloneCheck(chk), nil
}

func (r *CheckRepository) Update(_ context.Context, chk *stocktake.Check) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.checks[chk.ID]
	if !ok {
		return apperror.NewNotFound("check", chk.ID.String())
	}
	if stored.Version != chk.Version {
		return apperror.NewConcurrentModification("check", chk.ID.String())
	}

	chk.Version++
	next := cloneCheck(chk)
	next.Items = stored.Items // items are owned by SaveItems
	r.checks[chk.ID] = next
	return nil
}

func (r *CheckRepository) SaveItems(_ context.Context, checkID id.ID, items []stocktake.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.checks[checkID]
	if !ok {
		return apperror.NewNotFound("check", checkID.String())
	}

	stored.Items = cloneItems(items)
	return nil
}

func (r *CheckRepository) Delete(_ context.Context, checkID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.checks[checkID]; !ok {
		return apperror.NewNotFound("check", checkID.String())
	}

	delete(r.checks, checkID)
	return nil
}

func (r *CheckRepository) List(_ context.Context, filter stocktake.ListFilter) ([]*stocktake.Check, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*stocktake.Check, 0, len(r.checks))
	for _, chk := range r.checks {
		if filter.CreatedBy != nil && chk.CreatedBy != *filter.CreatedBy {
			continue
		}
		if filter.Status != nil && chk.Status != *filter.Status {
			continue
		}
		matched = append(matched, cloneCheck(chk))
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []*stocktake.Check{}, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

var _ stocktake.Repository = (*CheckRepository)(nil)

// --- cloning helpers ---

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneItems(items []stocktake.Item) []stocktake.Item {
	out := make([]stocktake.Item, len(items))
	for i, it := range items {
		it.ActualQuantity = clonePtr(it.ActualQuantity)
		out[i] = it
	}
	return out
}

func cloneCheck(chk *stocktake.Check) *stocktake.Check {
	cp := *chk
	cp.SubmittedAt = clonePtr(chk.SubmittedAt)
	cp.ApprovedBy = clonePtr(chk.ApprovedBy)
	cp.ApprovedAt = clonePtr(chk.ApprovedAt)
	cp.RejectedBy = clonePtr(chk.RejectedBy)
	cp.RejectedAt = clonePtr(chk.RejectedAt)
	cp.Items = cloneItems(chk.Items)
	return &cp
}
