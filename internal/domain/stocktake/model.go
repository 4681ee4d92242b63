// Package stocktake implements the inventory stocktake engine: the lifecycle
// of a check document, per-item reconciliation against the catalog baseline,
// submission validation, and the approval step that commits counted
// quantities back into canonical product stock.
package stocktake

import (
	"strings"
	"time"

	"storeops/internal/core/apperror"
	"storeops/internal/core/id"
	"storeops/internal/domain/catalog"
)

// Status represents the lifecycle state of a check.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

// Valid reports whether s is a known lifecycle status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Operation names a mutating service operation.
type Operation string

const (
	OpUpdateItem Operation = "update item of"
	OpSaveDraft  Operation = "save draft of"
	OpSubmit     Operation = "submit"
	OpApprove    Operation = "approve"
	OpReject     Operation = "reject"
	OpDelete     Operation = "delete"
)

// transitions is the single allowed-source-status table.
// Every mutating operation consults it through EnsureStatus, so all legal
// lifecycle moves are auditable in one place. Approved and Rejected appear
// in no entry: they are terminal.
var transitions = map[Operation]Status{
	OpUpdateItem: StatusDraft,
	OpSaveDraft:  StatusDraft,
	OpSubmit:     StatusDraft,
	OpApprove:    StatusSubmitted,
	OpReject:     StatusSubmitted,
	OpDelete:     StatusDraft,
}

// Check is the aggregate root: one document per stocktake cycle.
type Check struct {
	ID        id.ID     `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Title     string    `db:"title" json:"title"`
	Note      string    `db:"note" json:"note,omitempty"`
	Status    Status    `db:"status" json:"status"`
	CreatedBy string    `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	SubmittedAt  *time.Time `db:"submitted_at" json:"submitted_at,omitempty"`
	ApprovedBy   *string    `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt   *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	RejectedBy   *string    `db:"rejected_by" json:"rejected_by,omitempty"`
	RejectedAt   *time.Time `db:"rejected_at" json:"rejected_at,omitempty"`
	RejectReason string     `db:"reject_reason" json:"reject_reason,omitempty"`

	// Version implements optimistic concurrency: the repository bumps it on
	// every successful write and rejects stale writes with a conflict.
	Version int `db:"version" json:"version"`

	// Denormalized counters. Always the exact recomputation of Items by
	// Reconcile; never patched field by field.
	TotalProducts   int `db:"total_products" json:"total_products"`
	CheckedProducts int `db:"checked_products" json:"checked_products"`
	Matched         int `db:"matched_count" json:"matched"`
	Over            int `db:"over_count" json:"over"`
	Under           int `db:"under_count" json:"under"`

	Items []Item `db:"-" json:"items"`
}

// Item is one counted product within a check. Items are value objects
// embedded in the aggregate and never persisted independently.
type Item struct {
	ProductID id.ID `db:"product_id" json:"product_id"`

	// ProductName is a snapshot taken at check creation. It may diverge from
	// the live catalog afterwards; the check must refer to the exact item
	// counted.
	ProductName string `db:"product_name" json:"product_name"`

	// SystemQuantity is the catalog quantity at creation time: the
	// reconciliation baseline, frozen for the life of the check.
	SystemQuantity int64 `db:"system_quantity" json:"system_quantity"`

	// ActualQuantity is the physically counted quantity; nil until counted.
	ActualQuantity *int64 `db:"actual_quantity" json:"actual_quantity,omitempty"`

	// Difference is actual minus system; held at 0 while uncounted.
	Difference int64 `db:"difference" json:"difference"`

	Note string `db:"note" json:"note,omitempty"`

	// Reason is mandatory before submission for any counted item with a
	// nonzero difference.
	Reason string `db:"reason" json:"reason,omitempty"`

	Checked bool `db:"checked" json:"checked"`
}

// DraftItem is the client's view of one item in a bulk draft save.
type DraftItem struct {
	ProductID      id.ID
	ActualQuantity *int64
	Note           string
	Reason         string
}

// NewCheck builds a draft check snapshotting the given catalog products.
func NewCheck(createdBy, title, checkCode string, products []catalog.Product) *Check {
	now := time.Now().UTC()

	chk := &Check{
		ID:        id.New(),
		Code:      checkCode,
		Title:     title,
		Status:    StatusDraft,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}

	chk.Items = make([]Item, 0, len(products))
	for _, p := range products {
		chk.Items = append(chk.Items, Item{
			ProductID:      p.ID,
			ProductName:    p.Name,
			SystemQuantity: p.Quantity,
		})
	}
	chk.TotalProducts = len(chk.Items)
	chk.Reconcile()

	return chk
}

// EnsureStatus verifies the check is in the required source status for op.
func (c *Check) EnsureStatus(op Operation) error {
	if c.Status != transitions[op] {
		return apperror.NewInvalidState(string(op), string(c.Status))
	}
	return nil
}

// Touch bumps the modification timestamp.
func (c *Check) Touch() {
	c.UpdatedAt = time.Now().UTC()
}

// itemIndex returns the index of the item for productID, or -1.
func (c *Check) itemIndex(productID id.ID) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// ApplyItemCount records a count for one product. Nil note/reason leave the
// stored values untouched; the caller recounts rather than clears.
func (c *Check) ApplyItemCount(productID id.ID, actual *int64, note, reason *string) error {
	idx := c.itemIndex(productID)
	if idx < 0 {
		return apperror.NewNotFound("check item", productID.String()).
			WithDetail("check_id", c.ID.String())
	}

	c.Items[idx] = ApplyCount(c.Items[idx], actual)
	if note != nil && *note != "" {
		c.Items[idx].Note = *note
	}
	if reason != nil && *reason != "" {
		c.Items[idx].Reason = *reason
	}

	c.Reconcile()
	c.Touch()
	return nil
}

// MergeDraft applies a full edited item array onto the check. Every entry
// must reference a product already in the check; the stored name and
// system-quantity baselines are kept regardless of what the client sent.
// Items absent from the payload keep their stored state.
func (c *Check) MergeDraft(drafts []DraftItem) error {
	for _, d := range drafts {
		idx := c.itemIndex(d.ProductID)
		if idx < 0 {
			return apperror.NewNotFound("check item", d.ProductID.String()).
				WithDetail("check_id", c.ID.String())
		}
		c.Items[idx] = ApplyCount(c.Items[idx], d.ActualQuantity)
		c.Items[idx].Note = d.Note
		c.Items[idx].Reason = d.Reason
	}

	c.Reconcile()
	c.Touch()
	return nil
}

// MissingReasons counts counted items with a nonzero difference and no
// reason. Submission requires this to be zero.
func (c *Check) MissingReasons() int {
	n := 0
	for i := range c.Items {
		it := &c.Items[i]
		if it.Checked && it.Difference != 0 && strings.TrimSpace(it.Reason) == "" {
			n++
		}
	}
	return n
}

// DiscrepantItems returns counted items whose difference is nonzero.
// These are the items whose catalog stock is rewritten at approval.
func (c *Check) DiscrepantItems() []Item {
	var out []Item
	for _, it := range c.Items {
		if it.Checked && it.Difference != 0 {
			out = append(out, it)
		}
	}
	return out
}

// MarkSubmitted freezes the check for review.
func (c *Check) MarkSubmitted(now time.Time) {
	c.Status = StatusSubmitted
	c.SubmittedAt = &now
	c.UpdatedAt = now
}

// MarkApproved resolves the check as approved. Terminal.
func (c *Check) MarkApproved(managerID string, now time.Time) {
	c.Status = StatusApproved
	c.ApprovedBy = &managerID
	c.ApprovedAt = &now
	c.UpdatedAt = now
}

// MarkRejected resolves the check as rejected. Terminal, no catalog writes.
func (c *Check) MarkRejected(managerID, reason string, now time.Time) {
	c.Status = StatusRejected
	c.RejectedBy = &managerID
	c.RejectedAt = &now
	c.RejectReason = reason
	c.UpdatedAt = now
}
