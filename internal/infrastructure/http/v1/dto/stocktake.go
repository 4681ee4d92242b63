package dto

import (
	"storeops/internal/domain/stocktake"
)

// CreateCheckRequest opens a new draft check for a user.
type CreateCheckRequest struct {
	UserID string `json:"userId" binding:"required"`
	Title  string `json:"title"`
}

// UpdateItemRequest records one product count.
type UpdateItemRequest struct {
	ActualQuantity *int64  `json:"actual_quantity"`
	Note           *string `json:"note"`
	Reason         *string `json:"reason"`
}

// DraftItemRequest is one row of a bulk draft save.
type DraftItemRequest struct {
	ProductID      string `json:"product_id" binding:"required"`
	ActualQuantity *int64 `json:"actual_quantity"`
	Note           string `json:"note"`
	Reason         string `json:"reason"`
}

// SaveDraftRequest replaces the counted state of a draft check.
type SaveDraftRequest struct {
	Items []DraftItemRequest `json:"items" binding:"required"`
	Note  *string            `json:"note"`
}

// DeleteCheckRequest identifies the requesting user; only the creator may
// delete.
type DeleteCheckRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// ApproveRequest resolves a submitted check and writes counts to stock.
type ApproveRequest struct {
	ManagerID string `json:"managerId" binding:"required"`
}

// RejectRequest resolves a submitted check without stock writes.
type RejectRequest struct {
	ManagerID string `json:"managerId" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
}

// CheckResponse is a check enriched with display-only fields.
type CheckResponse struct {
	*stocktake.Check
	CreatedByName string `json:"created_by_name,omitempty"`
}

// ApproveResponse reports the resolved check and how many products were
// adjusted in the catalog.
type ApproveResponse struct {
	Check         *stocktake.Check `json:"check"`
	AdjustedCount int              `json:"adjusted_count"`
}
