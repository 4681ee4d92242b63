package handlers

import (
	"github.com/gin-gonic/gin"

	"storeops/internal/core/apperror"
	"storeops/internal/core/id"
	"storeops/internal/domain/stocktake"
	"storeops/internal/infrastructure/http/v1/dto"
)

// StocktakeHandler serves the inventory check lifecycle.
type StocktakeHandler struct {
	*BaseHandler
	svc *stocktake.Service
}

// NewStocktakeHandler creates a stocktake handler.
func NewStocktakeHandler(base *BaseHandler, svc *stocktake.Service) *StocktakeHandler {
	return &StocktakeHandler{BaseHandler: base, svc: svc}
}

// Register mounts the stocktake routes on the group.
func (h *StocktakeHandler) Register(rg *gin.RouterGroup) {
	checks := rg.Group("/inventory-checks")
	{
		checks.POST("", h.Create)
		checks.GET("", h.ListAll)
		checks.GET("/user/:userId", h.ListByUser)
		checks.GET("/:id", h.Get)
		checks.GET("/:id/history", h.History)
		checks.PUT("/:id/items/:productId", h.UpdateItem)
		checks.PUT("/:id/draft", h.SaveDraft)
		checks.DELETE("/:id", h.Delete)
		checks.POST("/:id/submit", h.Submit)
		checks.POST("/:id/approve", h.Approve)
		checks.POST("/:id/reject", h.Reject)
	}
	rg.GET("/inventory-stats", h.Stats)
}

// Create opens a new draft check snapshotting the current catalog.
func (h *StocktakeHandler) Create(c *gin.Context) {
	var req dto.CreateCheckRequest
	if !h.BindJSON(c, &req) {
		return
	}

	chk, err := h.svc.Create(c.Request.Context(), req.UserID, req.Title)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.enrich(c, chk))
}

// Get returns one check with items.
func (h *StocktakeHandler) Get(c *gin.Context) {
	checkID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	chk, err := h.svc.Get(c.Request.Context(), checkID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.enrich(c, chk))
}

// History returns the audit trail of one check, newest first.
func (h *StocktakeHandler) History(c *gin.Context) {
	checkID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)
	entries, err := h.svc.History(c.Request.Context(), checkID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entries)
}

// ListAll returns checks, optionally filtered by status, paged.
func (h *StocktakeHandler) ListAll(c *gin.Context) {
	filter := stocktake.DefaultListFilter()
	filter.Limit = h.ParseIntQuery(c, "limit", filter.Limit)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	if raw := c.Query("status"); raw != "" {
		status := stocktake.Status(raw)
		if !status.Valid() {
			h.Error(c, apperror.NewValidation("unknown status").WithDetail("status", raw))
			return
		}
		filter.Status = &status
	}

	h.list(c, filter)
}

// ListByUser returns the checks created by one user.
func (h *StocktakeHandler) ListByUser(c *gin.Context) {
	filter := stocktake.DefaultListFilter()
	filter.Limit = h.ParseIntQuery(c, "limit", filter.Limit)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	userID := c.Param("userId")
	filter.CreatedBy = &userID

	h.list(c, filter)
}

func (h *StocktakeHandler) list(c *gin.Context, filter stocktake.ListFilter) {
	checks, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	out := make([]dto.CheckResponse, 0, len(checks))
	for _, chk := range checks {
		out = append(out, h.enrich(c, chk))
	}
	h.OK(c, out)
}

// UpdateItem records a count for one product of a draft check.
func (h *StocktakeHandler) UpdateItem(c *gin.Context) {
	checkID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	var req dto.UpdateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	chk, err := h.svc.UpdateItem(c.Request.Context(), checkID, productID,
		req.ActualQuantity, req.Note, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.enrich(c, chk))
}

// SaveDraft bulk-replaces the counted state of a draft check.
func (h *StocktakeHandler) SaveDraft(c *gin.Context) {
	checkID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.SaveDraftRequest
	if !h.BindJSON(c, &req) {
		return
	}

	items := make([]stocktake.DraftItem, 0, len(req.Items))
	for _, it := range req.Items {
		productID, err := id.Parse(it.ProductID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid product_id").WithDetail("product_id", it.ProductID))
			return
		}
		items = append(items, stocktake.DraftItem{
			ProductID:      productID,
			ActualQuantity: it.ActualQuantity,
			Note:           it.Note,
			Reason:         it.Reason,
		})
	}

	chk, err := h.svc.SaveDraft(c.Request.Context(), checkID, items, req.Note)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.enrich(c, chk))
}

// Delete removes a draft check; only the creator may delete it.
func (h *StocktakeHandler) Delete(c *gin.Context) {
	checkID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.DeleteCheckRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), checkID, req.UserID); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"deleted": true})
}

// Submit freezes a draft check for review.
func (h *StocktakeHandler) Submit(c *gin.Context) {
	checkID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	chk, err := h.svc.Submit(c.Request.Context(), checkID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.enrich(c, chk))
}

// Approve writes counted quantities to stock and resolves the check.
func (h *StocktakeHandler) Approve(c *gin.Context) {
	checkID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.ApproveRequest
	if !h.BindJSON(c, &req) {
		return
	}

	chk, adjusted, err := h.svc.Approve(c.Request.Context(), checkID, req.ManagerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ApproveResponse{Check: chk, AdjustedCount: adjusted})
}

// Reject resolves a submitted check without touching stock.
func (h *StocktakeHandler) Reject(c *gin.Context) {
	checkID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.RejectRequest
	if !h.BindJSON(c, &req) {
		return
	}

	chk, err := h.svc.Reject(c.Request.Context(), checkID, req.ManagerID, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.enrich(c, chk))
}

// Stats returns the reporting block, optionally limited to one creator.
func (h *StocktakeHandler) Stats(c *gin.Context) {
	var createdBy *string
	if userID := c.Query("userId"); userID != "" {
		createdBy = &userID
	}

	stats, err := h.svc.Stats(c.Request.Context(), createdBy)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, stats)
}

func (h *StocktakeHandler) enrich(c *gin.Context, chk *stocktake.Check) dto.CheckResponse {
	return dto.CheckResponse{
		Check:         chk,
		CreatedByName: h.svc.DisplayName(c.Request.Context(), chk.CreatedBy),
	}
}
