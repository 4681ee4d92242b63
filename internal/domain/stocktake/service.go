package stocktake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storeops/internal/core/apperror"
	"storeops/internal/core/code"
	"storeops/internal/core/id"
	"storeops/internal/core/tx"
	"storeops/internal/domain/catalog"
	"storeops/pkg/logger"
)

// Service orchestrates the check lifecycle. All mutating operations are
// read-modify-write against a single aggregate under optimistic locking;
// the catalog is touched only at Create (read) and Approve (write).
type Service struct {
	repo    Repository
	stock   catalog.ProductStockPort
	users   catalog.UserDirectory // optional, display-only
	codes   *code.Generator
	txm     tx.Manager
	auditor Auditor // optional
}

// NewService creates a stocktake service. users and auditor may be nil.
func NewService(
	repo Repository,
	stock catalog.ProductStockPort,
	users catalog.UserDirectory,
	codes *code.Generator,
	txm tx.Manager,
	auditor Auditor,
) *Service {
	return &Service{
		repo:    repo,
		stock:   stock,
		users:   users,
		codes:   codes,
		txm:     txm,
		auditor: auditor,
	}
}

// Create snapshots the full product catalog into a new draft check.
func (s *Service) Create(ctx context.Context, createdBy, title string) (*Check, error) {
	if strings.TrimSpace(createdBy) == "" {
		return nil, apperror.NewValidation("userId is required").WithDetail("field", "userId")
	}

	products, err := s.stock.ListProducts(ctx)
	if err != nil {
		return nil, apperror.NewDependency("product catalog is unavailable", err)
	}

	checkCode, err := s.codes.Next(time.Now())
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("generate check code: %w", err))
	}

	chk := NewCheck(createdBy, title, checkCode, products)

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, chk); err != nil {
			return fmt.Errorf("create check: %w", err)
		}
		if err := s.repo.SaveItems(ctx, chk.ID, chk.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, AuditCreate, chk)
	logger.Info(ctx, "check created",
		"check_id", chk.ID, "code", chk.Code, "products", chk.TotalProducts)
	return chk, nil
}

// Get loads one check with items.
func (s *Service) Get(ctx context.Context, checkID id.ID) (*Check, error) {
	return s.repo.GetByID(ctx, checkID)
}

// List returns checks matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Check, error) {
	return s.repo.List(ctx, filter)
}

// UpdateItem records a count for one product of a draft check.
func (s *Service) UpdateItem(ctx context.Context, checkID, productID id.ID, actual *int64, note, reason *string) (*Check, error) {
	chk, err := s.repo.GetByID(ctx, checkID)
	if err != nil {
		return nil, err
	}

	if err := chk.EnsureStatus(OpUpdateItem); err != nil {
		return nil, err
	}

	if err := chk.ApplyItemCount(productID, actual, note, reason); err != nil {
		return nil, err
	}

	if err := s.persist(ctx, chk); err != nil {
		return nil, err
	}
	return chk, nil
}

// SaveDraft bulk-replaces the item list of a draft check and optionally
// updates the check note.
func (s *Service) SaveDraft(ctx context.Context, checkID id.ID, items []DraftItem, note *string) (*Check, error) {
	chk, err := s.repo.GetByID(ctx, checkID)
	if err != nil {
		return nil, err
	}

	if err := chk.EnsureStatus(OpSaveDraft); err != nil {
		return nil, err
	}

	if err := chk.MergeDraft(items); err != nil {
		return nil, err
	}
	if note != nil {
		chk.Note = *note
	}

	if err := s.persist(ctx, chk); err != nil {
		return nil, err
	}
	return chk, nil
}

// Submit freezes a draft check for review. Every counted item with a
// nonzero difference must carry a reason.
func (s *Service) Submit(ctx context.Context, checkID id.ID) (*Check, error) {
	chk, err := s.repo.GetByID(ctx, checkID)
	if err != nil {
		return nil, err
	}

	if err := chk.EnsureStatus(OpSubmit); err != nil {
		return nil, err
	}

	if missing := chk.MissingReasons(); missing > 0 {
		return nil, apperror.NewValidation(
			fmt.Sprintf("%d item(s) with discrepancies are missing a reason", missing)).
			WithDetail("missing_reasons", missing)
	}

	chk.MarkSubmitted(time.Now().UTC())
	if err := s.repo.Update(ctx, chk); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, AuditSubmit, chk)
	logger.Info(ctx, "check submitted", "check_id", chk.ID, "code", chk.Code)
	return chk, nil
}

// Approve commits counted quantities into canonical stock and resolves the
// check. Returns the number of products adjusted.
//
// Catalog writes are absolute sets issued before the status flip, so a
// retried call after a partial failure converges rather than double-applies;
// once the flip lands, a duplicate call fails the status guard because the
// check is no longer submitted.
func (s *Service) Approve(ctx context.Context, checkID id.ID, managerID string) (*Check, int, error) {
	if strings.TrimSpace(managerID) == "" {
		return nil, 0, apperror.NewValidation("managerId is required").WithDetail("field", "managerId")
	}

	chk, err := s.repo.GetByID(ctx, checkID)
	if err != nil {
		return nil, 0, err
	}

	if err := chk.EnsureStatus(OpApprove); err != nil {
		return nil, 0, err
	}

	adjusted := 0
	for _, it := range chk.DiscrepantItems() {
		if err := s.stock.SetQuantity(ctx, it.ProductID, *it.ActualQuantity); err != nil {
			return nil, adjusted, apperror.
				NewDependency("stock adjustment failed part way; check remains submitted", err).
				WithDetail("partial", true).
				WithDetail("adjusted", adjusted).
				WithDetail("product_id", it.ProductID.String())
		}
		adjusted++
	}

	chk.MarkApproved(managerID, time.Now().UTC())
	if err := s.repo.Update(ctx, chk); err != nil {
		// Stock writes already landed; they are absolute, so a retry from
		// Submitted reissues identical values.
		logger.Warn(ctx, "approve status flip failed after stock writes",
			"check_id", chk.ID, "adjusted", adjusted, "error", err)
		return nil, adjusted, err
	}

	s.recordAudit(ctx, AuditApprove, chk)
	logger.Info(ctx, "check approved",
		"check_id", chk.ID, "code", chk.Code, "manager_id", managerID, "adjusted", adjusted)
	return chk, adjusted, nil
}

// Reject resolves a submitted check without touching the catalog.
func (s *Service) Reject(ctx context.Context, checkID id.ID, managerID, reason string) (*Check, error) {
	if strings.TrimSpace(managerID) == "" {
		return nil, apperror.NewValidation("managerId is required").WithDetail("field", "managerId")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperror.NewValidation("reject reason is required").WithDetail("field", "reason")
	}

	chk, err := s.repo.GetByID(ctx, checkID)
	if err != nil {
		return nil, err
	}

	if err := chk.EnsureStatus(OpReject); err != nil {
		return nil, err
	}

	chk.MarkRejected(managerID, reason, time.Now().UTC())
	if err := s.repo.Update(ctx, chk); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, AuditReject, chk)
	logger.Info(ctx, "check rejected",
		"check_id", chk.ID, "code", chk.Code, "manager_id", managerID)
	return chk, nil
}

// Delete removes a draft check. Only the creator may delete.
func (s *Service) Delete(ctx context.Context, checkID id.ID, requesterID string) error {
	chk, err := s.repo.GetByID(ctx, checkID)
	if err != nil {
		return err
	}

	if requesterID != chk.CreatedBy {
		return apperror.NewPermission("only the creator can delete a check").
			WithDetail("check_id", chk.ID.String())
	}
	if err := chk.EnsureStatus(OpDelete); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, checkID); err != nil {
		return err
	}

	s.recordAudit(ctx, AuditDelete, chk)
	logger.Info(ctx, "check deleted", "check_id", chk.ID, "code", chk.Code)
	return nil
}

// History returns the audit trail of one check, newest first. Empty when
// the configured auditor keeps no readable trail.
func (s *Service) History(ctx context.Context, checkID id.ID, limit int) ([]HistoryEntry, error) {
	if _, err := s.repo.GetByID(ctx, checkID); err != nil {
		return nil, err
	}

	provider, ok := s.auditor.(HistoryProvider)
	if !ok {
		return []HistoryEntry{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	return provider.History(ctx, checkID, limit)
}

// Stats builds reporting over all checks, optionally limited to one creator.
func (s *Service) Stats(ctx context.Context, createdBy *string) (*Stats, error) {
	checks, err := s.repo.List(ctx, ListFilter{CreatedBy: createdBy})
	if err != nil {
		return nil, err
	}
	return BuildStats(checks, time.Now().UTC()), nil
}

// DisplayName resolves a user id to a display name. Display-only: failures
// degrade to an empty string and never block the caller.
func (s *Service) DisplayName(ctx context.Context, userID string) string {
	if s.users == nil || userID == "" {
		return ""
	}
	name, err := s.users.GetName(ctx, userID)
	if err != nil {
		logger.Debug(ctx, "display name lookup failed", "user_id", userID, "error", err)
		return ""
	}
	return name
}

// persist writes the check row and its items in one transaction.
func (s *Service) persist(ctx context.Context, chk *Check) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, chk); err != nil {
			return err
		}
		return s.repo.SaveItems(ctx, chk.ID, chk.Items)
	})
}

func (s *Service) recordAudit(ctx context.Context, action AuditAction, chk *Check) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Record(ctx, action, chk); err != nil {
		logger.Warn(ctx, "audit record failed",
			"action", action, "check_id", chk.ID, "error", err)
	}
}
