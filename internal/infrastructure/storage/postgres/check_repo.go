package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"storeops/internal/core/apperror"
	"storeops/internal/core/id"
	"storeops/internal/domain/stocktake"
)

const (
	checksTable = "stocktake_checks"
	itemsTable  = "stocktake_items"
)

var checkColumns = []string{
	"id", "code", "title", "note", "status",
	"created_by", "created_at", "updated_at",
	"submitted_at", "approved_by", "approved_at",
	"rejected_by", "rejected_at", "reject_reason",
	"version",
	"total_products", "checked_products", "matched_count", "over_count", "under_count",
}

var itemColumns = []string{
	"product_id", "product_name", "system_quantity", "actual_quantity",
	"difference", "note", "reason", "checked",
}

var _ stocktake.Repository = (*CheckRepo)(nil)

// CheckRepo persists stocktake checks. The check row carries the version
// for optimistic locking; items live in a child table owned wholesale by
// SaveItems.
type CheckRepo struct {
	txm *TxManager
}

// NewCheckRepo creates a check repository over the transaction manager.
func NewCheckRepo(txm *TxManager) *CheckRepo {
	return &CheckRepo{txm: txm}
}

func (r *CheckRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *CheckRepo) Create(ctx context.Context, chk *stocktake.Check) error {
	q := r.builder().
		Insert(checksTable).
		Columns(checkColumns...).
		Values(
			chk.ID, chk.Code, chk.Title, chk.Note, chk.Status,
			chk.CreatedBy, chk.CreatedAt, chk.UpdatedAt,
			chk.SubmittedAt, chk.ApprovedBy, chk.ApprovedAt,
			chk.RejectedBy, chk.RejectedAt, chk.RejectReason,
			chk.Version,
			chk.TotalProducts, chk.CheckedProducts, chk.Matched, chk.Over, chk.Under,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewConflict(fmt.Sprintf("check %s already exists", chk.ID)).WithCause(err)
		}
		return fmt.Errorf("insert check: %w", err)
	}
	return nil
}

func (r *CheckRepo) GetByID(ctx context.Context, checkID id.ID) (*stocktake.Check, error) {
	q := r.builder().
		Select(checkColumns...).
		From(checksTable).
		Where(squirrel.Eq{"id": checkID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var chk stocktake.Check
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &chk, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("check", checkID.String())
		}
		return nil, fmt.Errorf("get check: %w", err)
	}

	items, err := r.loadItems(ctx, checkID)
	if err != nil {
		return nil, err
	}
	chk.Items = items
	return &chk, nil
}

// Update writes the check row if and only if the stored version matches
// chk.Version, then bumps chk.Version to the stored value.
func (r *CheckRepo) Update(ctx context.Context, chk *stocktake.Check) error {
	next := chk.Version + 1
	q := r.builder().
		Update(checksTable).
		SetMap(map[string]any{
			"title":            chk.Title,
			"note":             chk.Note,
			"status":           chk.Status,
			"updated_at":       chk.UpdatedAt,
			"submitted_at":     chk.SubmittedAt,
			"approved_by":      chk.ApprovedBy,
			"approved_at":      chk.ApprovedAt,
			"rejected_by":      chk.RejectedBy,
			"rejected_at":      chk.RejectedAt,
			"reject_reason":    chk.RejectReason,
			"version":          next,
			"total_products":   chk.TotalProducts,
			"checked_products": chk.CheckedProducts,
			"matched_count":    chk.Matched,
			"over_count":       chk.Over,
			"under_count":      chk.Under,
		}).
		Where(squirrel.Eq{"id": chk.ID, "version": chk.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update check: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the row is gone or someone else won the version race.
		if _, err := r.GetByID(ctx, chk.ID); err != nil {
			return err
		}
		return apperror.NewConcurrentModification("check", chk.ID.String())
	}

	chk.Version = next
	return nil
}

// SaveItems replaces the full item list of a check. Position keeps the
// catalog snapshot order stable across loads.
func (r *CheckRepo) SaveItems(ctx context.Context, checkID id.ID, items []stocktake.Item) error {
	querier := r.txm.GetQuerier(ctx)

	if _, err := querier.Exec(ctx, "DELETE FROM "+itemsTable+" WHERE check_id = $1", checkID); err != nil {
		return fmt.Errorf("delete existing items: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	q := r.builder().
		Insert(itemsTable).
		Columns(append([]string{"check_id", "position"}, itemColumns...)...)

	for i, it := range items {
		q = q.Values(
			checkID, i,
			it.ProductID, it.ProductName, it.SystemQuantity, it.ActualQuantity,
			it.Difference, it.Note, it.Reason, it.Checked,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}
	return nil
}

func (r *CheckRepo) Delete(ctx context.Context, checkID id.ID) error {
	querier := r.txm.GetQuerier(ctx)

	// Items first; no FK cascade so a half-deleted check never hides rows.
	if _, err := querier.Exec(ctx, "DELETE FROM "+itemsTable+" WHERE check_id = $1", checkID); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}

	tag, err := querier.Exec(ctx, "DELETE FROM "+checksTable+" WHERE id = $1", checkID)
	if err != nil {
		return fmt.Errorf("delete check: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("check", checkID.String())
	}
	return nil
}

func (r *CheckRepo) List(ctx context.Context, filter stocktake.ListFilter) ([]*stocktake.Check, error) {
	q := r.builder().
		Select(checkColumns...).
		From(checksTable).
		OrderBy("created_at DESC")

	if filter.CreatedBy != nil {
		q = q.Where(squirrel.Eq{"created_by": *filter.CreatedBy})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	var checks []*stocktake.Check
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &checks, sql, args...); err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}

	for _, chk := range checks {
		items, err := r.loadItems(ctx, chk.ID)
		if err != nil {
			return nil, err
		}
		chk.Items = items
	}
	return checks, nil
}

func (r *CheckRepo) loadItems(ctx context.Context, checkID id.ID) ([]stocktake.Item, error) {
	q := r.builder().
		Select(itemColumns...).
		From(itemsTable).
		Where(squirrel.Eq{"check_id": checkID}).
		OrderBy("position")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items select: %w", err)
	}

	var items []stocktake.Item
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	return items, nil
}
