package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"storeops/internal/core/apperror"
	"storeops/internal/core/id"
	"storeops/internal/domain/catalog"
)

const productsTable = "products"

var _ catalog.ProductStockPort = (*ProductStockRepo)(nil)

// ProductStockRepo backs the product catalog port with the products table.
// Quantity writes are absolute sets: approvals replace the stored quantity
// with the counted one.
type ProductStockRepo struct {
	txm *TxManager
}

// NewProductStockRepo creates a catalog adapter over the transaction manager.
func NewProductStockRepo(txm *TxManager) *ProductStockRepo {
	return &ProductStockRepo{txm: txm}
}

func (r *ProductStockRepo) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	q := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("id", "name", "quantity").
		From(productsTable).
		OrderBy("name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build products select: %w", err)
	}

	var products []catalog.Product
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &products, sql, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (r *ProductStockRepo) SetQuantity(ctx context.Context, productID id.ID, quantity int64) error {
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx,
		"UPDATE "+productsTable+" SET quantity = $1, updated_at = now() WHERE id = $2",
		quantity, productID)
	if err != nil {
		return fmt.Errorf("set quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID.String())
	}
	return nil
}
