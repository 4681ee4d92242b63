// Package catalog defines the narrow interfaces through which the stocktake
// engine reaches the canonical product catalog and the user directory.
// Both live outside the engine; the engine never touches their storage
// directly.
package catalog

import (
	"context"

	"storeops/internal/core/id"
)

// Product is the catalog's view of a product: the canonical stock record.
type Product struct {
	ID       id.ID  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Quantity int64  `db:"quantity" json:"quantity"`
}

// ProductStockPort reads and writes canonical product stock.
//
// ListProducts is consumed only when a check is created (snapshot baseline);
// SetQuantity only when a check is approved. SetQuantity writes an absolute
// quantity, never a delta, so a retried write converges instead of
// double-applying.
type ProductStockPort interface {
	ListProducts(ctx context.Context) ([]Product, error)
	SetQuantity(ctx context.Context, productID id.ID, quantity int64) error
}

// UserDirectory resolves user ids to display names.
// Display-only: callers must tolerate failures without blocking core
// operations.
type UserDirectory interface {
	GetName(ctx context.Context, userID string) (string, error)
}
