package memory

import (
	"context"
	"sync"

	"storeops/internal/core/apperror"
	"storeops/internal/core/id"
	"storeops/internal/domain/catalog"
)

// ProductStock is an in-memory catalog.ProductStockPort. Listing order is
// the seed order, matching the stable name ordering of the SQL adapter.
type ProductStock struct {
	mu       sync.RWMutex
	order    []id.ID
	products map[id.ID]catalog.Product
}

// NewProductStock seeds the port with the given products.
func NewProductStock(seed []catalog.Product) *ProductStock {
	s := &ProductStock{
		order:    make([]id.ID, 0, len(seed)),
		products: make(map[id.ID]catalog.Product, len(seed)),
	}
	for _, p := range seed {
		s.order = append(s.order, p.ID)
		s.products[p.ID] = p
	}
	return s
}

func (s *ProductStock) ListProducts(_ context.Context) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.Product, 0, len(s.order))
	for _, pid := range s.order {
		out = append(out, s.products[pid])
	}
	return out, nil
}

func (s *ProductStock) SetQuantity(_ context.Context, productID id.ID, quantity int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return apperror.NewNotFound("product", productID.String())
	}
	p.Quantity = quantity
	s.products[productID] = p
	return nil
}

// Quantity reports the current stock of one product.
func (s *ProductStock) Quantity(productID id.ID) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[productID]
	return p.Quantity, ok
}

var _ catalog.ProductStockPort = (*ProductStock)(nil)
