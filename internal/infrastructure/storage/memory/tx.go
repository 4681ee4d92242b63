package memory

import (
	"context"

	"storeops/internal/core/tx"
)

// TxManager is a pass-through tx.Manager for memory storage, where each
// repository method is already atomic under its own lock.
type TxManager struct{}

// NewTxManager creates a pass-through transaction manager.
func NewTxManager() *TxManager {
	return &TxManager{}
}

func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var _ tx.Manager = (*TxManager)(nil)
