package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"storeops/internal/core/apperror"
	"storeops/internal/domain/catalog"
)

const usersTable = "users"

var _ catalog.UserDirectory = (*UserDirectoryRepo)(nil)

// UserDirectoryRepo resolves user ids to display names from the users table.
type UserDirectoryRepo struct {
	txm *TxManager
}

// NewUserDirectoryRepo creates a user directory over the transaction manager.
func NewUserDirectoryRepo(txm *TxManager) *UserDirectoryRepo {
	return &UserDirectoryRepo{txm: txm}
}

func (r *UserDirectoryRepo) GetName(ctx context.Context, userID string) (string, error) {
	var name string
	err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &name,
		"SELECT display_name FROM "+usersTable+" WHERE id = $1", userID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return "", apperror.NewNotFound("user", userID)
		}
		return "", fmt.Errorf("get user name: %w", err)
	}
	return name, nil
}
