package memory

import (
	"context"
	"sync"

	"storeops/internal/core/apperror"
	"storeops/internal/domain/catalog"
)

// UserDirectory is an in-memory catalog.UserDirectory.
type UserDirectory struct {
	mu    sync.RWMutex
	names map[string]string
}

// NewUserDirectory seeds the directory with userID → display name pairs.
func NewUserDirectory(names map[string]string) *UserDirectory {
	copied := make(map[string]string, len(names))
	for k, v := range names {
		copied[k] = v
	}
	return &UserDirectory{names: copied}
}

func (d *UserDirectory) GetName(_ context.Context, userID string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	name, ok := d.names[userID]
	if !ok {
		return "", apperror.NewNotFound("user", userID)
	}
	return name, nil
}

var _ catalog.UserDirectory = (*UserDirectory)(nil)
