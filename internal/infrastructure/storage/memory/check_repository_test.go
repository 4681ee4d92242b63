package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storeops/internal/core/apperror"
	"storeops/internal/core/id"
	"storeops/internal/domain/catalog"
	"storeops/internal/domain/stocktake"
)

func seedCheck(t *testing.T, r *CheckRepository, createdBy string) *stocktake.Check {
	t.Helper()
	chk := stocktake.NewCheck(createdBy, "test", "IC-20260829-ZZZZZZ", []catalog.Product{
		{ID: id.New(), Name: "Cola", Quantity: 3},
	})
	require.NoError(t, r.Create(context.Background(), chk))
	require.NoError(t, r.SaveItems(context.Background(), chk.ID, chk.Items))
	return chk
}

func TestUpdate_StaleVersionConflicts(t *testing.T) {
	r := NewCheckRepository()
	ctx := context.Background()
	chk := seedCheck(t, r, "u-1")

	first, err := r.GetByID(ctx, chk.ID)
	require.NoError(t, err)
	second, err := r.GetByID(ctx, chk.ID)
	require.NoError(t, err)

	first.Title = "first writer"
	require.NoError(t, r.Update(ctx, first))
	assert.Equal(t, 2, first.Version)

	second.Title = "second writer"
	err = r.Update(ctx, second)
	require.Error(t, err)
	assert.True(t, apperror.IsConcurrentModification(err))

	// the loser left nothing behind
	loaded, err := r.GetByID(ctx, chk.ID)
	require.NoError(t, err)
	assert.Equal(t, "first writer", loaded.Title)
	assert.Equal(t, 2, loaded.Version)
}

func TestGetByID_ReturnsIsolatedCopies(t *testing.T) {
	r := NewCheckRepository()
	ctx := context.Background()
	chk := seedCheck(t, r, "u-1")

	a, err := r.GetByID(ctx, chk.ID)
	require.NoError(t, err)
	a.Title = "mutated locally"
	a.Items[0].Checked = true

	b, err := r.GetByID(ctx, chk.ID)
	require.NoError(t, err)
	assert.Equal(t, "test", b.Title)
	assert.False(t, b.Items[0].Checked)
}

func TestList_FilterAndPaging(t *testing.T) {
	r := NewCheckRepository()
	ctx := context.Background()

	seedCheck(t, r, "u-1")
	seedCheck(t, r, "u-1")
	seedCheck(t, r, "u-2")

	creator := "u-1"
	got, err := r.List(ctx, stocktake.ListFilter{CreatedBy: &creator})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = r.List(ctx, stocktake.ListFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = r.List(ctx, stocktake.ListFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestDelete_Missing(t *testing.T) {
	r := NewCheckRepository()
	err := r.Delete(context.Background(), id.New())
	assert.True(t, apperror.IsNotFound(err))
}
