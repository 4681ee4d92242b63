package stocktake

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storeops/internal/core/id"
	"storeops/internal/domain/catalog"
)

func qty(v int64) *int64 { return &v }

func TestApplyCount(t *testing.T) {
	base := Item{ProductID: id.New(), ProductName: "Cola 330ml", SystemQuantity: 10}

	tests := []struct {
		name        string
		actual      *int64
		wantChecked bool
		wantDiff    int64
	}{
		{"match", qty(10), true, 0},
		{"surplus", qty(12), true, 2},
		{"shortage", qty(7), true, -3},
		{"zero count", qty(0), true, -10},
		{"uncounted", nil, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyCount(base, tt.actual)

			assert.Equal(t, tt.wantChecked, got.Checked)
			assert.Equal(t, tt.wantDiff, got.Difference)
			if tt.actual == nil {
				assert.Nil(t, got.ActualQuantity)
			} else {
				require.NotNil(t, got.ActualQuantity)
				assert.Equal(t, *tt.actual, *got.ActualQuantity)
			}
			// baseline never moves
			assert.Equal(t, base.SystemQuantity, got.SystemQuantity)
		})
	}
}

func TestApplyCount_ResetClearsDifference(t *testing.T) {
	it := Item{SystemQuantity: 5}
	it = ApplyCount(it, qty(9))
	require.Equal(t, int64(4), it.Difference)

	it = ApplyCount(it, nil)
	assert.False(t, it.Checked)
	assert.Nil(t, it.ActualQuantity)
	assert.Zero(t, it.Difference)
}

func TestAggregateItems(t *testing.T) {
	items := []Item{
		ApplyCount(Item{SystemQuantity: 10}, qty(10)), // matched
		ApplyCount(Item{SystemQuantity: 5}, qty(8)),   // over
		ApplyCount(Item{SystemQuantity: 5}, qty(2)),   // under
		ApplyCount(Item{SystemQuantity: 0}, qty(1)),   // over
		{SystemQuantity: 3},                           // unchecked
	}

	got := AggregateItems(items)

	assert.Equal(t, Totals{CheckedProducts: 4, Matched: 1, Over: 2, Under: 1}, got)
}

func TestAggregateItems_Empty(t *testing.T) {
	assert.Equal(t, Totals{}, AggregateItems(nil))
}

// Counters must equal the recomputation of items after any sequence of
// mutations, never drifting.
func TestReconcile_NoDriftUnderRandomMutations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	products := make([]catalog.Product, 20)
	for i := range products {
		products[i] = catalog.Product{
			ID:       id.New(),
			Name:     "P",
			Quantity: rng.Int63n(100),
		}
	}
	chk := NewCheck("u-1", "", "IC-20260829-TEST42", products)

	for step := 0; step < 500; step++ {
		pid := products[rng.Intn(len(products))].ID

		var actual *int64
		if rng.Intn(10) != 0 { // occasionally reset to uncounted
			actual = qty(rng.Int63n(120))
		}
		require.NoError(t, chk.ApplyItemCount(pid, actual, nil, nil))

		want := AggregateItems(chk.Items)
		require.Equal(t, want.CheckedProducts, chk.CheckedProducts, "step %d", step)
		require.Equal(t, want.Matched, chk.Matched, "step %d", step)
		require.Equal(t, want.Over, chk.Over, "step %d", step)
		require.Equal(t, want.Under, chk.Under, "step %d", step)
		require.Equal(t, len(products), chk.TotalProducts, "step %d", step)
	}
}
