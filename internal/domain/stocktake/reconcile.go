package stocktake

// Reconciliation math. Pure, no I/O: the only way counters and differences
// come into existence. Every write path recomputes through here so the
// denormalized fields on Check can never drift from Items.

// Totals are the aggregate counters over a check's items.
type Totals struct {
	CheckedProducts int
	Matched         int
	Over            int
	Under           int
}

// ApplyCount returns a copy of it with the count applied: actual recorded,
// checked derived from its presence, difference recomputed against the
// frozen baseline. A nil actual resets the item to uncounted.
func ApplyCount(it Item, actual *int64) Item {
	if actual == nil {
		it.ActualQuantity = nil
		it.Checked = false
		it.Difference = 0
		return it
	}

	v := *actual
	it.ActualQuantity = &v
	it.Checked = true
	it.Difference = v - it.SystemQuantity
	return it
}

// AggregateItems recomputes totals from scratch. The result always
// overwrites the check's counters wholesale; there are no partial updates.
func AggregateItems(items []Item) Totals {
	var t Totals
	for i := range items {
		it := &items[i]
		if !it.Checked {
			continue
		}
		t.CheckedProducts++
		switch {
		case it.Difference == 0:
			t.Matched++
		case it.Difference > 0:
			t.Over++
		default:
			t.Under++
		}
	}
	return t
}

// Reconcile overwrites the check's denormalized counters with the exact
// recomputation of its items.
func (c *Check) Reconcile() {
	t := AggregateItems(c.Items)
	c.CheckedProducts = t.CheckedProducts
	c.Matched = t.Matched
	c.Over = t.Over
	c.Under = t.Under
}
