package stocktake

import (
	"sort"
	"time"

	"storeops/internal/core/id"
)

// Reporting over a set of checks. Pure functions; the service feeds them
// repository listings and dashboards consume the result as-is.

const (
	trendMonths     = 6
	topDiffProducts = 5
)

// Stats is the dashboard view over a set of checks.
type Stats struct {
	Total           int            `json:"total"`
	ByStatus        map[Status]int `json:"by_status"`
	AvgAccuracy     float64        `json:"avg_accuracy"`
	TopDiffProducts []ProductDiff  `json:"top_diff_products"`
	MonthlyTrend    []MonthBucket  `json:"monthly_trend"`
}

// ProductDiff tallies how often a product came up discrepant across
// approved checks, and by how much in total.
type ProductDiff struct {
	ProductID          id.ID  `json:"product_id"`
	ProductName        string `json:"product_name"`
	Occurrences        int    `json:"occurrences"`
	TotalAbsDifference int64  `json:"total_abs_difference"`
}

// MonthBucket is one calendar month of the trend, oldest first.
type MonthBucket struct {
	Month          string  `json:"month"` // YYYY-MM
	ApprovedChecks int     `json:"approved_checks"`
	AvgAccuracy    float64 `json:"avg_accuracy"`
}

// accuracy returns matched/checked*100 for a check, and whether the check
// counts toward accuracy means at all (checks with nothing counted do not).
func accuracy(chk *Check) (float64, bool) {
	if chk.CheckedProducts == 0 {
		return 0, false
	}
	return float64(chk.Matched) / float64(chk.CheckedProducts) * 100, true
}

// BuildStats computes the full reporting block. now anchors the monthly
// trend window: the most recent six calendar months including the current
// one, emitted oldest to newest even when empty.
func BuildStats(checks []*Check, now time.Time) *Stats {
	stats := &Stats{
		Total: len(checks),
		ByStatus: map[Status]int{
			StatusDraft:     0,
			StatusSubmitted: 0,
			StatusApproved:  0,
			StatusRejected:  0,
		},
	}

	var accSum float64
	accN := 0
	diffs := make(map[id.ID]*ProductDiff)

	for _, chk := range checks {
		stats.ByStatus[chk.Status]++
		if chk.Status != StatusApproved {
			continue
		}

		if acc, ok := accuracy(chk); ok {
			accSum += acc
			accN++
		}

		for _, it := range chk.Items {
			if !it.Checked || it.Difference == 0 {
				continue
			}
			d, ok := diffs[it.ProductID]
			if !ok {
				d = &ProductDiff{ProductID: it.ProductID, ProductName: it.ProductName}
				diffs[it.ProductID] = d
			}
			d.Occurrences++
			abs := it.Difference
			if abs < 0 {
				abs = -abs
			}
			d.TotalAbsDifference += abs
		}
	}

	if accN > 0 {
		stats.AvgAccuracy = accSum / float64(accN)
	}

	stats.TopDiffProducts = rankDiffs(diffs)
	stats.MonthlyTrend = monthlyTrend(checks, now)
	return stats
}

// rankDiffs orders products by occurrence count, then by summed absolute
// difference, then by name for a stable output, and keeps the top five.
func rankDiffs(diffs map[id.ID]*ProductDiff) []ProductDiff {
	ranked := make([]ProductDiff, 0, len(diffs))
	for _, d := range diffs {
		ranked = append(ranked, *d)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Occurrences != ranked[j].Occurrences {
			return ranked[i].Occurrences > ranked[j].Occurrences
		}
		if ranked[i].TotalAbsDifference != ranked[j].TotalAbsDifference {
			return ranked[i].TotalAbsDifference > ranked[j].TotalAbsDifference
		}
		return ranked[i].ProductName < ranked[j].ProductName
	})

	if len(ranked) > topDiffProducts {
		ranked = ranked[:topDiffProducts]
	}
	return ranked
}

func monthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// monthlyTrend buckets approved checks by creation month over the trailing
// window. Empty months are emitted with zero counts so charts keep their
// x-axis.
func monthlyTrend(checks []*Check, now time.Time) []MonthBucket {
	type agg struct {
		count  int
		accSum float64
		accN   int
	}

	// First day of the oldest month in the window.
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -(trendMonths - 1), 0)

	byMonth := make(map[string]*agg, trendMonths)
	buckets := make([]MonthBucket, 0, trendMonths)
	for i := 0; i < trendMonths; i++ {
		key := monthKey(start.AddDate(0, i, 0))
		byMonth[key] = &agg{}
		buckets = append(buckets, MonthBucket{Month: key})
	}

	for _, chk := range checks {
		if chk.Status != StatusApproved {
			continue
		}
		a, ok := byMonth[monthKey(chk.CreatedAt)]
		if !ok {
			continue // outside the window
		}
		a.count++
		if acc, ok := accuracy(chk); ok {
			a.accSum += acc
			a.accN++
		}
	}

	for i := range buckets {
		a := byMonth[buckets[i].Month]
		buckets[i].ApprovedChecks = a.count
		if a.accN > 0 {
			buckets[i].AvgAccuracy = a.accSum / float64(a.accN)
		}
	}
	return buckets
}
