package analytics

import "expensetracker/internal/core"

// Projection bundles every derived view of one (records, filters) pair.
type Projection struct {
	Filters    core.FilterCriteria  `json:"filters"`
	Filtered   []core.ExpenseRecord `json:"filtered"`
	Count      int                  `json:"count"`
	OfTotal    int                  `json:"ofTotal"`
	Total      core.Amount          `json:"total"`
	Categories []core.CategoryTotal `json:"categories"`
	Buckets    Buckets              `json:"buckets"`
	Trend      []TrendPoint         `json:"trend"`
}

// Project recomputes all views from scratch.
func Project(records []core.ExpenseRecord, f core.FilterCriteria) Projection {
	filtered := Filter(records, f)
	return Projection{
		Filters:    f,
		Filtered:   filtered,
		Count:      len(filtered),
		OfTotal:    len(records),
		Total:      Total(filtered),
		Categories: CategoryTotals(filtered),
		Buckets:    BucketByMonth(filtered),
		Trend:      DailyTrend(records, f),
	}
}
