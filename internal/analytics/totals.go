package analytics

import (
	"sort"
	"strconv"
	"time"

	"expensetracker/internal/core"
)

// Total sums the amounts of records.
func Total(records []core.ExpenseRecord) core.Amount {
	var sum core.Amount
	for _, r := range records {
		sum = sum.Add(r.Amount)
	}
	return sum
}

// CategoryTotals groups records by category in first-seen order. Only
// categories that occur in records are present.
func CategoryTotals(records []core.ExpenseRecord) []core.CategoryTotal {
	index := make(map[string]int)
	var out []core.CategoryTotal
	for _, r := range records {
		i, ok := index[r.Category]
		if !ok {
			i = len(out)
			index[r.Category] = i
			out = append(out, core.CategoryTotal{Category: r.Category})
		}
		out[i].Total = out[i].Total.Add(r.Amount)
	}
	return out
}

// YearOptions lists the distinct years present in records plus the current
// year, newest first.
func YearOptions(records []core.ExpenseRecord, now time.Time) []string {
	seen := map[string]struct{}{strconv.Itoa(now.Year()): {}}
	for _, r := range records {
		if year, _ := core.SplitYearMonth(r.Date); year != "" {
			seen[year] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for y := range seen {
		out = append(out, y)
	}
	sort.Slice(out, func(i, j int) bool {
		a, errA := strconv.Atoi(out[i])
		b, errB := strconv.Atoi(out[j])
		if errA == nil && errB == nil {
			return a > b
		}
		return out[i] > out[j]
	})
	return out
}
