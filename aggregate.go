package worklog

import (
	"github.com/nao1215/worklog/domain/model"
	"github.com/shopspring/decimal"
)

// Aggregate groups rows by their aggregation key and sums their hours.
//
// Blank dimension values are grouped under model.Placeholder and hours
// that do not parse count as zero, so aggregation never fails. Groups are
// returned in order of first appearance; callers that need an order sort
// the result.
func Aggregate(rows []model.RawRow) []model.AggregateRow {
	index := make(map[model.AggregationKey]int)
	groups := make([]model.AggregateRow, 0)
	for _, row := range rows {
		key := row.Key()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, model.AggregateRow{Key: key, Hours: decimal.Zero})
		}
		groups[i].Hours = groups[i].Hours.Add(row.Hours())
		groups[i].Entries++
	}
	return groups
}

// SumHours returns the total hours of rows.
func SumHours(rows []model.RawRow) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Hours())
	}
	return total
}

// TotalHours returns the total hours of aggregate rows.
func TotalHours(groups []model.AggregateRow) decimal.Decimal {
	total := decimal.Zero
	for _, g := range groups {
		total = total.Add(g.Hours)
	}
	return total
}

// TotalEntries returns the number of raw rows behind aggregate rows.
func TotalEntries(groups []model.AggregateRow) int {
	total := 0
	for _, g := range groups {
		total += g.Entries
	}
	return total
}
