package worklog

import (
	"github.com/nao1215/worklog/domain/model"
)

// Filter returns the rows that satisfy criteria, in their original order.
// The input slice is never modified; the result is always a new slice.
func Filter(rows []model.RawRow, criteria model.FilterCriteria) []model.RawRow {
	out := make([]model.RawRow, 0, len(rows))
	if !criteria.Active() {
		return append(out, rows...)
	}
	for _, row := range rows {
		if criteria.Match(row) {
			out = append(out, row)
		}
	}
	return out
}
