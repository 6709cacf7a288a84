package worklog

import (
	"cmp"
	"slices"

	"github.com/nao1215/worklog/domain/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sorter orders aggregate rows by a grid column.
//
// Values that are numeric on both sides compare as numbers, everything
// else compares as text under the collation rules of the sorter's
// language. The sort is stable. A Sorter is not safe for concurrent use
// because the collator keeps internal buffers.
type Sorter struct {
	collator *collate.Collator
}

// NewSorter returns a sorter that collates text for tag.
func NewSorter(tag language.Tag) *Sorter {
	return &Sorter{collator: collate.New(tag)}
}

// Sort returns a sorted copy of rows. An inactive state returns the rows
// in their input order. Rows that compare equal keep their input order.
func (s *Sorter) Sort(rows []model.AggregateRow, state model.SortState) []model.AggregateRow {
	out := slices.Clone(rows)
	if !state.Active {
		return out
	}
	slices.SortStableFunc(out, func(a, b model.AggregateRow) int {
		c := s.compareColumn(state.Column, a, b)
		if state.Direction == model.Descending {
			return -c
		}
		return c
	})
	return out
}

// CompareValues compares two cell texts: numerically when both parse as
// numbers, otherwise by collation.
func (s *Sorter) CompareValues(a, b string) int {
	if x, ok := model.ParseNumber(a); ok {
		if y, ok := model.ParseNumber(b); ok {
			return x.Cmp(y)
		}
	}
	return s.collator.CompareString(a, b)
}

func (s *Sorter) compareColumn(col model.Column, a, b model.AggregateRow) int {
	switch col {
	case model.ColumnHours:
		return a.Hours.Cmp(b.Hours)
	case model.ColumnEntries:
		return cmp.Compare(a.Entries, b.Entries)
	}
	d, ok := col.Dimension()
	if !ok {
		return 0
	}
	return s.CompareValues(sortText(a.Value(d)), sortText(b.Value(d)))
}

// sortText maps the blank placeholder back to empty text.
func sortText(v string) string {
	if v == model.Placeholder {
		return ""
	}
	return v
}
