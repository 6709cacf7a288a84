package worklog

import (
	"strings"

	"github.com/nao1215/worklog/domain/model"
	"golang.org/x/text/cases"
)

// Searcher narrows an aggregate baseline by free text.
type Searcher struct {
	fold   cases.Caser
	format MeasureFormatter
}

// NewSearcher returns a searcher that matches hours as rendered by format.
func NewSearcher(format MeasureFormatter) *Searcher {
	return &Searcher{fold: cases.Fold(), format: format}
}

// Refine returns the baseline rows whose dimension values and formatted
// hours, joined by spaces and case folded, contain term. A blank term
// returns baseline itself. Refine always starts from the slice it is
// given, so passing the baseline again undoes any earlier refinement.
func (s *Searcher) Refine(baseline []model.AggregateRow, term string) []model.AggregateRow {
	term = strings.TrimSpace(term)
	if term == "" {
		return baseline
	}
	needle := s.fold.String(term)
	out := make([]model.AggregateRow, 0)
	for _, row := range baseline {
		if strings.Contains(s.haystack(row), needle) {
			out = append(out, row)
		}
	}
	return out
}

func (s *Searcher) haystack(row model.AggregateRow) string {
	var b strings.Builder
	for _, d := range model.Dimensions() {
		b.WriteString(row.Value(d))
		b.WriteByte(' ')
	}
	b.WriteString(s.format.Format(row.Hours))
	return s.fold.String(b.String())
}
