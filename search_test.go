package worklog

import (
	"testing"

	"github.com/nao1215/worklog/domain/model"
	"github.com/stretchr/testify/assert"
)

func searchBaseline() []model.AggregateRow {
	return []model.AggregateRow{
		group("Anna Schmidt", "4711", "7.5", 1),
		group("Bernd Müller", "4712", "12.25", 2),
		group("STRASSE", "9", "3", 1),
		group("", "4711", "1", 1),
	}
}

func TestSearcher_Refine(t *testing.T) {
	t.Parallel()

	searcher := NewSearcher(NewMeasureFormatter(model.Settings{DecimalSeparator: ",", Decimals: 2}))

	tests := []struct {
		name string
		term string
		want []string
	}{
		{name: "case insensitive", term: "anna", want: []string{"Anna Schmidt"}},
		{name: "matches umlauts", term: "MÜLLER", want: []string{"Bernd Müller"}},
		{name: "case folding of sharp s", term: "straße", want: []string{"STRASSE"}},
		{name: "matches cost center", term: "4711", want: []string{"Anna Schmidt", model.Placeholder}},
		{name: "matches formatted hours", term: "12,25", want: []string{"Bernd Müller"}},
		{name: "matches placeholder", term: "(blank)", want: []string{model.Placeholder}},
		{name: "no match", term: "zzz", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := searcher.Refine(searchBaseline(), tt.term)
			assert.Equal(t, tt.want, employees(got))
		})
	}
}

func TestSearcher_BlankTermRestoresBaseline(t *testing.T) {
	t.Parallel()

	searcher := NewSearcher(NewMeasureFormatter(model.DefaultSettings()))
	baseline := searchBaseline()

	for _, term := range []string{"", "   ", "\t"} {
		got := searcher.Refine(baseline, term)
		assert.Equal(t, baseline, got)
	}
}

func TestSearcher_RefineIsNotCumulative(t *testing.T) {
	t.Parallel()

	searcher := NewSearcher(NewMeasureFormatter(model.DefaultSettings()))
	baseline := searchBaseline()

	narrowed := searcher.Refine(baseline, "anna")
	assert.Len(t, narrowed, 1)

	widened := searcher.Refine(baseline, "47")
	assert.Len(t, widened, 3, "each term is applied to the full baseline")
	assert.Len(t, baseline, 4, "baseline is never modified")
}
