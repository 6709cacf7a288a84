package worklog

import (
	"testing"

	"github.com/nao1215/worklog/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_DateRange(t *testing.T) {
	t.Parallel()

	rows := rawRows(t,
		entry{employee: "A", date: "15/01/2024", hours: "1"},
		entry{employee: "B", date: "01/02/2024", hours: "1"},
	)
	criteria, err := model.ParseFilterCriteria("01/01/2024", "31/01/2024", nil)
	require.NoError(t, err)

	got := Filter(rows, criteria)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].EmployeeName())
}

func TestFilter(t *testing.T) {
	t.Parallel()

	rows := rawRows(t,
		entry{employee: "A", project: "P1", date: "02.01.2024"},
		entry{employee: "B", project: "P2", date: "03.01.2024"},
		entry{employee: "A", project: "P2", date: "not a date"},
		entry{employee: "C", project: "", date: "04.01.2024"},
		entry{employee: "A", project: "P1", date: "05.02.2024"},
	)

	from := func(s string) model.FilterCriteria {
		c, err := model.ParseFilterCriteria(s, "", nil)
		require.NoError(t, err)
		return c
	}

	tests := []struct {
		name      string
		criteria  model.FilterCriteria
		wantIndex []int
	}{
		{
			name:      "no criteria keeps everything",
			criteria:  model.FilterCriteria{},
			wantIndex: []int{0, 1, 2, 3, 4},
		},
		{
			name:      "open ended date range drops unparseable dates",
			criteria:  from("03.01.2024"),
			wantIndex: []int{1, 3, 4},
		},
		{
			name:      "single dimension",
			criteria:  model.FilterCriteria{}.WithValues(model.DimensionEmployee, "A"),
			wantIndex: []int{0, 2, 4},
		},
		{
			name: "dimensions are and-combined",
			criteria: model.FilterCriteria{}.
				WithValues(model.DimensionEmployee, "A", "B").
				WithValues(model.DimensionProject, "P2"),
			wantIndex: []int{1, 2},
		},
		{
			name:      "placeholder matches blank values",
			criteria:  model.FilterCriteria{}.WithValues(model.DimensionProject, model.Placeholder),
			wantIndex: []int{3},
		},
		{
			name:      "date and dimension",
			criteria:  from("01.02.2024").WithValues(model.DimensionEmployee, "A"),
			wantIndex: []int{4},
		},
		{
			name:      "empty value set is unrestricted",
			criteria:  model.FilterCriteria{Categories: map[model.Dimension]model.ValueSet{model.DimensionEmployee: {}}},
			wantIndex: []int{0, 1, 2, 3, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Filter(rows, tt.criteria)
			want := make([]model.RawRow, 0, len(tt.wantIndex))
			for _, i := range tt.wantIndex {
				want = append(want, rows[i])
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	rows := rawRows(t,
		entry{employee: "A"},
		entry{employee: "B"},
	)
	before := append([]model.RawRow(nil), rows...)

	got := Filter(rows, model.FilterCriteria{})
	require.Len(t, got, 2)
	got[0] = got[1]
	assert.Equal(t, before, rows, "the result must not alias the input")

	_ = Filter(rows, model.FilterCriteria{}.WithValues(model.DimensionEmployee, "B"))
	assert.Equal(t, before, rows)
}
