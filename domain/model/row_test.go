package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values(n int, set map[Field]string) []string {
	v := make([]string, n)
	for f, s := range set {
		v[f] = s
	}
	return v
}

func TestNewRawRow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		count   int
		wantErr bool
	}{
		{name: "full catalog", count: FieldCount},
		{name: "minimum columns", count: MinColumnCount},
		{name: "extra columns", count: FieldCount + 3},
		{name: "one short", count: MinColumnCount - 1, wantErr: true},
		{name: "empty", count: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			row, err := NewRawRow(make([]string, tt.count))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrTooFewColumns))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.count, row.Len())
		})
	}
}

func TestRawRow_Accessors(t *testing.T) {
	t.Parallel()

	input := values(FieldCount, map[Field]string{
		FieldEmployeeName:     "Jane Roe",
		FieldProjectName:      "Migration",
		FieldActivityTypeName: "Consulting",
		FieldCostCenter:       "4711",
		FieldEmployeeGroup:    "",
		FieldWorkDate:         "15.01.2024",
		FieldDuration:         "7,5",
	})
	row, err := NewRawRow(input)
	require.NoError(t, err)

	input[FieldEmployeeName] = "changed"
	assert.Equal(t, "Jane Roe", row.EmployeeName(), "row must not share the input slice")

	assert.Equal(t, "Migration", row.ProjectName())
	assert.Equal(t, "Consulting", row.ActivityTypeName())
	assert.Equal(t, "4711", row.CostCenter())
	assert.Equal(t, "7,5", row.Duration())
	assert.Equal(t, "7.5", row.Hours().String())

	date, ok := row.WorkDate()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), date)

	key := row.Key()
	assert.Equal(t, AggregationKey{"Jane Roe", "Migration", "Consulting", "4711", Placeholder}, key)

	vals := row.Values()
	vals[0] = "mutated"
	assert.Equal(t, "", row.RecordID(), "Values must return a copy")
}

func TestRawRow_ShortRowReadsBlankBeyondEnd(t *testing.T) {
	t.Parallel()

	row, err := NewRawRow(values(MinColumnCount, map[Field]string{FieldEmployeeName: "A"}))
	require.NoError(t, err)
	assert.Equal(t, "", row.EmployeeGroup())
	assert.Equal(t, Placeholder, row.DimensionValue(DimensionEmployeeGroup))
	assert.Equal(t, "", row.Value(Field(-1)))
}

func TestField_Column(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 58, FieldCount)
	assert.Equal(t, "record_id", FieldRecordID.Column())
	assert.Equal(t, "remarks", FieldRemarks.Column())
	assert.Equal(t, "field_60", Field(60).Column())
	assert.Len(t, Fields(), FieldCount)

	seen := make(map[string]bool, FieldCount)
	for _, f := range Fields() {
		assert.False(t, seen[f.Column()], "duplicate column %s", f.Column())
		seen[f.Column()] = true
	}
}
