package model

import (
	"fmt"
	"strings"
)

// Column is a sortable column of the aggregate grid.
type Column int

// Grid columns. The first five mirror the dimensions.
const (
	ColumnEmployee Column = iota
	ColumnProject
	ColumnActivity
	ColumnCostCenter
	ColumnEmployeeGroup
	ColumnHours
	ColumnEntries

	columnCount
)

var columnNames = [columnCount]string{
	"employee",
	"project",
	"activity",
	"cost_center",
	"employee_group",
	"hours",
	"entries",
}

// Columns returns every grid column in display order.
func Columns() []Column {
	cols := make([]Column, columnCount)
	for i := range cols {
		cols[i] = Column(i)
	}
	return cols
}

// ParseColumn resolves a column by its name.
func ParseColumn(name string) (Column, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range columnNames {
		if n == name {
			return Column(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}

// String returns the column name.
func (c Column) String() string {
	if c < 0 || c >= columnCount {
		return "unknown"
	}
	return columnNames[c]
}

// Numeric reports whether the column always holds numbers.
func (c Column) Numeric() bool {
	return c == ColumnHours || c == ColumnEntries
}

// Dimension returns the dimension shown in the column, if any.
func (c Column) Dimension() (Dimension, bool) {
	if c >= 0 && int(c) < DimensionCount {
		return Dimension(c), true
	}
	return 0, false
}

// Direction is a sort direction.
type Direction int

const (
	// Ascending sorts smallest first.
	Ascending Direction = iota
	// Descending sorts largest first.
	Descending
)

// String returns "asc" or "desc".
func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// DefaultDirection is the direction a column starts with when first selected.
func DefaultDirection(c Column) Direction {
	if c.Numeric() {
		return Descending
	}
	return Ascending
}

// SortState is the active grid ordering. The zero value means unsorted.
type SortState struct {
	Column    Column
	Direction Direction
	Active    bool
}

// Toggle applies a click on column c: the active column flips direction,
// any other column becomes active with its default direction.
func (s SortState) Toggle(c Column) SortState {
	if s.Active && s.Column == c {
		s.Direction = s.Direction.Flip()
		return s
	}
	return SortState{Column: c, Direction: DefaultDirection(c), Active: true}
}
