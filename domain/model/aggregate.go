package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Placeholder stands in for a missing or blank dimension value.
const Placeholder = "(blank)"

// Dimension is one of the categorical dimensions rows are grouped and filtered by.
type Dimension int

// Categorical dimensions, in aggregation key order.
const (
	DimensionEmployee Dimension = iota
	DimensionProject
	DimensionActivity
	DimensionCostCenter
	DimensionEmployeeGroup

	dimensionCount
)

// DimensionCount is the number of categorical dimensions.
const DimensionCount = int(dimensionCount)

var dimensionFields = [DimensionCount]Field{
	FieldEmployeeName,
	FieldProjectName,
	FieldActivityTypeName,
	FieldCostCenter,
	FieldEmployeeGroup,
}

var dimensionNames = [DimensionCount]string{
	"employee",
	"project",
	"activity",
	"cost_center",
	"employee_group",
}

// Dimensions returns all dimensions in key order.
func Dimensions() []Dimension {
	return []Dimension{
		DimensionEmployee,
		DimensionProject,
		DimensionActivity,
		DimensionCostCenter,
		DimensionEmployeeGroup,
	}
}

// ParseDimension resolves a dimension by its name.
func ParseDimension(name string) (Dimension, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range dimensionNames {
		if n == name {
			return Dimension(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDimension, name)
}

// Field returns the catalog field that holds the dimension value.
func (d Dimension) Field() Field {
	if d < 0 || d >= dimensionCount {
		return Field(-1)
	}
	return dimensionFields[d]
}

// String returns the dimension name.
func (d Dimension) String() string {
	if d < 0 || d >= dimensionCount {
		return "unknown"
	}
	return dimensionNames[d]
}

// Normalize trims v and replaces a blank value with Placeholder.
func Normalize(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return Placeholder
	}
	return v
}

// AggregationKey is the composite grouping key, one normalized value per dimension.
type AggregationKey [DimensionCount]string

// Value returns the key component for d.
func (k AggregationKey) Value(d Dimension) string {
	if d < 0 || d >= dimensionCount {
		return ""
	}
	return k[d]
}

// AggregateRow is one group of the aggregation.
type AggregateRow struct {
	Key AggregationKey
	// Hours is the summed duration of all rows in the group.
	Hours decimal.Decimal
	// Entries is the number of rows in the group.
	Entries int
}

// Value returns the key component for d.
func (a AggregateRow) Value(d Dimension) string {
	return a.Key.Value(d)
}

// HoursFloat returns Hours as a float64.
func (a AggregateRow) HoursFloat() float64 {
	return a.Hours.InexactFloat64()
}
