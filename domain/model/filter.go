package model

import (
	"fmt"
	"strings"
	"time"
)

// DateRange is an inclusive work date range. A zero bound is unbounded.
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange parses optional DD.MM.YYYY or DD/MM/YYYY bounds. Empty text
// leaves that side unbounded; any other text that does not parse, or a
// range whose start lies after its end, fails with ErrInvalidFilterBound.
func NewDateRange(from, to string) (DateRange, error) {
	var r DateRange
	if strings.TrimSpace(from) != "" {
		t, ok := ParseDate(from)
		if !ok {
			return DateRange{}, fmt.Errorf("%w: from %q", ErrInvalidFilterBound, from)
		}
		r.From = t
	}
	if strings.TrimSpace(to) != "" {
		t, ok := ParseDate(to)
		if !ok {
			return DateRange{}, fmt.Errorf("%w: to %q", ErrInvalidFilterBound, to)
		}
		r.To = t
	}
	if r.HasFrom() && r.HasTo() && r.From.After(r.To) {
		return DateRange{}, fmt.Errorf("%w: from %s is after to %s", ErrInvalidFilterBound, from, to)
	}
	return r, nil
}

// HasFrom reports whether the lower bound is set.
func (r DateRange) HasFrom() bool { return !r.From.IsZero() }

// HasTo reports whether the upper bound is set.
func (r DateRange) HasTo() bool { return !r.To.IsZero() }

// Active reports whether at least one bound is set.
func (r DateRange) Active() bool { return r.HasFrom() || r.HasTo() }

// Contains reports whether t lies within the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	if r.HasFrom() && t.Before(r.From) {
		return false
	}
	if r.HasTo() && t.After(r.To) {
		return false
	}
	return true
}

// ValueSet is a set of allowed dimension values. An empty set allows everything.
type ValueSet map[string]struct{}

// NewValueSet builds a set of normalized values.
func NewValueSet(values ...string) ValueSet {
	set := make(ValueSet, len(values))
	for _, v := range values {
		set[Normalize(v)] = struct{}{}
	}
	return set
}

// Allows reports whether v passes the set.
func (s ValueSet) Allows(v string) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[Normalize(v)]
	return ok
}

// FilterCriteria combines a date range with per dimension allowed values.
// All conditions must hold for a row to pass.
type FilterCriteria struct {
	Dates      DateRange
	Categories map[Dimension]ValueSet
}

// ParseFilterCriteria validates the date bounds and resolves dimension names.
// Dimensions with no values stay unrestricted.
func ParseFilterCriteria(from, to string, categories map[string][]string) (FilterCriteria, error) {
	dates, err := NewDateRange(from, to)
	if err != nil {
		return FilterCriteria{}, err
	}
	criteria := FilterCriteria{Dates: dates}
	for name, values := range categories {
		d, err := ParseDimension(name)
		if err != nil {
			return FilterCriteria{}, err
		}
		if len(values) == 0 {
			continue
		}
		criteria = criteria.WithValues(d, values...)
	}
	return criteria, nil
}

// WithValues returns a copy of c that restricts d to values.
func (c FilterCriteria) WithValues(d Dimension, values ...string) FilterCriteria {
	categories := make(map[Dimension]ValueSet, len(c.Categories)+1)
	for k, v := range c.Categories {
		categories[k] = v
	}
	categories[d] = NewValueSet(values...)
	c.Categories = categories
	return c
}

// Active reports whether any condition restricts rows.
func (c FilterCriteria) Active() bool {
	if c.Dates.Active() {
		return true
	}
	for _, set := range c.Categories {
		if len(set) > 0 {
			return true
		}
	}
	return false
}

// Match reports whether row passes every condition.
func (c FilterCriteria) Match(row RawRow) bool {
	if c.Dates.Active() {
		t, ok := row.WorkDate()
		if !ok || !c.Dates.Contains(t) {
			return false
		}
	}
	for d, set := range c.Categories {
		if !set.Allows(row.Value(d.Field())) {
			return false
		}
	}
	return true
}
