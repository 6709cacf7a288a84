// Package model provides the domain model for worklog: the typed row
// catalog, filter criteria, aggregate records, sort and view state.
package model

import "errors"

var (
	// ErrTooFewColumns is returned when a row carries fewer than MinColumnCount fields.
	ErrTooFewColumns = errors.New("worklog: too few columns")

	// ErrInvalidFilterBound is returned when a date filter bound is malformed.
	ErrInvalidFilterBound = errors.New("worklog: invalid filter bound")

	// ErrUnknownDimension is returned for a dimension name outside the catalog.
	ErrUnknownDimension = errors.New("worklog: unknown dimension")

	// ErrUnknownColumn is returned for a grid column name that does not exist.
	ErrUnknownColumn = errors.New("worklog: unknown column")

	// ErrUnknownFormat is returned when an export format or compression name is not recognized.
	ErrUnknownFormat = errors.New("worklog: unknown format")
)
