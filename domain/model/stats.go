package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// DefaultErrorLogCap is the number of rejection records kept per import run.
const DefaultErrorLogCap = 1000

// RejectionType tags why a row was not imported.
type RejectionType int

const (
	// RejectionEmptyRow marks a row with no content.
	RejectionEmptyRow RejectionType = iota
	// RejectionInvalidColumnCount marks a row with too few fields.
	RejectionInvalidColumnCount
)

// String returns the stable name of the rejection type.
func (t RejectionType) String() string {
	switch t {
	case RejectionEmptyRow:
		return "EmptyRow"
	case RejectionInvalidColumnCount:
		return "InvalidColumnCount"
	default:
		return "Unknown"
	}
}

// MarshalJSON encodes the type by name.
func (t RejectionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// RejectionRecord describes one rejected row.
type RejectionRecord struct {
	Line          int           `json:"line"`
	Type          RejectionType `json:"type"`
	Message       string        `json:"message"`
	ObservedCount int           `json:"observed_count"`
}

// ImportStats are the counters of a single import run.
type ImportStats struct {
	RunID        string            `json:"run_id"`
	TotalLines   int               `json:"total_lines"`
	HeaderRows   int               `json:"header_rows"`
	EmptyRows    int               `json:"empty_rows"`
	InvalidRows  int               `json:"invalid_rows"`
	ImportedRows int               `json:"imported_rows"`
	RejectedRows int               `json:"rejected_rows"`
	Errors       []RejectionRecord `json:"errors"`
	Truncated    bool              `json:"truncated"`
	StartedAt    time.Time         `json:"started_at"`
	FinishedAt   time.Time         `json:"finished_at"`
}

// Processed returns the number of rows that have been classified so far.
func (s ImportStats) Processed() int {
	return s.HeaderRows + s.ImportedRows + s.RejectedRows
}

// Finished reports whether the run was finalized.
func (s ImportStats) Finished() bool {
	return !s.FinishedAt.IsZero()
}

// Duration returns the wall time of a finished run.
func (s ImportStats) Duration() time.Duration {
	if !s.Finished() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Reasons breaks the rejected rows down by type.
func (s ImportStats) Reasons() map[RejectionType]int {
	return map[RejectionType]int{
		RejectionEmptyRow:           s.EmptyRows,
		RejectionInvalidColumnCount: s.InvalidRows,
	}
}

// Snapshot returns a copy that shares nothing with s.
func (s ImportStats) Snapshot() ImportStats {
	out := s
	if s.Errors != nil {
		out.Errors = make([]RejectionRecord, len(s.Errors))
		copy(out.Errors, s.Errors)
	}
	return out
}

// Summary renders the imported and rejected counts on one line.
func (s ImportStats) Summary() string {
	return fmt.Sprintf("imported %d, rejected %d (empty %d, invalid column count %d)",
		s.ImportedRows, s.RejectedRows, s.EmptyRows, s.InvalidRows)
}
