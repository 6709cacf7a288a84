package worklog

import (
	"fmt"
	"math"
	"runtime"
)

// Memory management constants
const (
	defaultMemoryLimit       = 512       // 512MB
	maxReasonableMemoryLimit = 64 * 1024 // 64GB
	defaultWarningThreshold  = 0.8
	bytesPerMB               = 1024 * 1024
)

// MemoryLimit guards an import run against unbounded heap growth.
// The importer consults it once per batch:
//   - OK: keep going
//   - WARNING: keep going, log the pressure
//   - EXCEEDED: stop the run with ErrMemoryLimit, keeping the rows so far
//
// CheckMemoryUsage calls runtime.ReadMemStats, which briefly stops the
// world, so it is never called per row.
type MemoryLimit struct {
	maxMemoryMB      int64
	warningThreshold float64
	readHeapMB       func() int64
}

// NewMemoryLimit creates a memory limit of maxMemoryMB megabytes. Values
// below one fall back to 512MB and values above 64GB are capped.
func NewMemoryLimit(maxMemoryMB int64) *MemoryLimit {
	if maxMemoryMB <= 0 {
		maxMemoryMB = defaultMemoryLimit
	}
	if maxMemoryMB > maxReasonableMemoryLimit {
		maxMemoryMB = maxReasonableMemoryLimit
	}
	return &MemoryLimit{
		maxMemoryMB:      maxMemoryMB,
		warningThreshold: defaultWarningThreshold,
		readHeapMB:       heapAllocMB,
	}
}

// SetWarningThreshold sets the warning threshold (0.0-1.0). Values out of
// range are ignored.
func (ml *MemoryLimit) SetWarningThreshold(threshold float64) {
	if threshold > 0.0 && threshold <= 1.0 {
		ml.warningThreshold = threshold
	}
}

// CheckMemoryUsage checks current heap usage against the limit
func (ml *MemoryLimit) CheckMemoryUsage() MemoryStatus {
	return ml.status(ml.readHeapMB())
}

func (ml *MemoryLimit) status(currentMB int64) MemoryStatus {
	if currentMB >= ml.maxMemoryMB {
		return MemoryStatusExceeded
	}
	if float64(currentMB)/float64(ml.maxMemoryMB) >= ml.warningThreshold {
		return MemoryStatusWarning
	}
	return MemoryStatusOK
}

// GetMemoryInfo returns current memory usage information
func (ml *MemoryLimit) GetMemoryInfo() MemoryInfo {
	currentMB := ml.readHeapMB()
	return MemoryInfo{
		CurrentMB: currentMB,
		LimitMB:   ml.maxMemoryMB,
		Usage:     float64(currentMB) / float64(ml.maxMemoryMB),
		Status:    ml.status(currentMB),
	}
}

// CreateMemoryError creates an ErrMemoryLimit error describing the usage
func (ml *MemoryLimit) CreateMemoryError(operation string) error {
	info := ml.GetMemoryInfo()
	return fmt.Errorf(
		"%w during %s: using %d MB / %d MB (%.1f%%), consider raising the limit or splitting the extract",
		ErrMemoryLimit, operation, info.CurrentMB, info.LimitMB, info.Usage*100,
	)
}

func heapAllocMB() int64 {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	mb := memStats.HeapAlloc / bytesPerMB
	if mb > uint64(math.MaxInt64) {
		return math.MaxInt64
	}
	return int64(mb)
}

// MemoryStatus represents the current memory status
type MemoryStatus int

// Memory status constants
const (
	// MemoryStatusOK indicates memory usage is within acceptable limits
	MemoryStatusOK MemoryStatus = iota
	// MemoryStatusWarning indicates memory usage is approaching the limit
	MemoryStatusWarning
	// MemoryStatusExceeded indicates memory usage has exceeded the limit
	MemoryStatusExceeded
)

// String returns string representation of memory status
func (ms MemoryStatus) String() string {
	switch ms {
	case MemoryStatusOK:
		return "OK"
	case MemoryStatusWarning:
		return "WARNING"
	case MemoryStatusExceeded:
		return "EXCEEDED"
	default:
		return "UNKNOWN"
	}
}

// MemoryInfo contains detailed memory usage information
type MemoryInfo struct {
	CurrentMB int64        // Current heap usage in MB
	LimitMB   int64        // Memory limit in MB
	Usage     float64      // Usage ratio (0.0-1.0)
	Status    MemoryStatus // Current status
}
