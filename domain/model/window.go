package model

import "time"

// ViewWindow is the visible index range [Start, End) of an ordered result
// of Length rows, with the layout space to reserve above and below it.
type ViewWindow struct {
	Start        int `json:"start"`
	End          int `json:"end"`
	Length       int `json:"length"`
	TopSpacer    int `json:"top_spacer"`
	BottomSpacer int `json:"bottom_spacer"`
}

// Size returns the number of visible rows.
func (w ViewWindow) Size() int {
	return w.End - w.Start
}

// Progress reports how far an import run has come.
type Progress struct {
	Processed int           `json:"processed"`
	Total     int           `json:"total"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Percent returns the completed share in the range 0 to 100.
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Processed) / float64(p.Total) * 100
}

// ETA estimates the remaining time from the rate observed so far.
// It returns zero until at least one row has been processed.
func (p Progress) ETA() time.Duration {
	if p.Processed <= 0 || p.Elapsed <= 0 || p.Processed >= p.Total {
		return 0
	}
	rate := float64(p.Processed) / float64(p.Elapsed)
	return time.Duration(float64(p.Total-p.Processed) / rate)
}
