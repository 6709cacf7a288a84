package server

import (
	"github.com/nao1215/worklog"
	"github.com/nao1215/worklog/domain/model"
)

// Message types exchanged over the websocket.
const (
	// MessageSearch replaces the search term (client to server).
	MessageSearch = "search"
	// MessageSort clicks a column header (client to server).
	MessageSort = "sort"
	// MessageScroll moves the viewport (client to server).
	MessageScroll = "scroll"
	// MessageView carries the visible rows (server to client).
	MessageView = "view"
	// MessageProgress reports a running import (server to client).
	MessageProgress = "progress"
	// MessageError reports a rejected client message (server to client).
	MessageError = "error"
)

// ClientMessage is an event sent by a grid.
type ClientMessage struct {
	Type   string `json:"type" validate:"required,oneof=search sort scroll"`
	Term   string `json:"term,omitempty" validate:"max=200"`
	Column string `json:"column,omitempty" validate:"required_if=Type sort"`
	Offset int    `json:"offset,omitempty" validate:"min=0"`
}

// ServerMessage is pushed to grids.
type ServerMessage struct {
	Type     string            `json:"type"`
	View     *ViewResponse     `json:"view,omitempty"`
	Progress *ProgressResponse `json:"progress,omitempty"`
	Error    *APIError         `json:"error,omitempty"`
}

// RowResponse is one rendered aggregate row.
type RowResponse struct {
	Employee      string   `json:"employee"`
	Project       string   `json:"project"`
	Activity      string   `json:"activity"`
	CostCenter    string   `json:"cost_center"`
	EmployeeGroup string   `json:"employee_group"`
	Hours         string   `json:"hours"`
	Entries       int      `json:"entries"`
	WeeklyNorm    *float64 `json:"weekly_norm,omitempty"`
}

// SortResponse is the active sort of the grid.
type SortResponse struct {
	Column    string `json:"column,omitempty"`
	Direction string `json:"direction,omitempty"`
}

// ViewResponse is everything a grid needs to render.
type ViewResponse struct {
	Rows       []RowResponse    `json:"rows"`
	Window     model.ViewWindow `json:"window"`
	Counts     worklog.Counts   `json:"counts"`
	TotalHours string           `json:"total_hours"`
	Sort       SortResponse     `json:"sort"`
	Term       string           `json:"term"`
}

// ProgressResponse reports a running import.
type ProgressResponse struct {
	Source    string  `json:"source"`
	Processed int     `json:"processed"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
	ETAMillis int64   `json:"eta_ms"`
}

// StatsResponse lists the import runs of the session.
type StatsResponse struct {
	Runs   []model.ImportStats `json:"runs"`
	Counts worklog.Counts      `json:"counts"`
}

// newViewResponse renders the current view of p.
func newViewResponse(p *worklog.Pipeline) *ViewResponse {
	view := p.View()
	format := p.Formatter()
	settings := p.Settings()

	rows := make([]RowResponse, 0, len(view.Rows))
	for _, row := range view.Rows {
		out := RowResponse{
			Employee:      row.Value(model.DimensionEmployee),
			Project:       row.Value(model.DimensionProject),
			Activity:      row.Value(model.DimensionActivity),
			CostCenter:    row.Value(model.DimensionCostCenter),
			EmployeeGroup: row.Value(model.DimensionEmployeeGroup),
			Hours:         format.Format(row.Hours),
			Entries:       row.Entries,
		}
		if norm, ok := settings.NormFor(out.EmployeeGroup); ok {
			out.WeeklyNorm = &norm
		}
		rows = append(rows, out)
	}

	resp := &ViewResponse{
		Rows:       rows,
		Window:     view.Window,
		Counts:     view.Counts,
		TotalHours: format.Format(view.TotalHours),
		Term:       view.Term,
	}
	if view.Sort.Active {
		resp.Sort = SortResponse{Column: view.Sort.Column.String(), Direction: view.Sort.Direction.String()}
	}
	return resp
}

func newProgressResponse(source string, p model.Progress) *ProgressResponse {
	return &ProgressResponse{
		Source:    source,
		Processed: p.Processed,
		Total:     p.Total,
		Percent:   p.Percent(),
		ETAMillis: p.ETA().Milliseconds(),
	}
}
