package worklog

import (
	"strings"
	"testing"

	"github.com/nao1215/worklog/domain/model"
	"github.com/stretchr/testify/require"
)

// entry describes the interesting columns of a data line.
type entry struct {
	employee string
	project  string
	activity string
	cost     string
	group    string
	date     string
	hours    string
}

func (e entry) values() map[model.Field]string {
	return map[model.Field]string{
		model.FieldEmployeeName:     e.employee,
		model.FieldProjectName:      e.project,
		model.FieldActivityTypeName: e.activity,
		model.FieldCostCenter:       e.cost,
		model.FieldEmployeeGroup:    e.group,
		model.FieldWorkDate:         e.date,
		model.FieldDuration:         e.hours,
	}
}

// line renders a data line of the given column count.
func line(columns int, e entry) string {
	fields := make([]string, columns)
	for f, v := range e.values() {
		if int(f) < columns {
			fields[f] = v
		}
	}
	if columns > 0 && fields[0] == "" {
		fields[0] = "id"
	}
	return strings.Join(fields, ";")
}

// headerLine renders the catalog header.
func headerLine() string {
	names := make([]string, model.FieldCount)
	for i, f := range model.Fields() {
		names[i] = f.Column()
	}
	return strings.Join(names, ";")
}

// document joins a header and lines with CRLF endings.
func document(lines ...string) string {
	return headerLine() + "\r\n" + strings.Join(lines, "\r\n") + "\r\n"
}

// rawRow builds a catalog row for engine tests.
func rawRow(t *testing.T, e entry) model.RawRow {
	t.Helper()
	row, err := model.NewRawRow(SplitFields(line(model.FieldCount, e)))
	require.NoError(t, err)
	return row
}

func rawRows(t *testing.T, entries ...entry) []model.RawRow {
	t.Helper()
	rows := make([]model.RawRow, len(entries))
	for i, e := range entries {
		rows[i] = rawRow(t, e)
	}
	return rows
}
