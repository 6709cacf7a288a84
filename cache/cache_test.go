package cache

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/worklog/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// store is the contract shared by every cache implementation.
type store interface {
	Put(ctx context.Context, rows []model.RawRow) error
	Get(ctx context.Context) ([]model.RawRow, bool, error)
	Clear(ctx context.Context) error
}

func makeRow(t *testing.T, width int, employee string) model.RawRow {
	t.Helper()
	values := make([]string, width)
	for i := range values {
		values[i] = fmt.Sprintf("v%d", i)
	}
	values[model.FieldEmployeeName] = employee
	values[model.FieldDuration] = "7,5"
	row, err := model.NewRawRow(values)
	require.NoError(t, err)
	return row
}

func openSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStores(t *testing.T) {
	t.Parallel()

	factories := map[string]func(t *testing.T) store{
		"memory": func(*testing.T) store { return NewMemory() },
		"sqlite": func(t *testing.T) store { return openSQLite(t) },
	}

	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			t.Run("empty cache is not found", func(t *testing.T) {
				s := factory(t)
				rows, found, err := s.Get(ctx)
				require.NoError(t, err)
				assert.False(t, found)
				assert.Empty(t, rows)
			})

			t.Run("round trip keeps order and width", func(t *testing.T) {
				s := factory(t)
				want := []model.RawRow{
					makeRow(t, model.FieldCount, "Anna"),
					makeRow(t, model.MinColumnCount, "Bernd"),
					makeRow(t, model.FieldCount+3, "Clara"),
				}
				require.NoError(t, s.Put(ctx, want))

				got, found, err := s.Get(ctx)
				require.NoError(t, err)
				require.True(t, found)
				require.Len(t, got, 3)
				for i := range want {
					assert.Equal(t, want[i].Values(), got[i].Values())
				}
				assert.Equal(t, "Bernd", got[1].EmployeeName())
			})

			t.Run("put replaces earlier rows", func(t *testing.T) {
				s := factory(t)
				require.NoError(t, s.Put(ctx, []model.RawRow{makeRow(t, model.FieldCount, "old")}))
				require.NoError(t, s.Put(ctx, []model.RawRow{makeRow(t, model.FieldCount, "new")}))

				got, _, err := s.Get(ctx)
				require.NoError(t, err)
				require.Len(t, got, 1)
				assert.Equal(t, "new", got[0].EmployeeName())
			})

			t.Run("empty store is found after put", func(t *testing.T) {
				s := factory(t)
				require.NoError(t, s.Put(ctx, nil))
				rows, found, err := s.Get(ctx)
				require.NoError(t, err)
				assert.True(t, found)
				assert.Empty(t, rows)
			})

			t.Run("clear", func(t *testing.T) {
				s := factory(t)
				require.NoError(t, s.Put(ctx, []model.RawRow{makeRow(t, model.FieldCount, "x")}))
				require.NoError(t, s.Clear(ctx))
				_, found, err := s.Get(ctx)
				require.NoError(t, err)
				assert.False(t, found)
			})

			t.Run("cancelled context", func(t *testing.T) {
				s := factory(t)
				cctx, cancel := context.WithCancel(ctx)
				cancel()
				assert.Error(t, s.Put(cctx, []model.RawRow{makeRow(t, model.FieldCount, "x")}))
			})
		})
	}
}

func TestMemory_PutCopiesSlice(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()
	rows := []model.RawRow{makeRow(t, model.FieldCount, "Anna")}
	require.NoError(t, m.Put(ctx, rows))
	rows[0] = makeRow(t, model.FieldCount, "changed")

	got, _, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Anna", got[0].EmployeeName())
}

func TestSQLite_PersistsAcrossOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC) }
	require.NoError(t, s.Put(ctx, []model.RawRow{makeRow(t, model.FieldCount, "Anna")}))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	got, found, err := reopened.Get(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Anna", got[0].EmployeeName())

	savedAt, ok, err := reopened.SavedAt(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, savedAt.Equal(time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)))
}

func TestSQLite_Closed(t *testing.T) {
	t.Parallel()

	s, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, _, err = s.Get(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Put(context.Background(), nil), ErrClosed)
	assert.ErrorIs(t, s.Clear(context.Background()), ErrClosed)
}

func TestBuildQueries(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "?, ?, ?", buildPlaceholders(3))
	assert.Contains(t, buildCreateRowsQuery(), `"employee_name" TEXT`)
	assert.Contains(t, buildInsertQuery(), "extra")
	assert.Contains(t, buildSelectQuery(), "ORDER BY seq")
}
