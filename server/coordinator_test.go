package server

import (
	"sync"
	"testing"

	"github.com/nao1215/worklog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinator_SerializesOperations(t *testing.T) {
	t.Parallel()

	p, err := worklog.NewPipeline()
	require.NoError(t, err)
	c := newCoordinator(p)
	defer c.close()

	// the counter is only safe because every op runs on one goroutine
	counter := 0
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.do(func(got *worklog.Pipeline) {
				assert.Same(t, p, got)
				counter++
			}))
		}()
	}
	wg.Wait()

	var final int
	require.NoError(t, c.do(func(*worklog.Pipeline) { final = counter }))
	assert.Equal(t, 50, final)
}

func TestCoordinator_Closed(t *testing.T) {
	t.Parallel()

	p, err := worklog.NewPipeline()
	require.NoError(t, err)
	c := newCoordinator(p)
	c.close()
	c.close()

	err = c.do(func(*worklog.Pipeline) { t.Error("operation ran after close") })
	assert.ErrorIs(t, err, ErrClosed)
}

func TestErrorFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "filter bound", err: worklog.ErrInvalidFilterBound, want: 400},
		{name: "unknown column", err: worklog.ErrUnknownColumn, want: 400},
		{name: "parse failure", err: worklog.ErrParseFailure, want: 422},
		{name: "unsupported format", err: worklog.ErrUnsupportedFormat, want: 415},
		{name: "empty data", err: worklog.ErrEmptyData, want: 404},
		{name: "other", err: worklog.ErrMemoryLimit, want: 500},
		{name: "api error passes through", err: &APIError{Status: 409, Code: "CONFLICT"}, want: 409},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, errorFor(tt.err).Status)
		})
	}
}
