package server

import (
	"errors"
	"sync"

	"github.com/nao1215/worklog"
)

// ErrClosed is returned for operations submitted after Close.
var ErrClosed = errors.New("worklog: server closed")

// coordinator owns the pipeline. Every read and write of it runs on the
// coordinator goroutine, one operation at a time.
type coordinator struct {
	pipeline *worklog.Pipeline
	ops      chan func(*worklog.Pipeline)
	quit     chan struct{}
	stopped  chan struct{}
	once     sync.Once
}

func newCoordinator(p *worklog.Pipeline) *coordinator {
	c := &coordinator{
		pipeline: p,
		ops:      make(chan func(*worklog.Pipeline)),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go c.run()
	return c
}

func (c *coordinator) run() {
	defer close(c.stopped)
	for {
		select {
		case op := <-c.ops:
			op(c.pipeline)
		case <-c.quit:
			return
		}
	}
}

// do runs fn on the coordinator goroutine and waits for it to return.
func (c *coordinator) do(fn func(p *worklog.Pipeline)) error {
	done := make(chan struct{})
	op := func(p *worklog.Pipeline) {
		defer close(done)
		fn(p)
	}
	select {
	case c.ops <- op:
	case <-c.quit:
		return ErrClosed
	}
	<-done
	return nil
}

// close stops the goroutine after the running operation has finished.
func (c *coordinator) close() {
	c.once.Do(func() {
		close(c.quit)
	})
	<-c.stopped
}
