package report

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Job is one unit of report work.
type Job func(ctx context.Context) Result

// Logger receives job lifecycle events. *log.Logger from
// github.com/charmbracelet/log satisfies it.
type Logger interface {
	Debug(msg any, keyvals ...any)
}

// Runner runs at most one report job at a time. A job is cancelled
// through the context it receives; its outcome is always a Result.
type Runner struct {
	logger Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	name    string
}

// NewRunner creates a runner. logger may be nil.
func NewRunner(logger Logger) *Runner {
	return &Runner{logger: logger}
}

// Handle is a started job.
type Handle struct {
	done chan Result
}

// Wait blocks until the job resolves.
func (h *Handle) Wait() Result {
	return <-h.done
}

// Done returns a channel that receives the single Result.
func (h *Handle) Done() <-chan Result {
	return h.done
}

// Busy reports whether a job is in flight.
func (r *Runner) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Start launches job. It returns ErrBusy while another job is in flight.
func (r *Runner) Start(parent context.Context, name string, job Job) (*Handle, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrBusy, r.name)
	}
	ctx, cancel := context.WithCancel(parent)
	r.running = true
	r.cancel = cancel
	r.name = name
	r.mu.Unlock()

	h := &Handle{done: make(chan Result, 1)}
	started := time.Now()
	r.logf("report job started", "job", name)

	go func() {
		res := r.run(ctx, job)
		cancel()

		r.mu.Lock()
		r.running = false
		r.cancel = nil
		r.name = ""
		r.mu.Unlock()

		r.logf("report job finished", "job", name, "status", res.Status, "elapsed", time.Since(started).Round(time.Millisecond))
		h.done <- res
	}()
	return h, nil
}

// Cancel cancels the in-flight job, if any.
func (r *Runner) Cancel() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running || r.cancel == nil {
		return false
	}
	r.cancel()
	return true
}

func (r *Runner) run(ctx context.Context, job Job) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			res = Failure("Report job failed unexpectedly", fmt.Errorf("panic: %v", p))
		}
	}()
	res = job(ctx)
	if ctx.Err() != nil && res.Status != StatusSuccess {
		return Cancelled()
	}
	return res
}

func (r *Runner) logf(msg any, keyvals ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, keyvals...)
	}
}
