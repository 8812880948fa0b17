package persistence

import "context"

// Result is the outcome of one asynchronous write.
type Result struct {
	done chan struct{}
	err  error
}

func newResult() *Result {
	return &Result{done: make(chan struct{})}
}

// Completed returns a Result that has already finished with err.
// Repositories that write synchronously return one.
func Completed(err error) *Result {
	r := newResult()
	r.resolve(err)
	return r
}

func (r *Result) resolve(err error) {
	r.err = err
	close(r.done)
}

// Done is closed once the write has been attempted.
func (r *Result) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the write completes or ctx ends.
// It returns the gateway error, or ctx.Err() if the caller gave up first.
func (r *Result) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the write error once Done is closed, nil before that.
func (r *Result) Err() error {
	select {
	case <-r.done:
		return r.err
	default:
		return nil
	}
}
