package loader

import (
	"context"
	"errors"
	"sync"

	"github.com/hupe1980/enginecore/counter"
)

// LoadAll submits one request per path and blocks until every accepted
// request has completed. fn, if not nil, is called on a worker goroutine for
// each result. The returned error joins the errors of all failed loads.
//
// If a submit fails (closed loader or ctx done), no further paths are
// submitted; LoadAll still waits for the ones already accepted and returns
// the submit error.
func (l *Loader) LoadAll(ctx context.Context, paths []string, fn func(Result)) error {
	return l.loadAll(ctx, paths, nil, fn)
}

// loadAll is LoadAll with an optional check that may turn the i-th result
// into a failure before it is counted and delivered.
func (l *Loader) loadAll(ctx context.Context, paths []string, check func(i int, res *Result), fn func(Result)) error {
	inflight := counter.New()
	defer inflight.Release()

	var (
		mu   sync.Mutex
		errs []error
	)

	var submitErr error
	for i, path := range paths {
		inflight.Increment()
		h := inflight.Clone()

		err := l.Submit(ctx, Request{
			Path: path,
			Callback: func(res Result) {
				defer func() {
					h.Decrement()
					h.Release()
				}()
				if check != nil && res.Success {
					check(i, &res)
				}
				if res.Err != nil {
					mu.Lock()
					errs = append(errs, res.Err)
					mu.Unlock()
				}
				if fn != nil {
					fn(res)
				}
			},
		})
		if err != nil {
			h.Decrement()
			h.Release()
			submitErr = err
			break
		}
	}

	// Accepted requests always complete, drain or abort, so this terminates
	// without a context.
	inflight.WaitForZero()

	if submitErr != nil {
		return submitErr
	}

	mu.Lock()
	defer mu.Unlock()
	return errors.Join(errs...)
}
