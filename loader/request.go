package loader

import "sync/atomic"

// Result is the outcome of one load. Exactly one of Data and Err is set
// (Data may be empty for an empty file).
type Result struct {
	Path    string
	Data    []byte
	Success bool
	Err     error
}

// Request asks the loader to read one file.
//
// If Callback is set it is invoked on the worker goroutine. Otherwise the
// request runs in flag mode: the worker stores the data in *Out (nil on
// failure) and the error in *Err, then sets Done. Out and Err are optional;
// Done is required in flag mode.
type Request struct {
	Path     string
	Callback func(Result)

	Out  *[]byte
	Err  *error
	Done *atomic.Bool
}

func (r Request) valid() bool {
	return r.Path != "" && (r.Callback != nil || r.Done != nil)
}

// Completion is a ready-made flag-mode target. Poll Done, then read Data and Err.
type Completion struct {
	Data []byte
	Err  error
	done atomic.Bool
}

// Request returns a flag-mode request for path that completes c.
func (c *Completion) Request(path string) Request {
	return Request{
		Path: path,
		Out:  &c.Data,
		Err:  &c.Err,
		Done: &c.done,
	}
}

// Done reports whether the load finished. Data and Err may only be read
// after Done returned true.
func (c *Completion) Done() bool {
	return c.done.Load()
}
