package errors

import (
	"github.com/pkg/errors"
)

// stackTracer is implemented by errors that carry a recorded stack trace,
// for example those created by github.com/pkg/errors.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// stackTrace returns the stack trace carried by this error or any of its
// causes. It returns nil if no stack trace information is available.
func stackTrace(err error) errors.StackTrace {
	for {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return nil
		}
	}
}
