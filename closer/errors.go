package closer

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"
)

var (
	ErrNotCloseable          = errors.New("resource is not closeable")
	ErrNotReference          = errors.New("close function target is not a pointer")
	ErrResourceScopeClosed   = errors.New("resource scope closed")
	ErrResourceLimitExceeded = errors.New("resource limit exceeded")
	ErrNilAcquire            = errors.New("nil acquire function")
)

// Error is the aggregated error returned by a scope. Cause is the primary
// failure; Hint names the clause whose resource failed to close, and is empty
// when Cause came from acquisition or the body. Suppressed holds every other
// failure in the order it was encountered.
type Error struct {
	Cause      error
	Hint       string
	Suppressed []error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Hint != "" {
		b.WriteString("close ")
		b.WriteString(strconv.Quote(e.Hint))
		b.WriteString(": ")
	}
	if e.Cause != nil {
		b.WriteString(e.Cause.Error())
	} else {
		b.WriteString("close failed")
	}
	if len(e.Suppressed) > 0 {
		b.WriteString(" [suppressed: ")
		for i, s := range e.Suppressed {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(s.Error())
		}
		b.WriteByte(']')
	}
	return b.String()
}

// Unwrap returns the primary cause. Suppressed errors are deliberately not
// part of the chain; use SuppressedOf to reach them.
func (e *Error) Unwrap() error { return e.Cause }

// Format supports %+v, which prints each suppressed error on its own line.
func (e *Error) Format(f fmt.State, verb rune) {
	switch {
	case verb == 'v' && f.Flag('+'):
		if e.Hint != "" {
			fmt.Fprintf(f, "close %q: ", e.Hint)
		}
		if e.Cause != nil {
			fmt.Fprintf(f, "%+v", e.Cause)
		} else {
			fmt.Fprint(f, "close failed")
		}
		for _, s := range e.Suppressed {
			fmt.Fprintf(f, "\n\tsuppressed: %+v", s)
		}
	case verb == 'q':
		fmt.Fprintf(f, "%q", e.Error())
	default:
		fmt.Fprint(f, e.Error())
	}
}

// SuppressedOf returns the suppressed errors of the first *Error in err's
// chain, or nil.
func SuppressedOf(err error) []error {
	var e *Error
	if errors.As(err, &e) {
		return e.Suppressed
	}
	return nil
}

// HintOf returns the hint of the first hinted *Error in err's chain.
func HintOf(err error) string {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Hint != "" {
			return e.Hint
		}
		err = errors.Unwrap(err)
	}
	return ""
}

// NotCloseableError reports a resource that matches no close variant.
type NotCloseableError struct {
	Resource any
}

func (e *NotCloseableError) Error() string {
	return fmt.Sprintf("resource of type %T is not closeable", e.Resource)
}

func (e *NotCloseableError) Is(target error) bool { return target == ErrNotCloseable }

// PanicError carries a value recovered from a panic.
type PanicError struct {
	Value any
	Stack []byte
}

func newPanicError(v any) *PanicError {
	return &PanicError{Value: v, Stack: debug.Stack()}
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// Unwrap exposes the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// aggregate folds close failures into a single primary error. Once set, the
// primary error is never replaced.
type aggregate struct {
	err error
	// own is the *Error this fold may append to. It is nil until the fold
	// creates one, so caller-supplied errors are never mutated.
	own *Error
}

func (a *aggregate) add(w *Error) {
	if a.err == nil {
		a.err = w
		a.own = w
		return
	}
	if a.own == nil {
		a.own = &Error{Cause: a.err}
		a.err = a.own
	}
	a.own.Suppressed = append(a.own.Suppressed, w)
}
