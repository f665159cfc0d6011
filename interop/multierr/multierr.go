// Package multierr converts between the primary-plus-suppressed errors
// returned by closer scopes and the flat error lists of go.uber.org/multierr.
// It lets scopes slot into code that already aggregates with multierr.
package multierr

import (
	"errors"

	"go.uber.org/multierr"

	"github.com/NetPo4ki/go-closeall/closer"
)

// Errors flattens err: the primary error first, then each suppressed error
// in encounter order. The *closer.Error may be wrapped; context added by the
// wrappers is dropped. Other errors, multierr lists included, are handed to
// multierr.Errors.
func Errors(err error) []error {
	errs := multierr.Errors(err)
	var agg *closer.Error
	if len(errs) != 1 || !errors.As(err, &agg) {
		return errs
	}
	out := make([]error, 0, 1+len(agg.Suppressed))
	if agg.Hint == "" {
		out = append(out, agg.Cause)
	} else {
		out = append(out, &closer.Error{Cause: agg.Cause, Hint: agg.Hint})
	}
	return append(out, agg.Suppressed...)
}

// Combine returns err as a multierr error.
func Combine(err error) error {
	return multierr.Combine(Errors(err)...)
}

// Aggregate turns a multierr error into a *closer.Error whose first error is
// primary and the rest suppressed. Single errors are returned unchanged.
func Aggregate(err error) error {
	errs := multierr.Errors(err)
	if len(errs) <= 1 {
		return err
	}
	return &closer.Error{Cause: errs[0], Suppressed: errs[1:]}
}

// Close returns an Invoker closing s, for use with multierr.AppendInvoke:
//
//	defer multierr.AppendInvoke(&err, cmultierr.Close(s))
//
// The scope's result is appended to err with multierr semantics.
func Close(s *closer.Scope) multierr.Invoker {
	return multierr.Invoke(func() error { return s.Close(nil) })
}
