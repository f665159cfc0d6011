package closer

import "context"

// Clause acquires one resource for Do or Run. Acquire sees every resource
// bound by earlier clauses.
type Clause struct {
	Hint    string
	Acquire func(ctx context.Context, b Bindings) (any, error)
}

// Do acquires the clauses' resources in order, runs body, and closes every
// acquired resource in reverse order on all exit paths.
//
// If a clause fails, later clauses and body are skipped and the failure is
// handled like a body error. The returned error is the acquisition or body
// error, carrying any close failures as suppressed errors, or else the first
// close failure. On error the zero T is returned.
func Do[T any](ctx context.Context, clauses []Clause, body func(ctx context.Context, b Bindings) (T, error), optFns ...Option) (result T, err error) {
	s := New(ctx, optFns...)
	defer func() {
		if err != nil {
			var zero T
			result = zero
		}
	}()
	defer s.Handle(&err)

	b := s.Bindings()
	for _, c := range clauses {
		acquire := c.Acquire
		if acquire == nil {
			return result, ErrNilAcquire
		}
		if _, err = s.Acquire(c.Hint, func(ctx context.Context) (any, error) {
			return acquire(ctx, b)
		}); err != nil {
			return result, err
		}
	}

	s.state = stateRunning
	if body == nil {
		return result, nil
	}
	return body(s.ctx, b)
}

// Run is Do for a body without a result.
func Run(ctx context.Context, clauses []Clause, body func(ctx context.Context, b Bindings) error, optFns ...Option) error {
	_, err := Do(ctx, clauses, func(ctx context.Context, b Bindings) (struct{}, error) {
		if body == nil {
			return struct{}{}, nil
		}
		return struct{}{}, body(ctx, b)
	}, optFns...)
	return err
}
