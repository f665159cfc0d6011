package closer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

type state int

const (
	stateAcquiring state = iota
	stateRunning
	stateClosing
	stateClosed
)

// Scope owns the resources acquired through it and closes them, newest
// first, when Close or Handle runs.
type Scope struct {
	ctx   context.Context
	state state
	reg   Registry
	bound map[string]any

	opts Options
	obs  Observer
	lim  Limiter

	opened time.Time
}

func New(ctx context.Context, optFns ...Option) *Scope {
	if ctx == nil {
		ctx = context.Background()
	}
	s := &Scope{ctx: ctx, opts: defaultOptions()}
	for _, fn := range optFns {
		fn(&s.opts)
	}
	s.obs = s.opts.Observer
	s.lim = s.opts.Limiter
	if s.obs != nil {
		s.opened = time.Now()
		s.obs.ScopeOpened(ctx)
	}
	return s
}

func (s *Scope) Context() context.Context { return s.ctx }

// Len returns the number of resources waiting to be closed.
func (s *Scope) Len() int { return s.reg.Len() }

// Bindings returns a read-only view of the resources acquired so far.
func (s *Scope) Bindings() Bindings { return Bindings{s: s} }

// Acquire calls fn and records its result under hint. If fn fails nothing is
// recorded and its error is returned as is. Once cleanup has started Acquire
// returns ErrResourceScopeClosed without calling fn.
func (s *Scope) Acquire(hint string, fn func(ctx context.Context) (any, error)) (any, error) {
	if s.state >= stateClosing {
		return nil, ErrResourceScopeClosed
	}
	if fn == nil {
		return nil, ErrNilAcquire
	}
	if s.opts.MaxResources > 0 && s.reg.Len() >= s.opts.MaxResources {
		return nil, ErrResourceLimitExceeded
	}

	var release func()
	if s.lim != nil {
		if err := s.lim.Acquire(s.ctx); err != nil {
			return nil, err
		}
		release = s.lim.Release
	}
	recorded := false
	defer func() {
		if !recorded && release != nil {
			release()
		}
	}()

	start := time.Now()
	res, err := fn(s.ctx)
	if s.obs != nil {
		s.obs.ResourceAcquired(s.ctx, hint, time.Since(start), err)
	}
	if err != nil {
		Logger().Debug("acquire failed", zap.String("hint", hint), zap.Error(err))
		return nil, err
	}

	s.reg.Push(Entry{Resource: res, Hint: hint, release: release})
	recorded = true
	if s.bound == nil {
		s.bound = make(map[string]any)
	}
	s.bound[hint] = res
	Logger().Debug("acquired", zap.String("hint", hint))
	return res, nil
}

// Use is the typed form of Acquire.
func Use[T any](s *Scope, hint string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if fn == nil {
		return zero, ErrNilAcquire
	}
	res, err := s.Acquire(hint, func(ctx context.Context) (any, error) { return fn(ctx) })
	if err != nil {
		return zero, err
	}
	v, _ := res.(T)
	return v, nil
}

// Close closes every recorded resource in reverse acquisition order and
// returns the aggregated result, err being the body's error if any. Later
// calls close nothing and return err.
func (s *Scope) Close(err error) error {
	if s.state >= stateClosing {
		return err
	}
	s.state = stateClosing
	entries := s.reg.Drain()
	err = closeAll(entries, err, s.closeEntry)
	s.reg.Clear()
	s.bound = nil
	s.state = stateClosed

	if n := len(SuppressedOf(err)); n > 0 {
		Logger().Warn("scope closed with suppressed errors",
			zap.Int("suppressed", n),
			zap.Error(err))
	}
	if s.obs != nil {
		s.obs.ScopeClosed(s.ctx, time.Since(s.opened), err)
	}
	return err
}

// Handle closes the scope from a deferred call, folding the function's
// error and any panic into *errp:
//
//	func copyFile(ctx context.Context) (err error) {
//		s := closer.New(ctx)
//		defer s.Handle(&err)
//		...
//	}
//
// With PanicAsError disabled, a panic is re-raised once every resource has
// been closed.
func (s *Scope) Handle(errp *error) {
	var err error
	if errp != nil {
		err = *errp
	}
	if r := recover(); r != nil {
		pe := newPanicError(r)
		if !s.opts.PanicAsError {
			if cerr := s.Close(pe); cerr != pe {
				Logger().Error("close errors dropped while re-panicking", zap.Error(cerr))
			}
			panic(r)
		}
		err = pe
	}
	err = s.Close(err)
	if errp != nil {
		*errp = err
	}
}

func (s *Scope) closeEntry(e Entry) error {
	if e.release != nil {
		defer e.release()
	}
	start := time.Now()
	err := s.reg.Close(e.Resource)
	if s.obs != nil {
		s.obs.ResourceClosed(s.ctx, e.Hint, time.Since(start), err)
	}
	if err != nil {
		Logger().Warn("close failed", zap.String("hint", e.Hint), zap.Error(err))
	} else {
		Logger().Debug("closed", zap.String("hint", e.Hint))
	}
	return err
}

// Bindings exposes the resources of a scope by hint. A later resource
// shadows an earlier one bound under the same hint.
type Bindings struct {
	s *Scope
}

// Get returns the resource bound to hint.
func (b Bindings) Get(hint string) (any, bool) {
	if b.s == nil {
		return nil, false
	}
	res, ok := b.s.bound[hint]
	return res, ok
}

// Hints returns the bound hints in sorted order.
func (b Bindings) Hints() []string {
	if b.s == nil {
		return nil
	}
	out := make([]string, 0, len(b.s.bound))
	for h := range b.s.bound {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// Close closes res now, honouring close functions attached by AddCloseFn.
// If res is one of the scope's resources it is removed from the scope, its
// limiter slot is returned, and it is not closed again when the scope
// closes. The error is the resource's own close error, without a hint.
func (b Bindings) Close(res any) error {
	if b.s == nil {
		return Close(res)
	}
	return b.s.closeResource(res)
}

func (s *Scope) closeResource(res any) error {
	e, ok := s.reg.Remove(res)
	if !ok {
		return s.reg.Close(res)
	}
	return safeClose(e, s.closeEntry)
}

func (b Bindings) Len() int {
	if b.s == nil {
		return 0
	}
	return len(b.s.bound)
}

// Lookup returns the resource bound to hint as a T, unwrapping a *Tagged[T].
func Lookup[T any](b Bindings, hint string) (T, error) {
	var zero T
	res, ok := b.Get(hint)
	if !ok {
		return zero, fmt.Errorf("closer: no resource bound to %q", hint)
	}
	switch v := res.(type) {
	case T:
		return v, nil
	case *Tagged[T]:
		return v.Value(), nil
	}
	return zero, fmt.Errorf("closer: resource %q has unexpected type %T", hint, res)
}
