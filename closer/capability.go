package closer

import (
	"io"
	"reflect"
)

// Func adapts a close function to io.Closer.
type Func func() error

func (f Func) Close() error {
	if f == nil {
		return nil
	}
	return f()
}

// Tagged is a value carrying its own close function.
type Tagged[T any] struct {
	value T
	fn    func(T) error
}

// WithCloseFn returns a new resource wrapping v that calls fn(v) when closed.
// v itself is left untouched.
func WithCloseFn[T any](v T, fn func(T) error) *Tagged[T] {
	return &Tagged[T]{value: v, fn: fn}
}

// Value returns the wrapped value.
func (t *Tagged[T]) Value() T { return t.value }

func (t *Tagged[T]) Close() error {
	if t.fn == nil {
		return nil
	}
	return t.fn(t.value)
}

// Close closes r. A nil r, including a nil pointer, func, map, chan or
// slice, is absent and closing it is a no-op. r must otherwise implement
// io.Closer or have a Close method without results; anything else yields a
// *NotCloseableError. Close functions attached by AddCloseFn are only
// honoured by Bindings.Close.
func Close(r any) error {
	if absent(r) {
		return nil
	}
	switch c := r.(type) {
	case io.Closer:
		return c.Close()
	case interface{ Close() }:
		c.Close()
		return nil
	}
	return &NotCloseableError{Resource: r}
}

// absent reports whether r is the no-op resource.
func absent(r any) bool {
	if r == nil {
		return true
	}
	v := reflect.ValueOf(r)
	switch v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Chan, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// AddCloseFn attaches fn to ref in the scope's registry and returns ref
// unchanged. The attachment lives as long as the scope's registry.
//
// Nothing is attached, and ref is still returned, when ref or fn is nil,
// when b is the zero Bindings, or when the scope has already started
// closing.
func AddCloseFn[T any](b Bindings, ref *T, fn func(*T) error) *T {
	if ref == nil || fn == nil || b.s == nil {
		return ref
	}
	if b.s.state >= stateClosing {
		Logger().Warn("close function not attached to a closed scope")
		return ref
	}
	// Tag only rejects non-pointers and nil pointers.
	_ = b.s.reg.Tag(ref, func() error { return fn(ref) })
	return ref
}
