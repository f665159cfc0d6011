package closer

import (
	"io"
	"reflect"
)

// Entry pairs an acquired resource with the hint of the clause that
// produced it.
type Entry struct {
	Resource any
	Hint     string

	// release returns a limiter slot once the resource is closed.
	release func()
}

// Registry records acquired resources as a LIFO stack, together with the
// close functions attached to references by Tag.
type Registry struct {
	entries []Entry
	tags    map[any]func() error
}

// Push records a newly acquired resource.
func (r *Registry) Push(e Entry) {
	r.entries = append(r.entries, e)
}

// Len returns the number of recorded resources.
func (r *Registry) Len() int { return len(r.entries) }

// Entries returns a copy of the recorded resources in close order, newest
// first.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		out = append(out, r.entries[i])
	}
	return out
}

// Drain returns the recorded resources in close order and empties the stack.
func (r *Registry) Drain() []Entry {
	out := r.Entries()
	r.entries = nil
	return out
}

// Clear drops every entry and every attached close function.
func (r *Registry) Clear() {
	r.entries = nil
	r.tags = nil
}

// Tag attaches fn to the pointer ref, preserving its identity. Closing ref
// through this registry then calls fn, unless ref can close itself.
func (r *Registry) Tag(ref any, fn func() error) error {
	v := reflect.ValueOf(ref)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return ErrNotReference
	}
	if r.tags == nil {
		r.tags = make(map[any]func() error)
	}
	r.tags[ref] = fn
	return nil
}

// Close closes res, consulting the functions attached by Tag for values
// that cannot close themselves.
func (r *Registry) Close(res any) error {
	if absent(res) {
		return nil
	}
	switch res.(type) {
	case io.Closer, interface{ Close() }:
		return Close(res)
	}
	if fn, ok := r.tagged(res); ok {
		return fn()
	}
	return &NotCloseableError{Resource: res}
}

// Remove deletes the most recently pushed entry holding res and reports
// whether one was found.
func (r *Registry) Remove(res any) (Entry, bool) {
	if res == nil || !reflect.ValueOf(res).Comparable() {
		return Entry{}, false
	}
	t := reflect.TypeOf(res)
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if reflect.TypeOf(e.Resource) == t && e.Resource == res {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return e, true
		}
	}
	return Entry{}, false
}

func (r *Registry) tagged(res any) (func() error, bool) {
	if len(r.tags) == 0 || reflect.TypeOf(res).Kind() != reflect.Pointer {
		return nil, false
	}
	fn, ok := r.tags[res]
	return fn, ok
}
