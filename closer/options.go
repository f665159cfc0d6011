package closer

import (
	"context"
	"time"
)

type Option func(*Options)

type Options struct {
	PanicAsError bool
	Observer     Observer
	Limiter      Limiter
	MaxResources int
}

func defaultOptions() Options { return Options{PanicAsError: true} }

func WithPanicAsError(v bool) Option { return func(o *Options) { o.PanicAsError = v } }

func WithObserver(obs Observer) Option { return func(o *Options) { o.Observer = obs } }

// WithLimiter makes every acquisition hold a slot of l until the resource is
// closed. One Limiter may be shared by many scopes.
func WithLimiter(l Limiter) Option { return func(o *Options) { o.Limiter = l } }

// WithMaxResources caps the number of resources a single scope may hold.
func WithMaxResources(n int) Option { return func(o *Options) { o.MaxResources = n } }

type Observer interface {
	ScopeOpened(ctx context.Context)
	ResourceAcquired(ctx context.Context, hint string, dur time.Duration, err error)
	ResourceClosed(ctx context.Context, hint string, dur time.Duration, err error)
	ScopeClosed(ctx context.Context, dur time.Duration, err error)
}
