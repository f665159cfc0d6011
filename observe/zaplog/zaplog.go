// Package zaplog provides a closer.Observer that writes scope lifecycle
// events to a zap logger.
package zaplog

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/NetPo4ki/go-closeall/closer"
)

// Observer logs acquisitions and closes at Debug and failures at Warn.
type Observer struct {
	l *zap.Logger
}

// New returns an Observer writing to l. A nil l yields a no-op observer.
func New(l *zap.Logger) *Observer {
	if l == nil {
		l = zap.NewNop()
	}
	return &Observer{l: l.Named("closer")}
}

// NewNop returns an observer that discards everything.
func NewNop() *Observer { return New(nil) }

func (o *Observer) ScopeOpened(context.Context) {
	o.l.Debug("scope opened")
}

func (o *Observer) ResourceAcquired(_ context.Context, hint string, dur time.Duration, err error) {
	if err != nil {
		o.l.Warn("acquire failed",
			zap.String("hint", hint),
			zap.Duration("duration", dur),
			zap.Error(err))
		return
	}
	o.l.Debug("resource acquired",
		zap.String("hint", hint),
		zap.Duration("duration", dur))
}

func (o *Observer) ResourceClosed(_ context.Context, hint string, dur time.Duration, err error) {
	if err != nil {
		o.l.Warn("close failed",
			zap.String("hint", hint),
			zap.Duration("duration", dur),
			zap.Error(err))
		return
	}
	o.l.Debug("resource closed",
		zap.String("hint", hint),
		zap.Duration("duration", dur))
}

func (o *Observer) ScopeClosed(_ context.Context, dur time.Duration, err error) {
	if err == nil {
		o.l.Debug("scope closed", zap.Duration("duration", dur))
		return
	}
	fields := []zap.Field{
		zap.Duration("duration", dur),
		zap.Error(err),
	}
	if hint := closer.HintOf(err); hint != "" {
		fields = append(fields, zap.String("hint", hint))
	}
	if sup := closer.SuppressedOf(err); len(sup) > 0 {
		fields = append(fields, zap.Errors("suppressed", sup))
	}
	o.l.Info("scope closed with error", fields...)
}
