package prom

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NetPo4ki/go-closeall/closer"
)

func clause(hint string, closeErr error) closer.Clause {
	return closer.Clause{Hint: hint, Acquire: func(context.Context, closer.Bindings) (any, error) {
		return closer.Func(func() error { return closeErr }), nil
	}}
}

func TestMetricsRecordScope(t *testing.T) {
	t.Parallel()
	m := New("test")
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(m))

	bodyErr := errors.New("body")
	err := closer.Run(context.Background(),
		[]closer.Clause{clause("a", nil), clause("b", errors.New("close b")), clause("c", errors.New("close c"))},
		func(context.Context, closer.Bindings) error { return bodyErr },
		closer.WithObserver(m))
	require.ErrorIs(t, err, bodyErr)

	assert.InDelta(t, 1, testutil.ToFloat64(m.scopesOpened), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.acquired.WithLabelValues(resultOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.closed.WithLabelValues(resultOK)), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.closed.WithLabelValues(resultError)), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.openResources), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.scopesClosed.WithLabelValues(resultError)), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.suppressed), 0)
}

func TestMetricsAcquireFailure(t *testing.T) {
	t.Parallel()
	m := New("test")
	boom := errors.New("boom")
	err := closer.Run(context.Background(),
		[]closer.Clause{clause("a", nil), {Hint: "b", Acquire: func(context.Context, closer.Bindings) (any, error) {
			return nil, boom
		}}},
		nil, closer.WithObserver(m))
	require.ErrorIs(t, err, boom)

	assert.InDelta(t, 1, testutil.ToFloat64(m.acquired.WithLabelValues(resultOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.acquired.WithLabelValues(resultError)), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.openResources), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.suppressed), 0)
}

func TestMetricsLint(t *testing.T) {
	t.Parallel()
	problems, err := testutil.CollectAndLint(New("test"))
	require.NoError(t, err)
	assert.Empty(t, problems)
}
