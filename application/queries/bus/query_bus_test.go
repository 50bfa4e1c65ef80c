package bus

import (
	"context"
	"errors"
	"sync"
	"testing"

	apperrors "flowengine/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingQuery struct {
	Value string
}

func (q pingQuery) Validate() error {
	if q.Value == "" {
		return errors.New("value is required")
	}
	return nil
}

type otherQuery struct{}

func (otherQuery) Validate() error { return nil }

type recordingMetrics struct {
	mu      sync.Mutex
	counts  map[string]int
	stopped int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{counts: make(map[string]int)}
}

func (m *recordingMetrics) StartTimer(metric, label string) Timer {
	return timerFunc(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.stopped++
	})
}

func (m *recordingMetrics) Increment(metric, label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[metric+":"+label]++
}

type timerFunc func()

func (f timerFunc) Stop() { f() }

type orderMiddleware struct {
	name  string
	trail *[]string
}

func (m orderMiddleware) Wrap(next QueryHandler) QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		*m.trail = append(*m.trail, m.name)
		return next.Handle(ctx, query)
	})
}

func echoHandler() QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		return query.(pingQuery).Value, nil
	})
}

func TestQueryBusAsk(t *testing.T) {
	b := NewQueryBus()
	require.NoError(t, b.Register(pingQuery{}, echoHandler()))

	result, err := b.Ask(context.Background(), pingQuery{Value: "pong"})

	require.NoError(t, err)
	assert.Equal(t, "pong", result)
}

func TestQueryBusRejectsDuplicateRegistration(t *testing.T) {
	b := NewQueryBus()
	require.NoError(t, b.Register(pingQuery{}, echoHandler()))

	assert.Error(t, b.Register(pingQuery{}, echoHandler()))
}

func TestQueryBusValidationFailure(t *testing.T) {
	b := NewQueryBus()
	require.NoError(t, b.Register(pingQuery{}, echoHandler()))

	_, err := b.Ask(context.Background(), pingQuery{})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "value is required", apperrors.Message(err))
}

func TestQueryBusUnregisteredQuery(t *testing.T) {
	_, err := NewQueryBus().Ask(context.Background(), otherQuery{})

	require.Error(t, err)
	assert.True(t, apperrors.IsInternal(err))
}

func TestQueryBusHandlerErrorKeepsType(t *testing.T) {
	b := NewQueryBus()
	require.NoError(t, b.Register(otherQuery{}, QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		return nil, apperrors.NewTimeoutError("other")
	})))

	_, err := b.Ask(context.Background(), otherQuery{})

	assert.True(t, apperrors.IsTimeout(err))
}

func TestQueryBusMiddlewareOrder(t *testing.T) {
	var trail []string
	b := NewQueryBus(
		orderMiddleware{name: "outer", trail: &trail},
		orderMiddleware{name: "inner", trail: &trail},
	)
	require.NoError(t, b.Register(pingQuery{}, echoHandler()))

	_, err := b.Ask(context.Background(), pingQuery{Value: "x"})

	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, trail)
}

func TestMetricsMiddleware(t *testing.T) {
	metrics := newRecordingMetrics()
	b := NewQueryBus(NewMetricsMiddleware(metrics), NewTracingMiddleware("test"))
	require.NoError(t, b.Register(pingQuery{}, echoHandler()))
	require.NoError(t, b.Register(otherQuery{}, QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		return nil, errors.New("boom")
	})))

	_, err := b.Ask(context.Background(), pingQuery{Value: "x"})
	require.NoError(t, err)
	_, err = b.Ask(context.Background(), otherQuery{})
	require.Error(t, err)

	assert.Equal(t, 1, metrics.counts["query_count:pingQuery"])
	assert.Equal(t, 1, metrics.counts["query_success:pingQuery"])
	assert.Equal(t, 1, metrics.counts["query_count:otherQuery"])
	assert.Equal(t, 1, metrics.counts["query_errors:otherQuery"])
	assert.Equal(t, 2, metrics.stopped)
}
