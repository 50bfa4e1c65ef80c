package stdio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flowengine/application/dispatch"
	"flowengine/application/queries/bus"
	"flowengine/application/queries/handlers"
	"flowengine/application/worker"
	"flowengine/domain/services"
	"flowengine/tests/fixtures"
)

func newPool(t *testing.T) *worker.Pool {
	t.Helper()
	logger := zap.NewNop()
	clock := fixtures.FixedClock{}
	b := bus.NewQueryBus()
	require.NoError(t, handlers.RegisterAll(b,
		handlers.NewAnalyzeComplexityHandler(services.NewComplexityAnalyzer(), logger),
		handlers.NewAnalyzeProgressHandler(clock, logger),
		handlers.NewDetectBottlenecksHandler(),
		handlers.NewFindCriticalPathHandler(),
	))
	pool := worker.NewPool(dispatch.NewDispatcher(b, nil, clock, logger), worker.Options{Workers: 2}, logger)
	t.Cleanup(pool.Close)
	return pool
}

func decodeLines(t *testing.T, out string) map[string]dispatch.Response {
	t.Helper()
	responses := make(map[string]dispatch.Response)
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		var resp dispatch.Response
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		responses[resp.ID] = resp
	}
	return responses
}

func TestServeAnswersEveryLine(t *testing.T) {
	input := strings.Join([]string{
		`{"id":"a","type":"analyze-complexity","data":{"nodes":[{"id":"n1","type":"task","status":"idle"}],"connections":[]}}`,
		``,
		`{"id":"b","type":"analyze-progress","data":{"nodes":[],"timeline":[]}}`,
		`{"id":"c","type":"summarize"}`,
		`not json`,
	}, "\n")
	var out bytes.Buffer

	err := NewTransport(newPool(t), &out, zap.NewNop()).Serve(context.Background(), strings.NewReader(input))

	require.NoError(t, err)
	responses := decodeLines(t, out.String())
	require.Len(t, responses, 4)
	assert.Equal(t, dispatch.ResponseSuccess, responses["a"].Type)
	assert.Equal(t, dispatch.ResponseSuccess, responses["b"].Type)
	assert.Equal(t, "unknown operation: summarize", responses["c"].Error)
	assert.Contains(t, responses[""].Error, "invalid request envelope")
}

type stuckPool struct{}

func (stuckPool) Submit(ctx context.Context, req dispatch.Request) (<-chan dispatch.Response, error) {
	return make(chan dispatch.Response), nil
}

func TestServeStopsWaitingWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	var out bytes.Buffer

	err := NewTransport(stuckPool{}, &out, zap.NewNop()).
		Serve(ctx, strings.NewReader(`{"id":"x","type":"critical-path"}`+"\n"))

	require.NoError(t, err)
	resp := decodeLines(t, out.String())["x"]
	assert.Equal(t, "operation 'critical-path' timed out", resp.Error)
}

type overflowPool struct{}

func (overflowPool) Submit(ctx context.Context, req dispatch.Request) (<-chan dispatch.Response, error) {
	replies := make(chan dispatch.Response, 1)
	replies <- dispatch.NewSuccessResponse(req.ID, services.ProgressReport{TotalStoryPoints: math.Inf(1)})
	return replies, nil
}

func TestServeAnswersWhenResultCannotBeEncoded(t *testing.T) {
	var out bytes.Buffer

	err := NewTransport(overflowPool{}, &out, zap.NewNop()).
		Serve(context.Background(), strings.NewReader(`{"id":"big","type":"analyze-progress"}`+"\n"))

	require.NoError(t, err)
	resp := decodeLines(t, out.String())["big"]
	assert.Equal(t, dispatch.ResponseError, resp.Type)
	assert.Equal(t, "failed to encode result", resp.Error)
}
