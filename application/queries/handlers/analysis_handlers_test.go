package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flowengine/application/queries"
	"flowengine/application/queries/bus"
	"flowengine/domain/core/entities"
	"flowengine/domain/core/valueobjects"
	"flowengine/domain/services"
	"flowengine/tests/fixtures"
)

func newTestBus(t *testing.T) *bus.QueryBus {
	t.Helper()

	logger := zap.NewNop()
	b := bus.NewQueryBus()
	require.NoError(t, RegisterAll(
		b,
		NewAnalyzeComplexityHandler(services.NewComplexityAnalyzer(), logger),
		NewAnalyzeProgressHandler(fixtures.FixedClock{}, logger),
		NewDetectBottlenecksHandler(),
		NewFindCriticalPathHandler(),
	))
	return b
}

func TestAnalyzeComplexityHandler(t *testing.T) {
	b := newTestBus(t)

	result, err := b.Ask(context.Background(), queries.AnalyzeComplexityQuery{
		Nodes:       fixtures.Tasks("A", "B"),
		Connections: []entities.Connection{fixtures.Dependency("A", "B"), fixtures.Dependency("A", "B")},
	})

	require.NoError(t, err)
	report, ok := result.(services.AnalysisReport)
	require.True(t, ok)
	assert.Equal(t, 6.0, report.ConnectionComplexity.WeightedComplexity)
	assert.Equal(t, []string{"A", "B"}, report.CriticalPath.Path)
}

func TestAnalyzeProgressHandlerUsesClock(t *testing.T) {
	b := newTestBus(t)
	now := fixtures.FixedNow

	result, err := b.Ask(context.Background(), queries.AnalyzeProgressQuery{
		Nodes: []entities.Node{
			fixtures.NewNodeBuilder("A").WithStatus(valueobjects.NodeStatusCompleted).WithStoryPoints(1).Build(),
		},
		Timeline: []entities.TimelineEvent{fixtures.Completed("A", now.Add(-time.Hour))},
	})

	require.NoError(t, err)
	report, ok := result.(services.ProgressReport)
	require.True(t, ok)
	assert.Equal(t, services.DefaultWindow(now), report.TimeRange)
	assert.Len(t, report.Burndown, 2)
}

func TestExtensionHandlers(t *testing.T) {
	b := newTestBus(t)
	nodes := []entities.Node{fixtures.NewNodeBuilder("x").WithStatus(valueobjects.NodeStatusBlocked).Build()}

	bottlenecks, err := b.Ask(context.Background(), queries.DetectBottlenecksQuery{Nodes: nodes})
	require.NoError(t, err)
	assert.Len(t, bottlenecks.([]services.Bottleneck), 1)

	path, err := b.Ask(context.Background(), queries.FindCriticalPathQuery{Nodes: nodes})
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, path.(services.CriticalPath).Path)
}

func TestHandlerRejectsForeignQuery(t *testing.T) {
	_, err := NewDetectBottlenecksHandler().Handle(context.Background(), queries.AnalyzeProgressQuery{})

	assert.Error(t, err)
}
