package services

import (
	"testing"

	"flowengine/domain/core/entities"
	"flowengine/domain/core/valueobjects"
	"flowengine/tests/fixtures"

	"github.com/stretchr/testify/assert"
)

func TestScoreNode(t *testing.T) {
	tests := []struct {
		name     string
		node     entities.Node
		expected float64
	}{
		{
			name:     "plain task",
			node:     fixtures.NewNodeBuilder("a").Build(),
			expected: 3,
		},
		{
			name:     "unknown type uses default weight",
			node:     fixtures.NewNodeBuilder("a").WithType("diagram").Build(),
			expected: 2,
		},
		{
			name:     "component with content",
			node:     fixtures.NewNodeBuilder("a").WithType(valueobjects.NodeTypeComponent).WithContent(2, 1, 1).Build(),
			expected: 1 + 3 + 1 + 2 + 0.3,
		},
		{
			name:     "story points are added",
			node:     fixtures.NewNodeBuilder("a").WithType(valueobjects.NodeTypeFile).WithStoryPoints(3).Build(),
			expected: 5,
		},
		{
			name: "clamped at ten",
			node: fixtures.NewNodeBuilder("a").
				WithType(valueobjects.NodeTypeCode).
				WithContent(2, 1, 3).
				WithStoryPoints(2).
				Build(),
			expected: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, ScoreNode(tt.node), 1e-9)
		})
	}
}

func TestScoreNodeStaysInRange(t *testing.T) {
	nodes := []entities.Node{
		{ID: "empty"},
		fixtures.NewNodeBuilder("big").WithType(valueobjects.NodeTypeCode).WithContent(40, 40, 40).WithStoryPoints(100).Build(),
		fixtures.NewNodeBuilder("zero").WithType(valueobjects.NodeTypeComment).WithStoryPoints(0).Build(),
		fixtures.NewNodeBuilder("mid").WithType(valueobjects.NodeTypeComponent).WithContent(3, 0, 7).Build(),
	}

	for _, node := range nodes {
		score := ScoreNode(node)
		assert.GreaterOrEqual(t, score, 1.0, node.ID)
		assert.LessOrEqual(t, score, 10.0, node.ID)
	}
}

func TestSummarizeNodesEmpty(t *testing.T) {
	summary := SummarizeNodes(nil)

	assert.Equal(t, 0, summary.TotalNodes)
	assert.Equal(t, 0.0, summary.AverageComplexity)
	assert.Equal(t, 0.0, summary.MaxComplexity)
	assert.Equal(t, map[string]int{BucketLow: 0, BucketMedium: 0, BucketHigh: 0, BucketVeryHigh: 0}, summary.Distribution)
	assert.Empty(t, summary.Scores)
}

func TestSummarizeNodes(t *testing.T) {
	nodes := []entities.Node{
		fixtures.NewNodeBuilder("task").Build(),
		fixtures.NewNodeBuilder("code").WithType(valueobjects.NodeTypeCode).WithStoryPoints(5).Build(),
		fixtures.NewNodeBuilder("file").WithType(valueobjects.NodeTypeFile).WithStoryPoints(4).Build(),
	}

	summary := SummarizeNodes(nodes)

	assert.Equal(t, 3, summary.TotalNodes)
	assert.InDelta(t, (3.0+10.0+6.0)/3, summary.AverageComplexity, 1e-9)
	assert.Equal(t, 10.0, summary.MaxComplexity)
	assert.Equal(t, 1, summary.Distribution[BucketMedium])
	assert.Equal(t, 1, summary.Distribution[BucketHigh])
	assert.Equal(t, 1, summary.Distribution[BucketVeryHigh])
	assert.Equal(t, []NodeScore{{"task", 3}, {"code", 10}, {"file", 6}}, summary.Scores)
}

func TestSummarizeConnectionsCountsParallelEdges(t *testing.T) {
	conns := []entities.Connection{
		fixtures.Dependency("A", "B"),
		fixtures.Dependency("A", "B"),
	}

	summary := SummarizeConnections(conns)

	assert.Equal(t, 2, summary.TotalConnections)
	assert.Equal(t, 6.0, summary.WeightedComplexity)
	assert.Equal(t, 3.0, summary.AverageWeight)
	assert.Equal(t, map[string]int{"dependency": 2}, summary.TypeDistribution)
}

func TestSummarizeConnectionsMixedTypes(t *testing.T) {
	conns := []entities.Connection{
		fixtures.Connect("a", "b", valueobjects.ConnectionTypeBlocks),
		fixtures.Connect("a", "c", valueobjects.ConnectionTypeImport),
		fixtures.Connect("b", "c", "custom"),
	}

	summary := SummarizeConnections(conns)

	assert.Equal(t, 7.0, summary.WeightedComplexity)
	assert.InDelta(t, 7.0/3, summary.AverageWeight, 1e-9)
	assert.Equal(t, map[string]int{"blocks": 1, "import": 1, "custom": 1}, summary.TypeDistribution)
}

func TestSummarizeConnectionsEmpty(t *testing.T) {
	summary := SummarizeConnections(nil)

	assert.Equal(t, 0, summary.TotalConnections)
	assert.Equal(t, 0.0, summary.AverageWeight)
	assert.Empty(t, summary.TypeDistribution)
}

func TestOverallComplexityUsesBinaryDensity(t *testing.T) {
	nodes := SummarizeNodes(fixtures.Tasks("a", "b"))

	withoutEdges := OverallComplexity(nodes, SummarizeConnections(nil))
	oneEdge := OverallComplexity(nodes, SummarizeConnections([]entities.Connection{fixtures.Dependency("a", "b")}))
	manyEdges := OverallComplexity(nodes, SummarizeConnections(fixtures.FanOut("a", 12, valueobjects.ConnectionTypeAPI)))

	assert.InDelta(t, 1.8, withoutEdges, 1e-9)
	assert.InDelta(t, 2.2, oneEdge, 1e-9)
	assert.Equal(t, oneEdge, manyEdges)
}

func TestOverallComplexityEmpty(t *testing.T) {
	assert.Equal(t, 0.0, OverallComplexity(SummarizeNodes(nil), SummarizeConnections(nil)))
}

func TestBucket(t *testing.T) {
	tests := []struct {
		score    float64
		expected string
	}{
		{0, BucketLow},
		{1.99, BucketLow},
		{2, BucketMedium},
		{4.99, BucketMedium},
		{5, BucketHigh},
		{7.99, BucketHigh},
		{8, BucketVeryHigh},
		{10, BucketVeryHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Bucket(tt.score), "score %v", tt.score)
	}
}
