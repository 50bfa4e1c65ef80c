package services

import (
	"encoding/json"
	"fmt"
	"testing"

	"flowengine/domain/core/entities"
	"flowengine/domain/core/valueobjects"
	"flowengine/tests/fixtures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recommendationCodes(recs []Recommendation) []string {
	codes := make([]string, 0, len(recs))
	for _, rec := range recs {
		codes = append(codes, rec.Code)
	}
	return codes
}

func TestAnalyzeEmptyGraph(t *testing.T) {
	report := NewComplexityAnalyzer().Analyze(nil, nil)

	assert.Equal(t, 0.0, report.NodeComplexity.AverageComplexity)
	assert.Equal(t, 0.0, report.NodeComplexity.MaxComplexity)
	assert.Equal(t, 0.0, report.OverallComplexity)
	assert.NotNil(t, report.Bottlenecks)
	assert.Empty(t, report.Bottlenecks)
	assert.Empty(t, report.CriticalPath.Path)
	assert.Empty(t, report.Recommendations)
}

func TestAnalyzeParallelDependencies(t *testing.T) {
	nodes := fixtures.Tasks("A", "B")
	conns := []entities.Connection{fixtures.Dependency("A", "B"), fixtures.Dependency("A", "B")}

	report := NewComplexityAnalyzer().Analyze(nodes, conns)

	assert.Equal(t, 2, report.ConnectionComplexity.TotalConnections)
	assert.Equal(t, 6.0, report.ConnectionComplexity.WeightedComplexity)
	assert.Empty(t, report.Bottlenecks)
	assert.Equal(t, []string{"A", "B"}, report.CriticalPath.Path)
	assert.InDelta(t, 2.2, report.OverallComplexity, 1e-9)
	assert.Empty(t, report.Recommendations)
}

func TestAnalyzeRecommendations(t *testing.T) {
	chain := func(n int) ([]entities.Node, []entities.Connection) {
		nodes := make([]entities.Node, 0, n)
		conns := make([]entities.Connection, 0, n)
		for i := 0; i < n; i++ {
			nodes = append(nodes, fixtures.NewNodeBuilder(fmt.Sprintf("n%d", i)).Build())
			if i > 0 {
				conns = append(conns, fixtures.Dependency(fmt.Sprintf("n%d", i-1), fmt.Sprintf("n%d", i)))
			}
		}
		return nodes, conns
	}

	tests := []struct {
		name     string
		build    func() ([]entities.Node, []entities.Connection)
		expected []string
	}{
		{
			name: "blocked node",
			build: func() ([]entities.Node, []entities.Connection) {
				return []entities.Node{fixtures.NewNodeBuilder("a").WithStatus(valueobjects.NodeStatusBlocked).Build()}, nil
			},
			expected: []string{"resolve-bottlenecks", "unblock-tasks"},
		},
		{
			name:     "long chain",
			build:    func() ([]entities.Node, []entities.Connection) { return chain(5) },
			expected: []string{"parallelize-critical-path"},
		},
		{
			name:     "short chain",
			build:    func() ([]entities.Node, []entities.Connection) { return chain(4) },
			expected: []string{},
		},
		{
			name: "no ordering edges",
			build: func() ([]entities.Node, []entities.Connection) {
				return fixtures.Tasks("a", "b"), []entities.Connection{fixtures.Connect("a", "b", valueobjects.ConnectionTypeReference)}
			},
			expected: []string{"add-dependencies"},
		},
		{
			name: "very complex nodes",
			build: func() ([]entities.Node, []entities.Connection) {
				nodes := []entities.Node{
					fixtures.NewNodeBuilder("a").WithType(valueobjects.NodeTypeCode).WithStoryPoints(5).Build(),
					fixtures.NewNodeBuilder("b").WithType(valueobjects.NodeTypeCode).WithStoryPoints(5).Build(),
				}
				return nodes, []entities.Connection{fixtures.Dependency("a", "b")}
			},
			expected: []string{"split-complex-nodes", "review-high-complexity"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, conns := tt.build()
			report := NewComplexityAnalyzer().Analyze(nodes, conns)
			assert.Equal(t, tt.expected, recommendationCodes(report.Recommendations))
		})
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	nodes := []entities.Node{
		fixtures.NewNodeBuilder("a").WithType(valueobjects.NodeTypeComponent).WithContent(1, 2, 3).Build(),
		fixtures.NewNodeBuilder("b").WithStatus(valueobjects.NodeStatusBlocked).WithStoryPoints(5).Build(),
		fixtures.NewNodeBuilder("c").WithEstimate(4).Build(),
		fixtures.NewNodeBuilder("d").WithType(valueobjects.NodeTypeFolder).Build(),
	}
	conns := append(fixtures.FanIn("d", 4, valueobjects.ConnectionTypeImport),
		fixtures.Dependency("a", "b"),
		fixtures.Connect("b", "c", valueobjects.ConnectionTypeSequence),
		fixtures.Dependency("c", "a"),
	)

	analyzer := NewComplexityAnalyzer()
	first, err := json.Marshal(analyzer.Analyze(nodes, conns))
	require.NoError(t, err)
	second, err := json.Marshal(analyzer.Analyze(nodes, conns))
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
}
