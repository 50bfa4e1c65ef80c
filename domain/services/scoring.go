package services

import (
	"math"

	"flowengine/domain/core/entities"
)

const (
	baseNodeScore = 1.0
	maxNodeScore  = 10.0

	todoWeight      = 0.5
	snippetWeight   = 2.0
	referenceWeight = 0.3

	nodeScoreShare    = 0.6
	densityScoreShare = 0.4
)

// Distribution bucket labels
const (
	BucketLow      = "Low"
	BucketMedium   = "Medium"
	BucketHigh     = "High"
	BucketVeryHigh = "Very High"
)

// NodeScore pairs a node id with its complexity score
type NodeScore struct {
	NodeID string  `json:"nodeId"`
	Score  float64 `json:"score"`
}

// NodeComplexitySummary aggregates node scores
type NodeComplexitySummary struct {
	TotalNodes        int            `json:"totalNodes"`
	AverageComplexity float64        `json:"averageComplexity"`
	MaxComplexity     float64        `json:"maxComplexity"`
	Distribution      map[string]int `json:"distribution"`
	Scores            []NodeScore    `json:"scores"`
}

// ConnectionComplexitySummary aggregates connection weights
type ConnectionComplexitySummary struct {
	TotalConnections   int            `json:"totalConnections"`
	WeightedComplexity float64        `json:"weightedComplexity"`
	AverageWeight      float64        `json:"averageWeight"`
	TypeDistribution   map[string]int `json:"typeDistribution"`
}

// ScoreNode maps a node to a complexity score in [1, 10].
// Absent optional fields contribute nothing.
func ScoreNode(node entities.Node) float64 {
	score := baseNodeScore + node.Type.Weight()
	score += todoWeight * float64(node.TodoCount())
	score += snippetWeight * float64(node.CodeSnippetCount())
	score += referenceWeight * float64(node.ReferenceCount())
	if sp, ok := node.StoryPoints(); ok {
		score += sp
	}
	return math.Max(baseNodeScore, math.Min(maxNodeScore, score))
}

// ConnectionWeight returns the complexity weight of a single connection
func ConnectionWeight(conn entities.Connection) float64 {
	return conn.Type.Weight()
}

// SummarizeNodes scores every node and aggregates the results.
// An empty node set yields zero average and max.
func SummarizeNodes(nodes []entities.Node) NodeComplexitySummary {
	summary := NodeComplexitySummary{
		TotalNodes: len(nodes),
		Distribution: map[string]int{
			BucketLow:      0,
			BucketMedium:   0,
			BucketHigh:     0,
			BucketVeryHigh: 0,
		},
		Scores: make([]NodeScore, 0, len(nodes)),
	}

	total := 0.0
	for _, node := range nodes {
		score := ScoreNode(node)
		total += score
		if score > summary.MaxComplexity {
			summary.MaxComplexity = score
		}
		summary.Distribution[Bucket(score)]++
		summary.Scores = append(summary.Scores, NodeScore{NodeID: node.ID, Score: score})
	}

	summary.AverageComplexity = mean(total, len(nodes))
	return summary
}

// SummarizeConnections weighs every connection and aggregates the results
func SummarizeConnections(conns []entities.Connection) ConnectionComplexitySummary {
	summary := ConnectionComplexitySummary{
		TotalConnections: len(conns),
		TypeDistribution: make(map[string]int),
	}

	for _, conn := range conns {
		summary.WeightedComplexity += ConnectionWeight(conn)
		summary.TypeDistribution[string(conn.Type)]++
	}

	summary.AverageWeight = mean(summary.WeightedComplexity, len(conns))
	return summary
}

// OverallComplexity blends the mean node score with connection density.
// Density is connections/max(1, connections), so it is 1 whenever any
// connection exists and 0 otherwise. Callers depend on this exact value.
func OverallComplexity(nodes NodeComplexitySummary, conns ConnectionComplexitySummary) float64 {
	density := float64(conns.TotalConnections) / math.Max(1, float64(conns.TotalConnections))
	return math.Min(maxNodeScore, nodeScoreShare*nodes.AverageComplexity+densityScoreShare*density)
}

// Bucket returns the distribution label for a score
func Bucket(score float64) string {
	switch {
	case score < 2:
		return BucketLow
	case score < 5:
		return BucketMedium
	case score < 8:
		return BucketHigh
	default:
		return BucketVeryHigh
	}
}

// IsOrderingEdge reports whether a connection takes part in path computation
func IsOrderingEdge(conn entities.Connection) bool {
	return conn.Type.IsOrdering()
}

// mean of an empty set is 0
func mean(total float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return total / float64(count)
}
