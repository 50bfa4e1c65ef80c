package services

import (
	"fmt"
	"sort"

	"flowengine/domain/core/entities"
)

// BottleneckType names the rule that flagged a node
type BottleneckType string

const (
	BottleneckConvergence BottleneckType = "convergence"
	BottleneckDivergence  BottleneckType = "divergence"
	BottleneckBlocked     BottleneckType = "blocked"
	BottleneckComplexity  BottleneckType = "complexity"
)

// Severity grades a bottleneck
type Severity string

const (
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

const (
	convergenceThreshold     = 3
	convergenceHighThreshold = 5
	divergenceThreshold      = 4
	divergenceHighThreshold  = 6
	storyPointThreshold      = 4.0
	blockedImpact            = 5.0
)

// Bottleneck is a node flagged as a structural risk point
type Bottleneck struct {
	NodeID      string         `json:"nodeId"`
	Type        BottleneckType `json:"type"`
	Severity    Severity       `json:"severity"`
	Impact      float64        `json:"impact"`
	Incoming    int            `json:"incoming"`
	Outgoing    int            `json:"outgoing"`
	Description string         `json:"description"`
}

// DegreeCounts holds per-node fan-in and fan-out
type DegreeCounts struct {
	Incoming map[string]int
	Outgoing map[string]int
}

// CountDegrees tallies incoming and outgoing connections in one pass.
// Parallel edges are counted individually; endpoints need not exist in the node set.
func CountDegrees(conns []entities.Connection) DegreeCounts {
	counts := DegreeCounts{
		Incoming: make(map[string]int),
		Outgoing: make(map[string]int),
	}
	for _, conn := range conns {
		counts.Outgoing[conn.SourceNodeID]++
		counts.Incoming[conn.TargetNodeID]++
	}
	return counts
}

// DetectBottlenecks flags nodes with high fan-in, high fan-out, blocked status
// or excessive story points. A node may be flagged by several rules. The
// result is ordered by impact, highest first; equal impacts keep encounter order.
func DetectBottlenecks(nodes []entities.Node, conns []entities.Connection) []Bottleneck {
	degrees := CountDegrees(conns)
	bottlenecks := make([]Bottleneck, 0)

	for _, node := range nodes {
		in := degrees.Incoming[node.ID]
		out := degrees.Outgoing[node.ID]

		if in > convergenceThreshold {
			severity := SeverityMedium
			if in > convergenceHighThreshold {
				severity = SeverityHigh
			}
			bottlenecks = append(bottlenecks, Bottleneck{
				NodeID:      node.ID,
				Type:        BottleneckConvergence,
				Severity:    severity,
				Impact:      2 * float64(in),
				Incoming:    in,
				Outgoing:    out,
				Description: fmt.Sprintf("%d connections converge on this node", in),
			})
		}

		if out > divergenceThreshold {
			severity := SeverityMedium
			if out > divergenceHighThreshold {
				severity = SeverityHigh
			}
			bottlenecks = append(bottlenecks, Bottleneck{
				NodeID:      node.ID,
				Type:        BottleneckDivergence,
				Severity:    severity,
				Impact:      1.5 * float64(out),
				Incoming:    in,
				Outgoing:    out,
				Description: fmt.Sprintf("%d connections fan out from this node", out),
			})
		}

		if node.IsBlocked() {
			bottlenecks = append(bottlenecks, Bottleneck{
				NodeID:      node.ID,
				Type:        BottleneckBlocked,
				Severity:    SeverityHigh,
				Impact:      blockedImpact,
				Incoming:    in,
				Outgoing:    out,
				Description: "node is blocked",
			})
		}

		if sp, ok := node.StoryPoints(); ok && sp > storyPointThreshold {
			bottlenecks = append(bottlenecks, Bottleneck{
				NodeID:      node.ID,
				Type:        BottleneckComplexity,
				Severity:    SeverityMedium,
				Impact:      sp,
				Incoming:    in,
				Outgoing:    out,
				Description: fmt.Sprintf("%g story points exceed the threshold of %g", sp, storyPointThreshold),
			})
		}
	}

	sort.SliceStable(bottlenecks, func(i, j int) bool {
		return bottlenecks[i].Impact > bottlenecks[j].Impact
	})

	return bottlenecks
}
