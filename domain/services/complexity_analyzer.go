package services

import (
	"fmt"

	"flowengine/domain/core/entities"
)

// Priority ranks a recommendation
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

const (
	highOverallComplexity  = 6.0
	longCriticalPath       = 5
	veryHighShareThreshold = 0.3
)

// Recommendation is an actionable suggestion derived from a report
type Recommendation struct {
	Code     string   `json:"code"`
	Priority Priority `json:"priority"`
	Message  string   `json:"message"`
}

// AnalysisReport is the full complexity analysis of one graph snapshot
type AnalysisReport struct {
	NodeComplexity       NodeComplexitySummary       `json:"nodeComplexity"`
	ConnectionComplexity ConnectionComplexitySummary `json:"connectionComplexity"`
	OverallComplexity    float64                     `json:"overallComplexity"`
	Bottlenecks          []Bottleneck                `json:"bottlenecks"`
	CriticalPath         CriticalPath                `json:"criticalPath"`
	Recommendations      []Recommendation            `json:"recommendations"`
}

// ComplexityAnalyzer composes the scoring, bottleneck and critical path
// services into a single report. It holds no state between calls.
type ComplexityAnalyzer struct{}

// NewComplexityAnalyzer creates a new complexity analyzer
func NewComplexityAnalyzer() *ComplexityAnalyzer {
	return &ComplexityAnalyzer{}
}

// Analyze builds a fresh report for the given snapshot
func (a *ComplexityAnalyzer) Analyze(nodes []entities.Node, conns []entities.Connection) AnalysisReport {
	nodeSummary := SummarizeNodes(nodes)
	connSummary := SummarizeConnections(conns)

	report := AnalysisReport{
		NodeComplexity:       nodeSummary,
		ConnectionComplexity: connSummary,
		OverallComplexity:    OverallComplexity(nodeSummary, connSummary),
		Bottlenecks:          DetectBottlenecks(nodes, conns),
		CriticalPath:         FindCriticalPath(nodes, conns),
	}
	report.Recommendations = a.recommend(report, conns)
	return report
}

// recommend derives suggestions from a finished report. Rules are additive
// and evaluated in a fixed order.
func (a *ComplexityAnalyzer) recommend(report AnalysisReport, conns []entities.Connection) []Recommendation {
	recs := make([]Recommendation, 0)

	if report.OverallComplexity >= highOverallComplexity {
		recs = append(recs, Recommendation{
			Code:     "split-complex-nodes",
			Priority: PriorityHigh,
			Message:  fmt.Sprintf("Overall complexity is %.1f; break large nodes into smaller tasks", report.OverallComplexity),
		})
	}

	highSeverity, blocked := 0, 0
	for _, b := range report.Bottlenecks {
		if b.Severity == SeverityHigh {
			highSeverity++
		}
		if b.Type == BottleneckBlocked {
			blocked++
		}
	}
	if highSeverity > 0 {
		recs = append(recs, Recommendation{
			Code:     "resolve-bottlenecks",
			Priority: PriorityHigh,
			Message:  fmt.Sprintf("%d high-severity bottleneck(s) found; reduce fan-in and fan-out around them", highSeverity),
		})
	}
	if blocked > 0 {
		recs = append(recs, Recommendation{
			Code:     "unblock-tasks",
			Priority: PriorityHigh,
			Message:  fmt.Sprintf("%d blocked node(s) are holding up dependent work", blocked),
		})
	}

	if len(report.CriticalPath.Path) >= longCriticalPath {
		recs = append(recs, Recommendation{
			Code:     "parallelize-critical-path",
			Priority: PriorityMedium,
			Message:  fmt.Sprintf("Critical path spans %d nodes; look for steps that can run in parallel", len(report.CriticalPath.Path)),
		})
	}

	if len(conns) > 0 && !hasOrderingEdge(conns) {
		recs = append(recs, Recommendation{
			Code:     "add-dependencies",
			Priority: PriorityLow,
			Message:  "No dependency or sequence connections; add them to expose execution order",
		})
	}

	if total := report.NodeComplexity.TotalNodes; total > 0 {
		share := float64(report.NodeComplexity.Distribution[BucketVeryHigh]) / float64(total)
		if share > veryHighShareThreshold {
			recs = append(recs, Recommendation{
				Code:     "review-high-complexity",
				Priority: PriorityMedium,
				Message:  fmt.Sprintf("%.0f%% of nodes are very high complexity", share*100),
			})
		}
	}

	return recs
}

func hasOrderingEdge(conns []entities.Connection) bool {
	for _, conn := range conns {
		if IsOrderingEdge(conn) {
			return true
		}
	}
	return false
}
