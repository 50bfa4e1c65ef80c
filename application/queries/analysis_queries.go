package queries

import (
	"flowengine/domain/core/entities"
)

// AnalyzeComplexityQuery asks for the full complexity report of a graph snapshot
type AnalyzeComplexityQuery struct {
	Nodes       []entities.Node       `json:"nodes" validate:"dive"`
	Connections []entities.Connection `json:"connections" validate:"dive"`
}

// Validate validates the query
func (q AnalyzeComplexityQuery) Validate() error {
	return ValidateStruct(q)
}

// DetectBottlenecksQuery asks only for the bottleneck list of a snapshot
type DetectBottlenecksQuery AnalyzeComplexityQuery

// Validate validates the query
func (q DetectBottlenecksQuery) Validate() error {
	return ValidateStruct(q)
}

// FindCriticalPathQuery asks only for the critical path of a snapshot
type FindCriticalPathQuery AnalyzeComplexityQuery

// Validate validates the query
func (q FindCriticalPathQuery) Validate() error {
	return ValidateStruct(q)
}

// AnalyzeProgressQuery asks for progress statistics over an optional window.
// A missing window means the trailing seven days.
type AnalyzeProgressQuery struct {
	Nodes     []entities.Node          `json:"nodes" validate:"dive"`
	Timeline  []entities.TimelineEvent `json:"timeline" validate:"dive"`
	TimeRange *entities.TimeRange      `json:"timeRange,omitempty"`
}

// Validate validates the query
func (q AnalyzeProgressQuery) Validate() error {
	return ValidateStruct(q)
}
