package entities

import (
	"time"

	"flowengine/domain/core/valueobjects"
)

// Connection is a directed, typed edge between two nodes. Several connections
// may join the same pair; each one counts on its own.
type Connection struct {
	ID           string                      `json:"id,omitempty"`
	SourceNodeID string                      `json:"sourceNodeId" validate:"required"`
	TargetNodeID string                      `json:"targetNodeId" validate:"required"`
	Type         valueobjects.ConnectionType `json:"type"`
}

// EventNodeCompleted marks the moment a node's work was finished
const EventNodeCompleted = "node_completed"

// TimelineEvent is a timestamped change to a node
type TimelineEvent struct {
	Type      string `json:"type" validate:"required"`
	NodeID    string `json:"nodeId"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
}

// Time returns the event timestamp in UTC
func (e TimelineEvent) Time() time.Time {
	return time.UnixMilli(e.Timestamp).UTC()
}

// IsCompletion reports whether the event records a node completion
func (e TimelineEvent) IsCompletion() bool {
	return e.Type == EventNodeCompleted
}

// TimeRange is an inclusive window in epoch milliseconds
type TimeRange struct {
	Start int64 `json:"start"`
	End   int64 `json:"end" validate:"gtefield=Start"`
}

// Contains reports whether ts (epoch ms) lies inside the window
func (r TimeRange) Contains(ts int64) bool {
	return ts >= r.Start && ts <= r.End
}

// Days returns the window length in days
func (r TimeRange) Days() float64 {
	return float64(r.End-r.Start) / float64(24*time.Hour/time.Millisecond)
}
