package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is something that has already happened inside the engine
type DomainEvent interface {
	GetEventID() string
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventID     string    `json:"event_id"`
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetEventID() string      { return e.EventID }
func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

const (
	EventTypeAnalysisCompleted = "analysis.completed"
	EventTypeAnalysisFailed    = "analysis.failed"
)

// AnalysisCompleted is raised after an operation produced a result
type AnalysisCompleted struct {
	BaseEvent
	RequestID  string  `json:"request_id"`
	Operation  string  `json:"operation"`
	NodeCount  int     `json:"node_count"`
	DurationMs float64 `json:"duration_ms"`
}

// NewAnalysisCompleted creates an AnalysisCompleted event keyed by request id
func NewAnalysisCompleted(requestID, operation string, nodeCount int, duration time.Duration, timestamp time.Time) AnalysisCompleted {
	return AnalysisCompleted{
		BaseEvent: BaseEvent{
			EventID:     uuid.NewString(),
			AggregateID: requestID,
			EventType:   EventTypeAnalysisCompleted,
			Timestamp:   timestamp,
			Version:     1,
		},
		RequestID:  requestID,
		Operation:  operation,
		NodeCount:  nodeCount,
		DurationMs: float64(duration) / float64(time.Millisecond),
	}
}

// AnalysisFailed is raised when an operation returned an error envelope
type AnalysisFailed struct {
	BaseEvent
	RequestID string `json:"request_id"`
	Operation string `json:"operation"`
	Reason    string `json:"reason"`
}

// NewAnalysisFailed creates an AnalysisFailed event
func NewAnalysisFailed(requestID, operation, reason string, timestamp time.Time) AnalysisFailed {
	return AnalysisFailed{
		BaseEvent: BaseEvent{
			EventID:     uuid.NewString(),
			AggregateID: requestID,
			EventType:   EventTypeAnalysisFailed,
			Timestamp:   timestamp,
			Version:     1,
		},
		RequestID: requestID,
		Operation: operation,
		Reason:    reason,
	}
}
