package dispatch

import (
	"encoding/json"
	"fmt"

	"flowengine/application/queries"
	"flowengine/application/queries/bus"
	apperrors "flowengine/pkg/errors"
)

// Operation is the closed set of request types the engine routes
type Operation string

const (
	OperationAnalyzeComplexity Operation = "analyze-complexity"
	OperationAnalyzeProgress   Operation = "analyze-progress"
	OperationDetectBottlenecks Operation = "detect-bottlenecks"
	OperationCriticalPath      Operation = "critical-path"
)

// Operations lists every routable operation
func Operations() []Operation {
	return []Operation{
		OperationAnalyzeComplexity,
		OperationAnalyzeProgress,
		OperationDetectBottlenecks,
		OperationCriticalPath,
	}
}

// ParseOperation maps a request type to an Operation. Anything else is an
// unknown operation error naming the input.
func ParseOperation(name string) (Operation, error) {
	switch op := Operation(name); op {
	case OperationAnalyzeComplexity, OperationAnalyzeProgress, OperationDetectBottlenecks, OperationCriticalPath:
		return op, nil
	default:
		return "", apperrors.NewUnknownOperationError(name)
	}
}

func (o Operation) String() string {
	return string(o)
}

// Decode turns the request payload into the query for this operation and
// reports how many nodes it carries. A missing payload decodes as empty.
func (o Operation) Decode(data json.RawMessage) (bus.Query, int, error) {
	switch o {
	case OperationAnalyzeComplexity:
		var q queries.AnalyzeComplexityQuery
		err := decodePayload(o, data, &q)
		return q, len(q.Nodes), err
	case OperationDetectBottlenecks:
		var q queries.DetectBottlenecksQuery
		err := decodePayload(o, data, &q)
		return q, len(q.Nodes), err
	case OperationCriticalPath:
		var q queries.FindCriticalPathQuery
		err := decodePayload(o, data, &q)
		return q, len(q.Nodes), err
	case OperationAnalyzeProgress:
		var q queries.AnalyzeProgressQuery
		err := decodePayload(o, data, &q)
		return q, len(q.Nodes), err
	default:
		return nil, 0, apperrors.NewUnknownOperationError(string(o))
	}
}

func decodePayload(op Operation, data json.RawMessage, target interface{}) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("invalid payload for %s: %v", op, err)).WithCause(err)
	}
	return nil
}
