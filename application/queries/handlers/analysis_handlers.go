package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"flowengine/application/ports"
	"flowengine/application/queries"
	"flowengine/application/queries/bus"
	"flowengine/domain/services"
	apperrors "flowengine/pkg/errors"
)

// AnalyzeComplexityHandler produces complexity reports
type AnalyzeComplexityHandler struct {
	analyzer *services.ComplexityAnalyzer
	logger   *zap.Logger
}

// NewAnalyzeComplexityHandler creates a new complexity handler
func NewAnalyzeComplexityHandler(analyzer *services.ComplexityAnalyzer, logger *zap.Logger) *AnalyzeComplexityHandler {
	return &AnalyzeComplexityHandler{
		analyzer: analyzer,
		logger:   logger,
	}
}

// Handle executes the complexity query
func (h *AnalyzeComplexityHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.AnalyzeComplexityQuery)
	if !ok {
		return nil, unexpectedQuery(query)
	}

	report := h.analyzer.Analyze(q.Nodes, q.Connections)

	h.logger.Debug("complexity analyzed",
		zap.Int("nodes", len(q.Nodes)),
		zap.Int("connections", len(q.Connections)),
		zap.Float64("overall", report.OverallComplexity),
		zap.Int("bottlenecks", len(report.Bottlenecks)),
	)
	if report.CriticalPath.CycleEdgesSkipped > 0 {
		h.logger.Info("cycle edges skipped during critical path search",
			zap.Int("skipped", report.CriticalPath.CycleEdgesSkipped),
		)
	}

	return report, nil
}

// DetectBottlenecksHandler returns only the bottleneck list
type DetectBottlenecksHandler struct{}

// NewDetectBottlenecksHandler creates a new bottleneck handler
func NewDetectBottlenecksHandler() *DetectBottlenecksHandler {
	return &DetectBottlenecksHandler{}
}

// Handle executes the bottleneck query
func (h *DetectBottlenecksHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.DetectBottlenecksQuery)
	if !ok {
		return nil, unexpectedQuery(query)
	}
	return services.DetectBottlenecks(q.Nodes, q.Connections), nil
}

// FindCriticalPathHandler returns only the critical path
type FindCriticalPathHandler struct{}

// NewFindCriticalPathHandler creates a new critical path handler
func NewFindCriticalPathHandler() *FindCriticalPathHandler {
	return &FindCriticalPathHandler{}
}

// Handle executes the critical path query
func (h *FindCriticalPathHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.FindCriticalPathQuery)
	if !ok {
		return nil, unexpectedQuery(query)
	}
	return services.FindCriticalPath(q.Nodes, q.Connections), nil
}

// AnalyzeProgressHandler produces progress reports
type AnalyzeProgressHandler struct {
	clock  ports.Clock
	logger *zap.Logger
}

// NewAnalyzeProgressHandler creates a new progress handler
func NewAnalyzeProgressHandler(clock ports.Clock, logger *zap.Logger) *AnalyzeProgressHandler {
	return &AnalyzeProgressHandler{
		clock:  clock,
		logger: logger,
	}
}

// Handle executes the progress query
func (h *AnalyzeProgressHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.AnalyzeProgressQuery)
	if !ok {
		return nil, unexpectedQuery(query)
	}

	report := services.AnalyzeProgress(q.Nodes, q.Timeline, q.TimeRange, h.clock.Now())

	h.logger.Debug("progress analyzed",
		zap.Int("nodes", len(q.Nodes)),
		zap.Int("events", len(q.Timeline)),
		zap.Float64("velocity", report.Velocity),
	)

	return report, nil
}

// RegisterAll wires every analysis handler into the bus
func RegisterAll(
	b *bus.QueryBus,
	complexity *AnalyzeComplexityHandler,
	progress *AnalyzeProgressHandler,
	bottlenecks *DetectBottlenecksHandler,
	criticalPath *FindCriticalPathHandler,
) error {
	registrations := []struct {
		query   bus.Query
		handler bus.QueryHandler
	}{
		{queries.AnalyzeComplexityQuery{}, complexity},
		{queries.AnalyzeProgressQuery{}, progress},
		{queries.DetectBottlenecksQuery{}, bottlenecks},
		{queries.FindCriticalPathQuery{}, criticalPath},
	}

	for _, r := range registrations {
		if err := b.Register(r.query, r.handler); err != nil {
			return err
		}
	}
	return nil
}

func unexpectedQuery(query bus.Query) error {
	return apperrors.NewInternalError(fmt.Sprintf("unexpected query type %T", query))
}
