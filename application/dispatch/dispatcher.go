package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"flowengine/application/ports"
	"flowengine/application/queries/bus"
	"flowengine/domain/events"
	apperrors "flowengine/pkg/errors"
)

// Dispatcher routes request envelopes to the query bus. It keeps no state
// between requests and never retries.
type Dispatcher struct {
	bus       *bus.QueryBus
	publisher ports.EventPublisher
	clock     ports.Clock
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher. A nil publisher disables events.
func NewDispatcher(queryBus *bus.QueryBus, publisher ports.EventPublisher, clock ports.Clock, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		bus:       queryBus,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

// Dispatch answers one request. Every failure, including a panic inside an
// analyzer, comes back as an error response carrying the request id.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (resp Response) {
	start := time.Now()
	logger := d.logger.With(zap.String("request_id", req.ID), zap.String("operation", req.Type))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("analysis panicked",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			resp = d.fail(ctx, req, apperrors.NewInternalError(fmt.Sprintf("analysis failed: %v", r)))
		}
	}()

	op, err := ParseOperation(req.Type)
	if err != nil {
		logger.Warn("unknown operation")
		return d.fail(ctx, req, err)
	}

	query, nodeCount, err := op.Decode(req.Data)
	if err != nil {
		logger.Warn("payload rejected", zap.Error(err))
		return d.fail(ctx, req, err)
	}

	result, err := d.bus.Ask(ctx, query)
	if err != nil {
		if appErr := apperrors.GetAppError(err); appErr != nil && appErr.StackTrace != "" {
			logger.Error("analysis failed", zap.Error(err), zap.String("stack", appErr.StackTrace))
		} else {
			logger.Warn("analysis failed", zap.Error(err))
		}
		return d.fail(ctx, req, err)
	}

	elapsed := time.Since(start)
	logger.Debug("analysis completed",
		zap.Int("nodes", nodeCount),
		zap.Duration("duration", elapsed),
	)
	d.publish(ctx, events.NewAnalysisCompleted(req.ID, op.String(), nodeCount, elapsed, d.clock.Now()))

	return NewSuccessResponse(req.ID, result)
}

func (d *Dispatcher) fail(ctx context.Context, req Request, err error) Response {
	resp := NewErrorResponse(req.ID, err)
	d.publish(ctx, events.NewAnalysisFailed(req.ID, req.Type, resp.Error, d.clock.Now()))
	return resp
}

// publish is best effort; a failed publish never changes the response
func (d *Dispatcher) publish(ctx context.Context, event events.DomainEvent) {
	if d.publisher == nil {
		return
	}
	if err := d.publisher.Publish(ctx, event); err != nil {
		d.logger.Warn("failed to publish event",
			zap.String("event_type", event.GetEventType()),
			zap.Error(err),
		)
	}
}
