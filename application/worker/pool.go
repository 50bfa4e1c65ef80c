package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"flowengine/application/dispatch"
	apperrors "flowengine/pkg/errors"
)

const (
	defaultWorkers   = 1
	defaultQueueSize = 64
)

// Handler answers one request envelope
type Handler interface {
	Dispatch(ctx context.Context, req dispatch.Request) dispatch.Response
}

// Options configures the pool
type Options struct {
	// Workers is the number of isolated workers. Each one handles a single
	// request at a time.
	Workers int

	// QueueSize bounds the shared inbox. Submit blocks while it is full.
	QueueSize int
}

type job struct {
	ctx   context.Context
	req   dispatch.Request
	reply chan dispatch.Response
}

// Pool feeds requests from one FIFO inbox to a fixed set of workers.
// Workers share nothing but the inbox; a started request always runs to
// completion even if its caller has gone away.
type Pool struct {
	handler Handler
	jobs    chan job
	logger  *zap.Logger

	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewPool starts the workers
func NewPool(handler Handler, opts Options, logger *zap.Logger) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}

	p := &Pool{
		handler: handler,
		jobs:    make(chan job, opts.QueueSize),
		logger:  logger,
	}

	for i := 0; i < opts.Workers; i++ {
		p.wg.Add(1)
		go func(workerNum int) {
			defer p.wg.Done()
			p.workerLoop(workerNum)
		}(i)
	}

	logger.Info("worker pool started",
		zap.Int("workers", opts.Workers),
		zap.Int("queue_size", opts.QueueSize),
	)
	return p
}

// Submit enqueues req and returns the channel its response will arrive on.
// The channel is buffered so a worker never blocks on an absent reader.
func (p *Pool) Submit(ctx context.Context, req dispatch.Request) (<-chan dispatch.Response, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, apperrors.NewUnavailableError("worker pool")
	}

	reply := make(chan dispatch.Response, 1)
	select {
	case p.jobs <- job{ctx: ctx, req: req, reply: reply}:
		return reply, nil
	case <-ctx.Done():
		return nil, apperrors.NewTimeoutError(req.Type).WithCause(ctx.Err())
	}
}

// Call submits req and waits for its response or for ctx to end. A response
// that arrives after ctx ended is dropped.
func (p *Pool) Call(ctx context.Context, req dispatch.Request) (dispatch.Response, error) {
	reply, err := p.Submit(ctx, req)
	if err != nil {
		return dispatch.Response{}, err
	}

	select {
	case resp := <-reply:
		return resp, nil
	case <-ctx.Done():
		p.logger.Warn("request abandoned by caller",
			zap.String("request_id", req.ID),
			zap.String("operation", req.Type),
		)
		return dispatch.Response{}, apperrors.NewTimeoutError(req.Type).WithCause(ctx.Err())
	}
}

// Close stops accepting requests, lets queued ones finish, and waits for the
// workers to exit
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.jobs)
		p.mu.Unlock()

		p.wg.Wait()
		p.logger.Info("worker pool stopped")
	})
}

func (p *Pool) workerLoop(workerNum int) {
	for j := range p.jobs {
		if j.ctx.Err() != nil {
			p.logger.Debug("skipping request whose caller already left",
				zap.Int("worker", workerNum),
				zap.String("request_id", j.req.ID),
			)
			j.reply <- dispatch.NewErrorResponse(j.req.ID, apperrors.NewTimeoutError(j.req.Type))
			continue
		}
		j.reply <- p.run(workerNum, j)
	}
}

// run detaches the request from caller cancellation so a started analysis
// is never interrupted
func (p *Pool) run(workerNum int, j job) (resp dispatch.Response) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker recovered from panic",
				zap.Int("worker", workerNum),
				zap.String("request_id", j.req.ID),
				zap.Any("panic", r),
			)
			resp = dispatch.NewErrorResponse(j.req.ID, apperrors.NewInternalError(fmt.Sprintf("worker failed: %v", r)))
		}
	}()

	return p.handler.Dispatch(context.WithoutCancel(j.ctx), j.req)
}
