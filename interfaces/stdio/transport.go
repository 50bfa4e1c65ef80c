// Package stdio carries the request envelope protocol as newline-delimited
// JSON: one request per input line, one response per output line.
package stdio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"flowengine/application/dispatch"
	apperrors "flowengine/pkg/errors"
)

const maxLineBytes = 16 << 20

// Submitter enqueues a request and hands back where its response will arrive
type Submitter interface {
	Submit(ctx context.Context, req dispatch.Request) (<-chan dispatch.Response, error)
}

// Transport reads requests from one stream and writes responses to another
type Transport struct {
	pool   Submitter
	logger *zap.Logger

	mu sync.Mutex
	w  io.Writer
}

// NewTransport creates a transport writing responses to w
func NewTransport(pool Submitter, w io.Writer, logger *zap.Logger) *Transport {
	return &Transport{
		pool:   pool,
		logger: logger,
		w:      w,
	}
}

// Serve handles lines from r until EOF or ctx is done, then waits for the
// responses already submitted before returning
func (t *Transport) Serve(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var inflight sync.WaitGroup
	defer inflight.Wait()

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var req dispatch.Request
		if err := json.Unmarshal(line, &req); err != nil {
			t.write(dispatch.NewErrorResponse("",
				apperrors.NewValidationError(fmt.Sprintf("invalid request envelope: %v", err))))
			continue
		}

		replies, err := t.pool.Submit(ctx, req)
		if err != nil {
			t.write(dispatch.NewErrorResponse(req.ID, err))
			continue
		}

		inflight.Add(1)
		go func(id string) {
			defer inflight.Done()
			select {
			case resp := <-replies:
				t.write(resp)
			case <-ctx.Done():
				t.write(dispatch.NewErrorResponse(id, apperrors.NewTimeoutError(req.Type)))
			}
		}(req.ID)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read requests: %w", err)
	}
	return nil
}

// write emits one response line. A response that cannot be encoded is
// replaced by an error response so the caller is never left waiting.
func (t *Transport) write(resp dispatch.Response) {
	data, err := dispatch.Encode(resp)
	if err != nil {
		t.logger.Error("Failed to encode response", zap.String("id", resp.ID), zap.Error(err))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.w.Write(append(data, '\n')); err != nil {
		t.logger.Error("Failed to write response", zap.String("id", resp.ID), zap.Error(err))
	}
}
