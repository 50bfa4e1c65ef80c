package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"flowengine/application/dispatch"
	apperrors "flowengine/pkg/errors"
)

const maxBodyBytes = 10 << 20

// Caller runs one request envelope to completion
type Caller interface {
	Call(ctx context.Context, req dispatch.Request) (dispatch.Response, error)
}

// AnalyzeHandler serves the request envelope protocol over plain HTTP
type AnalyzeHandler struct {
	pool    Caller
	timeout time.Duration
	logger  *zap.Logger
}

// NewAnalyzeHandler creates a new analyze handler. timeout bounds how long a
// caller waits for the pool; zero means no bound beyond the request context.
func NewAnalyzeHandler(pool Caller, timeout time.Duration, logger *zap.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		pool:    pool,
		timeout: timeout,
		logger:  logger,
	}
}

// Analyze handles POST /api/v1/analyze. Analysis errors travel inside the
// envelope with status 200; only an undecodable envelope is a 400.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req dispatch.Request
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest,
			dispatch.NewErrorResponse("", apperrors.NewValidationError(fmt.Sprintf("invalid request envelope: %v", err))))
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	resp, err := h.pool.Call(ctx, req)
	if err != nil {
		h.logger.Warn("Analysis request not answered",
			zap.String("id", req.ID),
			zap.String("type", req.Type),
			zap.String("requestID", chimiddleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		respondJSON(w, apperrors.HTTPStatus(err), dispatch.NewErrorResponse(req.ID, err))
		return
	}

	h.respondEnvelope(w, resp)
}

// respondEnvelope encodes resp before any header goes out, so a result that
// cannot be encoded still reaches the caller as an error envelope
func (h *AnalyzeHandler) respondEnvelope(w http.ResponseWriter, resp dispatch.Response) {
	data, err := dispatch.Encode(resp)
	if err != nil {
		h.logger.Error("Failed to encode response", zap.String("id", resp.ID), zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(data, '\n'))
}

// ListOperations handles GET /api/v1/operations
func (h *AnalyzeHandler) ListOperations(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"operations": dispatch.Operations()})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
