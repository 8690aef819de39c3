// Package handler implements the HTTP endpoints of the concierge API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gifco-ai/restaurant-concierge/internal/middleware"
	"github.com/gifco-ai/restaurant-concierge/internal/model"
	"github.com/gifco-ai/restaurant-concierge/pkg/logger"
)

// QueryService processes one conversational turn.
type QueryService interface {
	Query(ctx context.Context, req *model.QueryRequest, authToken string) *model.QueryResponse
}

// QueryHandler handles POST /query.
type QueryHandler struct {
	service QueryService
	timeout time.Duration
	logger  *logger.Logger
}

// NewQueryHandler creates a query handler. timeout bounds the whole
// pipeline for one request, LLM and upstream calls included.
func NewQueryHandler(svc QueryService, timeout time.Duration, log *logger.Logger) *QueryHandler {
	return &QueryHandler{
		service: svc,
		timeout: timeout,
		logger:  log,
	}
}

// Query handles POST /query
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req model.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateQuery(req.Query); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateThreadID(req.ThreadID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := h.service.Query(ctx, &req, middleware.GetAuthToken(r.Context()))

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		h.logger.Warn("query timed out",
			zap.String("thread_id", resp.ThreadID),
			zap.Duration("timeout", h.timeout),
		)
		writeJSON(w, http.StatusRequestTimeout, &model.QueryResponse{
			Success:   false,
			Message:   "Your request took too long to process. Please try again.",
			Query:     req.Query,
			ThreadID:  resp.ThreadID,
			Error:     "request timed out",
			Timestamp: time.Now(),
		})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
