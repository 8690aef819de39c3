package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gifco-ai/restaurant-concierge/internal/middleware"
	"github.com/gifco-ai/restaurant-concierge/internal/model"
	"github.com/gifco-ai/restaurant-concierge/pkg/logger"
)

type stubService struct {
	gotToken string
	gotReq   *model.QueryRequest
	resp     *model.QueryResponse
	delay    time.Duration
}

func (s *stubService) Query(ctx context.Context, req *model.QueryRequest, authToken string) *model.QueryResponse {
	s.gotReq = req
	s.gotToken = authToken
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
		}
	}
	if s.resp != nil {
		return s.resp
	}
	return &model.QueryResponse{
		Success:   true,
		Message:   "ok",
		Query:     req.Query,
		ThreadID:  "t1",
		Timestamp: time.Now(),
	}
}

func postQuery(t *testing.T, h *QueryHandler, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}

	// Run the auth middleware so the handler sees the token the way it
	// does in the full stack.
	rec := httptest.NewRecorder()
	middleware.TokenPassthrough()(http.HandlerFunc(h.Query)).ServeHTTP(rec, req)
	return rec
}

func TestQuerySuccess(t *testing.T) {
	svc := &stubService{}
	h := NewQueryHandler(svc, 5*time.Second, logger.NewNop())

	rec := postQuery(t, h, `{"query":"best pizza","thread_id":"t1"}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp model.QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Query != "best pizza" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if svc.gotReq.ThreadID != "t1" {
		t.Errorf("thread id not forwarded: %+v", svc.gotReq)
	}
}

func TestQueryForwardsBearerToken(t *testing.T) {
	svc := &stubService{}
	h := NewQueryHandler(svc, 5*time.Second, logger.NewNop())

	postQuery(t, h, `{"query":"save these"}`, map[string]string{
		"Authorization": "Bearer tok123",
	})

	if svc.gotToken != "tok123" {
		t.Errorf("token = %q, want tok123", svc.gotToken)
	}
}

func TestQueryInvalidBody(t *testing.T) {
	h := NewQueryHandler(&stubService{}, 5*time.Second, logger.NewNop())

	rec := postQuery(t, h, `{"query":`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestQueryEmptyQuery(t *testing.T) {
	h := NewQueryHandler(&stubService{}, 5*time.Second, logger.NewNop())

	rec := postQuery(t, h, `{"query":""}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestQueryTimeout(t *testing.T) {
	svc := &stubService{delay: 200 * time.Millisecond}
	h := NewQueryHandler(svc, 20*time.Millisecond, logger.NewNop())

	rec := postQuery(t, h, `{"query":"slow"}`, nil)

	if rec.Code != http.StatusRequestTimeout {
		t.Fatalf("status = %d, want 408", rec.Code)
	}

	var resp model.QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Success || resp.Error != "request timed out" {
		t.Errorf("unexpected timeout response: %+v", resp)
	}
}

func TestHealthEndpoints(t *testing.T) {
	h := NewHealthHandler(nil)

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("ready status = %d", rec.Code)
	}
}
