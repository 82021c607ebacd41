package middleware

import (
	"net/http"
	"net/http/httptest"
	"reservations/pkg/logger"
	"reservations/pkg/model"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestRateLimit_PerPrincipal(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute, logger.NewNop())
	defer limiter.Stop()

	handler := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(userID string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/rooms", nil)
		req = req.WithContext(WithPrincipal(req.Context(), model.Principal{ID: userID, Role: model.RoleUser}))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	if code := send("a"); code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", code)
	}
	if code := send("a"); code != http.StatusOK {
		t.Fatalf("second request: expected 200, got %d", code)
	}
	if code := send("a"); code != http.StatusTooManyRequests {
		t.Errorf("third request: expected 429, got %d", code)
	}
	if code := send("b"); code != http.StatusOK {
		t.Errorf("other principal should have its own budget, got %d", code)
	}
}

func TestIdempotency_ReplaysPerCaller(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	handler := Idempotency(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"1"}}`))
	}))

	send := func(userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{}`))
		req.Header.Set(IdempotencyHeader, "key-1")
		req = req.WithContext(WithPrincipal(req.Context(), model.Principal{ID: userID}))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	first := send("a")
	second := send("a")
	third := send("b")

	if calls != 2 {
		t.Errorf("expected handler to run twice (once per caller), ran %d times", calls)
	}
	if second.Code != http.StatusCreated || second.Header().Get("Idempotent-Replayed") != "true" {
		t.Errorf("expected replayed 201, got %d replayed=%q", second.Code, second.Header().Get("Idempotent-Replayed"))
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("replayed body differs: %q vs %q", first.Body.String(), second.Body.String())
	}
	if third.Header().Get("Idempotent-Replayed") != "" {
		t.Error("another caller must not receive a replay")
	}
}

func TestContentTypeValidation(t *testing.T) {
	handler := ContentTypeValidation(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name        string
		method      string
		body        string
		contentType string
		want        int
	}{
		{"json post", http.MethodPost, `{}`, "application/json; charset=utf-8", http.StatusOK},
		{"text post", http.MethodPost, `{}`, "text/plain", http.StatusUnsupportedMediaType},
		{"get without type", http.MethodGet, "", "", http.StatusOK},
		{"empty delete", http.MethodDelete, "", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/bookings", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestMaxRequestSize_RejectsDeclaredOversize(t *testing.T) {
	handler := MaxRequestSize(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{"room_id":"abc"}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
}

func TestRequestLogging_SetsRequestID(t *testing.T) {
	var seen string
	handler := RequestLogging(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "client-supplied")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if seen != "client-supplied" || w.Header().Get(RequestIDHeader) != "client-supplied" {
		t.Errorf("expected client request id to be propagated, got ctx=%q header=%q", seen, w.Header().Get(RequestIDHeader))
	}
}

func TestRecovery(t *testing.T) {
	handler := Recovery(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"code":"INTERNAL_ERROR"`) {
		t.Errorf("expected INTERNAL_ERROR body, got %s", w.Body.String())
	}
}

func TestRecovery_ReraisesAbort(t *testing.T) {
	handler := Recovery(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("expected ErrAbortHandler to propagate, got %v", rec)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestRedisIdempotencyStore_DegradesWhenUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	store := NewRedisIdempotencyStore(client, time.Minute, logger.NewNop())

	calls := 0
	handler := Idempotency(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/rides", strings.NewReader(`{}`))
		req.Header.Set(IdempotencyHeader, "key-1")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected request to pass through, got %d", w.Code)
		}
	}
	if calls != 2 {
		t.Errorf("without a reachable store every request should run, ran %d", calls)
	}
}

func TestRequestTimeout(t *testing.T) {
	slow := RequestTimeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		w.WriteHeader(http.StatusOK)
	}))
	w := httptest.NewRecorder()
	slow.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/rooms", nil))
	if w.Code != http.StatusGatewayTimeout || !strings.Contains(w.Body.String(), `"code":"TIMEOUT"`) {
		t.Errorf("expected 504 TIMEOUT, got %d %s", w.Code, w.Body.String())
	}

	fast := RequestTimeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	w = httptest.NewRecorder()
	fast.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/rooms/id/1", nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("expected handler status, got %d", w.Code)
	}
}
