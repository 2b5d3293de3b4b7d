package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/event-planner/gateway/internal/auth"
	"example.com/event-planner/gateway/internal/config"
	"example.com/event-planner/gateway/internal/snapshot"
)

func testConfig(apiBaseURL string) config.Config {
	return config.Config{
		Env:    "test",
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080},
		Auth: config.AuthConfig{
			JWTSecret:          "secret",
			JWTIssuer:          "event-planner",
			RateLimitPerMinute: 600,
			RateLimitBurst:     100,
		},
		Planner: config.PlannerConfig{
			APIBaseURL:         apiBaseURL,
			Timeout:            time.Second,
			DefaultPrice:       1000,
			RateLimitPerMinute: 600,
			RateLimitBurst:     100,
		},
	}
}

// testContext stands in for testing.T.Context (Go 1.24+): a context
// cancelled when the test finishes.
func testContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

func openStore(t *testing.T) snapshot.Store {
	t.Helper()

	store, err := snapshot.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// TestHealthAndAuth проверяет health-check и отказ без токена.
func TestHealthAndAuth(t *testing.T) {
	e := New(testContext(t), testConfig("http://127.0.0.1:1"), nil, openStore(t))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/planner/sessions/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestOpenSessionForwardsToken проверяет, что токен пользователя уходит в сервис событий.
func TestOpenSessionForwardsToken(t *testing.T) {
	var gotAuth string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/api/events/E1/cart", r.URL.Path)
		_, _ = w.Write([]byte(`{"items":[{"id":"i1","vendor_id":"v1","service_type":"venue","service_name":"Hall","price":1200,"quantity":1}],"budget_set":5000}`))
	}))
	t.Cleanup(upstream.Close)

	cfg := testConfig(upstream.URL + "/api")
	e := New(testContext(t), cfg, nil, openStore(t))

	token, _, err := auth.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer).IssueAccessToken(uuid.New(), time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/planner/sessions", strings.NewReader(`{"event_id":"E1","event_budget_cents":400000}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Bearer "+token, gotAuth)

	var body struct {
		Session struct {
			SelectedServices map[string]string `json:"selected_services"`
			Budget           struct {
				RemainingCents int64 `json:"remaining_cents"`
			} `json:"budget"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"venue": "v1"}, body.Session.SelectedServices)
	assert.Equal(t, int64(380000), body.Session.Budget.RemainingCents)
}

// TestValidatorUsesJSONNames проверяет имена полей в ошибках валидации.
func TestValidatorUsesJSONNames(t *testing.T) {
	type payload struct {
		EventID string `json:"event_id" validate:"required"`
	}

	err := NewValidator().Validate(payload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event_id")
}
