package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"statcalc/adapters/stats/dist"
	"statcalc/app"
	"statcalc/internal"
	"statcalc/internal/errors"
	"statcalc/internal/solver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, maxConcurrent int64) (*Server, *CalculatorHandler) {
	t.Helper()
	var logs bytes.Buffer
	logger := internal.NewLoggerTo(&logs, internal.LogLevelError)
	service := app.NewCalculatorService(solver.New(dist.NewProvider(), solver.DefaultOptions()), nil, logger)
	handler := NewCalculatorHandler(service, maxConcurrent, logger)
	return NewServer(handler, "test", logger), handler
}

func post(t *testing.T, srv *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestListCalculators(t *testing.T) {
	srv, _ := newTestServer(t, 2)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/calculators", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Calculators []app.CalculatorInfo `json:"calculators"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Calculators, len(app.ListCalculators()))
	assert.Equal(t, "z_score", string(body.Calculators[0].Name))
}

func TestRunCalculator(t *testing.T) {
	srv, _ := newTestServer(t, 2)

	rec := post(t, srv, "/api/v1/calculators/z_score", RunRequest{Args: []string{"x=85", "mu=100", "sigma=15"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "Z_SCORE", doc["family"])
	assert.NotEmpty(t, doc["id"])
	derived := doc["derived"].(map[string]any)
	assert.Equal(t, -1.0, derived["z"].(map[string]any)["value"])
}

func TestRunCalculatorInfiniteBound(t *testing.T) {
	srv, _ := newTestServer(t, 2)

	rec := post(t, srv, "/api/v1/calculators/konfidenzintervall", RunRequest{
		Args: []string{"x_bar=10", "sigma=2", "n=16", "alpha=0.05", "test=links"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"Infinity"`)
}

func TestRunCalculatorErrorStatus(t *testing.T) {
	srv, _ := newTestServer(t, 2)

	tests := []struct {
		name   string
		path   string
		args   []string
		status int
		code   string
	}{
		{"parse", "/api/v1/calculators/z_score", []string{"x=1/0", "mu=0", "sigma=1"}, http.StatusBadRequest, errors.CodeParse},
		{"insufficient", "/api/v1/calculators/z_score", []string{"x=1"}, http.StatusBadRequest, errors.CodeInsufficientParameters},
		{"ambiguous", "/api/v1/calculators/konfidenzintervall", []string{"x_bar=1", "sigma=1", "s=1", "n=5"}, http.StatusBadRequest, errors.CodeAmbiguousInput},
		{"domain", "/api/v1/calculators/poisson", []string{"k=2", "lambda=-1"}, http.StatusBadRequest, errors.CodeDomain},
		{"non-convergence", "/api/v1/calculators/trennschaerfe", []string{"mu0=1", "mu1=1", "sigma=1", "alpha=0.05", "power=0.9", "n=-"}, http.StatusUnprocessableEntity, errors.CodeNonConvergence},
		{"unknown", "/api/v1/calculators/anova", nil, http.StatusNotFound, errors.CodeNotFound},
		{"file refused", "/api/v1/calculators/standardabweichung", []string{"file=/etc/passwd"}, http.StatusBadRequest, errors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, srv, tt.path, RunRequest{Args: tt.args})
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body["code"])
		})
	}
}

func TestRunCalculatorRejectsBadBody(t *testing.T) {
	srv, _ := newTestServer(t, 1)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/calculators/z_score", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunCalculatorCapacityExhausted(t *testing.T) {
	srv, handler := newTestServer(t, 1)
	require.True(t, handler.sem.TryAcquire(1))
	defer handler.sem.Release(1)

	payload, _ := json.Marshal(RunRequest{Args: []string{"x=85", "mu=100", "sigma=15"}})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/calculators/z_score", bytes.NewReader(payload)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.InternalError("boom")))
	assert.Equal(t, http.StatusNotFound, StatusFor(errors.NotFound("calculator x")))
}

func TestStreamPoints(t *testing.T) {
	srv, _ := newTestServer(t, 2)

	rec := post(t, srv, "/api/v1/calculators/binomial/points", RunRequest{Args: []string{"k=2", "n=8", "p=0.1"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Equal(t, 9, strings.Count(body, "event:point"))
	assert.Contains(t, body, "event:done")
	assert.Contains(t, body, `"k":8`)
}

func TestStreamPointsRejectsContinuousCalculators(t *testing.T) {
	srv, _ := newTestServer(t, 2)

	rec := post(t, srv, "/api/v1/calculators/z_score/points", RunRequest{Args: []string{"x=85", "mu=100", "sigma=15"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, srv, "/api/v1/calculators/poisson/points", RunRequest{Args: []string{"k=2", "lambda=-1"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
