package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/carebridge/oncorisk/internal/feature"
	"github.com/carebridge/oncorisk/internal/scoring"
	"github.com/carebridge/oncorisk/internal/transform"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantInMsg  string
	}{
		{
			"validation error is the caller's problem",
			&feature.ValidationError{Missing: []string{"Age", "BMI"}},
			http.StatusBadRequest,
			"missing fields: Age, BMI",
		},
		{
			"wrapped validation error still matches",
			eris.Wrap(&feature.ValidationError{Malformed: []string{"Age"}}, "build record"),
			http.StatusBadRequest,
			"malformed fields: Age",
		},
		{
			"schema mismatch is ours",
			&transform.SchemaMismatchError{Stage: "model_layout", Column: "BMI"},
			http.StatusInternalServerError,
			"schema mismatch",
		},
		{
			"inference error is ours",
			&scoring.InferenceError{Reason: "model scoring failed"},
			http.StatusInternalServerError,
			"inference:",
		},
		{
			"anything else is an opaque internal error",
			eris.New("disk on fire"),
			http.StatusInternalServerError,
			"internal error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := classifyError("uterine", tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Contains(t, msg, tt.wantInMsg)
		})
	}
}

func TestClassifyError_InternalDetailNeverLeaks(t *testing.T) {
	_, msg := classifyError("uterine", eris.New("pgx: connection refused on 10.0.0.3"))
	assert.Equal(t, "internal error", msg)
}

func TestWriteJSONAndError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])

	rec = httptest.NewRecorder()
	writeError(rec, http.StatusBadRequest, "empty or invalid JSON body")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "empty or invalid JSON body", body["error"])
}

func TestRequestIDMiddleware(t *testing.T) {
	handler := requestID(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/health", nil))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.NotEmpty(t, first.Header().Get("X-Request-ID"))
	assert.NotEqual(t, first.Header().Get("X-Request-ID"), second.Header().Get("X-Request-ID"))
}

func TestRateLimitMiddleware(t *testing.T) {
	handler := rateLimit(rate.Limit(1), 2)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/predict/uterine", nil))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Contains(t, codes[2:], http.StatusTooManyRequests, "burst exhausted requests must be rejected")
}
