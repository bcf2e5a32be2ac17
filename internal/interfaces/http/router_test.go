package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvalencee/alfaia/internal/config"
	"github.com/kvalencee/alfaia/internal/infrastructure/monitoring/prometheus"
	"github.com/kvalencee/alfaia/pkg/errors"
	"github.com/kvalencee/alfaia/pkg/types/analysis"
)

type mockAnalyzer struct {
	analyzeFn func(ctx context.Context, text, learnerID string) (*analysis.AnalysisResult, error)
}

func (m *mockAnalyzer) Analyze(ctx context.Context, text, learnerID string) (*analysis.AnalysisResult, error) {
	return m.analyzeFn(ctx, text, learnerID)
}

type mockScores struct {
	saveFn    func(ctx context.Context, rec analysis.ScoreRecord) error
	listFn    func(ctx context.Context, learnerID string, limit int) ([]analysis.ScoreRecord, error)
	averageFn func(ctx context.Context, learnerID string) (float64, error)
}

func (m *mockScores) Save(ctx context.Context, rec analysis.ScoreRecord) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, rec)
	}
	return nil
}

func (m *mockScores) ListByLearner(ctx context.Context, learnerID string, limit int) ([]analysis.ScoreRecord, error) {
	return m.listFn(ctx, learnerID, limit)
}

func (m *mockScores) AverageScore(ctx context.Context, learnerID string) (float64, error) {
	if m.averageFn != nil {
		return m.averageFn(ctx, learnerID)
	}
	return 0, nil
}

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{Port: 8080, Mode: "test"}
}

func newTestRouter(t *testing.T, deps Dependencies) http.Handler {
	t.Helper()
	return NewRouter(testServerConfig(), deps)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeEndpoint(t *testing.T) {
	want := &analysis.AnalysisResult{
		SubmissionID: "sub-1",
		Text:         "Yo tengo un libro.",
		Score:        100,
	}
	var gotText, gotLearner string
	h := newTestRouter(t, Dependencies{
		Analyzer: &mockAnalyzer{analyzeFn: func(_ context.Context, text, learnerID string) (*analysis.AnalysisResult, error) {
			gotText, gotLearner = text, learnerID
			return want, nil
		}},
	})

	rec := doJSON(t, h, http.MethodPost, "/api/v1/analyze",
		map[string]string{"text": "Yo tengo un libro.", "learner_id": "learner-7"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Yo tengo un libro.", gotText)
	assert.Equal(t, "learner-7", gotLearner)

	var got analysis.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "sub-1", got.SubmissionID)
	assert.Equal(t, 100.0, got.Score)
}

func TestAnalyzeEndpointMissingText(t *testing.T) {
	h := newTestRouter(t, Dependencies{
		Analyzer: &mockAnalyzer{analyzeFn: func(context.Context, string, string) (*analysis.AnalysisResult, error) {
			t.Fatal("analyzer should not be reached")
			return nil, nil
		}},
	})

	rec := doJSON(t, h, http.MethodPost, "/api/v1/analyze", map[string]string{"learner_id": "x"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(errors.ErrCodeBadRequest), resp.Code)
}

func TestAnalyzeEndpointMapsAppErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   errors.ErrorCode
	}{
		{
			name:       "empty input",
			err:        errors.InputEmpty("el texto está vacío"),
			wantStatus: http.StatusBadRequest,
			wantCode:   errors.ErrCodeInputEmpty,
		},
		{
			name:       "internal",
			err:        errors.Internal("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   errors.ErrCodeInternal,
		},
		{
			name:       "plain error defaults to internal",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusInternalServerError,
			wantCode:   errors.ErrCodeInternal,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestRouter(t, Dependencies{
				Analyzer: &mockAnalyzer{analyzeFn: func(context.Context, string, string) (*analysis.AnalysisResult, error) {
					return nil, tc.err
				}},
			})

			rec := doJSON(t, h, http.MethodPost, "/api/v1/analyze", map[string]string{"text": "hola"})

			require.Equal(t, tc.wantStatus, rec.Code)
			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, string(tc.wantCode), resp.Code)
		})
	}
}

func TestListScoresEndpoint(t *testing.T) {
	var gotLearner string
	var gotLimit int
	h := newTestRouter(t, Dependencies{
		Analyzer: &mockAnalyzer{analyzeFn: func(context.Context, string, string) (*analysis.AnalysisResult, error) {
			return nil, nil
		}},
		Scores: &mockScores{listFn: func(_ context.Context, learnerID string, limit int) ([]analysis.ScoreRecord, error) {
			gotLearner, gotLimit = learnerID, limit
			return []analysis.ScoreRecord{
				{SubmissionID: "sub-1", LearnerID: learnerID, Score: 95.2},
				{SubmissionID: "sub-2", LearnerID: learnerID, Score: 88.0},
			}, nil
		}},
	})

	rec := doJSON(t, h, http.MethodGet, "/api/v1/learners/learner-7/scores?limit=5", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "learner-7", gotLearner)
	assert.Equal(t, 5, gotLimit)

	var resp struct {
		LearnerID string                 `json:"learner_id"`
		Scores    []analysis.ScoreRecord `json:"scores"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "learner-7", resp.LearnerID)
	require.Len(t, resp.Scores, 2)
	assert.Equal(t, 95.2, resp.Scores[0].Score)
}

func TestListScoresLimitValidation(t *testing.T) {
	h := newTestRouter(t, Dependencies{
		Scores: &mockScores{listFn: func(_ context.Context, _ string, limit int) ([]analysis.ScoreRecord, error) {
			assert.Equal(t, maxScoreLimit, limit)
			return nil, nil
		}},
	})

	rec := doJSON(t, h, http.MethodGet, "/api/v1/learners/x/scores?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/learners/x/scores?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// over the cap is clamped, not rejected
	rec = doJSON(t, h, http.MethodGet, "/api/v1/learners/x/scores?limit=500", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListScoresWithoutStore(t *testing.T) {
	h := newTestRouter(t, Dependencies{})

	rec := doJSON(t, h, http.MethodGet, "/api/v1/learners/x/scores", nil)

	require.Equal(t, http.StatusNotImplemented, rec.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(errors.ErrCodeNotImplemented), resp.Code)
}

func TestListScoresEmptyIsArray(t *testing.T) {
	h := newTestRouter(t, Dependencies{
		Scores: &mockScores{listFn: func(context.Context, string, int) ([]analysis.ScoreRecord, error) {
			return nil, nil
		}},
	})

	rec := doJSON(t, h, http.MethodGet, "/api/v1/learners/x/scores", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"scores":[]`)
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestRouter(t, Dependencies{})

	rec := doJSON(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// readiness without a checker is unconditional
	rec = doJSON(t, h, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadinessFailure(t *testing.T) {
	h := newTestRouter(t, Dependencies{
		Ready: func(context.Context) error { return errors.Unavailable("db down") },
	})

	rec := doJSON(t, h, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := promclient.NewRegistry()
	m := prometheus.NewMetrics(reg)
	h := newTestRouter(t, Dependencies{Metrics: m, Gatherer: reg})

	// generate one request so the counters have samples
	doJSON(t, h, http.MethodGet, "/healthz", nil)

	rec := doJSON(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alfaia_http_requests_total")
}

func TestMetricsHiddenWithoutGatherer(t *testing.T) {
	h := newTestRouter(t, Dependencies{})

	rec := doJSON(t, h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBodySizeLimit(t *testing.T) {
	cfg := testServerConfig()
	cfg.MaxBodySize = 64
	h := NewRouter(cfg, Dependencies{
		Analyzer: &mockAnalyzer{analyzeFn: func(context.Context, string, string) (*analysis.AnalysisResult, error) {
			return &analysis.AnalysisResult{}, nil
		}},
	})

	big := make([]byte, 256)
	for i := range big {
		big[i] = 'a'
	}
	rec := doJSON(t, h, http.MethodPost, "/api/v1/analyze", map[string]string{"text": string(big)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
