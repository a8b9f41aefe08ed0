package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/quinielamx/quiniela/internal/infrastructure/repository/memory"
	"github.com/quinielamx/quiniela/internal/platform/cache"
	"github.com/quinielamx/quiniela/internal/platform/logging"
	"github.com/quinielamx/quiniela/internal/usecase"
)

func newTestRouter(t *testing.T) (http.Handler, string) {
	t.Helper()

	fixtures := memory.SeedFixtures()
	source := memory.NewFixtureSource(fixtures)
	repo := memory.NewPredictionRepository()
	logger := logging.NewNop()

	fixtureService := usecase.NewFixtureService(source, cache.NewStore(time.Minute), logger)
	predictionService := usecase.NewPredictionService(fixtureService, repo, logger)
	scoringService := usecase.NewScoringService(fixtureService, repo, logger)

	handler := NewHandler(fixtureService, predictionService, scoringService, logger)
	router := NewRouter(handler, logger, []string{"*"}, "job-token")
	return router, fixtures[0].ID
}

func decodeEnvelope(t *testing.T, body []byte) map[string]any {
	t.Helper()

	var envelope map[string]any
	if err := sonic.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	return envelope
}

func TestRouter_ListFixtures(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fixtures", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	envelope := decodeEnvelope(t, rec.Body.Bytes())
	items, ok := envelope["data"].([]any)
	if !ok || len(items) == 0 {
		t.Fatalf("expected fixture items, got %v", envelope["data"])
	}
}

func TestRouter_SubmitAndRetractPrediction(t *testing.T) {
	router, fixtureID := newTestRouter(t)

	payload := `{"participant":"Mariana","fixtureId":"` + fixtureID + `","homeGoals":2,"awayGoals":3}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predictions", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}

	envelope := decodeEnvelope(t, rec.Body.Bytes())
	data, _ := envelope["data"].(map[string]any)
	ref, _ := data["ref"].(string)
	if ref == "" {
		t.Fatalf("expected a prediction ref, got %v", envelope["data"])
	}

	// A second identical submission conflicts.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/predictions", strings.NewReader(payload))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a duplicate, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/predictions/"+ref, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for retraction, got %d body=%s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/predictions/"+ref, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a second retraction, got %d", rec.Code)
	}
}

func TestRouter_SubmitPredictionRejectsMalformedJSON(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/predictions", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRouter_Leaderboard(t *testing.T) {
	router, fixtureID := newTestRouter(t)

	payload := `{"participant":"Diego","fixtureId":"` + fixtureID + `","homeGoals":2,"awayGoals":3}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predictions", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/leaderboard", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	envelope := decodeEnvelope(t, rec.Body.Bytes())
	items, ok := envelope["data"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("expected one leaderboard entry, got %v", envelope["data"])
	}
	entry, _ := items[0].(map[string]any)
	if points, _ := entry["totalPoints"].(float64); points != 3 {
		t.Fatalf("expected 3 points for an exact hit, got %v", entry["totalPoints"])
	}
}

func TestRouter_RefreshJobRequiresToken(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/internal/jobs/refresh", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a job token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/internal/jobs/refresh", nil)
	req.Header.Set("X-Internal-Job-Token", "job-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with the job token, got %d body=%s", rec.Code, rec.Body.String())
	}
}
