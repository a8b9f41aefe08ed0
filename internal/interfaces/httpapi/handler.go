package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/quinielamx/quiniela/internal/domain/fixture"
	"github.com/quinielamx/quiniela/internal/domain/leaderboard"
	"github.com/quinielamx/quiniela/internal/domain/prediction"
	"github.com/quinielamx/quiniela/internal/platform/logging"
	"github.com/quinielamx/quiniela/internal/usecase"
)

type Handler struct {
	fixtureService    *usecase.FixtureService
	predictionService *usecase.PredictionService
	scoringService    *usecase.ScoringService
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	fixtureService *usecase.FixtureService,
	predictionService *usecase.PredictionService,
	scoringService *usecase.ScoringService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		fixtureService:    fixtureService,
		predictionService: predictionService,
		scoringService:    scoringService,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFixtures")
	defer span.End()

	fixtures, err := h.fixtureService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list fixtures failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]fixtureDTO, 0, len(fixtures))
	for _, f := range fixtures {
		items = append(items, fixtureToDTO(f))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	entries, err := h.scoringService.Leaderboard(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "leaderboard failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leaderboardEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, leaderboardEntryToDTO(entry))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPredictions")
	defer span.End()

	participant := r.URL.Query().Get("participant")
	rows, err := h.scoringService.ScoreSheet(ctx, participant)
	if err != nil {
		h.logger.ErrorContext(ctx, "score sheet failed", "participant", participant, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]scoredPredictionDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, scoredPredictionDTO{
			predictionDTO: predictionToDTO(row.Prediction),
			Points:        row.Points,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) SubmitPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPrediction")
	defer span.End()

	var req submitPredictionRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.predictionService.Submit(ctx, prediction.Submission{
		Participant: req.Participant,
		FixtureID:   req.FixtureID,
		HomeGoals:   req.HomeGoals,
		AwayGoals:   req.AwayGoals,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit prediction failed",
			"participant", req.Participant, "fixture_id", req.FixtureID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, predictionToDTO(created))
}

func (h *Handler) RetractPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RetractPrediction")
	defer span.End()

	ref := r.PathValue("ref")
	if err := h.predictionService.Retract(ctx, ref); err != nil {
		h.logger.WarnContext(ctx, "retract prediction failed", "ref", ref, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"ref": ref, "status": "retracted"})
}

func (h *Handler) RunRefreshJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRefreshJob")
	defer span.End()

	fixtures, err := h.fixtureService.Refresh(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "fixture refresh failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"fixtures": len(fixtures)})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type submitPredictionRequest struct {
	// Presence and range checks on these fields belong to the domain rules so
	// the error kinds stay ordered; the tags only cap obviously hostile input.
	Participant string `json:"participant" validate:"omitempty,max=120"`
	FixtureID   string `json:"fixtureId" validate:"omitempty,max=64"`
	HomeGoals   *int   `json:"homeGoals" validate:"omitempty,lte=99"`
	AwayGoals   *int   `json:"awayGoals" validate:"omitempty,lte=99"`
}

type fixtureDTO struct {
	ID        string  `json:"id"`
	Stage     string  `json:"stage"`
	Date      *string `json:"date"`
	HomeTeam  string  `json:"homeTeam"`
	AwayTeam  string  `json:"awayTeam"`
	HomeGoals *int    `json:"homeGoals"`
	AwayGoals *int    `json:"awayGoals"`
	Venue     string  `json:"venue,omitempty"`
	City      string  `json:"city,omitempty"`
	Decided   bool    `json:"decided"`
}

func fixtureToDTO(f fixture.Fixture) fixtureDTO {
	return fixtureDTO{
		ID:        f.ID,
		Stage:     string(f.Stage),
		Date:      f.Date,
		HomeTeam:  f.HomeTeam,
		AwayTeam:  f.AwayTeam,
		HomeGoals: f.HomeGoals,
		AwayGoals: f.AwayGoals,
		Venue:     f.Venue,
		City:      f.City,
		Decided:   f.Decided(),
	}
}

type predictionDTO struct {
	Ref         string `json:"ref"`
	Participant string `json:"participant"`
	FixtureID   string `json:"fixtureId"`
	HomeGoals   int    `json:"homeGoals"`
	AwayGoals   int    `json:"awayGoals"`
	SubmittedAt string `json:"submittedAt"`
}

func predictionToDTO(p prediction.Prediction) predictionDTO {
	return predictionDTO{
		Ref:         p.Ref,
		Participant: p.Participant,
		FixtureID:   p.FixtureID,
		HomeGoals:   p.HomeGoals,
		AwayGoals:   p.AwayGoals,
		SubmittedAt: p.SubmittedAt.Format(time.RFC3339),
	}
}

type scoredPredictionDTO struct {
	predictionDTO
	Points *int `json:"points"`
}

type leaderboardEntryDTO struct {
	Participant string `json:"participant"`
	TotalPoints int    `json:"totalPoints"`
	ExactHits   int    `json:"exactHits"`
	OutcomeHits int    `json:"outcomeHits"`
}

func leaderboardEntryToDTO(entry leaderboard.Entry) leaderboardEntryDTO {
	return leaderboardEntryDTO{
		Participant: entry.Participant,
		TotalPoints: entry.TotalPoints,
		ExactHits:   entry.ExactHits,
		OutcomeHits: entry.OutcomeHits,
	}
}
