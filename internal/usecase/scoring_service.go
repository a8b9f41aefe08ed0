package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/pool"

	"github.com/quinielamx/quiniela/internal/domain/fixture"
	"github.com/quinielamx/quiniela/internal/domain/leaderboard"
	"github.com/quinielamx/quiniela/internal/domain/prediction"
	"github.com/quinielamx/quiniela/internal/platform/logging"
)

const scoringWorkerCount = 8

// ScoredPrediction pairs a prediction with its current result. Points stays
// nil while the fixture is undecided or no longer part of the bracket.
type ScoredPrediction struct {
	Prediction prediction.Prediction
	Points     *int
}

// ScoringService derives score sheets and the leaderboard from the current
// snapshot. All derivation is pure; the service only assembles inputs.
type ScoringService struct {
	fixtureService *FixtureService
	predictionRepo prediction.Repository
	logger         *logging.Logger
}

func NewScoringService(fixtureService *FixtureService, predictionRepo prediction.Repository, logger *logging.Logger) *ScoringService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScoringService{
		fixtureService: fixtureService,
		predictionRepo: predictionRepo,
		logger:         logger,
	}
}

func (s *ScoringService) Leaderboard(ctx context.Context) ([]leaderboard.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.Leaderboard")
	defer span.End()

	fixtures, predictions, err := s.loadState(ctx)
	if err != nil {
		return nil, err
	}

	return leaderboard.Aggregate(predictions, fixtures), nil
}

// ScoreSheet returns every prediction (optionally one participant's) with its
// current result. Each row is independent, so scoring fans out over a bounded
// worker pool.
func (s *ScoringService) ScoreSheet(ctx context.Context, participant string) ([]ScoredPrediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ScoreSheet")
	defer span.End()

	fixtures, predictions, err := s.loadState(ctx)
	if err != nil {
		return nil, err
	}

	participant = strings.TrimSpace(participant)
	if participant != "" {
		filtered := predictions[:0]
		for _, p := range predictions {
			if strings.EqualFold(p.Participant, participant) {
				filtered = append(filtered, p)
			}
		}
		predictions = filtered
	}

	byID := make(map[string]fixture.Fixture, len(fixtures))
	for _, f := range fixtures {
		byID[f.ID] = f
	}

	out := make([]ScoredPrediction, len(predictions))

	workers, err := ants.NewPool(scoringWorkerCount)
	if err != nil {
		return nil, fmt.Errorf("create scoring worker pool: %w", err)
	}
	defer workers.Release()

	var wg sync.WaitGroup
	for i, p := range predictions {
		i, p := i, p
		wg.Add(1)
		if err := workers.Submit(func() {
			defer wg.Done()

			row := ScoredPrediction{Prediction: p}
			if f, ok := byID[p.FixtureID]; ok {
				row.Points = leaderboard.Score(p, f)
			}
			out[i] = row
		}); err != nil {
			wg.Done()
			return nil, fmt.Errorf("submit scoring task: %w", err)
		}
	}
	wg.Wait()

	return out, nil
}

func (s *ScoringService) loadState(ctx context.Context) ([]fixture.Fixture, []prediction.Prediction, error) {
	var fixtures []fixture.Fixture
	var predictions []prediction.Prediction

	group := pool.New().WithContext(ctx).WithCancelOnError()
	group.Go(func(ctx context.Context) error {
		loaded, err := s.fixtureService.List(ctx)
		if err != nil {
			return fmt.Errorf("load fixtures: %w", err)
		}
		fixtures = loaded
		return nil
	})
	group.Go(func(ctx context.Context) error {
		loaded, err := s.predictionRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("load predictions: %w", err)
		}
		predictions = loaded
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}

	return fixtures, predictions, nil
}
