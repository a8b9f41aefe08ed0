package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/quinielamx/quiniela/internal/domain/fixture"
	"github.com/quinielamx/quiniela/internal/domain/prediction"
	"github.com/quinielamx/quiniela/internal/platform/logging"
)

// PredictionService accepts, lists and retracts predictions. Validation runs
// against the complete current snapshot: fixtures and accepted predictions are
// loaded together so every check sees one consistent state.
type PredictionService struct {
	fixtureService *FixtureService
	repo           prediction.Repository
	now            func() time.Time
	logger         *logging.Logger
}

func NewPredictionService(fixtureService *FixtureService, repo prediction.Repository, logger *logging.Logger) *PredictionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PredictionService{
		fixtureService: fixtureService,
		repo:           repo,
		now:            time.Now,
		logger:         logger,
	}
}

func (s *PredictionService) Submit(ctx context.Context, sub prediction.Submission) (prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.Submit")
	defer span.End()

	fixtures, accepted, err := s.loadState(ctx)
	if err != nil {
		return prediction.Prediction{}, err
	}

	if err := prediction.Validate(sub, fixtures, accepted); err != nil {
		return prediction.Prediction{}, err
	}

	created, err := s.repo.Create(ctx, prediction.Prediction{
		Participant: strings.TrimSpace(sub.Participant),
		FixtureID:   strings.TrimSpace(sub.FixtureID),
		HomeGoals:   *sub.HomeGoals,
		AwayGoals:   *sub.AwayGoals,
		SubmittedAt: s.now().UTC(),
	})
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("create prediction: %w", err)
	}

	s.logger.InfoContext(ctx, "prediction accepted",
		"participant", created.Participant,
		"fixture_id", created.FixtureID,
		"ref", created.Ref,
	)
	return created, nil
}

func (s *PredictionService) ListByParticipant(ctx context.Context, participant string) ([]prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.ListByParticipant")
	defer span.End()

	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}

	participant = strings.TrimSpace(participant)
	if participant == "" {
		return all, nil
	}

	out := make([]prediction.Prediction, 0, len(all))
	for _, p := range all {
		if strings.EqualFold(p.Participant, participant) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *PredictionService) Retract(ctx context.Context, ref string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.Retract")
	defer span.End()

	ref = strings.TrimSpace(ref)
	if ref == "" {
		return fmt.Errorf("%w: prediction reference is required", ErrInvalidInput)
	}

	if err := s.repo.Retract(ctx, ref); err != nil {
		return fmt.Errorf("retract prediction %s: %w", ref, err)
	}

	s.logger.InfoContext(ctx, "prediction retracted", "ref", ref)
	return nil
}

// loadState fetches the fixture snapshot and the accepted predictions
// concurrently; both must succeed for validation to run.
func (s *PredictionService) loadState(ctx context.Context) ([]fixture.Fixture, []prediction.Prediction, error) {
	var fixtures []fixture.Fixture
	var accepted []prediction.Prediction

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
		loaded, err := s.repo.List(ctx)
		if err != nil {
			return fmt.Errorf("load predictions: %w", err)
		}
		accepted = loaded
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}

	return fixtures, accepted, nil
}
