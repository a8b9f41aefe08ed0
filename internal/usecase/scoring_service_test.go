package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/quinielamx/quiniela/internal/domain/prediction"
	"github.com/quinielamx/quiniela/internal/infrastructure/repository/memory"
	"github.com/quinielamx/quiniela/internal/platform/cache"
	"github.com/quinielamx/quiniela/internal/platform/logging"
)

func newScoringFixture(t *testing.T) (*ScoringService, *PredictionService) {
	t.Helper()

	source := memory.NewFixtureSource(memory.SeedFixtures())
	fixtureService := NewFixtureService(source, cache.NewStore(time.Minute), logging.NewNop())
	repo := memory.NewPredictionRepository()
	scoring := NewScoringService(fixtureService, repo, logging.NewNop())
	predictions := NewPredictionService(fixtureService, repo, logging.NewNop())
	return scoring, predictions
}

func submit(t *testing.T, service *PredictionService, participant, fixtureID string, home, away int) {
	t.Helper()
	if _, err := service.Submit(context.Background(), prediction.Submission{
		Participant: participant,
		FixtureID:   fixtureID,
		HomeGoals:   &home,
		AwayGoals:   &away,
	}); err != nil {
		t.Fatalf("submit %s/%s failed: %v", participant, fixtureID, err)
	}
}

func TestScoringService_Leaderboard(t *testing.T) {
	t.Parallel()

	scoring, predictions := newScoringFixture(t)
	fixtures := memory.SeedFixtures()

	// Seed: fixture 0 finished 2-3, fixture 4 is undecided.
	submit(t, predictions, "Mariana", fixtures[0].ID, 2, 3) // exact, 3 pts
	submit(t, predictions, "Diego", fixtures[0].ID, 0, 1)   // outcome only, 1 pt
	submit(t, predictions, "Sofía", fixtures[0].ID, 1, 0)   // wrong outcome, 0 pts
	submit(t, predictions, "Sofía", fixtures[4].ID, 2, 2)   // undecided, no points yet

	entries, err := scoring.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected three participants, got %d", len(entries))
	}

	if entries[0].Participant != "Mariana" || entries[0].TotalPoints != 3 || entries[0].ExactHits != 1 {
		t.Fatalf("unexpected leader: %+v", entries[0])
	}
	if entries[1].Participant != "Diego" || entries[1].TotalPoints != 1 || entries[1].OutcomeHits != 1 {
		t.Fatalf("unexpected runner-up: %+v", entries[1])
	}
	if entries[2].Participant != "Sofía" || entries[2].TotalPoints != 0 {
		t.Fatalf("expected Sofía on zero points, got %+v", entries[2])
	}
}

func TestScoringService_LeaderboardEmpty(t *testing.T) {
	t.Parallel()

	scoring, _ := newScoringFixture(t)

	entries, err := scoring.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Fatalf("expected an empty slice, got %#v", entries)
	}
}

func TestScoringService_ScoreSheet(t *testing.T) {
	t.Parallel()

	scoring, predictions := newScoringFixture(t)
	fixtures := memory.SeedFixtures()

	submit(t, predictions, "Mariana", fixtures[0].ID, 2, 3)
	submit(t, predictions, "Mariana", fixtures[4].ID, 1, 0)
	submit(t, predictions, "Diego", fixtures[0].ID, 0, 0)

	rows, err := scoring.ScoreSheet(context.Background(), "mariana")
	if err != nil {
		t.Fatalf("score sheet failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected two rows for Mariana, got %d", len(rows))
	}

	byFixture := make(map[string]ScoredPrediction, len(rows))
	for _, row := range rows {
		byFixture[row.Prediction.FixtureID] = row
	}

	decided := byFixture[fixtures[0].ID]
	if decided.Points == nil || *decided.Points != 3 {
		t.Fatalf("expected 3 points on the decided fixture, got %v", decided.Points)
	}
	undecided := byFixture[fixtures[4].ID]
	if undecided.Points != nil {
		t.Fatalf("expected nil points on the undecided fixture, got %d", *undecided.Points)
	}

	all, err := scoring.ScoreSheet(context.Background(), "")
	if err != nil {
		t.Fatalf("score sheet failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected all rows with no filter, got %d", len(all))
	}
}
