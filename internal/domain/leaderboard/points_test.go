package leaderboard

import (
	"reflect"
	"testing"

	"github.com/quinielamx/quiniela/internal/domain/fixture"
	"github.com/quinielamx/quiniela/internal/domain/prediction"
)

func decided(id string, home, away int) fixture.Fixture {
	return fixture.Fixture{ID: id, HomeGoals: &home, AwayGoals: &away}
}

func TestScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		pred prediction.Prediction
		fix  fixture.Fixture
		want *int
	}{
		{
			name: "exact score",
			pred: prediction.Prediction{HomeGoals: 2, AwayGoals: 1},
			fix:  decided("f1", 2, 1),
			want: intp(3),
		},
		{
			name: "same outcome different score",
			pred: prediction.Prediction{HomeGoals: 2, AwayGoals: 0},
			fix:  decided("f1", 3, 0),
			want: intp(1),
		},
		{
			name: "draw predicted and played",
			pred: prediction.Prediction{HomeGoals: 1, AwayGoals: 1},
			fix:  decided("f1", 0, 0),
			want: intp(1),
		},
		{
			name: "wrong outcome",
			pred: prediction.Prediction{HomeGoals: 1, AwayGoals: 1},
			fix:  decided("f1", 2, 0),
			want: intp(0),
		},
		{
			name: "away win agreement",
			pred: prediction.Prediction{HomeGoals: 0, AwayGoals: 3},
			fix:  decided("f1", 1, 2),
			want: intp(1),
		},
		{
			name: "undecided fixture",
			pred: prediction.Prediction{HomeGoals: 2, AwayGoals: 1},
			fix:  fixture.Fixture{ID: "f1"},
			want: nil,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Score(tc.pred, tc.fix)
			if tc.want == nil {
				if got != nil {
					t.Fatalf("expected nil score, got %d", *got)
				}
				return
			}
			if got == nil || *got != *tc.want {
				t.Fatalf("expected %d, got %v", *tc.want, got)
			}
		})
	}
}

func TestAggregate_Empty(t *testing.T) {
	t.Parallel()

	got := Aggregate(nil, []fixture.Fixture{decided("f1", 1, 0)})
	if len(got) != 0 {
		t.Fatalf("expected empty leaderboard, got %v", got)
	}
}

func TestAggregate_UndecidedFixturesYieldZeroRows(t *testing.T) {
	t.Parallel()

	fixtures := []fixture.Fixture{{ID: "f1"}, {ID: "f2"}}
	predictions := []prediction.Prediction{
		{Participant: "Marta", FixtureID: "f1", HomeGoals: 1, AwayGoals: 0},
		{Participant: "Diego", FixtureID: "f2", HomeGoals: 2, AwayGoals: 2},
	}

	got := Aggregate(predictions, fixtures)
	want := []Entry{
		{Participant: "Diego"},
		{Participant: "Marta"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected leaderboard: %v", got)
	}
}

func TestAggregate_TotalsAndOrdering(t *testing.T) {
	t.Parallel()

	fixtures := []fixture.Fixture{
		decided("f1", 2, 1),
		decided("f2", 0, 0),
		{ID: "f3"}, // still undecided
	}
	predictions := []prediction.Prediction{
		{Participant: "Marta", FixtureID: "f1", HomeGoals: 2, AwayGoals: 1}, // exact, 3
		{Participant: "Marta", FixtureID: "f2", HomeGoals: 1, AwayGoals: 1}, // outcome, 1
		{Participant: "Diego", FixtureID: "f1", HomeGoals: 1, AwayGoals: 0}, // outcome, 1
		{Participant: "Diego", FixtureID: "f2", HomeGoals: 2, AwayGoals: 0}, // wrong, 0
		{Participant: "Ana", FixtureID: "f1", HomeGoals: 3, AwayGoals: 1},   // outcome, 1
		{Participant: "Ana", FixtureID: "f3", HomeGoals: 1, AwayGoals: 0},   // pending, skipped
		{Participant: "Ana", FixtureID: "gone", HomeGoals: 1, AwayGoals: 0}, // unknown fixture, skipped
	}

	got := Aggregate(predictions, fixtures)
	want := []Entry{
		{Participant: "Marta", TotalPoints: 4, ExactHits: 1, OutcomeHits: 1},
		{Participant: "Ana", TotalPoints: 1, OutcomeHits: 1},
		{Participant: "Diego", TotalPoints: 1, OutcomeHits: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected leaderboard:\n got %v\nwant %v", got, want)
	}
}

func intp(v int) *int { return &v }
