package leaderboard

import (
	"sort"

	"github.com/quinielamx/quiniela/internal/domain/fixture"
	"github.com/quinielamx/quiniela/internal/domain/prediction"
)

const (
	PointsExact   = 3
	PointsOutcome = 1
)

// Entry is one leaderboard row. Derived on every aggregation, never stored.
type Entry struct {
	Participant string
	TotalPoints int
	ExactHits   int
	OutcomeHits int
}

// Score rates a prediction against its fixture: 3 for the exact score, 1 for
// the right outcome, 0 otherwise. A nil result means the fixture is not
// decided yet; scoring never fails.
func Score(p prediction.Prediction, f fixture.Fixture) *int {
	if !f.Decided() {
		return nil
	}

	points := 0
	switch {
	case p.HomeGoals == *f.HomeGoals && p.AwayGoals == *f.AwayGoals:
		points = PointsExact
	case sign(p.HomeGoals-p.AwayGoals) == sign(*f.HomeGoals-*f.AwayGoals):
		points = PointsOutcome
	}
	return &points
}

// Aggregate folds predictions into per-participant totals. Predictions whose
// fixture is unknown or undecided contribute nothing; every participant in
// the input still gets a row. Rows are ordered by total points descending,
// ties broken by participant name ascending.
func Aggregate(predictions []prediction.Prediction, fixtures []fixture.Fixture) []Entry {
	if len(predictions) == 0 {
		return []Entry{}
	}

	byID := make(map[string]fixture.Fixture, len(fixtures))
	for _, f := range fixtures {
		byID[f.ID] = f
	}

	totals := make(map[string]*Entry)
	order := make([]string, 0, 8)
	for _, p := range predictions {
		row, ok := totals[p.Participant]
		if !ok {
			row = &Entry{Participant: p.Participant}
			totals[p.Participant] = row
			order = append(order, p.Participant)
		}

		f, ok := byID[p.FixtureID]
		if !ok {
			continue
		}
		points := Score(p, f)
		if points == nil {
			continue
		}
		switch *points {
		case PointsExact:
			row.ExactHits++
			row.TotalPoints += PointsExact
		case PointsOutcome:
			row.OutcomeHits++
			row.TotalPoints += PointsOutcome
		}
	}

	out := make([]Entry, 0, len(order))
	for _, name := range order {
		out = append(out, *totals[name])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].Participant < out[j].Participant
	})

	return out
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
