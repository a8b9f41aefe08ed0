package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/quinielamx/quiniela/internal/domain/prediction"
	"github.com/quinielamx/quiniela/internal/platform/id"
)

// PredictionRepository persists predictions in postgres. Retraction is a soft
// delete so the row stays available for auditing.
type PredictionRepository struct {
	db  *sqlx.DB
	ids id.Generator
}

func NewPredictionRepository(db *sqlx.DB, ids id.Generator) *PredictionRepository {
	return &PredictionRepository{db: db, ids: ids}
}

func (r *PredictionRepository) List(ctx context.Context) ([]prediction.Prediction, error) {
	const query = `
SELECT public_id, participant, fixture_id, home_goals, away_goals, submitted_at
FROM predictions
WHERE deleted_at IS NULL
ORDER BY submitted_at, id`

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("select predictions: %w", err)
	}

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, prediction.Prediction{
			Ref:         row.PublicID,
			Participant: row.Participant,
			FixtureID:   row.FixtureID,
			HomeGoals:   row.HomeGoals,
			AwayGoals:   row.AwayGoals,
			SubmittedAt: row.SubmittedAt.UTC(),
		})
	}

	return out, nil
}

func (r *PredictionRepository) Create(ctx context.Context, p prediction.Prediction) (prediction.Prediction, error) {
	ref, err := r.ids.NewID()
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("generate prediction reference: %w", err)
	}

	const query = `
INSERT INTO predictions (public_id, participant, fixture_id, home_goals, away_goals, submitted_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.db.ExecContext(ctx, query,
		ref, p.Participant, p.FixtureID, p.HomeGoals, p.AwayGoals, p.SubmittedAt,
	); err != nil {
		return prediction.Prediction{}, fmt.Errorf("insert prediction: %w", err)
	}

	p.Ref = ref
	return p, nil
}

func (r *PredictionRepository) Retract(ctx context.Context, ref string) error {
	const query = `
UPDATE predictions
SET deleted_at = NOW(), updated_at = NOW()
WHERE public_id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, ref)
	if err != nil {
		return fmt.Errorf("retract prediction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("retract prediction rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", prediction.ErrRefNotFound, ref)
	}

	return nil
}
