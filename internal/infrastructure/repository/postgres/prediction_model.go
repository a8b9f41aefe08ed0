package postgres

import "time"

type predictionTableModel struct {
	ID          int64      `db:"id"`
	PublicID    string     `db:"public_id"`
	Participant string     `db:"participant"`
	FixtureID   string     `db:"fixture_id"`
	HomeGoals   int        `db:"home_goals"`
	AwayGoals   int        `db:"away_goals"`
	SubmittedAt time.Time  `db:"submitted_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}
