package prediction

import "time"

// Prediction is one accepted forecast for one fixture. Immutable once
// accepted; retraction removes it from the store instead of editing it.
type Prediction struct {
	// Ref is the store-assigned reference (issue number, row id) used to
	// retract the prediction. Empty until the store accepts it.
	Ref         string
	Participant string
	FixtureID   string
	HomeGoals   int
	AwayGoals   int
	SubmittedAt time.Time
}

// Submission is a candidate prediction before validation. Goal counts are
// pointers so "absent" and "zero" stay distinguishable.
type Submission struct {
	Participant string
	FixtureID   string
	HomeGoals   *int
	AwayGoals   *int
}
