package prediction

import (
	"errors"
	"fmt"
	"strings"

	"github.com/quinielamx/quiniela/internal/domain/fixture"
)

const minParticipantNameLength = 2

var (
	ErrMissingField   = errors.New("required field is missing")
	ErrNegativeGoals  = errors.New("goal count must not be negative")
	ErrNameTooShort   = errors.New("participant name is too short")
	ErrUnknownFixture = errors.New("fixture is not part of the current bracket")
	ErrDuplicate      = errors.New("participant already predicted this fixture")
)

// Validate checks a submission against the current fixture list and the set of
// already accepted predictions. Checks run in a fixed order so the caller can
// surface one specific error per rejection.
func Validate(sub Submission, fixtures []fixture.Fixture, accepted []Prediction) error {
	participant := strings.TrimSpace(sub.Participant)
	fixtureID := strings.TrimSpace(sub.FixtureID)

	if participant == "" || fixtureID == "" || sub.HomeGoals == nil || sub.AwayGoals == nil {
		return ErrMissingField
	}
	if *sub.HomeGoals < 0 || *sub.AwayGoals < 0 {
		return ErrNegativeGoals
	}
	if len([]rune(participant)) < minParticipantNameLength {
		return fmt.Errorf("%w: minimum %d characters", ErrNameTooShort, minParticipantNameLength)
	}

	known := false
	for _, f := range fixtures {
		if f.ID == fixtureID {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: %s", ErrUnknownFixture, fixtureID)
	}

	for _, p := range accepted {
		if p.FixtureID == fixtureID && strings.EqualFold(p.Participant, participant) {
			return fmt.Errorf("%w: participant=%s fixture=%s", ErrDuplicate, participant, fixtureID)
		}
	}

	return nil
}
