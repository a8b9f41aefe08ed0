package fixture

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// Stage is the bracket round a fixture belongs to. The set is closed per
// tournament but configured, not hard-coded: extraction maps heading keywords
// onto whatever stages the caller registered.
type Stage string

const (
	StageQuarterFinal Stage = "quarter_final"
	StageSemiFinal    Stage = "semi_final"
	StageFinal        Stage = "final"
)

// Fixture is one scheduled or completed match taken from a bracket snapshot.
// Records are values: extraction builds a fresh list every run and nothing
// mutates one afterwards.
type Fixture struct {
	ID       string
	Stage    Stage
	Date     *string // canonical YYYY-MM-DD, nil when the source phrase did not parse
	HomeTeam string
	AwayTeam string
	// HomeGoals and AwayGoals are both nil until the match is decided.
	HomeGoals *int
	AwayGoals *int
	Venue     string
	City      string
}

// Decided reports whether the fixture has a final score.
func (f Fixture) Decided() bool {
	return f.HomeGoals != nil && f.AwayGoals != nil
}

// NormalizeTeam canonicalizes a team identifier: trimmed, lowercased, inner
// whitespace collapsed. Display casing is a presentation concern.
func NormalizeTeam(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}

// CanonicalID derives the fixture id from its identity fields. The same
// stage/teams/date always yields the same id, which is what makes
// re-extraction idempotent.
func CanonicalID(stage Stage, homeTeam, awayTeam string, date *string) string {
	day := ""
	if date != nil {
		day = *date
	}
	sum := sha1.Sum([]byte(string(stage) + "|" + homeTeam + "|" + awayTeam + "|" + day))
	return hex.EncodeToString(sum[:])[:16]
}
