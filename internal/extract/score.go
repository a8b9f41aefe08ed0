package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	scorePattern = regexp.MustCompile(`(\d+)\s*[-:]\s*(\d+)`)
	parenPattern = regexp.MustCompile(`\([^)]*\)`)
)

// ParseScore reads a free-text score cell. It returns both goal counts, or
// (nil, nil) for anything that does not carry a final score: "vs" separators,
// empty cells, or prose the grammar does not recognize. Upstream cells mix
// dashes, colons and two-leg aggregate notes in parentheses, so unrecognized
// text always reads as "no score yet".
func ParseScore(raw string) (homeGoals, awayGoals *int) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, nil
	}
	switch strings.ToLower(text) {
	case "vs", "vs.":
		return nil, nil
	}

	// Aggregate annotations like "(4:2 global)" must not shadow the match score.
	text = parenPattern.ReplaceAllString(text, " ")

	match := scorePattern.FindStringSubmatch(text)
	if match == nil {
		return nil, nil
	}

	home, err := strconv.Atoi(match[1])
	if err != nil {
		return nil, nil
	}
	away, err := strconv.Atoi(match[2])
	if err != nil {
		return nil, nil
	}

	return &home, &away
}
