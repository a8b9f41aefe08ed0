package extract

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/quinielamx/quiniela/internal/domain/fixture"
	"github.com/quinielamx/quiniela/internal/platform/htmltree"
)

// StageKeyword maps a heading phrase onto a bracket stage.
type StageKeyword struct {
	Keyword string
	Stage   fixture.Stage
}

// Config carries the only knobs extraction has: which headings open a stage
// section, which year to assume for year-less dates, and the allow-list of
// date phrases that qualify a row when the grammar does not.
type Config struct {
	// StageKeywords are tried in order against normalized heading text, so the
	// more specific phrase must come first ("cuartos de final" before "final").
	StageKeywords    []StageKeyword
	DefaultYear      int
	KnownDatePhrases []string
}

// DefaultConfig covers a Liga MX liguilla for the given season year.
func DefaultConfig(year int) Config {
	return Config{
		StageKeywords: []StageKeyword{
			{Keyword: "cuartos de final", Stage: fixture.StageQuarterFinal},
			{Keyword: "semifinal", Stage: fixture.StageSemiFinal},
			{Keyword: "final", Stage: fixture.StageFinal},
		},
		DefaultYear: year,
	}
}

const minFixtureRowCells = 4

type section struct {
	start htmltree.Node
	level int
	stage fixture.Stage
}

// Extract turns a document tree into the ordered fixture list. It is pure and
// deterministic: the same snapshot always yields the same fixtures in the same
// order with the same ids. A document without any recognizable stage section
// yields an empty list, not an error; bracket data being absent is a normal
// state between seasons.
func Extract(root htmltree.Node, cfg Config) []fixture.Fixture {
	sections := make([]section, 0, 4)
	collectSections(root, cfg, &sections)

	out := make([]fixture.Fixture, 0, 8)
	indexByID := make(map[string]int)

	for _, sec := range sections {
		for _, table := range sectionTables(sec) {
			for _, row := range findTag(table, "tr") {
				fx, ok := fixtureFromRow(row, sec.stage, cfg)
				if !ok {
					continue
				}
				// Same id seen twice: keep one fixture, last occurrence wins.
				if idx, seen := indexByID[fx.ID]; seen {
					out[idx] = fx
					continue
				}
				indexByID[fx.ID] = len(out)
				out = append(out, fx)
			}
		}
	}

	return out
}

func collectSections(n htmltree.Node, cfg Config, sections *[]section) {
	if level, text, ok := headingInfo(n); ok {
		if stage, matched := matchStage(text, cfg.StageKeywords); matched {
			*sections = append(*sections, section{start: n, level: level, stage: stage})
		}
		return
	}
	for _, kid := range n.Children() {
		collectSections(kid, cfg, sections)
	}
}

// sectionTables walks forward through the heading's siblings collecting
// tables, stopping at the end of the tree or at the next heading of equal or
// higher rank.
func sectionTables(sec section) []htmltree.Node {
	var tables []htmltree.Node
	for s := sec.start.NextSibling(); s != nil; s = s.NextSibling() {
		if level, _, ok := headingInfo(s); ok && level <= sec.level {
			break
		}
		tables = append(tables, findTag(s, "table")...)
	}
	return tables
}

func fixtureFromRow(row htmltree.Node, stage fixture.Stage, cfg Config) (fixture.Fixture, bool) {
	cells := rowCells(row)
	if len(cells) < minFixtureRowCells {
		return fixture.Fixture{}, false
	}

	first := strings.TrimSpace(cells[0].Text())
	// Time-zone sub-headers sit between date rows in the source tables.
	if strings.Contains(strings.ToUpper(first), "UTC") {
		return fixture.Fixture{}, false
	}

	var date *string
	if canonical, err := NormalizeDate(first, cfg.DefaultYear); err == nil {
		date = &canonical
	} else if !matchesKnownDate(first, cfg.KnownDatePhrases) {
		return fixture.Fixture{}, false
	}

	homeTeam := fixture.NormalizeTeam(cells[1].Text())
	awayTeam := fixture.NormalizeTeam(cells[3].Text())
	if homeTeam == "" || awayTeam == "" || homeTeam == awayTeam {
		return fixture.Fixture{}, false
	}

	homeGoals, awayGoals := ParseScore(cells[2].Text())

	venue, city := "", ""
	if len(cells) > 4 {
		venue, city = splitVenue(cells[4].Text())
	}

	return fixture.Fixture{
		ID:        fixture.CanonicalID(stage, homeTeam, awayTeam, date),
		Stage:     stage,
		Date:      date,
		HomeTeam:  homeTeam,
		AwayTeam:  awayTeam,
		HomeGoals: homeGoals,
		AwayGoals: awayGoals,
		Venue:     venue,
		City:      city,
	}, true
}

func rowCells(row htmltree.Node) []htmltree.Node {
	var cells []htmltree.Node
	for _, kid := range row.Children() {
		switch kid.TagName() {
		case "td", "th":
			cells = append(cells, kid)
		}
	}
	return cells
}

// headingInfo recognizes a section heading: either a bare h1-h6 element or a
// div whose first child is one (the wrapper markup newer MediaWiki emits).
// Wider containers like section elements are descended into instead, since
// they hold the section body too.
func headingInfo(n htmltree.Node) (int, string, bool) {
	if level, ok := headingLevel(n.TagName()); ok {
		return level, n.Text(), true
	}

	if n.TagName() != "div" {
		return 0, "", false
	}
	kids := n.Children()
	// A heading wrapper holds just the heading and at most an edit link;
	// anything wider is a section body and gets descended into.
	if len(kids) == 0 || len(kids) > 2 {
		return 0, "", false
	}
	if level, ok := headingLevel(kids[0].TagName()); ok {
		return level, kids[0].Text(), true
	}
	return 0, "", false
}

func headingLevel(tag string) (int, bool) {
	if len(tag) != 2 || tag[0] != 'h' || tag[1] < '1' || tag[1] > '6' {
		return 0, false
	}
	return int(tag[1] - '0'), true
}

func matchStage(headingText string, keywords []StageKeyword) (fixture.Stage, bool) {
	normalized := foldText(headingText)
	for _, kw := range keywords {
		if strings.Contains(normalized, foldText(kw.Keyword)) {
			return kw.Stage, true
		}
	}
	return "", false
}

func matchesKnownDate(cellText string, known []string) bool {
	folded := foldText(cellText)
	for _, phrase := range known {
		if phrase == "" {
			continue
		}
		if strings.Contains(folded, foldText(phrase)) {
			return true
		}
	}
	return false
}

func splitVenue(raw string) (venue, city string) {
	venue, city, found := strings.Cut(strings.TrimSpace(raw), ",")
	if !found {
		return strings.TrimSpace(venue), ""
	}
	return strings.TrimSpace(venue), strings.TrimSpace(city)
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldText lowercases and strips diacritics so "Semifinales" and "SEMIFINALES"
// and "Semifináles" all compare equal.
func foldText(s string) string {
	folded, _, err := transform.String(accentStripper, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return strings.Join(strings.Fields(folded), " ")
}

func findTag(n htmltree.Node, tag string) []htmltree.Node {
	var out []htmltree.Node
	if n.TagName() == tag {
		out = append(out, n)
	}
	for _, kid := range n.Children() {
		out = append(out, findTag(kid, tag)...)
	}
	return out
}
