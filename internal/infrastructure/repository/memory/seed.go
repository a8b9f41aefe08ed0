package memory

import "github.com/quinielamx/quiniela/internal/domain/fixture"

// SeedFixtures returns a small Apertura 2024 liguilla snapshot for local
// development without upstream access.
func SeedFixtures() []fixture.Fixture {
	build := func(stage fixture.Stage, date, home, away string, homeGoals, awayGoals *int, venue, city string) fixture.Fixture {
		d := date
		return fixture.Fixture{
			ID:        fixture.CanonicalID(stage, home, away, &d),
			Stage:     stage,
			Date:      &d,
			HomeTeam:  home,
			AwayTeam:  away,
			HomeGoals: homeGoals,
			AwayGoals: awayGoals,
			Venue:     venue,
			City:      city,
		}
	}
	goals := func(v int) *int { return &v }

	return []fixture.Fixture{
		build(fixture.StageQuarterFinal, "2024-11-27", "atlético san luis", "américa", goals(2), goals(3), "Alfonso Lastras", "San Luis Potosí"),
		build(fixture.StageQuarterFinal, "2024-11-27", "tijuana", "tigres", goals(0), goals(3), "Caliente", "Tijuana"),
		build(fixture.StageQuarterFinal, "2024-11-28", "toluca", "cruz azul", goals(1), goals(2), "Nemesio Diez", "Toluca"),
		build(fixture.StageQuarterFinal, "2024-11-28", "pumas", "monterrey", goals(1), goals(1), "Olímpico Universitario", "Ciudad de México"),
		build(fixture.StageSemiFinal, "2024-12-04", "américa", "cruz azul", nil, nil, "Ciudad de los Deportes", "Ciudad de México"),
		build(fixture.StageSemiFinal, "2024-12-05", "tigres", "monterrey", nil, nil, "Universitario", "San Nicolás"),
	}
}
