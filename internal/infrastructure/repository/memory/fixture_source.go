package memory

import (
	"context"
	"sync"

	"github.com/quinielamx/quiniela/internal/domain/fixture"
)

// FixtureSource serves a fixed fixture snapshot from memory.
type FixtureSource struct {
	mu       sync.RWMutex
	fixtures []fixture.Fixture
}

func NewFixtureSource(fixtures []fixture.Fixture) *FixtureSource {
	return &FixtureSource{fixtures: fixtures}
}

func (s *FixtureSource) Snapshot(_ context.Context) ([]fixture.Fixture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]fixture.Fixture, len(s.fixtures))
	copy(out, s.fixtures)
	return out, nil
}

// SetFixtures swaps the snapshot wholesale, mirroring how extraction
// supersedes the previous result.
func (s *FixtureSource) SetFixtures(fixtures []fixture.Fixture) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fixtures = make([]fixture.Fixture, len(fixtures))
	copy(s.fixtures, fixtures)
}
