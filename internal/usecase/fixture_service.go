package usecase

import (
	"context"
	"fmt"

	"github.com/quinielamx/quiniela/internal/domain/fixture"
	"github.com/quinielamx/quiniela/internal/platform/cache"
	"github.com/quinielamx/quiniela/internal/platform/logging"
)

const fixtureSnapshotKey = "fixtures:snapshot"

// FixtureService serves the current fixture list. The source does the actual
// fetch-and-extract work; this layer only caches the snapshot so concurrent
// readers share one upstream round trip per TTL window.
type FixtureService struct {
	source fixture.Source
	cache  *cache.Store
	logger *logging.Logger
}

func NewFixtureService(source fixture.Source, store *cache.Store, logger *logging.Logger) *FixtureService {
	if logger == nil {
		logger = logging.Default()
	}
	return &FixtureService{
		source: source,
		cache:  store,
		logger: logger,
	}
}

func (s *FixtureService) List(ctx context.Context) ([]fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.List")
	defer span.End()

	value, err := s.cache.GetOrLoad(ctx, fixtureSnapshotKey, func(ctx context.Context) (any, error) {
		fixtures, loadErr := s.source.Snapshot(ctx)
		if loadErr != nil {
			return nil, fmt.Errorf("load fixture snapshot: %w", loadErr)
		}
		if len(fixtures) == 0 {
			// Not an error: the bracket section may simply not exist yet.
			s.logger.WarnContext(ctx, "fixture snapshot is empty")
		}
		return fixtures, nil
	})
	if err != nil {
		return nil, err
	}

	fixtures, ok := value.([]fixture.Fixture)
	if !ok {
		return nil, fmt.Errorf("unexpected snapshot cache entry type %T", value)
	}
	out := make([]fixture.Fixture, len(fixtures))
	copy(out, fixtures)
	return out, nil
}

// Refresh drops the cached snapshot and loads a fresh one. Used by the
// internal refresh job; regular reads just ride the TTL.
func (s *FixtureService) Refresh(ctx context.Context) ([]fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.Refresh")
	defer span.End()

	s.cache.Delete(ctx, fixtureSnapshotKey)
	fixtures, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "fixture snapshot refreshed", "fixtures", len(fixtures))
	return fixtures, nil
}
