package usecase

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quinielamx/quiniela/internal/domain/fixture"
	"github.com/quinielamx/quiniela/internal/infrastructure/repository/memory"
	"github.com/quinielamx/quiniela/internal/platform/cache"
	"github.com/quinielamx/quiniela/internal/platform/logging"
)

type countingSource struct {
	inner fixture.Source
	calls atomic.Int32
}

func (s *countingSource) Snapshot(ctx context.Context) ([]fixture.Fixture, error) {
	s.calls.Add(1)
	return s.inner.Snapshot(ctx)
}

func TestFixtureService_ListUsesCachedSnapshot(t *testing.T) {
	t.Parallel()

	source := &countingSource{inner: memory.NewFixtureSource(memory.SeedFixtures())}
	service := NewFixtureService(source, cache.NewStore(time.Minute), logging.NewNop())

	first, err := service.List(context.Background())
	if err != nil {
		t.Fatalf("first list failed: %v", err)
	}
	second, err := service.List(context.Background())
	if err != nil {
		t.Fatalf("second list failed: %v", err)
	}

	if len(first) == 0 || len(first) != len(second) {
		t.Fatalf("unexpected snapshot sizes: %d vs %d", len(first), len(second))
	}
	if got := source.calls.Load(); got != 1 {
		t.Fatalf("expected one upstream load, got %d", got)
	}
}

func TestFixtureService_RefreshDropsCache(t *testing.T) {
	t.Parallel()

	source := &countingSource{inner: memory.NewFixtureSource(memory.SeedFixtures())}
	service := NewFixtureService(source, cache.NewStore(time.Minute), logging.NewNop())

	if _, err := service.List(context.Background()); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if _, err := service.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	if got := source.calls.Load(); got != 2 {
		t.Fatalf("expected refresh to hit upstream again, got %d loads", got)
	}
}

func TestFixtureService_ReturnsCopies(t *testing.T) {
	t.Parallel()

	source := memory.NewFixtureSource(memory.SeedFixtures())
	service := NewFixtureService(source, cache.NewStore(time.Minute), logging.NewNop())

	first, err := service.List(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	first[0].HomeTeam = "mutated"

	second, err := service.List(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if second[0].HomeTeam == "mutated" {
		t.Fatal("caller mutation leaked into the cached snapshot")
	}
}
