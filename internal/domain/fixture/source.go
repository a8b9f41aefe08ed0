package fixture

import "context"

// Source supplies the current fixture snapshot. Each call returns a complete,
// self-consistent list; callers never see partial updates.
type Source interface {
	Snapshot(ctx context.Context) ([]Fixture, error)
}
