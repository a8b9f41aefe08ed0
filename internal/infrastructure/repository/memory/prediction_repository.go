package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/quinielamx/quiniela/internal/domain/prediction"
)

// PredictionRepository keeps predictions in process memory. Used by tests and
// by deployments that have not wired an external store.
type PredictionRepository struct {
	mu      sync.RWMutex
	items   []prediction.Prediction
	nextRef int
}

func NewPredictionRepository() *PredictionRepository {
	return &PredictionRepository{nextRef: 1}
}

func (r *PredictionRepository) List(_ context.Context) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Prediction, len(r.items))
	copy(out, r.items)
	return out, nil
}

func (r *PredictionRepository) Create(_ context.Context, p prediction.Prediction) (prediction.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.Ref = strconv.Itoa(r.nextRef)
	r.nextRef++
	r.items = append(r.items, p)
	return p, nil
}

func (r *PredictionRepository) Retract(_ context.Context, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.items {
		if p.Ref == ref {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", prediction.ErrRefNotFound, ref)
}
