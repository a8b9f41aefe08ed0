package prediction

import (
	"context"
	"errors"
)

// ErrRefNotFound reports a retraction for a reference the store does not hold.
var ErrRefNotFound = errors.New("prediction reference not found")

// Repository is the prediction store collaborator. Implementations exist for
// GitHub Issues, postgres and memory; the core is agnostic to which one backs
// a deployment.
type Repository interface {
	List(ctx context.Context) ([]Prediction, error)
	Create(ctx context.Context, p Prediction) (Prediction, error)
	Retract(ctx context.Context, ref string) error
}
