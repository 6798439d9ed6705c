// Package storage provides persistence abstractions for the food catalog
// and the timeline event log.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwulff/glucose-go/internal/glucose"
)

// Store is the interface for persistent storage.
type Store interface {
	// Food catalog
	SaveFood(ctx context.Context, food *glucose.Food) error
	GetFood(ctx context.Context, id uuid.UUID) (*glucose.Food, error)
	GetFoods(ctx context.Context) ([]*glucose.Food, error)

	// Timeline events
	SaveEvent(ctx context.Context, event glucose.Event) error
	QueryEvents(ctx context.Context, from, to int64) (*EventLog, error)

	// Lifecycle
	Close() error
}

// EventLog groups a time range's events per kind, each list ordered by
// event time.
type EventLog struct {
	Food     []glucose.FoodEvent
	Insulin  []glucose.InsulinEvent
	Activity []glucose.ActivityEvent
}

// ErrNotFound is returned when a record is not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e ErrNotFound) Error() string {
	return e.Resource + " not found: " + e.ID
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	_, ok := err.(ErrNotFound)
	return ok
}
