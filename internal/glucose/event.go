package glucose

import "github.com/google/uuid"

// EventKind discriminates timeline event variants.
type EventKind string

const (
	EventFood     EventKind = "FOOD"
	EventInsulin  EventKind = "INSULIN"
	EventActivity EventKind = "ACTIVITY"
)

// Event is a timeline fact: something the user logged at a point in time.
// Events are immutable and ordered by At.
type Event interface {
	EventID() uuid.UUID
	Kind() EventKind
	At() int64 // Unix milliseconds
}

// FoodAmount references a catalog Food with a portion count.
type FoodAmount struct {
	FoodID   uuid.UUID
	Quantity int
}

// FoodEvent records a meal as a list of food amounts.
type FoodEvent struct {
	ID      uuid.UUID
	Time    int64
	Amounts []FoodAmount
}

func (e FoodEvent) EventID() uuid.UUID { return e.ID }
func (e FoodEvent) Kind() EventKind    { return EventFood }
func (e FoodEvent) At() int64          { return e.Time }

// InsulinEvent records an insulin shot in whole units.
type InsulinEvent struct {
	ID    uuid.UUID
	Time  int64
	Units int
}

func (e InsulinEvent) EventID() uuid.UUID { return e.ID }
func (e InsulinEvent) Kind() EventKind    { return EventInsulin }
func (e InsulinEvent) At() int64          { return e.Time }

// ActivityEvent records physical activity with a duration and intensity.
type ActivityEvent struct {
	ID          uuid.UUID
	Time        int64
	DurationMin int
	Intensity   ActivityIntensity
}

func (e ActivityEvent) EventID() uuid.UUID { return e.ID }
func (e ActivityEvent) Kind() EventKind    { return EventActivity }
func (e ActivityEvent) At() int64          { return e.Time }
