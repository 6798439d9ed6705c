package sqlite

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwulff/glucose-go/internal/glucose"
	"github.com/jwulff/glucose-go/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestFoodRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	food := &glucose.Food{
		ID:            uuid.New(),
		Name:          "banana",
		Carbs:         23,
		Fats:          0.3,
		GlycemicIndex: 51,
	}
	require.NoError(t, store.SaveFood(ctx, food))

	got, err := store.GetFood(ctx, food.ID)
	require.NoError(t, err)
	assert.Equal(t, food, got)
}

func TestGetFoodNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetFood(context.Background(), uuid.New())
	assert.True(t, storage.IsNotFound(err))
}

func TestGetFoodsOrdered(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	names := []string{"apple", "banana", "cereal"}
	for _, name := range names {
		require.NoError(t, store.SaveFood(ctx, &glucose.Food{
			ID: uuid.New(), Name: name, Carbs: 10, Fats: 1, GlycemicIndex: 40,
		}))
	}

	foods, err := store.GetFoods(ctx)
	require.NoError(t, err)
	require.Len(t, foods, 3)
	for i, name := range names {
		assert.Equal(t, name, foods[i].Name)
	}
}

func TestSaveAndQueryEvents(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	apple := &glucose.Food{ID: uuid.New(), Name: "apple", Carbs: 14, Fats: 0.2, GlycemicIndex: 36}
	require.NoError(t, store.SaveFood(ctx, apple))

	foodEvent := glucose.FoodEvent{
		ID:   uuid.New(),
		Time: 1000,
		Amounts: []glucose.FoodAmount{
			{FoodID: apple.ID, Quantity: 2},
		},
	}
	insulinEvent := glucose.InsulinEvent{ID: uuid.New(), Time: 2000, Units: 4}
	activityEvent := glucose.ActivityEvent{
		ID: uuid.New(), Time: 3000, DurationMin: 30, Intensity: glucose.IntensityHigh,
	}

	require.NoError(t, store.SaveEvent(ctx, foodEvent))
	require.NoError(t, store.SaveEvent(ctx, insulinEvent))
	require.NoError(t, store.SaveEvent(ctx, activityEvent))

	log, err := store.QueryEvents(ctx, 0, 10_000)
	require.NoError(t, err)

	require.Len(t, log.Food, 1)
	assert.Equal(t, foodEvent, log.Food[0])
	require.Len(t, log.Insulin, 1)
	assert.Equal(t, insulinEvent, log.Insulin[0])
	require.Len(t, log.Activity, 1)
	assert.Equal(t, activityEvent, log.Activity[0])
}

func TestQueryEventsRange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.SaveEvent(ctx, glucose.InsulinEvent{
			ID: uuid.New(), Time: int64(i) * 1000, Units: 1,
		}))
	}

	log, err := store.QueryEvents(ctx, 1000, 3000)
	require.NoError(t, err)
	require.Len(t, log.Insulin, 3)
	assert.Equal(t, int64(1000), log.Insulin[0].Time)
	assert.Equal(t, int64(3000), log.Insulin[2].Time)
}
