package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwulff/glucose-go/internal/glucose"
	"github.com/jwulff/glucose-go/internal/storage/sqlite"
)

func TestAddPreservesInsertionOrder(t *testing.T) {
	m := NewMemory()
	a := glucose.Food{ID: uuid.New(), Name: "apple"}
	b := glucose.Food{ID: uuid.New(), Name: "banana"}
	c := glucose.Food{ID: uuid.New(), Name: "crackers"}

	m.Add(a)
	m.Add(b)
	m.Add(c)

	foods := m.Foods()
	require.Len(t, foods, 3)
	assert.Equal(t, "apple", foods[0].Name)
	assert.Equal(t, "banana", foods[1].Name)
	assert.Equal(t, "crackers", foods[2].Name)
}

func TestAddDuplicateIsNoop(t *testing.T) {
	m := NewMemory()
	f := glucose.Food{ID: uuid.New(), Name: "apple"}

	m.Add(f)
	m.Add(glucose.Food{ID: f.ID, Name: "renamed"})

	require.Equal(t, 1, m.Len())
	got, ok := m.Get(f.ID)
	require.True(t, ok)
	assert.Equal(t, "apple", got.Name)
}

func TestGetUnknown(t *testing.T) {
	m := NewMemory()
	_, ok := m.Get(uuid.New())
	assert.False(t, ok)
}

func TestLoadFromStore(t *testing.T) {
	store, err := sqlite.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	a := glucose.Food{ID: uuid.New(), Name: "apple", Carbs: 14, Fats: 0.2, GlycemicIndex: 39}
	b := glucose.Food{ID: uuid.New(), Name: "banana", Carbs: 23, Fats: 0.3, GlycemicIndex: 51}
	require.NoError(t, store.SaveFood(ctx, &a))
	require.NoError(t, store.SaveFood(ctx, &b))

	m := NewMemory()
	m.Add(glucose.Food{ID: uuid.New(), Name: "stale entry"})

	require.NoError(t, m.Load(ctx, store))
	require.Equal(t, 2, m.Len())

	foods := m.Foods()
	assert.Equal(t, "apple", foods[0].Name)
	assert.Equal(t, "banana", foods[1].Name)
}
