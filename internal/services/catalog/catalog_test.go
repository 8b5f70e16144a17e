package catalog

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thermopolio/thermopolio/internal/models"
	"github.com/thermopolio/thermopolio/internal/storage"
	"github.com/thermopolio/thermopolio/internal/storage/memory"
)

type fakeCache struct {
	data        map[string][]byte
	gets, sets  int
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (c *fakeCache) Get(_ context.Context, key string, result any) (bool, error) {
	c.gets++
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, result)
}

func (c *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.sets++
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, key string) error {
	c.invalidated = append(c.invalidated, key)
	delete(c.data, key)
	return nil
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestListRestaurants_StableAcrossCalls(t *testing.T) {
	repo, err := memory.NewSeeded()
	require.NoError(t, err)
	svc := New(repo, nil, newNoopLogger())
	ctx := context.Background()

	first, err := svc.ListRestaurants(ctx)
	require.NoError(t, err)
	second, err := svc.ListRestaurants(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first, 3)
	assert.Equal(t, "Trattoria del Foro", first[0].Name)
}

func TestListRestaurants_CacheAside(t *testing.T) {
	repo, err := memory.NewSeeded()
	require.NoError(t, err)
	cache := newFakeCache()
	svc := New(repo, cache, newNoopLogger())
	ctx := context.Background()

	first, err := svc.ListRestaurants(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	second, err := svc.ListRestaurants(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.sets, "second read must come from cache")
}

func TestCreatePlan(t *testing.T) {
	repo, err := memory.NewSeeded()
	require.NoError(t, err)
	cache := newFakeCache()
	svc := New(repo, cache, newNoopLogger())
	ctx := context.Background()

	ownerUID := uuid.New().String()
	plan, err := svc.CreatePlan(ctx, ownerUID, models.DummyPlan{
		Name:        "Cena solidale",
		Description: "Cena per due, tre volte a settimana",
		PlanType:    "weekly",
		BasePrice:   45,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, plan.ID)
	assert.Equal(t, ownerUID, plan.OwnerUID)
	assert.Equal(t, "Cena solidale", plan.Name)
	assert.Contains(t, cache.invalidated, "catalog:plans")

	plans, err := svc.ListPlans(ctx)
	require.NoError(t, err)
	assert.Len(t, plans, 3) // two seeded plus the new one

	owned, err := repo.ListPlansByOwner(ctx, ownerUID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, plan.ID, owned[0].ID)
}

func TestCreatePlan_MalformedOwnerDropped(t *testing.T) {
	repo := memory.New()
	svc := New(repo, nil, newNoopLogger())

	// A body-supplied owner that is not a UUID cannot reference any
	// account; the plan is stored anonymously.
	plan, err := svc.CreatePlan(context.Background(), "abc", models.DummyPlan{
		Name: "Piano anonimo", PlanType: "weekly", BasePrice: 10,
	})
	require.NoError(t, err)
	assert.Empty(t, plan.OwnerUID)
}

// fkRepo rejects every plan as owned by an unknown account.
type fkRepo struct{}

func (fkRepo) ListRestaurants(context.Context) ([]models.Restaurant, error) { return nil, nil }
func (fkRepo) ListPlans(context.Context) ([]models.Plan, error)             { return nil, nil }
func (fkRepo) CreatePlan(context.Context, models.Plan) error {
	return storage.ErrNotFound
}

func TestCreatePlan_UnknownOwner(t *testing.T) {
	svc := New(fkRepo{}, nil, newNoopLogger())

	_, err := svc.CreatePlan(context.Background(), uuid.New().String(), models.DummyPlan{
		Name: "Piano orfano", PlanType: "weekly", BasePrice: 10,
	})
	assert.ErrorIs(t, err, ErrUnknownOwner)
}

func TestCreatePlan_UniqueIDs(t *testing.T) {
	repo := memory.New()
	svc := New(repo, nil, newNoopLogger())
	ctx := context.Background()

	seen := map[string]bool{}
	for range 10 {
		plan, err := svc.CreatePlan(ctx, "owner-1", models.DummyPlan{Name: "Piano", PlanType: "weekly", BasePrice: 10})
		require.NoError(t, err)
		assert.False(t, seen[plan.ID])
		seen[plan.ID] = true
	}
}
