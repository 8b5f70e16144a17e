// Package catalog contains the business logic for the restaurant
// catalog and the subscription plans, with cache-aside reads.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/thermopolio/thermopolio/internal/lib/sl"
	"github.com/thermopolio/thermopolio/internal/models"
	"github.com/thermopolio/thermopolio/internal/storage"
)

const (
	cacheKeyRestaurants = "catalog:restaurants"
	cacheKeyPlans       = "catalog:plans"
	cacheTTL            = 5 * time.Minute
)

// ErrUnknownOwner marks a plan whose owner UID matches no account.
var ErrUnknownOwner = errors.New("unknown plan owner")

// Repository is the storage contract the catalog service consumes.
type Repository interface {
	// ListRestaurants returns the restaurant catalog.
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
	// CreatePlan stores a new subscription plan.
	CreatePlan(ctx context.Context, plan models.Plan) error
	// ListPlans returns every plan.
	ListPlans(ctx context.Context) ([]models.Plan, error)
}

// Cache is the caching contract. A nil Cache disables caching.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Service serves catalog reads and plan creation.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New creates the catalog service.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// ListRestaurants returns the restaurant catalog, cache-aside.
func (s *Service) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	const op = "catalog.ListRestaurants"

	if s.cache != nil {
		var cached []models.Restaurant
		hit, err := s.cache.Get(ctx, cacheKeyRestaurants, &cached)
		if err != nil {
			s.log.Error("restaurant cache read failed", sl.Err(err))
		} else if hit {
			return cached, nil
		}
	}

	restaurants, err := s.repo.ListRestaurants(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKeyRestaurants, restaurants, cacheTTL); err != nil {
			s.log.Error("restaurant cache write failed", sl.Err(err))
		}
	}
	return restaurants, nil
}

// ListPlans returns every subscription plan, cache-aside.
func (s *Service) ListPlans(ctx context.Context) ([]models.Plan, error) {
	const op = "catalog.ListPlans"

	if s.cache != nil {
		var cached []models.Plan
		hit, err := s.cache.Get(ctx, cacheKeyPlans, &cached)
		if err != nil {
			s.log.Error("plan cache read failed", sl.Err(err))
		} else if hit {
			return cached, nil
		}
	}

	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKeyPlans, plans, cacheTTL); err != nil {
			s.log.Error("plan cache write failed", sl.Err(err))
		}
	}
	return plans, nil
}

// CreatePlan completes the request with a fresh ID and the owner,
// stores it and invalidates the plan cache.
//
// The owner is only trusted when it parses as a UUID; a malformed body
// value makes the plan anonymous. An owner that parses but matches no
// account surfaces as ErrUnknownOwner.
func (s *Service) CreatePlan(ctx context.Context, ownerUID string, req models.DummyPlan) (*models.Plan, error) {
	const op = "catalog.CreatePlan"

	if ownerUID != "" {
		if _, err := uuid.Parse(ownerUID); err != nil {
			ownerUID = ""
		}
	}

	plan := models.Plan{
		ID:          uuid.New().String(),
		OwnerUID:    ownerUID,
		Name:        req.Name,
		Description: req.Description,
		PlanType:    req.PlanType,
		BasePrice:   req.BasePrice,
	}
	if err := s.repo.CreatePlan(ctx, plan); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUnknownOwner
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, cacheKeyPlans); err != nil {
			s.log.Error("plan cache invalidation failed", sl.Err(err))
		}
	}
	return &plan, nil
}
