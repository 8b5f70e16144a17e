// Package memory implements the repository interfaces on plain maps.
// It ships seeded with the three demo accounts and the static catalog
// data, and backs tests and local runs without PostgreSQL.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thermopolio/thermopolio/internal/lib/password"
	"github.com/thermopolio/thermopolio/internal/models"
	"github.com/thermopolio/thermopolio/internal/storage"
)

// Storage is an in-memory repository.
type Storage struct {
	mu          sync.RWMutex
	users       map[string]*models.User // keyed by UID
	byUsername  map[string]string       // username -> UID
	tokens      map[string]*models.EmailToken
	plans       []models.Plan
	restaurants []models.Restaurant
}

// New returns an empty in-memory repository.
func New() *Storage {
	return &Storage{
		users:      make(map[string]*models.User),
		byUsername: make(map[string]string),
		tokens:     make(map[string]*models.EmailToken),
	}
}

// DemoAccount is one of the seeded demo credentials.
type DemoAccount struct {
	Username string
	Password string
	Role     string
}

// DemoAccounts returns the demo credential table, one account per role.
func DemoAccounts() []DemoAccount {
	return []DemoAccount{
		{Username: "cliente", Password: "Cliente123", Role: models.RoleCustomer},
		{Username: "trattoria", Password: "Trattoria123", Role: models.RoleTavolaCalda},
		{Username: "solidale", Password: "Solidale123", Role: models.RoleOnlus},
	}
}

// NewSeeded returns a repository preloaded with the demo accounts and
// the static restaurant and plan catalogs.
func NewSeeded() (*Storage, error) {
	s := New()
	ctx := context.Background()

	for _, acc := range DemoAccounts() {
		hash, err := password.Hash(acc.Password)
		if err != nil {
			return nil, fmt.Errorf("memory.NewSeeded: %w", err)
		}
		user := models.User{
			Username:      acc.Username,
			Email:         acc.Username + "@thermopolio.example",
			PasswordHash:  hash,
			Name:          acc.Username,
			Role:          acc.Role,
			EmailVerified: true,
		}
		switch acc.Role {
		case models.RoleTavolaCalda:
			user.BusinessName = "Trattoria del Foro"
			user.BusinessType = "tavola_calda"
		case models.RoleOnlus:
			user.AssistanceType = "mense_solidali"
		}
		if _, err := s.RegisterUser(ctx, user); err != nil {
			return nil, err
		}
	}

	ownerUID, _ := s.byUsername["trattoria"]
	s.restaurants = []models.Restaurant{
		{ID: "1", Name: "Trattoria del Foro", CuisineType: "Romana", Distance: "0.3 km", Rating: 4.6},
		{ID: "2", Name: "Tavola Calda Esquilino", CuisineType: "Casalinga", Distance: "0.8 km", Rating: 4.2},
		{ID: "3", Name: "Osteria Popolare", CuisineType: "Vegetariana", Distance: "1.2 km", Rating: 4.4},
	}
	s.plans = []models.Plan{
		{ID: "1", OwnerUID: ownerUID, Name: "Pranzo feriale", Description: "Un pasto caldo al giorno, lun-ven", PlanType: "weekly", BasePrice: 35},
		{ID: "2", OwnerUID: ownerUID, Name: "Mensile completo", Description: "Pranzo e cena tutti i giorni", PlanType: "monthly", BasePrice: 220},
	}
	return s, nil
}

// RegisterUser stores a new user and returns its UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "memory.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[user.Username]; taken {
		return "", fmt.Errorf("%s: %w", op, storage.ErrUsernameTaken)
	}
	user.UID = uuid.New().String()
	now := time.Now()
	user.CreatedAt = &now

	cp := user
	s.users[user.UID] = &cp
	s.byUsername[user.Username] = user.UID
	return user.UID, nil
}

// GetUserByUsername returns the user with the given username.
func (s *Storage) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	const op = "memory.GetUserByUsername"
	s.mu.RLock()
	defer s.mu.RUnlock()

	uid, ok := s.byUsername[username]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	cp := *s.users[uid]
	return &cp, nil
}

// GetUser returns the user with the given UID.
func (s *Storage) GetUser(_ context.Context, userUID string) (*models.User, error) {
	const op = "memory.GetUser"
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userUID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

// MarkEmailVerified flips the verified flag for the user.
func (s *Storage) MarkEmailVerified(_ context.Context, userUID string) error {
	const op = "memory.MarkEmailVerified"
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userUID]
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	u.EmailVerified = true
	return nil
}

// UpdatePassword replaces the stored password hash for the user.
func (s *Storage) UpdatePassword(_ context.Context, userUID, passwordHash string) error {
	const op = "memory.UpdatePassword"
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userUID]
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	u.PasswordHash = passwordHash
	return nil
}

// RemoveUser drops the user. Used by tests to simulate an account that
// disappeared underneath a live session.
func (s *Storage) RemoveUser(userUID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[userUID]; ok {
		delete(s.byUsername, u.Username)
		delete(s.users, userUID)
	}
}

// CreateToken stores a new email token.
func (s *Storage) CreateToken(ctx context.Context, token models.EmailToken) error {
	const op = "memory.CreateToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cp := token
	s.tokens[token.Token] = &cp
	return nil
}

// GetToken returns the email token record, used or not.
func (s *Storage) GetToken(_ context.Context, token string) (*models.EmailToken, error) {
	const op = "memory.GetToken"
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tokens[token]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

// MarkTokenUsed invalidates the token. A used token stays used.
func (s *Storage) MarkTokenUsed(_ context.Context, token string) error {
	const op = "memory.MarkTokenUsed"
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[token]
	if !ok || t.UsedAt != nil {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	now := time.Now()
	t.UsedAt = &now
	return nil
}

// CreatePlan stores a new subscription plan.
func (s *Storage) CreatePlan(ctx context.Context, plan models.Plan) error {
	const op = "memory.CreatePlan"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans = append(s.plans, plan)
	return nil
}

// ListPlans returns every plan in insertion order.
func (s *Storage) ListPlans(_ context.Context) ([]models.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Plan, len(s.plans))
	copy(out, s.plans)
	return out, nil
}

// ListPlansByOwner returns the plans owned by a restaurant.
func (s *Storage) ListPlansByOwner(_ context.Context, ownerUID string) ([]models.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Plan
	for _, p := range s.plans {
		if p.OwnerUID == ownerUID {
			out = append(out, p)
		}
	}
	return out, nil
}

// ListRestaurants returns the restaurant catalog in seed order.
func (s *Storage) ListRestaurants(_ context.Context) ([]models.Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Restaurant, len(s.restaurants))
	copy(out, s.restaurants)
	return out, nil
}
