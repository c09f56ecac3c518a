package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cppla/socialdash/models"
)

// Authenticator is the backing identity service of the session store.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (models.User, error)
	Register(ctx context.Context, name, email, password string) (models.User, error)
	Lookup(ctx context.Context, userID string) (models.User, error)
	SaveProfile(ctx context.Context, user models.User) error
}

// MockAuthenticator accepts any credentials. Logging in with an unknown email
// signs in a copy of DemoUser under that email.
type MockAuthenticator struct {
	latency  Latency
	failures FailurePolicy
	now      func() time.Time
	newID    func() (string, error)

	mu      sync.Mutex
	users   map[string]models.User
	byEmail map[string]string
}

// NewMockAuthenticator returns an authenticator that knows DemoUser.
func NewMockAuthenticator(opts ...MockOption) *MockAuthenticator {
	c := newMockConfig(opts)
	a := &MockAuthenticator{
		latency:  c.latency,
		failures: c.failures,
		now:      time.Now,
		newID:    newUUID,
		users:    map[string]models.User{},
		byEmail:  map[string]string{},
	}
	a.put(DemoUser())
	return a
}

func (a *MockAuthenticator) put(u models.User) {
	a.users[u.ID] = u.Clone()
	a.byEmail[normalizeEmail(u.Email)] = u.ID
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login implements Authenticator.
func (a *MockAuthenticator) Login(ctx context.Context, email, password string) (models.User, error) {
	if err := simulate(ctx, a.latency, a.failures, OpLogin); err != nil {
		return models.User{}, err
	}
	key := normalizeEmail(email)
	if key == "" {
		return models.User{}, ErrInvalidCredentials
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if id, ok := a.byEmail[key]; ok {
		return a.users[id].Clone(), nil
	}
	id, err := a.newID()
	if err != nil {
		return models.User{}, err
	}
	u := DemoUser()
	u.ID = id
	u.Email = strings.TrimSpace(email)
	for i := range u.ConnectedAccounts {
		u.ConnectedAccounts[i].UserID = id
		u.ConnectedAccounts[i].ID = id + "-" + string(u.ConnectedAccounts[i].Platform)
	}
	a.put(u)
	return u.Clone(), nil
}

// Register implements Authenticator.
func (a *MockAuthenticator) Register(ctx context.Context, name, email, password string) (models.User, error) {
	if err := simulate(ctx, a.latency, a.failures, OpRegister); err != nil {
		return models.User{}, err
	}
	name = strings.TrimSpace(name)
	key := normalizeEmail(email)
	if name == "" || key == "" || password == "" {
		return models.User{}, ErrInvalidCredentials
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.byEmail[key]; ok {
		return models.User{}, ErrEmailTaken
	}
	id, err := a.newID()
	if err != nil {
		return models.User{}, err
	}
	u := models.User{
		ID:                id,
		Name:              name,
		Email:             strings.TrimSpace(email),
		Avatar:            models.DefaultAvatar,
		JoinedAt:          a.now().UTC(),
		ConnectedAccounts: []models.ConnectedAccount{},
	}
	a.put(u)
	return u.Clone(), nil
}

// Lookup implements Authenticator.
func (a *MockAuthenticator) Lookup(ctx context.Context, userID string) (models.User, error) {
	if err := simulate(ctx, a.latency, a.failures, OpRestore); err != nil {
		return models.User{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	u, ok := a.users[userID]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return u.Clone(), nil
}

// SaveProfile implements Authenticator.
func (a *MockAuthenticator) SaveProfile(ctx context.Context, user models.User) error {
	if err := simulate(ctx, a.latency, a.failures, OpProfile); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.users[user.ID]; !ok {
		return ErrUserNotFound
	}
	a.put(user)
	return nil
}
