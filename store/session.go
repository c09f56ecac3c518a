package store

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cppla/socialdash/models"
)

// SessionState is a read-only snapshot of the session store. While IsLoading
// is true the caller must treat the user as neither signed in nor anonymous.
type SessionState struct {
	User      *models.User `json:"user"`
	IsLoading bool         `json:"is_loading"`
}

// Authenticated reports whether a user is signed in and restore has finished.
func (s SessionState) Authenticated() bool {
	return !s.IsLoading && s.User != nil
}

// TokenIssuer turns a user into an opaque session marker and back into a user id.
type TokenIssuer interface {
	Issue(user models.User) (string, error)
	Resolve(token string) (string, error)
}

// ProfileUpdate carries the profile fields to change; nil fields are kept.
type ProfileUpdate struct {
	Name *string
	Bio  *string
}

// SessionStore owns the signed-in user and the persisted session marker.
// The user and the marker always change together.
type SessionStore struct {
	auth    Authenticator
	markers MarkerStore
	tokens  TokenIssuer
	logger  *zap.Logger

	// writeMu is held across marker I/O and the matching state change, so
	// the user and the marker never move apart. Lock order: writeMu, then mu.
	writeMu sync.Mutex
	mu      sync.RWMutex
	user    *models.User
	token   string
	loading bool

	initOnce sync.Once
	ready    chan struct{}
	subs     *broadcaster[SessionState]
}

// SessionOption configures a SessionStore.
type SessionOption func(*SessionStore)

// WithSessionLogger sets the logger.
func WithSessionLogger(l *zap.Logger) SessionOption {
	return func(s *SessionStore) { s.logger = l }
}

// NewSessionStore returns a store in the loading state. Call Init to restore
// a persisted session.
func NewSessionStore(auth Authenticator, markers MarkerStore, tokens TokenIssuer, opts ...SessionOption) *SessionStore {
	s := &SessionStore{
		auth:    auth,
		markers: markers,
		tokens:  tokens,
		logger:  zap.NewNop(),
		loading: true,
		ready:   make(chan struct{}),
		subs:    newBroadcaster[SessionState](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init restores the persisted session, if any, then leaves the loading state.
// Only the first call does work; later calls wait for it.
func (s *SessionStore) Init(ctx context.Context) {
	s.initOnce.Do(func() {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		user, token := s.restore(context.WithoutCancel(ctx))

		s.mu.Lock()
		// A login that finished while restoring wins.
		if s.user == nil && user != nil {
			s.user = user
			s.token = token
		}
		s.loading = false
		s.publishLocked()
		s.mu.Unlock()
		close(s.ready)
	})
	<-s.ready
}

func (s *SessionStore) restore(ctx context.Context) (*models.User, string) {
	token, err := s.markers.Get(ctx, SessionMarkerKey)
	if errors.Is(err, ErrMarkerNotFound) {
		return nil, ""
	}
	if err != nil {
		s.logger.Warn("read session marker failed", zap.Error(err))
		return nil, ""
	}
	userID, err := s.tokens.Resolve(token)
	if err != nil {
		s.logger.Info("discarding invalid session marker", zap.Error(err))
		s.dropMarker(ctx)
		return nil, ""
	}
	user, err := s.auth.Lookup(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		s.logger.Info("discarding session marker for unknown user", zap.String("user_id", userID))
		s.dropMarker(ctx)
		return nil, ""
	}
	if err != nil {
		s.logger.Warn("restore session failed", zap.String("user_id", userID), zap.Error(err))
		return nil, ""
	}
	return &user, token
}

func (s *SessionStore) dropMarker(ctx context.Context) {
	if err := s.markers.Delete(ctx, SessionMarkerKey); err != nil {
		s.logger.Warn("delete session marker failed", zap.Error(err))
	}
}

// Ready is closed once Init has finished.
func (s *SessionStore) Ready() <-chan struct{} {
	return s.ready
}

// State returns a snapshot of the session.
func (s *SessionStore) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Token returns the current session marker, empty when signed out.
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Subscribe returns a channel receiving the current state and every later change.
func (s *SessionStore) Subscribe() (<-chan SessionState, func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subs.subscribe(s.snapshotLocked())
}

// Close ends all subscriptions.
func (s *SessionStore) Close() {
	s.subs.close()
}

// Login signs in through the authenticator. It reports false on any failure
// and leaves the session unchanged.
func (s *SessionStore) Login(ctx context.Context, email, password string) bool {
	ctx = context.WithoutCancel(ctx)
	user, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.logger.Info("login failed", zap.String("email", email), zap.Error(err))
		return false
	}
	return s.establish(ctx, user)
}

// Register creates an account and signs it in. It reports false on any failure.
func (s *SessionStore) Register(ctx context.Context, name, email, password string) bool {
	ctx = context.WithoutCancel(ctx)
	user, err := s.auth.Register(ctx, name, email, password)
	if err != nil {
		s.logger.Info("register failed", zap.String("email", email), zap.Error(err))
		return false
	}
	return s.establish(ctx, user)
}

// establish persists the marker first and publishes the user only if that worked.
func (s *SessionStore) establish(ctx context.Context, user models.User) bool {
	token, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error("issue session token failed", zap.String("user_id", user.ID), zap.Error(err))
		return false
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.markers.Set(ctx, SessionMarkerKey, token); err != nil {
		s.logger.Error("persist session marker failed", zap.String("user_id", user.ID), zap.Error(err))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := user.Clone()
	s.user = &u
	s.token = token
	s.publishLocked()
	s.logger.Info("session started", zap.String("user_id", user.ID))
	return true
}

// Logout clears the user and the persisted marker. Calling it while signed
// out is a no-op. If the marker cannot be removed the session is kept.
func (s *SessionStore) Logout(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.markers.Delete(ctx, SessionMarkerKey); err != nil {
		s.logger.Warn("logout: delete session marker failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return
	}
	s.logger.Info("session ended", zap.String("user_id", s.user.ID))
	s.user = nil
	s.token = ""
	s.publishLocked()
}

// UpdateProfile merges the given fields into the current user after the
// authenticator has saved them.
func (s *SessionStore) UpdateProfile(ctx context.Context, upd ProfileUpdate) error {
	ctx = context.WithoutCancel(ctx)
	s.mu.RLock()
	if s.user == nil {
		s.mu.RUnlock()
		return ErrNotAuthenticated
	}
	merged := s.user.Clone()
	s.mu.RUnlock()

	if upd.Name != nil {
		if name := strings.TrimSpace(*upd.Name); name != "" {
			merged.Name = name
		}
	}
	if upd.Bio != nil {
		merged.Bio = strings.TrimSpace(*upd.Bio)
	}
	if err := s.auth.SaveProfile(ctx, merged); err != nil {
		s.logger.Warn("save profile failed", zap.String("user_id", merged.ID), zap.Error(err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil || s.user.ID != merged.ID {
		return ErrNotAuthenticated
	}
	s.user = &merged
	s.publishLocked()
	return nil
}

func (s *SessionStore) snapshotLocked() SessionState {
	st := SessionState{IsLoading: s.loading}
	if s.user != nil {
		u := s.user.Clone()
		st.User = &u
	}
	return st
}

func (s *SessionStore) publishLocked() {
	s.subs.publish(s.snapshotLocked())
}
