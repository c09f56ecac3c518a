package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cppla/socialdash/models"
	"github.com/cppla/socialdash/utils"
)

type memMarkers struct {
	mu        sync.Mutex
	m         map[string]string
	setErr    error
	deleteErr error
	// afterDelete runs once a delete has been applied, outside the lock.
	afterDelete func()
}

func newMemMarkers() *memMarkers {
	return &memMarkers{m: map[string]string{}}
}

func (s *memMarkers) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	if !ok {
		return "", ErrMarkerNotFound
	}
	return v, nil
}

func (s *memMarkers) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.m[key] = value
	return nil
}

func (s *memMarkers) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	if s.deleteErr != nil {
		s.mu.Unlock()
		return s.deleteErr
	}
	delete(s.m, key)
	hook := s.afterDelete
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (s *memMarkers) value(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[key]
}

func (s *memMarkers) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.m[key]
	return ok
}

func testIssuer() TokenIssuer {
	return utils.NewJWTIssuer("test-secret", time.Hour)
}

func newReadySession(t *testing.T, auth Authenticator, markers MarkerStore) *SessionStore {
	t.Helper()
	s := NewSessionStore(auth, markers, testIssuer())
	s.Init(context.Background())
	return s
}

func TestSessionStartsLoadingAndSettlesOnce(t *testing.T) {
	s := NewSessionStore(NewMockAuthenticator(), newMemMarkers(), testIssuer())
	if !s.State().IsLoading {
		t.Fatal("expected loading before Init")
	}
	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()

	s.Init(context.Background())
	s.Init(context.Background())

	select {
	case <-s.Ready():
	default:
		t.Fatal("expected Ready closed after Init")
	}
	st := s.State()
	if st.IsLoading || st.User != nil {
		t.Fatalf("expected anonymous settled session, got %+v", st)
	}

	sawSettled := false
	for {
		select {
		case st := <-ch:
			if sawSettled && st.IsLoading {
				t.Fatal("loading went back to true")
			}
			if !st.IsLoading {
				sawSettled = true
			}
			continue
		default:
		}
		break
	}
	if !sawSettled {
		t.Fatal("expected a settled snapshot")
	}
}

func TestRegisterThenRestartRestoresUser(t *testing.T) {
	auth := NewMockAuthenticator()
	path := filepath.Join(t.TempDir(), "session.json")

	first := newReadySession(t, auth, NewFileMarkerStore(path))
	if !first.Register(context.Background(), "Ada Lovelace", "ada@example.com", "secret1") {
		t.Fatal("register failed")
	}
	registered := first.State().User
	if registered == nil || registered.Avatar == "" || len(registered.ConnectedAccounts) != 0 {
		t.Fatalf("unexpected registered user: %+v", registered)
	}

	restarted := newReadySession(t, auth, NewFileMarkerStore(path))
	st := restarted.State()
	if !st.Authenticated() {
		t.Fatal("expected restored session")
	}
	if st.User.Name != "Ada Lovelace" || st.User.Email != "ada@example.com" {
		t.Fatalf("unexpected restored user: %+v", st.User)
	}
	if restarted.Token() != first.Token() {
		t.Fatal("expected restored token to equal persisted marker")
	}
}

func TestLoginStoresMarkerAndPublishesUser(t *testing.T) {
	markers := newMemMarkers()
	s := newReadySession(t, NewMockAuthenticator(), markers)

	if !s.Login(context.Background(), "sarah@example.com", "anything") {
		t.Fatal("login failed")
	}
	st := s.State()
	if st.User == nil || st.User.ID != "demo-user" {
		t.Fatalf("expected demo user, got %+v", st.User)
	}
	if !markers.has(SessionMarkerKey) {
		t.Fatal("expected marker persisted")
	}
}

func TestLoginFailureLeavesSessionUnchanged(t *testing.T) {
	fail := FailureFunc(func(op Operation) error {
		if op == OpLogin {
			return ErrSimulatedFailure
		}
		return nil
	})
	markers := newMemMarkers()
	s := newReadySession(t, NewMockAuthenticator(WithFailures(fail)), markers)

	if s.Login(context.Background(), "sarah@example.com", "x") {
		t.Fatal("expected login to fail")
	}
	if s.State().User != nil || markers.has(SessionMarkerKey) {
		t.Fatal("expected no user and no marker")
	}
}

func TestMarkerWriteFailureAbortsLogin(t *testing.T) {
	markers := newMemMarkers()
	markers.setErr = errors.New("disk full")
	s := newReadySession(t, NewMockAuthenticator(), markers)

	if s.Login(context.Background(), "sarah@example.com", "x") {
		t.Fatal("expected login to fail when the marker cannot be written")
	}
	if s.State().User != nil || s.Token() != "" {
		t.Fatal("expected session unchanged")
	}
}

func TestRegisterDuplicateEmailFails(t *testing.T) {
	s := newReadySession(t, NewMockAuthenticator(), newMemMarkers())
	if s.Register(context.Background(), "Someone", "sarah@example.com", "secret1") {
		t.Fatal("expected duplicate email to be rejected")
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	markers := newMemMarkers()
	s := newReadySession(t, NewMockAuthenticator(), markers)
	if !s.Login(context.Background(), "sarah@example.com", "x") {
		t.Fatal("login failed")
	}

	s.Logout(context.Background())
	s.Logout(context.Background())

	if s.State().User != nil || s.Token() != "" {
		t.Fatal("expected signed out")
	}
	if markers.has(SessionMarkerKey) {
		t.Fatal("expected marker removed")
	}
}

func TestLogoutKeepsSessionWhenMarkerDeleteFails(t *testing.T) {
	markers := newMemMarkers()
	s := newReadySession(t, NewMockAuthenticator(), markers)
	if !s.Login(context.Background(), "sarah@example.com", "x") {
		t.Fatal("login failed")
	}
	markers.deleteErr = errors.New("locked")
	s.Logout(context.Background())
	if s.State().User == nil || !markers.has(SessionMarkerKey) {
		t.Fatal("expected user and marker kept together")
	}
}

func TestUpdateProfile(t *testing.T) {
	s := newReadySession(t, NewMockAuthenticator(), newMemMarkers())

	name := "New Name"
	if err := s.UpdateProfile(context.Background(), ProfileUpdate{Name: &name}); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}

	if !s.Login(context.Background(), "sarah@example.com", "x") {
		t.Fatal("login failed")
	}
	bio := "  Updated bio  "
	if err := s.UpdateProfile(context.Background(), ProfileUpdate{Name: &name, Bio: &bio}); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	u := s.State().User
	if u.Name != "New Name" || u.Bio != "Updated bio" || u.Email != "sarah@example.com" {
		t.Fatalf("unexpected user after update: %+v", u)
	}
}

func TestRestoreDropsInvalidMarker(t *testing.T) {
	markers := newMemMarkers()
	markers.m[SessionMarkerKey] = "not-a-jwt"
	s := newReadySession(t, NewMockAuthenticator(), markers)
	if s.State().User != nil {
		t.Fatal("expected anonymous session")
	}
	if markers.has(SessionMarkerKey) {
		t.Fatal("expected invalid marker dropped")
	}
}

func TestRestoreDropsMarkerOfUnknownUser(t *testing.T) {
	markers := newMemMarkers()
	issuer := testIssuer()
	ghost := DemoUser()
	ghost.ID = "ghost"
	token, err := issuer.Issue(ghost)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	markers.m[SessionMarkerKey] = token

	s := NewSessionStore(NewMockAuthenticator(), markers, issuer)
	s.Init(context.Background())
	if s.State().User != nil || markers.has(SessionMarkerKey) {
		t.Fatal("expected marker dropped for unknown user")
	}
}

func TestLogoutAndLoginDoNotInterleave(t *testing.T) {
	markers := newMemMarkers()
	s := newReadySession(t, NewMockAuthenticator(), markers)
	if !s.Login(context.Background(), "sarah@example.com", "x") {
		t.Fatal("login failed")
	}

	deleted := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	markers.afterDelete = func() {
		once.Do(func() {
			close(deleted)
			<-release
		})
	}

	logoutDone := make(chan struct{})
	go func() {
		s.Logout(context.Background())
		close(logoutDone)
	}()
	<-deleted

	loginDone := make(chan bool, 1)
	go func() { loginDone <- s.Login(context.Background(), "other@example.com", "x") }()

	select {
	case <-loginDone:
		t.Fatal("login completed while logout was still removing the marker")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	<-logoutDone
	if !<-loginDone {
		t.Fatal("second login failed")
	}

	st := s.State()
	if st.User == nil || st.User.Email != "other@example.com" {
		t.Fatalf("expected the later login to hold the session, got %+v", st.User)
	}
	if got := markers.value(SessionMarkerKey); got == "" || got != s.Token() {
		t.Fatalf("user and marker diverged: marker=%q token=%q", got, s.Token())
	}
}

func TestLogoutDuringRestoreIsNotUndone(t *testing.T) {
	auth := NewMockAuthenticator()
	markers := newMemMarkers()
	first := newReadySession(t, auth, markers)
	if !first.Login(context.Background(), "sarah@example.com", "x") {
		t.Fatal("login failed")
	}

	gate := make(chan struct{})
	slow := &gatedAuthenticator{Authenticator: auth, lookupGate: gate, entered: make(chan struct{})}
	s := NewSessionStore(slow, markers, testIssuer())
	initDone := make(chan struct{})
	go func() {
		s.Init(context.Background())
		close(initDone)
	}()
	<-slow.entered

	logoutDone := make(chan struct{})
	go func() {
		s.Logout(context.Background())
		close(logoutDone)
	}()
	close(gate)
	<-initDone
	<-logoutDone

	if st := s.State(); st.User != nil || st.IsLoading {
		t.Fatalf("expected logout to win over restore, got %+v", st)
	}
	if markers.has(SessionMarkerKey) || s.Token() != "" {
		t.Fatal("expected marker and token cleared")
	}
}

type gatedAuthenticator struct {
	Authenticator
	lookupGate <-chan struct{}
	entered    chan struct{}
}

func (g *gatedAuthenticator) Lookup(ctx context.Context, userID string) (models.User, error) {
	close(g.entered)
	<-g.lookupGate
	return g.Authenticator.Lookup(ctx, userID)
}
