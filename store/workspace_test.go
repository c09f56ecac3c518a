package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cppla/socialdash/models"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWorkspaceFollowsSession(t *testing.T) {
	session := NewSessionStore(NewMockAuthenticator(), newMemMarkers(), testIssuer())
	var (
		mu     sync.Mutex
		owners []string
	)
	ws := NewWorkspace(session, func(u models.User) Backend {
		mu.Lock()
		defer mu.Unlock()
		owners = append(owners, u.ID)
		return NewMockBackend()
	}, nil)
	ws.Start(context.Background())
	defer ws.Close()

	if _, err := ws.Content(context.Background()); !errors.Is(err, ErrSessionLoading) {
		t.Fatalf("expected ErrSessionLoading, got %v", err)
	}

	session.Init(context.Background())
	if _, err := ws.Content(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}

	if !session.Login(context.Background(), "sarah@example.com", "x") {
		t.Fatal("login failed")
	}
	cs, err := ws.Content(context.Background())
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	waitFor(t, "feed", func() bool { st := cs.State(); return !st.Loading && len(st.Posts) == 4 })

	again, err := ws.Content(context.Background())
	if err != nil || again != cs {
		t.Fatalf("expected the same content store, got %p err=%v", again, err)
	}

	session.Logout(context.Background())
	waitFor(t, "content dropped", func() bool {
		_, err := ws.Content(context.Background())
		return errors.Is(err, ErrNotAuthenticated)
	})

	if !session.Register(context.Background(), "Bob", "bob@example.com", "secret1") {
		t.Fatal("register failed")
	}
	next, err := ws.Content(context.Background())
	if err != nil {
		t.Fatalf("content after register: %v", err)
	}
	if next == cs {
		t.Fatal("expected a fresh content store for a new user")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(owners) != 2 || owners[0] != "demo-user" {
		t.Fatalf("unexpected backend owners: %v", owners)
	}
}

func TestWorkspaceStampsUserAuthor(t *testing.T) {
	session := NewSessionStore(NewMockAuthenticator(), newMemMarkers(), testIssuer())
	session.Init(context.Background())
	backend := &fakeBackend{}
	ws := NewWorkspace(session, func(models.User) Backend { return backend }, nil)
	defer ws.Close()

	if !session.Register(context.Background(), "Bob Stone", "bob@example.com", "secret1") {
		t.Fatal("register failed")
	}
	cs, err := ws.Content(context.Background())
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	waitFor(t, "initial fetch", func() bool { return backend.fetchCount() == 1 && !cs.State().Loading })

	cs.CreatePost(context.Background(), CreatePostInput{
		Content:   "hi",
		Platforms: []models.Platform{models.PlatformTwitter, models.PlatformLinkedIn},
	})
	posts := cs.State().Posts
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if posts[0].Author.Username != "@bob" || posts[1].Author.Username != "Bob Stone" {
		t.Fatalf("unexpected authors: %+v / %+v", posts[0].Author, posts[1].Author)
	}
	if posts[0].Author.Avatar != models.DefaultAvatar {
		t.Fatalf("expected default avatar, got %q", posts[0].Author.Avatar)
	}
}
