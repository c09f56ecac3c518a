package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/cppla/socialdash/models"
)

// BackendFactory returns the content backend for a signed-in user.
type BackendFactory func(user models.User) Backend

// Workspace ties a ContentStore to the session: one exists only while a user
// is signed in, and it is replaced when the user changes.
type Workspace struct {
	session *SessionStore
	factory BackendFactory
	opts    []ContentOption
	logger  *zap.Logger

	mu      sync.Mutex
	content *ContentStore
	ownerID string

	stop func()
	done chan struct{}
}

// NewWorkspace returns a workspace over session. opts are applied to every
// content store it creates, before the author option derived from the user.
func NewWorkspace(session *SessionStore, factory BackendFactory, logger *zap.Logger, opts ...ContentOption) *Workspace {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workspace{session: session, factory: factory, opts: opts, logger: logger}
}

// Session returns the session store.
func (w *Workspace) Session() *SessionStore {
	return w.session
}

// Start follows session changes until Close. The content feed of a newly
// signed-in user is fetched in the background.
func (w *Workspace) Start(ctx context.Context) {
	ch, stop := w.session.Subscribe()
	w.mu.Lock()
	w.stop = stop
	w.done = make(chan struct{})
	done := w.done
	w.mu.Unlock()

	go func() {
		defer close(done)
		for range ch {
			w.sync(ctx)
		}
	}()
}

// Content returns the content store of the signed-in user.
func (w *Workspace) Content(ctx context.Context) (*ContentStore, error) {
	st := w.session.State()
	switch {
	case st.IsLoading:
		return nil, ErrSessionLoading
	case st.User == nil:
		return nil, ErrNotAuthenticated
	}
	if cs := w.sync(ctx); cs != nil {
		return cs, nil
	}
	return nil, ErrNotAuthenticated
}

// sync reads the session under w.mu, so a late notification never acts on
// a stale snapshot.
func (w *Workspace) sync(ctx context.Context) *ContentStore {
	w.mu.Lock()
	defer w.mu.Unlock()

	st := w.session.State()
	if st.IsLoading {
		return nil
	}
	if st.User == nil {
		w.dropLocked()
		return nil
	}
	if w.content != nil && w.ownerID == st.User.ID {
		return w.content
	}
	w.dropLocked()

	opts := append(append([]ContentOption(nil), w.opts...), WithAuthor(AuthorFor(*st.User)))
	cs := NewContentStore(w.factory(*st.User), opts...)
	w.content = cs
	w.ownerID = st.User.ID
	w.logger.Debug("content store opened", zap.String("user_id", st.User.ID))
	go cs.FetchPosts(context.WithoutCancel(ctx))
	return cs
}

func (w *Workspace) dropLocked() {
	if w.content == nil {
		return
	}
	w.content.Close()
	w.logger.Debug("content store closed", zap.String("user_id", w.ownerID))
	w.content = nil
	w.ownerID = ""
}

// Close stops following the session and closes the current content store.
func (w *Workspace) Close() {
	w.mu.Lock()
	stop, done := w.stop, w.done
	w.stop = nil
	w.mu.Unlock()
	if stop != nil {
		stop()
		<-done
	}
	w.mu.Lock()
	w.dropLocked()
	w.mu.Unlock()
}
