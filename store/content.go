package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cppla/socialdash/models"
)

// ContentState is a read-only snapshot of the content store.
type ContentState struct {
	Posts     []models.Post    `json:"posts"`
	Comments  []models.Comment `json:"comments"`
	Analytics models.Analytics `json:"analytics"`
	Loading   bool             `json:"loading"`
	Error     string           `json:"error,omitempty"`
}

// CreatePostInput describes a post to publish on one or more platforms.
// Callers validate that Content and Platforms are non-empty.
type CreatePostInput struct {
	Content   string
	Platforms []models.Platform
	ImageURL  string
	Schedule  models.Scheduling
}

// ContentStore owns the post feed, comments and analytics of one signed-in
// session. Backend calls happen outside the lock and their result is applied
// in a single locked step, so readers never see a half-applied operation.
type ContentStore struct {
	backend Backend
	author  AuthorFunc
	now     func() time.Time
	newID   func() (string, error)
	logger  *zap.Logger

	mu        sync.RWMutex
	posts     []models.Post
	comments  []models.Comment
	analytics models.Analytics
	inflight  int
	errMsg    string

	subs *broadcaster[ContentState]
}

// ContentOption configures a ContentStore.
type ContentOption func(*ContentStore)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ContentOption {
	return func(s *ContentStore) { s.now = now }
}

// WithIDGenerator overrides the post and comment id generator.
func WithIDGenerator(gen func() (string, error)) ContentOption {
	return func(s *ContentStore) { s.newID = gen }
}

// WithAuthor sets the author snapshot used for new posts and comments.
func WithAuthor(author AuthorFunc) ContentOption {
	return func(s *ContentStore) { s.author = author }
}

// WithAnalytics replaces the analytics snapshot.
func WithAnalytics(a models.Analytics) ContentOption {
	return func(s *ContentStore) { s.analytics = a.Clone() }
}

// WithContentLogger sets the logger.
func WithContentLogger(l *zap.Logger) ContentOption {
	return func(s *ContentStore) { s.logger = l }
}

// NewContentStore returns an empty store; call FetchPosts to load the feed.
func NewContentStore(backend Backend, opts ...ContentOption) *ContentStore {
	s := &ContentStore{
		backend:   backend,
		author:    AuthorFor(DemoUser()),
		now:       time.Now,
		newID:     newUUID,
		logger:    zap.NewNop(),
		analytics: DefaultAnalytics(),
		subs:      newBroadcaster[ContentState](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newUUID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// State returns a deep copy of the current state.
func (s *ContentStore) State() ContentState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Post returns the post with id.
func (s *ContentStore) Post(id string) (models.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.posts[i], true
	}
	return models.Post{}, false
}

// Comments returns the comments attached to postID in insertion order.
func (s *ContentStore) Comments(postID string) []models.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Comment
	for _, c := range s.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out
}

// Subscribe returns a channel receiving the current state and every later
// change. Call the returned func to unsubscribe.
func (s *ContentStore) Subscribe() (<-chan ContentState, func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subs.subscribe(s.snapshotLocked())
}

// Close ends all subscriptions.
func (s *ContentStore) Close() {
	s.subs.close()
}

// DismissError clears the current error message.
func (s *ContentStore) DismissError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.errMsg == "" {
		return
	}
	s.errMsg = ""
	s.publishLocked()
}

// FetchPosts replaces the feed with the backend's. On failure the previous
// feed is kept, Error is set and the backend error is returned.
func (s *ContentStore) FetchPosts(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	s.begin(true)

	posts, err := s.backend.FetchPosts(ctx)
	var comments []models.Comment
	reloadComments := false
	if err == nil {
		if src, ok := s.backend.(CommentSource); ok {
			comments, err = src.FetchComments(ctx)
			reloadComments = true
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if err != nil {
		s.failLocked(OpFetch, MsgFetchFailed, err)
	} else {
		s.posts = append([]models.Post(nil), posts...)
		if reloadComments {
			s.comments = append([]models.Comment(nil), comments...)
		}
	}
	s.publishLocked()
	return err
}

// CreatePost publishes one post per platform and prepends them to the feed
// in platform order. The returned error is this call's outcome; Error carries
// the same failure for observers.
func (s *ContentStore) CreatePost(ctx context.Context, in CreatePostInput) error {
	ctx = context.WithoutCancel(ctx)
	s.begin(true)

	created, err := s.buildPosts(in)
	if err == nil {
		err = s.backend.CreatePosts(ctx, created)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if err != nil {
		s.failLocked(OpCreate, MsgCreateFailed, err)
	} else {
		feed := make([]models.Post, 0, len(created)+len(s.posts))
		feed = append(feed, created...)
		s.posts = append(feed, s.posts...)
		s.logger.Debug("posts created", zap.Int("count", len(created)))
	}
	s.publishLocked()
	return err
}

func (s *ContentStore) buildPosts(in CreatePostInput) ([]models.Post, error) {
	createdAt := s.now().UTC()
	if at, ok := in.Schedule.At(); ok {
		createdAt = at
	}
	posts := make([]models.Post, 0, len(in.Platforms))
	for _, p := range in.Platforms {
		id, err := s.newID()
		if err != nil {
			return nil, fmt.Errorf("generate post id: %w", err)
		}
		posts = append(posts, models.Post{
			ID:        id,
			Platform:  p,
			Content:   in.Content,
			ImageURL:  in.ImageURL,
			Author:    s.author(p),
			CreatedAt: createdAt,
			Schedule:  in.Schedule,
		})
	}
	return posts, nil
}

// LikePost toggles the like flag of a post and moves the counter with it.
// It is an optimistic local change with no backend round trip.
func (s *ContentStore) LikePost(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return
	}
	p := &s.posts[i]
	if p.IsLiked {
		p.Likes--
	} else {
		p.Likes++
	}
	p.IsLiked = !p.IsLiked
	s.publishLocked()
}

// CommentOnPost appends a comment and bumps the post's comment counter as one
// step. Nothing changes if the post does not exist when the call completes;
// that case returns ErrPostNotFound.
func (s *ContentStore) CommentOnPost(ctx context.Context, postID, content string) error {
	ctx = context.WithoutCancel(ctx)
	s.begin(false)

	post, ok := s.Post(postID)
	if !ok {
		return ErrPostNotFound
	}
	id, err := s.newID()
	if err != nil {
		err = fmt.Errorf("generate comment id: %w", err)
		s.fail(OpComment, MsgCommentFailed, err)
		return err
	}
	comment := models.Comment{
		ID:        id,
		PostID:    postID,
		Author:    s.author(post.Platform),
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	err = s.backend.AddComment(ctx, comment)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case errors.Is(err, ErrPostNotFound):
		return ErrPostNotFound
	case err != nil:
		s.failLocked(OpComment, MsgCommentFailed, err)
	default:
		i := s.indexLocked(postID)
		if i < 0 {
			return ErrPostNotFound
		}
		s.comments = append(s.comments, comment)
		s.posts[i].Comments++
	}
	s.publishLocked()
	return err
}

// DeletePost removes a post from the feed. Its comments are kept. Deleting an
// unknown post succeeds.
func (s *ContentStore) DeletePost(ctx context.Context, id string) error {
	ctx = context.WithoutCancel(ctx)
	s.begin(false)
	err := s.backend.DeletePost(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case errors.Is(err, ErrPostNotFound):
		return nil
	case err != nil:
		s.failLocked(OpDelete, MsgDeleteFailed, err)
	default:
		i := s.indexLocked(id)
		if i < 0 {
			return nil
		}
		posts := make([]models.Post, 0, len(s.posts)-1)
		posts = append(posts, s.posts[:i]...)
		s.posts = append(posts, s.posts[i+1:]...)
	}
	s.publishLocked()
	return err
}

// SharePost increments the share counter of a post. An unknown post is left
// alone and reported as ErrPostNotFound.
func (s *ContentStore) SharePost(ctx context.Context, id string) error {
	ctx = context.WithoutCancel(ctx)
	s.begin(false)
	err := s.backend.SharePost(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case errors.Is(err, ErrPostNotFound):
		return ErrPostNotFound
	case err != nil:
		s.failLocked(OpShare, MsgShareFailed, err)
	default:
		i := s.indexLocked(id)
		if i < 0 {
			return ErrPostNotFound
		}
		s.posts[i].Shares++
	}
	s.publishLocked()
	return err
}

// begin clears the error of the previous attempt and, for fetch and create,
// marks the store as loading.
func (s *ContentStore) begin(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.errMsg != ""
	s.errMsg = ""
	if loading {
		s.inflight++
		changed = true
	}
	if changed {
		s.publishLocked()
	}
}

func (s *ContentStore) fail(op Operation, msg string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLocked(op, msg, err)
	s.publishLocked()
}

func (s *ContentStore) failLocked(op Operation, msg string, err error) {
	s.errMsg = msg
	s.logger.Warn("content operation failed", zap.String("op", string(op)), zap.Error(err))
}

func (s *ContentStore) indexLocked(id string) int {
	for i := range s.posts {
		if s.posts[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *ContentStore) snapshotLocked() ContentState {
	return ContentState{
		Posts:     append([]models.Post{}, s.posts...),
		Comments:  append([]models.Comment{}, s.comments...),
		Analytics: s.analytics.Clone(),
		Loading:   s.inflight > 0,
		Error:     s.errMsg,
	}
}

func (s *ContentStore) publishLocked() {
	s.subs.publish(s.snapshotLocked())
}
