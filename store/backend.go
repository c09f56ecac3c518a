package store

import (
	"context"

	"github.com/cppla/socialdash/models"
)

// Backend is the remote side of the content store. Implementations return
// ErrPostNotFound when the target post is gone; any other error is a failure.
type Backend interface {
	FetchPosts(ctx context.Context) ([]models.Post, error)
	CreatePosts(ctx context.Context, posts []models.Post) error
	AddComment(ctx context.Context, comment models.Comment) error
	DeletePost(ctx context.Context, id string) error
	SharePost(ctx context.Context, id string) error
}

// CommentSource is implemented by backends that persist comments. When present,
// FetchPosts reloads comments together with posts.
type CommentSource interface {
	FetchComments(ctx context.Context) ([]models.Comment, error)
}

// MockBackend serves the seed feed with simulated latency and failures.
// Writes are acknowledged but not retained; the store keeps them in memory.
type MockBackend struct {
	latency  Latency
	failures FailurePolicy
	seed     func() []models.Post
}

// MockOption configures a MockBackend or MockAuthenticator.
type MockOption func(*mockConfig)

type mockConfig struct {
	latency  Latency
	failures FailurePolicy
	seed     func() []models.Post
}

// WithLatency sets the simulated latency.
func WithLatency(l Latency) MockOption {
	return func(c *mockConfig) { c.latency = l }
}

// WithFailures sets the simulated failure policy.
func WithFailures(f FailurePolicy) MockOption {
	return func(c *mockConfig) { c.failures = f }
}

// WithSeed replaces the seed feed.
func WithSeed(seed func() []models.Post) MockOption {
	return func(c *mockConfig) { c.seed = seed }
}

func newMockConfig(opts []MockOption) mockConfig {
	c := mockConfig{latency: NoLatency{}, failures: NeverFail, seed: SeedPosts}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// NewMockBackend returns a backend over the seed feed. Without options it has
// no latency and never fails.
func NewMockBackend(opts ...MockOption) *MockBackend {
	c := newMockConfig(opts)
	return &MockBackend{latency: c.latency, failures: c.failures, seed: c.seed}
}

// FetchPosts implements Backend.
func (b *MockBackend) FetchPosts(ctx context.Context) ([]models.Post, error) {
	if err := simulate(ctx, b.latency, b.failures, OpFetch); err != nil {
		return nil, err
	}
	return b.seed(), nil
}

// CreatePosts implements Backend.
func (b *MockBackend) CreatePosts(ctx context.Context, _ []models.Post) error {
	return simulate(ctx, b.latency, b.failures, OpCreate)
}

// AddComment implements Backend.
func (b *MockBackend) AddComment(ctx context.Context, _ models.Comment) error {
	return simulate(ctx, b.latency, b.failures, OpComment)
}

// DeletePost implements Backend.
func (b *MockBackend) DeletePost(ctx context.Context, _ string) error {
	return simulate(ctx, b.latency, b.failures, OpDelete)
}

// SharePost implements Backend.
func (b *MockBackend) SharePost(ctx context.Context, _ string) error {
	return simulate(ctx, b.latency, b.failures, OpShare)
}
