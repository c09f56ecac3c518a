package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/socialdash/models"
	"github.com/cppla/socialdash/utils"
)

// Models lists the tables owned by the gorm implementations, in migration order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.ConnectedAccount{},
		&models.Post{},
		&models.Comment{},
	}
}

// GormBackend persists one user's feed in a SQL database. Reads of the feed
// are cached in Redis when a cache is configured.
type GormBackend struct {
	db       *gorm.DB
	ownerID  string
	cache    *utils.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// GormOption configures a GormBackend.
type GormOption func(*GormBackend)

// WithFeedCache caches FetchPosts results for ttl.
func WithFeedCache(c *utils.Cache, ttl time.Duration) GormOption {
	return func(b *GormBackend) {
		b.cache = c
		b.cacheTTL = ttl
	}
}

// WithBackendLogger sets the logger.
func WithBackendLogger(l *zap.Logger) GormOption {
	return func(b *GormBackend) { b.logger = l }
}

// NewGormBackend returns a backend scoped to ownerID.
func NewGormBackend(db *gorm.DB, ownerID string, opts ...GormOption) *GormBackend {
	b := &GormBackend{db: db, ownerID: ownerID, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *GormBackend) feedPrefix() string {
	return "cache:feed:" + b.ownerID + ":"
}

func (b *GormBackend) invalidate(ctx context.Context) {
	b.cache.InvalidateByPrefix(ctx, b.feedPrefix())
}

// FetchPosts implements Backend. Posts come newest first.
func (b *GormBackend) FetchPosts(ctx context.Context) ([]models.Post, error) {
	key := b.feedPrefix() + "posts"
	var posts []models.Post
	if b.cache.GetJSON(ctx, key, &posts) {
		return posts, nil
	}
	if err := b.db.WithContext(ctx).
		Where("owner_id = ?", b.ownerID).
		Order("created_at DESC").Order("id").
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}
	b.cache.SetJSON(ctx, key, posts, b.cacheTTL)
	return posts, nil
}

// FetchComments implements CommentSource.
func (b *GormBackend) FetchComments(ctx context.Context) ([]models.Comment, error) {
	var comments []models.Comment
	if err := b.db.WithContext(ctx).
		Where("owner_id = ?", b.ownerID).
		Order("created_at ASC").Order("id").
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}
	return comments, nil
}

// CreatePosts implements Backend. All posts are written or none.
func (b *GormBackend) CreatePosts(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	rows := make([]models.Post, len(posts))
	for i, p := range posts {
		p.OwnerID = b.ownerID
		rows[i] = p
	}
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("insert posts: %w", err)
	}
	b.invalidate(ctx)
	return nil
}

// AddComment implements Backend. The comment row and the post counter are
// written in one transaction.
func (b *GormBackend) AddComment(ctx context.Context, comment models.Comment) error {
	comment.OwnerID = b.ownerID
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).
			Where("id = ? AND owner_id = ?", comment.PostID, b.ownerID).
			UpdateColumn("comments", gorm.Expr("comments + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return tx.Create(&comment).Error
	})
	if errors.Is(err, ErrPostNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	b.invalidate(ctx)
	return nil
}

// DeletePost implements Backend. Comments of the post are kept.
func (b *GormBackend) DeletePost(ctx context.Context, id string) error {
	res := b.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, b.ownerID).
		Delete(&models.Post{})
	if res.Error != nil {
		return fmt.Errorf("delete post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPostNotFound
	}
	b.invalidate(ctx)
	return nil
}

// SharePost implements Backend.
func (b *GormBackend) SharePost(ctx context.Context, id string) error {
	res := b.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND owner_id = ?", id, b.ownerID).
		UpdateColumn("shares", gorm.Expr("shares + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("share post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPostNotFound
	}
	b.invalidate(ctx)
	return nil
}

// SeedDemoData inserts DemoUser with password and the seed feed when the
// users table is empty. It reports whether anything was written.
func SeedDemoData(ctx context.Context, db *gorm.DB, password string) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return false, err
	}
	user := DemoUser()
	user.PasswordHash = hash
	posts := SeedPosts()
	for i := range posts {
		posts[i].OwnerID = user.ID
	}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&posts).Error
	})
	if err != nil {
		return false, fmt.Errorf("seed demo data: %w", err)
	}
	return true, nil
}
