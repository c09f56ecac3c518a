package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/socialdash/models"
	"github.com/cppla/socialdash/utils"
)

// GormAuthenticator keeps accounts in the users table with bcrypt password hashes.
type GormAuthenticator struct {
	db    *gorm.DB
	now   func() time.Time
	newID func() (string, error)
}

// NewGormAuthenticator returns an authenticator backed by db.
func NewGormAuthenticator(db *gorm.DB) *GormAuthenticator {
	return &GormAuthenticator{db: db, now: time.Now, newID: newUUID}
}

func (a *GormAuthenticator) byEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := a.db.WithContext(ctx).
		Preload("ConnectedAccounts").
		Where("LOWER(email) = ?", normalizeEmail(email)).
		First(&u).Error
	return u, err
}

// Login implements Authenticator.
func (a *GormAuthenticator) Login(ctx context.Context, email, password string) (models.User, error) {
	u, err := a.byEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	if !utils.CheckPassword(u.PasswordHash, password) {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Register implements Authenticator.
func (a *GormAuthenticator) Register(ctx context.Context, name, email, password string) (models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return models.User{}, ErrInvalidCredentials
	}
	var count int64
	if err := a.db.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(email) = ?", normalizeEmail(email)).
		Count(&count).Error; err != nil {
		return models.User{}, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return models.User{}, ErrEmailTaken
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	id, err := a.newID()
	if err != nil {
		return models.User{}, err
	}
	u := models.User{
		ID:                id,
		Name:              name,
		Email:             email,
		PasswordHash:      hash,
		Avatar:            models.DefaultAvatar,
		JoinedAt:          a.now().UTC(),
		ConnectedAccounts: []models.ConnectedAccount{},
	}
	if err := a.db.WithContext(ctx).Create(&u).Error; err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Lookup implements Authenticator.
func (a *GormAuthenticator) Lookup(ctx context.Context, userID string) (models.User, error) {
	var u models.User
	err := a.db.WithContext(ctx).Preload("ConnectedAccounts").First(&u, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// SaveProfile implements Authenticator. Only name and bio are written.
func (a *GormAuthenticator) SaveProfile(ctx context.Context, user models.User) error {
	res := a.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"name":       user.Name,
			"bio":        user.Bio,
			"updated_at": a.now(),
		})
	if res.Error != nil {
		return fmt.Errorf("save profile: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
