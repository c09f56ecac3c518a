package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultAvatar is assigned to newly registered users.
const DefaultAvatar = "https://images.pexels.com/photos/415829/pexels-photo-415829.jpeg?auto=compress&cs=tinysrgb&w=150"

// User is the dashboard account owner. Passwords are stored as bcrypt hashes only.
type User struct {
	ID                string             `gorm:"primaryKey;size:64" json:"id"`
	Name              string             `gorm:"size:128;not null" json:"name"`
	Email             string             `gorm:"size:255;uniqueIndex" json:"email"`
	PasswordHash      string             `gorm:"size:255" json:"-"`
	Avatar            string             `gorm:"size:512" json:"avatar"`
	Bio               string             `gorm:"size:1024" json:"bio"`
	JoinedAt          time.Time          `json:"joined_at"`
	UpdatedAt         time.Time          `json:"-"`
	ConnectedAccounts []ConnectedAccount `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"connected_accounts"`
}

// ConnectedAccount is a linked social profile. Nothing in the dashboard
// mutates connection state.
type ConnectedAccount struct {
	ID          string   `gorm:"primaryKey;size:64" json:"id"`
	UserID      string   `gorm:"index;size:64;not null" json:"-"`
	Platform    Platform `gorm:"size:16;not null" json:"platform"`
	Username    string   `gorm:"size:128" json:"username"`
	IsConnected bool     `json:"is_connected"`
	Followers   int      `json:"followers"`
	Following   int      `json:"following"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.JoinedAt.IsZero() {
		u.JoinedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// Clone returns a copy that shares no slices with u.
func (u User) Clone() User {
	if u.ConnectedAccounts != nil {
		u.ConnectedAccounts = append([]ConnectedAccount(nil), u.ConnectedAccounts...)
	}
	return u
}

// Account returns the connected account for platform, if any.
func (u User) Account(p Platform) (ConnectedAccount, bool) {
	for _, a := range u.ConnectedAccounts {
		if a.Platform == p && a.IsConnected {
			return a, true
		}
	}
	return ConnectedAccount{}, false
}

// TotalFollowers sums followers across connected accounts.
func (u User) TotalFollowers() int {
	total := 0
	for _, a := range u.ConnectedAccounts {
		if a.IsConnected {
			total += a.Followers
		}
	}
	return total
}
