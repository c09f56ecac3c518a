package models

// Author is a snapshot of the poster copied at creation time.
type Author struct {
	Name     string `gorm:"size:128" json:"name"`
	Username string `gorm:"size:128" json:"username"`
	Avatar   string `gorm:"size:512" json:"avatar"`
}
