package models

import (
	"encoding/json"
	"time"
)

// Post is one platform-specific entry in the dashboard feed.
type Post struct {
	ID        string     `gorm:"primaryKey;size:64" json:"id"`
	OwnerID   string     `gorm:"index;size:64" json:"-"`
	Platform  Platform   `gorm:"size:16;not null" json:"platform"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	ImageURL  string     `gorm:"size:1024" json:"image_url,omitempty"`
	Author    Author     `gorm:"embedded;embeddedPrefix:author_" json:"author"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	Likes     int        `gorm:"not null;default:0" json:"likes"`
	Comments  int        `gorm:"not null;default:0" json:"comments"`
	Shares    int        `gorm:"not null;default:0" json:"shares"`
	IsLiked   bool       `gorm:"not null;default:false" json:"is_liked"`
	Schedule  Scheduling `gorm:"column:scheduled_for" json:"-"`
}

type postJSON struct {
	IsScheduled  bool       `json:"is_scheduled"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
}

// MarshalJSON flattens Schedule into is_scheduled / scheduled_for.
func (p Post) MarshalJSON() ([]byte, error) {
	type alias Post
	out := struct {
		alias
		postJSON
	}{alias: alias(p)}
	if at, ok := p.Schedule.At(); ok {
		out.IsScheduled = true
		out.ScheduledFor = &at
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the shape produced by MarshalJSON. A true
// is_scheduled without scheduled_for decodes as Immediate.
func (p *Post) UnmarshalJSON(b []byte) error {
	type alias Post
	in := struct {
		*alias
		postJSON
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	p.Schedule = Immediate()
	if in.IsScheduled && in.ScheduledFor != nil {
		p.Schedule = ScheduledAt(*in.ScheduledFor)
	}
	return nil
}
