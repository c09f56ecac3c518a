package store

import (
	"sort"
	"time"

	"github.com/cppla/socialdash/models"
)

// DefaultUpcomingLimit is how many upcoming posts the schedule view lists.
const DefaultUpcomingLimit = 5

// ScheduledPosts returns the posts with a deferred publication time.
func ScheduledPosts(posts []models.Post) []models.Post {
	var out []models.Post
	for _, p := range posts {
		if p.Schedule.IsScheduled() {
			out = append(out, p)
		}
	}
	return out
}

// ScheduledOn returns scheduled posts whose publication date, in loc, is day.
func ScheduledOn(posts []models.Post, day time.Time, loc *time.Location) []models.Post {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := day.Date()
	var out []models.Post
	for _, p := range ScheduledPosts(posts) {
		at, _ := p.Schedule.At()
		py, pm, pd := at.In(loc).Date()
		if py == y && pm == m && pd == d {
			out = append(out, p)
		}
	}
	return out
}

// Upcoming returns at most limit scheduled posts due strictly after now,
// soonest first.
func Upcoming(posts []models.Post, now time.Time, limit int) []models.Post {
	var out []models.Post
	for _, p := range ScheduledPosts(posts) {
		if at, _ := p.Schedule.At(); at.After(now) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := out[i].Schedule.At()
		b, _ := out[j].Schedule.At()
		return a.Before(b)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ScheduledWithin counts scheduled posts due in [now, until].
func ScheduledWithin(posts []models.Post, now, until time.Time) int {
	n := 0
	for _, p := range ScheduledPosts(posts) {
		at, _ := p.Schedule.At()
		if !at.Before(now) && !at.After(until) {
			n++
		}
	}
	return n
}
