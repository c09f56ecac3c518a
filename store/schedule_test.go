package store

import (
	"testing"
	"time"

	"github.com/cppla/socialdash/models"
)

func scheduledPost(id string, at time.Time) models.Post {
	return models.Post{ID: id, Platform: models.PlatformTwitter, Schedule: models.ScheduledAt(at)}
}

func TestScheduledOn(t *testing.T) {
	posts := SeedPosts()
	day := time.Date(2024, time.January, 21, 0, 0, 0, 0, time.UTC)
	got := ScheduledOn(posts, day, time.UTC)
	if len(got) != 1 || got[0].ID != "4" {
		t.Fatalf("expected post 4, got %+v", got)
	}

	// 16:00 UTC is already the next day in Tokyo.
	tokyo := time.FixedZone("JST", 9*3600)
	if got := ScheduledOn(posts, day, tokyo); len(got) != 0 {
		t.Fatalf("expected nothing on the 21st in JST, got %d", len(got))
	}
	next := time.Date(2024, time.January, 22, 0, 0, 0, 0, tokyo)
	if got := ScheduledOn(posts, next, tokyo); len(got) != 1 {
		t.Fatalf("expected post 4 on the 22nd in JST, got %d", len(got))
	}
}

func TestUpcomingSortsAndLimits(t *testing.T) {
	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	posts := []models.Post{{ID: "immediate"}, scheduledPost("past", now.Add(-time.Hour)), scheduledPost("exact", now)}
	for i := 7; i >= 1; i-- {
		posts = append(posts, scheduledPost(string(rune('a'+i)), now.Add(time.Duration(i)*time.Hour)))
	}

	got := Upcoming(posts, now, DefaultUpcomingLimit)
	if len(got) != DefaultUpcomingLimit {
		t.Fatalf("expected %d upcoming, got %d", DefaultUpcomingLimit, len(got))
	}
	for i := 1; i < len(got); i++ {
		a, _ := got[i-1].Schedule.At()
		b, _ := got[i].Schedule.At()
		if b.Before(a) {
			t.Fatal("expected soonest first")
		}
	}
	if got[0].ID != "b" {
		t.Fatalf("expected first upcoming b, got %s", got[0].ID)
	}
	if all := Upcoming(posts, now, 0); len(all) != 7 {
		t.Fatalf("expected 7 without limit, got %d", len(all))
	}
}

func TestScheduledWithinIsInclusive(t *testing.T) {
	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	week := now.AddDate(0, 0, 7)
	posts := []models.Post{
		scheduledPost("start", now),
		scheduledPost("end", week),
		scheduledPost("after", week.Add(time.Second)),
		scheduledPost("before", now.Add(-time.Second)),
		{ID: "immediate"},
	}
	if n := ScheduledWithin(posts, now, week); n != 2 {
		t.Fatalf("expected 2, got %d", n)
	}
}
