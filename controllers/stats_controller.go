package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/socialdash/store"
	"github.com/cppla/socialdash/utils"
)

const dateLayout = "2006-01-02"

// StatsController serves the analytics snapshot and the schedule view.
type StatsController struct {
	now func() time.Time
}

// NewStatsController creates a new StatsController instance.
func NewStatsController() *StatsController {
	return &StatsController{now: time.Now}
}

// GetAnalytics returns the analytics snapshot.
func (s *StatsController) GetAnalytics(ctx *gin.Context) {
	cs, ok := contentStore(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, cs.State().Analytics)
}

// GetSchedule returns the posts scheduled on ?date= (default today) in ?tz=
// (default UTC), the next upcoming posts and counts for the coming week and month.
func (s *StatsController) GetSchedule(ctx *gin.Context) {
	loc := time.UTC
	if tz := strings.TrimSpace(ctx.Query("tz")); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40041, "invalid tz")
			return
		}
		loc = l
	}
	now := s.now().In(loc)
	day := now
	if v := strings.TrimSpace(ctx.Query("date")); v != "" {
		d, err := time.ParseInLocation(dateLayout, v, loc)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40040, "invalid date, expected YYYY-MM-DD")
			return
		}
		day = d
	}

	cs, ok := contentStore(ctx)
	if !ok {
		return
	}
	posts := cs.State().Posts
	utils.Success(ctx, gin.H{
		"date":       day.Format(dateLayout),
		"posts":      nonNil(store.ScheduledOn(posts, day, loc)),
		"upcoming":   nonNil(store.Upcoming(posts, now, store.DefaultUpcomingLimit)),
		"this_week":  store.ScheduledWithin(posts, now, now.AddDate(0, 0, 7)),
		"this_month": store.ScheduledWithin(posts, now, now.AddDate(0, 1, 0)),
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
