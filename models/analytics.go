package models

// Analytics is an aggregate engagement summary.
type Analytics struct {
	TotalPosts        int            `json:"total_posts"`
	TotalLikes        int            `json:"total_likes"`
	TotalComments     int            `json:"total_comments"`
	TotalShares       int            `json:"total_shares"`
	EngagementRate    float64        `json:"engagement_rate"`
	PlatformBreakdown []PlatformStat `json:"platform_breakdown"`
	WeeklyStats       []DayStat      `json:"weekly_stats"`
}

// PlatformStat is the post count and engagement rate for one platform.
type PlatformStat struct {
	Platform   string  `json:"platform"`
	Posts      int     `json:"posts"`
	Engagement float64 `json:"engagement"`
}

// DayStat is the post count and engagement rate for one weekday.
type DayStat struct {
	Day        string  `json:"day"`
	Posts      int     `json:"posts"`
	Engagement float64 `json:"engagement"`
}

// Clone returns a deep copy.
func (a Analytics) Clone() Analytics {
	a.PlatformBreakdown = append([]PlatformStat(nil), a.PlatformBreakdown...)
	a.WeeklyStats = append([]DayStat(nil), a.WeeklyStats...)
	return a
}
