package store

import (
	"time"

	"github.com/cppla/socialdash/models"
)

const demoAvatar = models.DefaultAvatar

const demoAuthorName = "Sarah Johnson"

// DemoUser is the account the mock authenticator signs in.
func DemoUser() models.User {
	return models.User{
		ID:       "demo-user",
		Name:     demoAuthorName,
		Email:    "sarah@example.com",
		Avatar:   demoAvatar,
		Bio:      "Digital marketing strategist sharing tips on social media growth and content creation.",
		JoinedAt: time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC),
		ConnectedAccounts: []models.ConnectedAccount{
			{ID: "acc-twitter", UserID: "demo-user", Platform: models.PlatformTwitter, Username: "@sarah_creates", IsConnected: true, Followers: 12500, Following: 890},
			{ID: "acc-instagram", UserID: "demo-user", Platform: models.PlatformInstagram, Username: "@sarah.creates", IsConnected: true, Followers: 25300, Following: 1200},
			{ID: "acc-facebook", UserID: "demo-user", Platform: models.PlatformFacebook, Username: demoAuthorName, IsConnected: true, Followers: 8900, Following: 450},
			{ID: "acc-linkedin", UserID: "demo-user", Platform: models.PlatformLinkedIn, Username: "sarah-johnson", IsConnected: false},
		},
	}
}

// SeedPosts is the feed returned by MockBackend.
func SeedPosts() []models.Post {
	twitter := models.Author{Name: demoAuthorName, Username: "@sarah_creates", Avatar: demoAvatar}
	instagram := models.Author{Name: demoAuthorName, Username: "@sarah.creates", Avatar: demoAvatar}
	facebook := models.Author{Name: demoAuthorName, Username: demoAuthorName, Avatar: demoAvatar}
	return []models.Post{
		{
			ID:        "1",
			Platform:  models.PlatformTwitter,
			Content:   "Just launched my new website! Excited to share my work with the world. Check it out and let me know what you think! #webdev #design",
			ImageURL:  "https://images.pexels.com/photos/196644/pexels-photo-196644.jpeg?auto=compress&cs=tinysrgb&w=600",
			Author:    twitter,
			CreatedAt: time.Date(2024, time.January, 20, 10, 30, 0, 0, time.UTC),
			Likes:     45,
			Comments:  12,
			Shares:    8,
			IsLiked:   true,
		},
		{
			ID:        "2",
			Platform:  models.PlatformInstagram,
			Content:   "Beautiful sunset from my office window today. Sometimes we need to pause and appreciate the small moments. 🌅",
			ImageURL:  "https://images.pexels.com/photos/158163/clouds-cloudporn-weather-lookup-158163.jpeg?auto=compress&cs=tinysrgb&w=600",
			Author:    instagram,
			CreatedAt: time.Date(2024, time.January, 19, 18, 45, 0, 0, time.UTC),
			Likes:     127,
			Comments:  23,
			Shares:    15,
		},
		{
			ID:        "3",
			Platform:  models.PlatformFacebook,
			Content:   "Excited to announce that I'll be speaking at the Digital Marketing Conference next month! Can't wait to share insights on social media strategy.",
			Author:    facebook,
			CreatedAt: time.Date(2024, time.January, 18, 14, 20, 0, 0, time.UTC),
			Likes:     89,
			Comments:  31,
			Shares:    22,
			IsLiked:   true,
		},
		{
			ID:        "4",
			Platform:  models.PlatformTwitter,
			Content:   "Tips for better social media engagement: 1) Post consistently 2) Engage with your audience 3) Use relevant hashtags 4) Share valuable content 5) Be authentic! What would you add to this list?",
			Author:    twitter,
			CreatedAt: time.Date(2024, time.January, 17, 9, 15, 0, 0, time.UTC),
			Schedule:  models.ScheduledAt(time.Date(2024, time.January, 21, 16, 0, 0, 0, time.UTC)),
		},
	}
}

// DefaultAnalytics is the static engagement snapshot shown on the dashboard.
// It is not derived from the live feed.
func DefaultAnalytics() models.Analytics {
	return models.Analytics{
		TotalPosts:     48,
		TotalLikes:     1250,
		TotalComments:  340,
		TotalShares:    180,
		EngagementRate: 7.8,
		PlatformBreakdown: []models.PlatformStat{
			{Platform: "Instagram", Posts: 18, Engagement: 8.5},
			{Platform: "Twitter", Posts: 15, Engagement: 7.2},
			{Platform: "Facebook", Posts: 12, Engagement: 7.8},
			{Platform: "LinkedIn", Posts: 3, Engagement: 6.1},
		},
		WeeklyStats: []models.DayStat{
			{Day: "Mon", Posts: 3, Engagement: 7.2},
			{Day: "Tue", Posts: 5, Engagement: 8.1},
			{Day: "Wed", Posts: 2, Engagement: 6.8},
			{Day: "Thu", Posts: 4, Engagement: 7.9},
			{Day: "Fri", Posts: 6, Engagement: 8.4},
			{Day: "Sat", Posts: 3, Engagement: 7.1},
			{Day: "Sun", Posts: 2, Engagement: 6.9},
		},
	}
}
