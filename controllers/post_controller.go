package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/socialdash/middleware"
	"github.com/cppla/socialdash/models"
	"github.com/cppla/socialdash/store"
	"github.com/cppla/socialdash/utils"
)

// PostController serves the feed of the signed-in user.
type PostController struct {
	now func() time.Time
}

func NewPostController() *PostController {
	return &PostController{now: time.Now}
}

func contentStore(ctx *gin.Context) (*store.ContentStore, bool) {
	cs, ok := middleware.Content(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
	}
	return cs, ok
}

// ListPosts returns the feed, optionally filtered by platform and truncated to limit.
func (p *PostController) ListPosts(ctx *gin.Context) {
	cs, ok := contentStore(ctx)
	if !ok {
		return
	}

	var platform models.Platform
	if v := strings.TrimSpace(ctx.Query("platform")); v != "" {
		pl, err := models.ParsePlatform(v)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40023, "invalid platform")
			return
		}
		platform = pl
	}
	limit := 0
	if v := strings.TrimSpace(ctx.Query("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			utils.Error(ctx, http.StatusBadRequest, 40024, "invalid limit")
			return
		}
		limit = n
	}

	st := cs.State()
	items := make([]models.Post, 0, len(st.Posts))
	for _, post := range st.Posts {
		if platform != "" && post.Platform != platform {
			continue
		}
		items = append(items, post)
		if limit > 0 && len(items) == limit {
			break
		}
	}

	utils.Success(ctx, gin.H{
		"items":   items,
		"loading": st.Loading,
		"error":   st.Error,
	})
}

// RefreshPosts reloads the feed from the backend.
func (p *PostController) RefreshPosts(ctx *gin.Context) {
	cs, ok := contentStore(ctx)
	if !ok {
		return
	}
	if err := cs.FetchPosts(ctx.Request.Context()); err != nil {
		utils.Error(ctx, http.StatusBadGateway, 50220, store.MsgFetchFailed)
		return
	}
	utils.Success(ctx, cs.State())
}

// CreatePost publishes content to each selected platform.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req struct {
		Content      string     `json:"content"`
		Platforms    []string   `json:"platforms"`
		ImageURL     string     `json:"image_url"`
		ScheduledFor *time.Time `json:"scheduled_for"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	content := utils.PlainText(strings.TrimSpace(req.Content))
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "content cannot be empty")
		return
	}
	platforms := make([]models.Platform, 0, len(req.Platforms))
	for _, raw := range req.Platforms {
		pl, err := models.ParsePlatform(raw)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40023, "invalid platform")
			return
		}
		platforms = append(platforms, pl)
	}
	platforms = utils.Unique(platforms)
	if len(platforms) == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40022, "select at least one platform")
		return
	}
	schedule := models.Immediate()
	if req.ScheduledFor != nil {
		if req.ScheduledFor.Before(p.now()) {
			utils.Error(ctx, http.StatusBadRequest, 40025, "scheduled time is in the past")
			return
		}
		schedule = models.ScheduledAt(*req.ScheduledFor)
	}

	cs, ok := contentStore(ctx)
	if !ok {
		return
	}
	err := cs.CreatePost(ctx.Request.Context(), store.CreatePostInput{
		Content:   content,
		Platforms: platforms,
		ImageURL:  strings.TrimSpace(req.ImageURL),
		Schedule:  schedule,
	})
	if err != nil {
		utils.Error(ctx, http.StatusBadGateway, 50221, store.MsgCreateFailed)
		return
	}
	utils.Created(ctx, gin.H{"posts": cs.State().Posts})
}

// LikePost toggles the like on a post.
func (p *PostController) LikePost(ctx *gin.Context) {
	cs, ok := contentStore(ctx)
	if !ok {
		return
	}
	id := ctx.Param("id")
	cs.LikePost(id)
	post, found := cs.Post(id)
	if !found {
		utils.Error(ctx, http.StatusNotFound, 40402, "post not found")
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

// ListComments returns the comments of a post in insertion order.
func (p *PostController) ListComments(ctx *gin.Context) {
	cs, ok := contentStore(ctx)
	if !ok {
		return
	}
	comments := cs.Comments(ctx.Param("id"))
	if comments == nil {
		comments = []models.Comment{}
	}
	utils.Success(ctx, gin.H{"items": comments})
}

// CreateComment adds a comment to a post.
func (p *PostController) CreateComment(ctx *gin.Context) {
	var req struct {
		Content string `json:"content"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40026, "invalid request payload")
		return
	}
	content := utils.PlainText(strings.TrimSpace(req.Content))
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40027, "comment cannot be empty")
		return
	}

	cs, ok := contentStore(ctx)
	if !ok {
		return
	}
	id := ctx.Param("id")
	err := cs.CommentOnPost(ctx.Request.Context(), id, content)
	switch {
	case errors.Is(err, store.ErrPostNotFound):
		utils.Error(ctx, http.StatusNotFound, 40402, "post not found")
		return
	case err != nil:
		utils.Error(ctx, http.StatusBadGateway, 50222, store.MsgCommentFailed)
		return
	}
	post, _ := cs.Post(id)
	utils.Created(ctx, gin.H{"post": post, "comments": cs.Comments(id)})
}

// SharePost increments the share counter of a post.
func (p *PostController) SharePost(ctx *gin.Context) {
	cs, ok := contentStore(ctx)
	if !ok {
		return
	}
	id := ctx.Param("id")
	err := cs.SharePost(ctx.Request.Context(), id)
	switch {
	case errors.Is(err, store.ErrPostNotFound):
		utils.Error(ctx, http.StatusNotFound, 40402, "post not found")
		return
	case err != nil:
		utils.Error(ctx, http.StatusBadGateway, 50223, store.MsgShareFailed)
		return
	}
	post, _ := cs.Post(id)
	utils.Success(ctx, gin.H{"post": post})
}

// DeletePost removes a post. Deleting an unknown id succeeds.
func (p *PostController) DeletePost(ctx *gin.Context) {
	cs, ok := contentStore(ctx)
	if !ok {
		return
	}
	id := ctx.Param("id")
	if err := cs.DeletePost(ctx.Request.Context(), id); err != nil {
		utils.Error(ctx, http.StatusBadGateway, 50224, store.MsgDeleteFailed)
		return
	}
	utils.Success(ctx, gin.H{"id": id})
}
