package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/socialdash/utils"
)

// StateController exposes the whole content state and its changes.
type StateController struct{}

func NewStateController() *StateController {
	return &StateController{}
}

// GetState returns {posts, comments, analytics, loading, error}.
func (s *StateController) GetState(ctx *gin.Context) {
	cs, ok := contentStore(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, cs.State())
}

// DismissError clears the error banner.
func (s *StateController) DismissError(ctx *gin.Context) {
	cs, ok := contentStore(ctx)
	if !ok {
		return
	}
	cs.DismissError()
	ctx.Status(http.StatusNoContent)
}

// Events streams content state snapshots as server-sent events. The stream
// ends when the client goes away or the content store is closed on logout.
func (s *StateController) Events(ctx *gin.Context) {
	cs, ok := contentStore(ctx)
	if !ok {
		return
	}
	ch, unsubscribe := cs.Subscribe()
	defer unsubscribe()

	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("X-Accel-Buffering", "no")
	done := ctx.Request.Context().Done()
	ctx.Stream(func(w io.Writer) bool {
		select {
		case <-done:
			return false
		case st, open := <-ch:
			if !open {
				return false
			}
			ctx.SSEvent("state", st)
			return true
		}
	})
}
