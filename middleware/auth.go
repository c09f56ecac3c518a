package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/socialdash/store"
	"github.com/cppla/socialdash/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextContentKey stores the signed-in user's *store.ContentStore.
	ContextContentKey = "content"
)

// SessionRequired lets a request through only when the session is restored,
// a user is signed in and the bearer token is the current session marker.
// Event streams may pass the token as ?token= since browsers cannot set headers there.
func SessionRequired(ws *store.Workspace) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		st := ws.Session().State()
		if st.IsLoading {
			utils.Error(ctx, http.StatusServiceUnavailable, 50301, "session is loading")
			ctx.Abort()
			return
		}

		tokenString, code, msg := BearerToken(ctx)
		if code != 0 {
			utils.Error(ctx, http.StatusUnauthorized, code, msg)
			ctx.Abort()
			return
		}

		current := ws.Session().Token()
		if current == "" || subtle.ConstantTimeCompare([]byte(tokenString), []byte(current)) != 1 {
			utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
			ctx.Abort()
			return
		}

		content, err := ws.Content(ctx.Request.Context())
		switch {
		case errors.Is(err, store.ErrSessionLoading):
			utils.Error(ctx, http.StatusServiceUnavailable, 50301, "session is loading")
			ctx.Abort()
			return
		case err != nil:
			utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
			ctx.Abort()
			return
		}

		if st.User != nil {
			ctx.Set(ContextUserIDKey, st.User.ID)
		}
		ctx.Set(ContextContentKey, content)
		ctx.Next()
	}
}

// BearerToken reads the token from "Authorization: Bearer <token>" (scheme is
// case-insensitive) or from ?token= when the header is absent. A non-zero code
// and message describe why no token could be read.
func BearerToken(ctx *gin.Context) (string, int, string) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		if q := strings.TrimSpace(ctx.Query("token")); q != "" {
			return q, 0, ""
		}
		return "", 40101, "authorization header missing"
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", 40102, "invalid authorization header format"
	}
	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return "", 40103, "empty bearer token"
	}
	return tokenString, 0, ""
}

// UserID returns the id of the signed-in user placed by SessionRequired.
func UserID(ctx *gin.Context) string {
	return ctx.GetString(ContextUserIDKey)
}

// Content returns the content store placed by SessionRequired.
func Content(ctx *gin.Context) (*store.ContentStore, bool) {
	v, ok := ctx.Get(ContextContentKey)
	if !ok {
		return nil, false
	}
	cs, ok := v.(*store.ContentStore)
	return cs, ok
}
