package controllers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/socialdash/middleware"
	"github.com/cppla/socialdash/models"
	"github.com/cppla/socialdash/store"
	"github.com/cppla/socialdash/utils"
)

const maxBioRunes = 255

// userView adds the derived total reach to a user payload.
type userView struct {
	*models.User
	TotalReach int `json:"total_reach"`
}

func viewOf(u *models.User) *userView {
	if u == nil {
		return nil
	}
	return &userView{User: u, TotalReach: u.TotalFollowers()}
}

// AuthController exposes the session store.
type AuthController struct {
	session *store.SessionStore
}

// NewAuthController creates an AuthController over session.
func NewAuthController(session *store.SessionStore) *AuthController {
	return &AuthController{session: session}
}

// Register creates an account and signs it in.
func (a *AuthController) Register(ctx *gin.Context) {
	type request struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Confirm  string `json:"confirm"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	name := utils.PlainText(strings.TrimSpace(req.Name))
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40002, "name cannot be empty")
		return
	}
	if err := utils.ValidateNewPassword(req.Password, req.Confirm); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, err.Error())
		return
	}

	if !a.session.Register(ctx.Request.Context(), name, strings.TrimSpace(req.Email), req.Password) {
		utils.Error(ctx, http.StatusBadRequest, 40004, "Registration failed. Please try again.")
		return
	}
	a.respondSession(ctx)
}

// Login signs in with email and password.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	if !a.session.Login(ctx.Request.Context(), strings.TrimSpace(req.Email), req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "Invalid email or password")
		return
	}
	a.respondSession(ctx)
}

func (a *AuthController) respondSession(ctx *gin.Context) {
	st := a.session.State()
	utils.Success(ctx, gin.H{
		"token": a.session.Token(),
		"user":  viewOf(st.User),
	})
}

// Logout ends the session and removes the persisted marker.
func (a *AuthController) Logout(ctx *gin.Context) {
	userID := middleware.UserID(ctx)
	a.session.Logout(ctx.Request.Context())
	if u := a.session.State().User; u != nil && u.ID == userID {
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to end session")
		return
	}
	utils.Success(ctx, gin.H{"message": "logged out", "user_id": userID})
}

// Me returns {user, is_loading}. The user is included only for the bearer of
// the current session marker.
func (a *AuthController) Me(ctx *gin.Context) {
	st := a.session.State()
	token := a.session.Token()
	bearer, code, _ := middleware.BearerToken(ctx)
	if token == "" || code != 0 || subtle.ConstantTimeCompare([]byte(bearer), []byte(token)) != 1 {
		st.User = nil
	}
	utils.Success(ctx, gin.H{"user": viewOf(st.User), "is_loading": st.IsLoading})
}

// UpdateProfile changes the name and bio of the signed-in user.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	var req struct {
		Name *string `json:"name"`
		Bio  *string `json:"bio"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	var upd store.ProfileUpdate
	if req.Name != nil {
		name := utils.PlainText(strings.TrimSpace(*req.Name))
		if name == "" {
			utils.Error(ctx, http.StatusBadRequest, 40031, "name cannot be empty")
			return
		}
		upd.Name = &name
	}
	if req.Bio != nil {
		bio := utils.PlainText(strings.TrimSpace(*req.Bio))
		if rs := []rune(bio); len(rs) > maxBioRunes {
			bio = string(rs[:maxBioRunes])
		}
		upd.Bio = &bio
	}

	err := a.session.UpdateProfile(ctx.Request.Context(), upd)
	switch {
	case errors.Is(err, store.ErrNotAuthenticated):
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	case err != nil:
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to update profile")
		return
	}
	utils.Success(ctx, viewOf(a.session.State().User))
}
