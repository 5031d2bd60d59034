package controller

import (
	goerrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tagcord/tagcord-backend/internal/app/service"
	"github.com/tagcord/tagcord-backend/internal/errors"
	"github.com/tagcord/tagcord-backend/internal/middleware"
	"github.com/tagcord/tagcord-backend/pkg/discord"
)

type AuthController struct {
	authService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

// Login returns the Discord consent URL the frontend should redirect to.
// GET /api/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	state := c.Query("state")
	if state == "" {
		state = uuid.NewString()
	}

	c.JSON(http.StatusOK, gin.H{
		"url":   ctrl.authService.AuthorizeURL(state),
		"state": state,
	})
}

// Callback exchanges the OAuth code for a session.
// GET /api/auth/callback?code=
func (ctrl *AuthController) Callback(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	code := c.Query("code")
	if code == "" {
		errors.BadRequest(c, errors.ValidationRequired, "Missing authorization code")
		return
	}

	profile, tokens, err := ctrl.authService.SignIn(c.Request.Context(), code)
	if err != nil {
		switch {
		case goerrors.Is(err, discord.ErrExchangeFailed), goerrors.Is(err, discord.ErrUnauthorized):
			log.Warn("OAuth code exchange failed", map[string]interface{}{
				"error": err.Error(),
			})
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthExchangeFailed, "Discord sign-in failed. Please try again")
		case goerrors.Is(err, discord.ErrUserFetchFailed):
			log.Error("Discord user fetch failed", err, nil)
			errors.RespondWithError(c, http.StatusBadGateway, errors.InternalExternalAPI, "Could not read your Discord account. Please try again")
		default:
			log.Error("Sign-in failed", err, nil)
			errors.InternalError(c, "Sign-in failed. Please try again later")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
		"tokens":  tokens,
	})
}

// Me returns the signed-in user's profile.
// GET /api/auth/me
func (ctrl *AuthController) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "Sign in to continue")
		return
	}

	profile, err := ctrl.authService.GetProfile(userID)
	if err != nil {
		if goerrors.Is(err, service.ErrProfileNotFound) {
			errors.NotFound(c, errors.ProfileNotFound, "Profile not found")
			return
		}
		errors.InternalError(c, "Failed to load profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

type UpdateUsernameRequest struct {
	Username string `json:"username" binding:"required,min=1,max=32"`
}

// UpdateUsername changes the profile display name. Existing tags keep the
// snapshot they were submitted with.
// PUT /api/auth/username
func (ctrl *AuthController) UpdateUsername(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "Sign in to continue")
		return
	}

	var req UpdateUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.BadRequest(c, errors.ValidationInvalidInput, "Username must be 1-32 characters")
		return
	}

	profile, err := ctrl.authService.UpdateUsername(userID, req.Username)
	if err != nil {
		if goerrors.Is(err, service.ErrProfileNotFound) {
			errors.NotFound(c, errors.ProfileNotFound, "Profile not found")
			return
		}
		errors.InternalError(c, "Failed to update username")
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// SignOut revokes the current session token.
// POST /api/auth/signout
func (ctrl *AuthController) SignOut(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	token, expiresAt := sessionFromContext(c)
	if err := ctrl.authService.SignOut(c.Request.Context(), token, expiresAt); err != nil {
		log.Error("Sign-out failed", err, nil)
		errors.InternalError(c, "Sign-out failed. Please try again")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// DeleteAccount runs the full deletion cascade for the signed-in user:
// tags, then profile, then the session credential.
// POST /api/delete-account
func (ctrl *AuthController) DeleteAccount(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "Sign in to continue")
		return
	}

	token, expiresAt := sessionFromContext(c)
	if err := ctrl.authService.DeleteAccount(c.Request.Context(), userID, token, expiresAt); err != nil {
		var cascade *service.CascadeError
		if goerrors.As(err, &cascade) {
			log.Error("Account deletion cascade failed", err, map[string]interface{}{
				"user_id": userID,
				"stage":   cascade.Stage,
			})
			errors.InternalError(c, "Account deletion failed at the "+cascade.Stage+" stage. Please contact support")
			return
		}
		log.Error("Account deletion failed", err, map[string]interface{}{
			"user_id": userID,
		})
		errors.InternalError(c, "Account deletion failed. Please try again later")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

func sessionFromContext(c *gin.Context) (string, time.Time) {
	token := c.GetString("session_token")
	expiresAt := time.Now()
	if v, exists := c.Get("session_expires_at"); exists {
		if t, ok := v.(time.Time); ok {
			expiresAt = t
		}
	}
	return token, expiresAt
}
