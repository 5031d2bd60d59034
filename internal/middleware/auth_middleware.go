package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tagcord/tagcord-backend/internal/errors"
	"github.com/tagcord/tagcord-backend/pkg/util"
)

// Context keys for user information
const (
	UserIDKey       = "user_id"
	UserUsernameKey = "user_username"
	UserIsAdminKey  = "user_is_admin"
)

// BlacklistChecker reports whether a token was revoked by sign-out.
type BlacklistChecker func(c *gin.Context, token string) (bool, error)

type AuthMiddleware struct {
	jwtSecret string
	isRevoked BlacklistChecker
}

func NewAuthMiddleware(jwtSecret string, isRevoked BlacklistChecker) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		isRevoked: isRevoked,
	}
}

// Authenticate validates the session token (required). The token comes from
// the Authorization header, or from the token query parameter for WebSocket
// upgrades where browsers cannot set headers.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, ok := m.extractToken(c)
		if !ok {
			c.Abort()
			return
		}

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})

			if err == util.ErrExpiredToken {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "Your session has expired. Please sign in again")
			} else {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid session token")
			}
			c.Abort()
			return
		}

		if m.isRevoked != nil {
			revoked, err := m.isRevoked(c, token)
			if err != nil {
				// Blacklist lookup failing must not lock everyone out
				log.Warn("Blacklist check failed", map[string]interface{}{
					"error": err.Error(),
				})
			} else if revoked {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenRevoked, "This session has been signed out")
				c.Abort()
				return
			}
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserUsernameKey, claims.Username)
		c.Set(UserIsAdminKey, claims.IsAdmin)
		c.Set("session_token", token)
		c.Set("session_expires_at", claims.ExpiresAt.Time)

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id":  claims.UserID,
			"is_admin": claims.IsAdmin,
		})

		c.Next()
	}
}

// OptionalAuthenticate sets user info when a valid token is present and
// continues as guest otherwise.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		var token string
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				token = parts[1]
			}
		} else {
			// WebSocket upgrades pass the token as a query parameter
			token = c.Query("token")
		}
		if token == "" {
			c.Next()
			return
		}

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			log.Debug("Token validation failed - continuing as guest", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			c.Next()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserUsernameKey, claims.Username)
		c.Set(UserIsAdminKey, claims.IsAdmin)

		c.Next()
	}
}

// RequireAdmin gates the moderation surface.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		if !IsAdmin(c) {
			userID, _ := GetUserID(c)
			log.Warn("Admin-only endpoint denied", map[string]interface{}{
				"user_id": userID,
				"path":    c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthzAdminOnly, "This operation requires an admin account")
			c.Abort()
			return
		}

		c.Next()
	}
}

func (m *AuthMiddleware) extractToken(c *gin.Context) (string, bool) {
	log := GetLoggerFromContext(c)

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			log.Warn("Invalid authorization header format", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Malformed authorization header")
			return "", false
		}
		return parts[1], true
	}

	// WebSocket upgrades pass the token as a query parameter
	token := c.Query("token")
	if token == "" {
		errors.Unauthorized(c, "Sign in to continue")
		return "", false
	}
	return token, true
}

// GetUserID extracts the authenticated profile ID from context.
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}
	return userID.(string), true
}

// GetUsername extracts the authenticated username from context.
func GetUsername(c *gin.Context) (string, bool) {
	username, exists := c.Get(UserUsernameKey)
	if !exists {
		return "", false
	}
	return username.(string), true
}

// IsAdmin reports whether the authenticated user carries the admin flag.
func IsAdmin(c *gin.Context) bool {
	isAdmin, exists := c.Get(UserIsAdminKey)
	if !exists {
		return false
	}
	return isAdmin.(bool)
}
