package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyEmail    = "auth_email"
	ContextKeyAuthType = "auth_type" // "bearer" or "none"
)

// AuthType indicates how the user was authenticated
type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeBearer AuthType = "bearer"
)

// DefaultUserID is used when authentication is disabled
const DefaultUserID = uint(0)

// Middleware guards routes that need an authenticated user.
type Middleware struct {
	service *Service
	config  config.Auth
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service, cfg config.Auth) *Middleware {
	return &Middleware{
		service: service,
		config:  cfg,
	}
}

// RequireAuth returns a handler that rejects requests without a valid bearer
// token. With AUTH_MODE=none every request passes as DefaultUserID.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	if m.config.Mode == config.AuthModeNone {
		return func(c *gin.Context) {
			c.Set(ContextKeyUserID, DefaultUserID)
			c.Set(ContextKeyAuthType, AuthTypeNone)
			c.Next()
		}
	}

	return func(c *gin.Context) {
		user := m.tryBearerAuth(c)
		if user == nil {
			c.Header("WWW-Authenticate", `Bearer realm="bookshelf"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": ErrAuthRequired.Error(),
			})
			return
		}

		setUserContext(c, user, AuthTypeBearer)
		c.Next()
	}
}

// tryBearerAuth attempts to authenticate using Bearer token.
func (m *Middleware) tryBearerAuth(c *gin.Context) *entities.User {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		return nil
	}

	user, err := m.service.ValidateToken(token)
	if err != nil {
		return nil
	}
	return user
}

// bearerToken extracts the token from "Bearer <token>".
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func setUserContext(c *gin.Context, user *entities.User, authType AuthType) {
	c.Set(ContextKeyUserID, user.ID)
	c.Set(ContextKeyEmail, user.Email)
	c.Set(ContextKeyAuthType, authType)
}

// GetUserID returns the authenticated user's ID, or DefaultUserID.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return DefaultUserID
}

// GetAuthType returns how the current request was authenticated.
func GetAuthType(c *gin.Context) AuthType {
	if t, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}

// IsAuthenticated reports whether the request carried a valid token.
func IsAuthenticated(c *gin.Context) bool {
	return GetAuthType(c) == AuthTypeBearer
}
