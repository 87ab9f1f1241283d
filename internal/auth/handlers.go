package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/validation"
)

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"min=8"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthController handles authentication-related HTTP endpoints.
type AuthController struct {
	service     *Service
	rateLimiter *RateLimiter
}

// NewAuthController creates a new authentication controller.
func NewAuthController(service *Service, cfg config.Auth) *AuthController {
	rateLimiter := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     cfg.MaxLoginAttempts,
		WindowDuration:  cfg.RateLimitWindow,
		LockoutDuration: cfg.LockoutDuration,
	})

	return &AuthController{
		service:     service,
		rateLimiter: rateLimiter,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/auth")
	group.POST("/register", ac.Register)
	group.POST("/login", ac.Login)
}

// Stop forgets all tracked login attempts. Safe to call more than once.
func (ac *AuthController) Stop() {
	if ac.rateLimiter != nil {
		ac.rateLimiter.Stop()
	}
}

// Register handles POST /auth/register.
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []validation.FieldError{{Message: "invalid JSON body"}}})
		return
	}
	if errs := validation.Struct(req); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	user, err := ac.service.Register(req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailInUse):
			c.JSON(http.StatusConflict, gin.H{"error": "Email already in use."})
		case errors.Is(err, ErrEmailInvalid), errors.Is(err, ErrEmailRequired),
			errors.Is(err, ErrPasswordTooShort), errors.Is(err, ErrPasswordTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"errors": []validation.FieldError{{Field: fieldFor(err), Message: err.Error()}}})
		default:
			_ = c.Error(err)
		}
		return
	}

	log.Printf("Registered user %d", user.ID)
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"userId":  user.ID,
	})
}

// Login handles POST /auth/login.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []validation.FieldError{{Message: "invalid JSON body"}}})
		return
	}
	if errs := validation.Struct(req); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	ip := c.ClientIP()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if allowed, retryAfter := ac.rateLimiter.Allow(ip, email); !allowed {
		c.Header("Retry-After", retryAfterSeconds(retryAfter))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "too many login attempts",
			"retry_after": retryAfter.String(),
		})
		return
	}

	token, user, err := ac.service.Login(email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			ac.rateLimiter.RecordFailure(ip, email)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials."})
			return
		}
		_ = c.Error(err)
		return
	}

	ac.rateLimiter.RecordSuccess(ip, email)
	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"userId": user.ID,
	})
}

func fieldFor(err error) string {
	if errors.Is(err, ErrEmailInvalid) || errors.Is(err, ErrEmailRequired) {
		return "email"
	}
	return "password"
}
