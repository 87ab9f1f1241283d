package auth

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrAuthRequired       = errors.New("authentication required")
	ErrEmailRequired      = errors.New("email is required")
	ErrEmailInvalid       = errors.New("invalid email format")
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	CreateUser(user *entities.User) error
	GetUserByEmail(email string) (*entities.User, error)
	GetUserByID(id uint) (*entities.User, error)
	UpdateLastLogin(id uint, at time.Time) error
}

// Service handles registration, login and token validation.
type Service struct {
	users  UserRepository
	tokens *TokenIssuer
	config config.Auth
}

// NewService creates a new authentication service. When no JWT secret is
// configured a random one is generated, so tokens don't survive restarts.
func NewService(users UserRepository, cfg config.Auth) (*Service, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		generated, err := GenerateSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		secret = generated
		log.Printf("Warning: JWT_SECRET is not set, using a random secret; tokens will be invalidated on restart")
	}

	return &Service{
		users:  users,
		tokens: NewTokenIssuer(secret, cfg.TokenExpiry),
		config: cfg,
	}, nil
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(email, password, firstName, lastName string) (*entities.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	// RFC 5321 limit is 254
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return nil, ErrEmailInvalid
	}

	_, err := s.users.GetUserByEmail(email)
	if err == nil {
		return nil, ErrEmailInUse
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		if errors.Is(err, ErrPasswordTooShort) || errors.Is(err, ErrPasswordTooLong) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
	}
	if err := s.users.CreateUser(user); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailInUse
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login checks credentials and returns a signed access token.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(email, password string) (string, *entities.User, error) {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	if err := s.users.UpdateLastLogin(user.ID, time.Now()); err != nil {
		log.Printf("Failed to record last login for user %d: %v", user.ID, err)
	}

	return token, user, nil
}

// ValidateToken verifies an access token and returns the user it belongs to.
func (s *Service) ValidateToken(token string) (*entities.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	user, err := s.users.GetUserByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
