package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/isdelr/pulse-be/internal/apperr"
	"github.com/isdelr/pulse-be/internal/auth"
	"github.com/isdelr/pulse-be/internal/models"
	"github.com/isdelr/pulse-be/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

const msgInvalidCredentials = "Invalid email or password"

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, email, password string) (models.AuthResult, error)
	Login(ctx context.Context, email, password string) (models.AuthResult, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
	ResolveCurrentUser(tokenStr string) (auth.Identity, error)
}

// UserService provides business logic for user management.
type UserService struct {
	store      store.Store
	tokens     *auth.TokenManager
	bcryptCost int
	now        func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(s store.Store, tokens *auth.TokenManager, bcryptCost int) *UserService {
	return &UserService{
		store:      s,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// Register creates a new user, hashing their password, and returns a token for it.
func (s *UserService) Register(ctx context.Context, email, password string) (models.AuthResult, error) {
	if email == "" || password == "" {
		return models.AuthResult{}, apperr.Validation("Email and password are required")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return models.AuthResult{}, apperr.Validation(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	if len(password) > MaxPasswordBytes {
		return models.AuthResult{}, apperr.Validation(fmt.Sprintf("Password must be at most %d bytes", MaxPasswordBytes))
	}

	_, err := s.store.FindUserByEmail(ctx, email)
	if err == nil {
		return models.AuthResult{}, apperr.Conflict("Email already registered")
	}
	if !errors.Is(err, store.ErrNotFound) {
		return models.AuthResult{}, fmt.Errorf("looking up email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return models.AuthResult{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.AuthResult{}, apperr.Conflict("Email already registered")
		}
		return models.AuthResult{}, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issue(user)
}

// Login verifies a user's credentials. Unknown emails and wrong passwords
// produce the same error.
func (s *UserService) Login(ctx context.Context, email, password string) (models.AuthResult, error) {
	if email == "" || password == "" {
		return models.AuthResult{}, apperr.Validation("Email and password are required")
	}

	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.AuthResult{}, apperr.Auth(msgInvalidCredentials)
		}
		return models.AuthResult{}, fmt.Errorf("looking up email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.AuthResult{}, apperr.Auth(msgInvalidCredentials)
	}

	return s.issue(user)
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	user, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.User{}, apperr.NotFound("User not found")
		}
		return models.User{}, err
	}
	return user, nil
}

// ResolveCurrentUser verifies a token and returns the identity it carries.
// It does not check that the account still exists; callers that need the
// full record use GetUserByID.
func (s *UserService) ResolveCurrentUser(tokenStr string) (auth.Identity, error) {
	id, err := s.tokens.Verify(tokenStr)
	if err != nil {
		return auth.Identity{}, apperr.Auth("Invalid or expired token")
	}
	return id, nil
}

func (s *UserService) issue(user models.User) (models.AuthResult, error) {
	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return models.AuthResult{}, fmt.Errorf("failed to generate token: %w", err)
	}
	return models.AuthResult{Token: token, User: user.Public()}, nil
}
