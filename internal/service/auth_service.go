package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ChlorophyllA/skin2/internal/repository"
)

const RoleOperator = "operator"

// OperatorRepoMinimal is the subset of repository.OperatorRepo used by AuthService.
type OperatorRepoMinimal interface {
	Create(ctx context.Context, o *repository.Operator) error
	GetByUsername(ctx context.Context, username string) (*repository.Operator, error)
}

// AuthService handles operator registration and authentication.
type AuthService interface {
	// Register creates a new operator (hashes password) and stores it.
	Register(ctx context.Context, username, password, displayName string) (*repository.Operator, error)

	// Authenticate verifies credentials and returns a signed JWT token string.
	Authenticate(ctx context.Context, username, password, jwtSecret string, expiresIn time.Duration) (string, error)
}

type authServiceImpl struct {
	repo OperatorRepoMinimal
}

// NewAuthService constructs a new AuthService.
func NewAuthService(repo OperatorRepoMinimal) AuthService {
	return &authServiceImpl{repo: repo}
}

var (
	ErrUserExists      = errors.New("user already exists")
	ErrInvalidCreds    = errors.New("invalid credentials")
	ErrUserNotFound    = errors.New("user not found")
	ErrWeakPassword    = errors.New("password too weak")
	ErrTokenGeneration = errors.New("token generation failed")
)

// Register creates an operator record.
// Password is hashed with bcrypt before saving.
func (s *authServiceImpl) Register(ctx context.Context, username, password, displayName string) (*repository.Operator, error) {
	// simple password policy: min 6 chars
	if len(password) < 6 {
		return nil, ErrWeakPassword
	}
	username = strings.TrimSpace(username)

	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	op := &repository.Operator{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hashed),
		DisplayName:  displayName,
		Role:         RoleOperator,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, op); err != nil {
		return nil, err
	}
	// Do not return password hash to callers
	op.PasswordHash = ""
	return op, nil
}

// Authenticate verifies username/password, returns signed JWT.
func (s *authServiceImpl) Authenticate(ctx context.Context, username, password, jwtSecret string, expiresIn time.Duration) (string, error) {
	op, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", err
	}
	if op == nil {
		return "", ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCreds
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      op.ID,
		"username": op.Username,
		"role":     op.Role,
		"iat":      now.Unix(),
		"exp":      now.Add(expiresIn).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		return "", ErrTokenGeneration
	}
	return signed, nil
}
