package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	appMiddleware "github.com/tripdeck/tripdeck/app/middleware"
	"github.com/tripdeck/tripdeck/internal/types"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

const accessTokenTTL = 24 * time.Hour

var _ Service = (*ServiceImpl)(nil)

// Service defines the business logic contract for authentication.
type Service interface {
	Register(ctx context.Context, email, password string) (*types.User, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type ServiceImpl struct {
	logger   *slog.Logger
	authRepo Repository
}

func NewServiceImpl(authRepo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		authRepo: authRepo,
	}
}

func (s *ServiceImpl) Register(ctx context.Context, email, password string) (*types.User, error) {
	if email == "" || len(password) < 8 {
		return nil, fmt.Errorf("email required and password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.authRepo.CreateUser(ctx, email, string(hash))
	if err != nil {
		s.logger.Error("failed to create user", "error", err)
		return nil, err
	}
	return user, nil
}

func (s *ServiceImpl) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.authRepo.GetUserByEmail(ctx, email)
	if errors.Is(err, types.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	claims := appMiddleware.Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(appMiddleware.JwtSecretKey())
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}
