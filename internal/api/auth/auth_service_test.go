package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appMiddleware "github.com/tripdeck/tripdeck/app/middleware"
	"github.com/tripdeck/tripdeck/internal/types"
)

// MockAuthRepo is a mock implementation of the Repository interface
type MockAuthRepo struct {
	mock.Mock
}

func (m *MockAuthRepo) CreateUser(ctx context.Context, email, passwordHash string) (*types.User, error) {
	args := m.Called(ctx, email, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegister_HashesPassword(t *testing.T) {
	repo := new(MockAuthRepo)
	svc := NewServiceImpl(repo, testLogger())

	repo.On("CreateUser", mock.Anything, "a@example.com", mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2secret")) == nil
	})).Return(&types.User{ID: uuid.New(), Email: "a@example.com"}, nil)

	user, err := svc.Register(context.Background(), "a@example.com", "hunter2secret")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Email)
	repo.AssertExpectations(t)
}

func TestRegister_RejectsShortPassword(t *testing.T) {
	repo := new(MockAuthRepo)
	svc := NewServiceImpl(repo, testLogger())

	_, err := svc.Register(context.Background(), "a@example.com", "short")
	assert.Error(t, err)
	repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_IssuesVerifiableToken(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	repo := new(MockAuthRepo)
	svc := NewServiceImpl(repo, testLogger())
	userID := uuid.New()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2secret"), bcrypt.MinCost)
	require.NoError(t, err)

	repo.On("GetUserByEmail", mock.Anything, "a@example.com").Return(&types.User{
		ID:           userID,
		Email:        "a@example.com",
		PasswordHash: string(hash),
	}, nil)

	token, err := svc.Login(context.Background(), "a@example.com", "hunter2secret")
	require.NoError(t, err)

	claims := &appMiddleware.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := new(MockAuthRepo)
	svc := NewServiceImpl(repo, testLogger())

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)

	repo.On("GetUserByEmail", mock.Anything, "a@example.com").Return(&types.User{
		ID:           uuid.New(),
		Email:        "a@example.com",
		PasswordHash: string(hash),
	}, nil)

	_, err = svc.Login(context.Background(), "a@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmailHidesExistence(t *testing.T) {
	repo := new(MockAuthRepo)
	svc := NewServiceImpl(repo, testLogger())

	repo.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, types.ErrNotFound)

	_, err := svc.Login(context.Background(), "ghost@example.com", "whatever-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
