package service

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"recruitflow/internal/auth"
	"recruitflow/internal/errors"
	"recruitflow/internal/model"
	"recruitflow/internal/repository"
)

func newTestJWT() *auth.JWTService {
	return auth.NewJWTService("test-secret", time.Hour, 24*time.Hour)
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		input         RegisterInput
		setupMock     func(*MockUserRepository, *MockCandidateRepository)
		expectedError error
	}{
		{
			name:  "successful registration",
			input: RegisterInput{Email: "test@example.com", Password: "password123", FirstName: "Test", LastName: "User"},
			setupMock: func(u *MockUserRepository, c *MockCandidateRepository) {
				u.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				u.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
				c.On("Create", mock.Anything, mock.AnythingOfType("*model.Candidate")).Return(nil)
			},
		},
		{
			name:  "email already registered",
			input: RegisterInput{Email: "existing@example.com", Password: "password123", FirstName: "Existing"},
			setupMock: func(u *MockUserRepository, c *MockCandidateRepository) {
				u.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: errors.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			candidates := new(MockCandidateRepository)
			tt.setupMock(users, candidates)

			tx := fakeTransactor{repos: repository.Repositories{Users: users, Candidates: candidates}}
			svc := NewAuthService(users, tx, newTestJWT(), new(MockTokenStore), nil)

			user, err := svc.Register(context.Background(), tt.input)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.input.Email, user.Email)
				assert.Equal(t, model.RoleCandidate, user.Role)
				assert.Equal(t, "Test User", user.FullName)
				assert.NotEqual(t, tt.input.Password, user.PasswordHash)
			}

			users.AssertExpectations(t)
			candidates.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	userID := uuid.New()
	active := func() *model.User {
		return &model.User{
			ID:           userID,
			Email:        "test@example.com",
			PasswordHash: hashed(t, "password123"),
			Role:         model.RoleRecruiter,
			Status:       model.UserStatusActive,
		}
	}

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository, *MockTokenStore)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(u *MockUserRepository, ts *MockTokenStore) {
				u.On("FindByEmail", mock.Anything, "test@example.com").Return(active(), nil)
				ts.On("StoreRefreshToken", mock.Anything, mock.AnythingOfType("string"), userID, 24*time.Hour).Return(nil)
				u.On("UpdateLastLogin", mock.Anything, userID, mock.AnythingOfType("time.Time")).Return(nil)
			},
		},
		{
			name:     "unknown email",
			email:    "notfound@example.com",
			password: "password123",
			setupMock: func(u *MockUserRepository, ts *MockTokenStore) {
				u.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: errors.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "wrong-password",
			setupMock: func(u *MockUserRepository, ts *MockTokenStore) {
				u.On("FindByEmail", mock.Anything, "test@example.com").Return(active(), nil)
			},
			expectedError: errors.ErrInvalidCredentials,
		},
		{
			name:     "inactive account",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(u *MockUserRepository, ts *MockTokenStore) {
				user := active()
				user.Status = model.UserStatusSuspended
				u.On("FindByEmail", mock.Anything, "test@example.com").Return(user, nil)
			},
			expectedError: errors.ErrAccountInactive,
		},
		{
			name:     "last login failure is not fatal",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(u *MockUserRepository, ts *MockTokenStore) {
				u.On("FindByEmail", mock.Anything, "test@example.com").Return(active(), nil)
				ts.On("StoreRefreshToken", mock.Anything, mock.Anything, userID, mock.Anything).Return(nil)
				u.On("UpdateLastLogin", mock.Anything, userID, mock.Anything).Return(stderrors.New("db down"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			tokens := new(MockTokenStore)
			tt.setupMock(users, tokens)

			jwtService := newTestJWT()
			svc := NewAuthService(users, fakeTransactor{}, jwtService, tokens, nil)

			result, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, result.AccessToken)
				assert.NotEmpty(t, result.RefreshToken)
				assert.Equal(t, time.Hour, result.ExpiresIn)
				assert.NotNil(t, result.User.LastLoginAt)

				claims, err := jwtService.ValidateToken(result.AccessToken)
				require.NoError(t, err)
				assert.Equal(t, userID, claims.UserID)
				assert.Equal(t, model.RoleRecruiter, claims.Role)
			}

			users.AssertExpectations(t)
			tokens.AssertExpectations(t)
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	jwtService := newTestJWT()
	user := &model.User{ID: uuid.New(), Email: "r@example.com", Role: model.RoleCandidate, Status: model.UserStatusActive}
	tokenID, refreshToken, err := jwtService.GenerateRefreshToken(user)
	require.NoError(t, err)

	t.Run("valid stored token", func(t *testing.T) {
		users := new(MockUserRepository)
		tokens := new(MockTokenStore)
		tokens.On("GetRefreshToken", mock.Anything, tokenID).Return(user.ID, nil)
		users.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		svc := NewAuthService(users, fakeTransactor{}, jwtService, tokens, nil)
		result, err := svc.Refresh(context.Background(), refreshToken)

		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.Empty(t, result.RefreshToken)
	})

	t.Run("revoked token", func(t *testing.T) {
		tokens := new(MockTokenStore)
		tokens.On("GetRefreshToken", mock.Anything, tokenID).Return(uuid.Nil, stderrors.New("not found"))

		svc := NewAuthService(new(MockUserRepository), fakeTransactor{}, jwtService, tokens, nil)
		_, err := svc.Refresh(context.Background(), refreshToken)

		assert.ErrorIs(t, err, errors.ErrInvalidRefreshToken)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		access, err := jwtService.GenerateAccessToken(user)
		require.NoError(t, err)

		svc := NewAuthService(new(MockUserRepository), fakeTransactor{}, jwtService, new(MockTokenStore), nil)
		_, err = svc.Refresh(context.Background(), access)

		assert.ErrorIs(t, err, errors.ErrInvalidRefreshToken)
	})
}

func TestAuthService_ValidateSession(t *testing.T) {
	userID := uuid.New()
	claims := &auth.Claims{UserID: userID}
	claims.ID = "jti-1"

	tests := []struct {
		name          string
		setupMock     func(*MockUserRepository, *MockTokenStore)
		expectedError error
	}{
		{
			name: "active user",
			setupMock: func(u *MockUserRepository, ts *MockTokenStore) {
				ts.On("IsAccessTokenBlacklisted", mock.Anything, "jti-1").Return(false, nil)
				u.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID, Status: model.UserStatusActive}, nil)
			},
		},
		{
			name: "revoked token",
			setupMock: func(u *MockUserRepository, ts *MockTokenStore) {
				ts.On("IsAccessTokenBlacklisted", mock.Anything, "jti-1").Return(true, nil)
			},
			expectedError: errors.ErrUnauthorized,
		},
		{
			name: "deactivated user",
			setupMock: func(u *MockUserRepository, ts *MockTokenStore) {
				ts.On("IsAccessTokenBlacklisted", mock.Anything, "jti-1").Return(false, nil)
				u.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID, Status: model.UserStatusInactive}, nil)
			},
			expectedError: errors.ErrAccountInactive,
		},
		{
			name: "deleted user",
			setupMock: func(u *MockUserRepository, ts *MockTokenStore) {
				ts.On("IsAccessTokenBlacklisted", mock.Anything, "jti-1").Return(false, nil)
				u.On("FindByID", mock.Anything, userID).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: errors.ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			tokens := new(MockTokenStore)
			tt.setupMock(users, tokens)

			svc := NewAuthService(users, fakeTransactor{}, newTestJWT(), tokens, nil)
			err := svc.ValidateSession(context.Background(), claims)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			users.AssertExpectations(t)
			tokens.AssertExpectations(t)
		})
	}
}
