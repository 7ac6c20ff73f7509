package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"recruitflow/internal/auth"
	"recruitflow/internal/cache"
	"recruitflow/internal/errors"
	"recruitflow/internal/logger"
	"recruitflow/internal/model"
	"recruitflow/internal/repository"
)

// dummyHash is compared against when the email is unknown so both failure paths cost the same.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3pLz0Kg8Ue2s3x4N1aC8y6W"

// RegisterInput is a candidate self-signup.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	Phone     string `json:"phone" validate:"max=50"`
}

// AuthResult carries issued tokens.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
	User         *model.User
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	// Logout revokes the access token described by claims and, when given, the refresh token.
	Logout(ctx context.Context, claims *auth.Claims, refreshToken string) error
	Me(ctx context.Context, userID uuid.UUID) (*model.User, error)
	ValidateSession(ctx context.Context, claims *auth.Claims) error
}

type authService struct {
	users      repository.UserRepository
	tx         repository.Transactor
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	cache      *cache.Client
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users repository.UserRepository,
	tx repository.Transactor,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	cache *cache.Client,
) AuthService {
	return &authService{
		users:      users,
		tx:         tx,
		jwtService: jwtService,
		tokenStore: tokenStore,
		cache:      cache,
	}
}

// Register creates a candidate user and its profile in one transaction.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if err := ensureEmailFree(ctx, s.users, in.Email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        in.Email,
		Username:     in.Email,
		FullName:     model.JoinName(in.FirstName, in.LastName),
		PasswordHash: hash,
		Role:         model.RoleCandidate,
		Status:       model.UserStatusActive,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Users.Create(ctx, user); err != nil {
			return err
		}
		return repos.Candidates.Create(ctx, &model.Candidate{
			UserID:        user.ID,
			FirstName:     in.FirstName,
			LastName:      in.LastName,
			Email:         in.Email,
			Phone:         in.Phone,
			Status:        model.CandidateStatusNew,
			PaymentStatus: model.PaymentStatusPending,
		})
	})
	if err != nil {
		if isDuplicateKey(err) {
			return nil, errors.ErrEmailTaken
		}
		return nil, fmt.Errorf("register candidate: %w", err)
	}

	logger.Info("candidate registered", "user_id", user.ID)
	return user, nil
}

// Login authenticates a user and returns access and refresh tokens.
// Unknown emails and wrong passwords produce the same error.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find user: %w", err)
		}
		auth.CheckPassword(dummyHash, password)
		return nil, errors.ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, errors.ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, errors.ErrAccountInactive
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, s.jwtService.RefreshExpiry()); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	now := time.Now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		logger.WithError(err).Warn("failed to record last login", "user_id", user.ID)
	}
	user.LastLoginAt = &now

	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.jwtService.AccessExpiry(),
		User:         user,
	}, nil
}

// Refresh validates a stored refresh token and returns a new access token.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, errors.ErrInvalidRefreshToken
	}

	storedUserID, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil || storedUserID != claims.UserID {
		return nil, errors.ErrInvalidRefreshToken
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.IsActive() {
		return nil, errors.ErrAccountInactive
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	return &AuthResult{
		AccessToken: accessToken,
		ExpiresIn:   s.jwtService.AccessExpiry(),
		User:        user,
	}, nil
}

func (s *authService) Logout(ctx context.Context, claims *auth.Claims, refreshToken string) error {
	if claims != nil && claims.ID != "" {
		if err := s.tokenStore.BlacklistAccessToken(ctx, claims.ID, auth.RemainingTTL(claims)); err != nil {
			return fmt.Errorf("blacklist access token: %w", err)
		}
	}

	if refreshToken == "" {
		return nil
	}
	refreshClaims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return errors.ErrInvalidRefreshToken
	}
	return s.tokenStore.DeleteRefreshToken(ctx, refreshClaims.ID)
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, errors.ErrUserNotFound, "find user")
	}
	return user, nil
}

// ValidateSession rejects revoked tokens and users that were deactivated after the token was issued.
// The user status is cached briefly so that every request does not hit the database.
func (s *authService) ValidateSession(ctx context.Context, claims *auth.Claims) error {
	if claims.ID != "" {
		revoked, err := s.tokenStore.IsAccessTokenBlacklisted(ctx, claims.ID)
		if err != nil {
			return fmt.Errorf("check token: %w", err)
		}
		if revoked {
			return errors.ErrUnauthorized
		}
	}

	key := userStatusKey(claims.UserID)
	status := model.UserStatus("")
	if data, _ := s.cache.Get(ctx, key); data != nil {
		status = model.UserStatus(data)
	} else {
		user, err := s.users.FindByID(ctx, claims.UserID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.ErrUnauthorized
			}
			return fmt.Errorf("find user: %w", err)
		}
		status = user.Status
		_ = s.cache.Set(ctx, key, []byte(status), userStatusTTL)
	}

	if status != model.UserStatusActive {
		return errors.ErrAccountInactive
	}
	return nil
}
