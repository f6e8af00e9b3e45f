package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prepgrind/theory-platform/internal/auth/jwt"
	httperrors "github.com/prepgrind/theory-platform/pkg/http/errors"
)

// UserRepository is the identity store consumed by auth flows.
type UserRepository interface {
	Create(ctx context.Context, u User) error
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	UpdateLogin(ctx context.Context, id uuid.UUID) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SolvedQuestions(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
}

// Service handles authentication and user management.
type Service struct {
	userRepo UserRepository
	tokenMgr *jwt.Manager
	redis    *redis.Client
	emailSvc *EmailService
	logger   zerolog.Logger
}

// ServiceOptions configures the auth service.
type ServiceOptions struct {
	TokenConfig jwt.TokenConfig
	Redis       *redis.Client
	EmailSvc    *EmailService
}

// NewService creates an authentication service.
func NewService(userRepo UserRepository, opts ServiceOptions, logger zerolog.Logger) *Service {
	return &Service{
		userRepo: userRepo,
		tokenMgr: jwt.NewManager(opts.TokenConfig),
		redis:    opts.Redis,
		emailSvc: opts.EmailSvc,
		logger:   logger,
	}
}

// Register creates a new account with the standard role. Roles are fixed
// at creation; admins and recruiters are provisioned out of band.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, *TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, nil, fmt.Errorf("email required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, nil, fmt.Errorf("name required")
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, nil, fmt.Errorf("email already registered")
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		ID:           uuid.New(),
		DisplayName:  req.Name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleStandard,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Str("email", email).Msg("user registered")

	return &user, tokens, nil
}

// Login authenticates a user with email/password.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*User, *TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid credentials")
	}

	if user.PasswordHash == "" {
		// OAuth-only account.
		return nil, nil, fmt.Errorf("invalid credentials")
	}
	if err := VerifyPassword(user.PasswordHash, req.Password); err != nil {
		return nil, nil, fmt.Errorf("invalid credentials")
	}

	_ = s.userRepo.UpdateLogin(ctx, user.ID)

	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user logged in")

	return &user, tokens, nil
}

// RefreshToken generates a new access token from a refresh token.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokenMgr.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}

	return s.generateTokenPair(user)
}

// ValidateToken validates an access token and returns user claims.
func (s *Service) ValidateToken(tokenString string) (*jwt.Claims, error) {
	return s.tokenMgr.ValidateAccessToken(tokenString)
}

// CurrentUser resolves the account behind a set of claims, including the
// solved-set.
func (s *Service) CurrentUser(ctx context.Context, claims *jwt.Claims) (*User, []uuid.UUID, error) {
	if claims == nil {
		return nil, nil, fmt.Errorf("no session: %w", httperrors.ErrAuthenticationRequired)
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, err
	}

	solved, err := s.userRepo.SolvedQuestions(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load solved set: %w", err)
	}

	return &user, solved, nil
}

// RequestPasswordReset generates a reset token and sends a reset email.
// The response never reveals whether the email exists.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	if s.redis == nil {
		return fmt.Errorf("redis not configured for password reset")
	}
	if s.emailSvc == nil {
		return fmt.Errorf("email service not configured")
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return fmt.Errorf("generate token: %w", err)
	}
	token := base64.URLEncoding.EncodeToString(tokenBytes)

	tokenData, _ := json.Marshal(map[string]string{
		"user_id": user.ID.String(),
		"email":   user.Email,
	})

	key := fmt.Sprintf("password_reset:%s", token)
	if err := s.redis.Set(ctx, key, tokenData, time.Hour).Err(); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	if err := s.emailSvc.SendPasswordResetEmail(ctx, user.Email, token); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	s.logger.Info().Str("email", user.Email).Msg("password reset requested")
	return nil
}

// ResetPassword validates a single-use token and updates the password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if s.redis == nil {
		return fmt.Errorf("redis not configured for password reset")
	}
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	key := fmt.Sprintf("password_reset:%s", token)
	tokenDataJSON, err := s.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("invalid or expired reset token")
	}
	if err != nil {
		return fmt.Errorf("get reset token: %w", err)
	}

	var tokenData map[string]string
	if err := json.Unmarshal([]byte(tokenDataJSON), &tokenData); err != nil {
		return fmt.Errorf("decode token data: %w", err)
	}

	userID, err := uuid.Parse(tokenData["user_id"])
	if err != nil {
		return fmt.Errorf("invalid user ID: %w", err)
	}

	passwordHash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.redis.Del(ctx, key).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to delete reset token")
	}

	s.logger.Info().Str("user_id", userID.String()).Msg("password reset completed")
	return nil
}

func (s *Service) generateTokenPair(user User) (*TokenPair, error) {
	jwtUser := jwt.User{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	}

	accessToken, err := s.tokenMgr.GenerateAccessToken(jwtUser)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokenMgr.GenerateRefreshToken(jwtUser)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokenMgr.AccessTTL().Seconds()),
	}, nil
}
