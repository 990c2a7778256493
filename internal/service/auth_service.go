package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/danchok124-del/shift-manager-backend/config"
	"github.com/danchok124-del/shift-manager-backend/internal/dto"
	"github.com/danchok124-del/shift-manager-backend/internal/model"
	"github.com/danchok124-del/shift-manager-backend/internal/repository"
	"github.com/danchok124-del/shift-manager-backend/pkg/jwt"
	"github.com/danchok124-del/shift-manager-backend/pkg/mailer"
	"github.com/danchok124-del/shift-manager-backend/pkg/redis"
)

// ── auth business errors ──

var (
	ErrEmailExists        = errors.New("User with this email already exists")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrAccountDeactivated = errors.New("Account is deactivated")
	ErrInvalidResetToken  = errors.New("Invalid or expired reset token")
	ErrInvalidRefresh     = errors.New("Invalid refresh token")
)

const bcryptCost = 10

// AuthService handles registration, login and the password-reset flow.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	// ValidateUser re-checks that the token's subject still exists and is
	// active. Used by the auth middleware on every request.
	ValidateUser(ctx context.Context, userID uint) (*model.User, error)
}

type authService struct {
	cfg    *config.AuthConfig
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	rdb    *redis.Client
	mail   mailer.Mailer
	logger *zap.Logger
	now    func() time.Time
}

// NewAuthService creates the AuthService. rdb and mail may be nil; logout
// blacklisting and reset emails degrade to no-ops with a warning.
func NewAuthService(cfg *config.AuthConfig, repo *repository.Repository, jwtMgr *jwt.Manager, rdb *redis.Client, mail mailer.Mailer, logger *zap.Logger) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		rdb:    rdb,
		mail:   mail,
		logger: logger,
		now:    time.Now,
	}
}

// ────────────────────── Register ──────────────────────

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	existing, err := s.repo.User.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("looking up email failed", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Email:        req.Email,
		Password:     string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         model.RoleEmployee,
		Phone:        req.Phone,
		CardID:       req.CardID,
		DepartmentID: req.DepartmentID,
		IsActive:     true,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("creating user failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("user registered", zap.Uint("user_id", user.ID), zap.String("email", user.Email))
	return dto.NewUserResponse(user), nil
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.repo.User.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("looking up user failed", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	return s.issueTokens(user)
}

// ────────────────────── Refresh ──────────────────────

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh
	}
	if claims.TokenType != "refresh" {
		return nil, ErrInvalidRefresh
	}

	user, err := s.ValidateUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(user)
}

func (s *authService) issueTokens(user *model.User) (*dto.TokenResponse, error) {
	access, err := s.jwtMgr.GenerateAccessToken(user.ID, user.Email, user.Role, user.DepartmentID)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}
	refresh, err := s.jwtMgr.GenerateRefreshToken(user.ID, user.Email, user.Role, user.DepartmentID)
	if err != nil {
		return nil, fmt.Errorf("signing refresh token: %w", err)
	}
	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         dto.NewUserResponse(user),
	}, nil
}

// ────────────────────── Logout ──────────────────────

// Logout blacklists the presented token until its natural expiry. Without a
// redis connection the token simply ages out.
func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.rdb == nil {
		s.logger.Warn("logout without redis, token not blacklisted")
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("blacklisting token failed", zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ForgotPassword ──────────────────────

// ForgotPassword stores a one-time reset token and emails the reset link.
// The caller receives no signal about whether the email exists, and a mail
// delivery failure is logged but not surfaced.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.User.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		s.logger.Error("looking up user failed", zap.Error(err))
		return err
	}

	token, err := generateResetToken()
	if err != nil {
		return err
	}
	expires := s.now().Add(s.cfg.ResetTokenTTL)
	user.ResetPasswordToken = &token
	user.ResetPasswordExpires = &expires
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("storing reset token failed", zap.Error(err))
		return err
	}

	if s.mail == nil {
		s.logger.Warn("no mailer configured, reset link not sent", zap.Uint("user_id", user.ID))
		return nil
	}
	link := fmt.Sprintf("%s?token=%s", s.cfg.ResetBaseURL, token)
	if err := s.mail.SendPasswordReset(ctx, user.Email, link); err != nil {
		s.logger.Error("sending reset email failed", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	return nil
}

// ────────────────────── ResetPassword ──────────────────────

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := s.repo.User.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		s.logger.Error("looking up reset token failed", zap.Error(err))
		return err
	}
	if user.ResetPasswordExpires == nil || s.now().After(*user.ResetPasswordExpires) {
		return ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	user.Password = string(hash)
	user.ResetPasswordToken = nil
	user.ResetPasswordExpires = nil
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("updating password failed", zap.Error(err))
		return err
	}

	s.logger.Info("password reset", zap.Uint("user_id", user.ID))
	return nil
}

// ────────────────────── ValidateUser ──────────────────────

func (s *authService) ValidateUser(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.repo.User.GetActiveByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountDeactivated
		}
		return nil, err
	}
	return user, nil
}

func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
