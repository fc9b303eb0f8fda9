package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/election/internal/core/domain"
	"github.com/vncsmyrnk/election/internal/core/ports"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

// AuthService issues session tokens for identities verified by Google and
// records LOGIN and LOGOUT audit entries.
type AuthService struct {
	userRepo            ports.UserRepository
	authRepo            ports.AuthRepository
	audit               ports.AuditService
	googleTokenVerifier ports.TokenVerifier
	jwtSecret           []byte
	googleClientID      string
	log                 logrus.FieldLogger
	opts                options
}

func NewAuthService(userRepo ports.UserRepository, authRepo ports.AuthRepository, audit ports.AuditService, googleTokenVerifier ports.TokenVerifier, jwtSecret, googleClientID string, log logrus.FieldLogger, opts ...Option) *AuthService {
	log = log.WithField("component", "auth")
	if jwtSecret == "" {
		log.Warn("JWT secret not set")
	}

	return &AuthService{
		userRepo:            userRepo,
		authRepo:            authRepo,
		audit:               audit,
		googleTokenVerifier: googleTokenVerifier,
		jwtSecret:           []byte(jwtSecret),
		googleClientID:      googleClientID,
		log:                 log,
		opts:                buildOptions(opts),
	}
}

func (s *AuthService) LoginWithGoogle(ctx context.Context, googleToken, originAddress string) (string, string, error) {
	payload, err := s.googleTokenVerifier.Verify(ctx, googleToken, s.googleClientID)
	if err != nil {
		return "", "", fmt.Errorf("invalid google token: %w", err)
	}

	return s.login(ctx, payload.Email, payload.Name, originAddress)
}

func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, string, error) {
	tokenHash := s.hashToken(refreshToken)

	rtEntity, err := s.authRepo.GetRefreshTokenByHash(ctx, tokenHash)
	if err != nil {
		return "", "", fmt.Errorf("failed to get refresh token: %w", err)
	}
	if rtEntity == nil {
		return "", "", errors.New("refresh token not found")
	}

	if !rtEntity.ActiveAt(s.opts.now()) {
		return "", "", errors.New("refresh token revoked or expired")
	}

	user, err := s.userRepo.GetByID(ctx, rtEntity.UserID)
	if err != nil {
		return "", "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return "", "", domain.ErrUserNotFound
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return accessToken, refreshToken, nil
}

// Logout revokes the refresh token. The LOGOUT audit entry is stored before
// the token is revoked, and its failure fails the logout.
func (s *AuthService) Logout(ctx context.Context, refreshToken, originAddress string) error {
	tokenHash := s.hashToken(refreshToken)

	rtEntity, err := s.authRepo.GetRefreshTokenByHash(ctx, tokenHash)
	if err != nil {
		return fmt.Errorf("failed to get refresh token: %w", err)
	}
	if rtEntity == nil || rtEntity.Revoked {
		return nil
	}

	userID := rtEntity.UserID
	_, err = s.audit.Record(ctx, ports.RecordInput{
		ActorID:       &userID,
		Action:        domain.AuditLogout,
		Details:       fmt.Sprintf("User %s logged out", userID),
		OriginAddress: originAddress,
	})
	if err != nil {
		return fmt.Errorf("failed to record logout: %w", err)
	}

	return s.authRepo.RevokeRefreshToken(ctx, rtEntity.ID)
}

func (s *AuthService) login(ctx context.Context, email, name, originAddress string) (string, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", "", fmt.Errorf("failed to get user: %w", err)
	}

	if user == nil {
		user = &domain.User{
			Email: email,
			Name:  name,
			Role:  domain.RoleVoter,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return "", "", fmt.Errorf("failed to create user: %w", err)
		}
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.generateRefreshToken()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate refresh token: %w", err)
	}

	rtEntity := &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: s.hashToken(refreshToken),
		ExpiresAt: s.opts.now().Add(refreshTokenTTL),
		Revoked:   false,
	}

	if err := s.authRepo.StoreRefreshToken(ctx, rtEntity); err != nil {
		return "", "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	userID := user.ID
	_, err = s.audit.Record(ctx, ports.RecordInput{
		ActorID:       &userID,
		Action:        domain.AuditLogin,
		Details:       fmt.Sprintf("User %s logged in successfully", user.Email),
		OriginAddress: originAddress,
	})
	if err != nil {
		// A session without its LOGIN entry must not stay usable.
		if revokeErr := s.authRepo.RevokeRefreshToken(ctx, rtEntity.ID); revokeErr != nil {
			s.log.WithError(revokeErr).WithField("user_id", user.ID).Error("failed to revoke unaudited refresh token")
		}
		return "", "", fmt.Errorf("failed to record login: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"origin":  originAddress,
	}).Info("user logged in")

	return accessToken, refreshToken, nil
}

func (s *AuthService) generateAccessToken(user *domain.User) (string, error) {
	now := s.opts.now()
	role := user.Role
	if role == "" {
		role = domain.RoleVoter
	}
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  string(role),
		"exp":   now.Add(accessTokenTTL).Unix(),
		"iat":   now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) generateRefreshToken() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func (s *AuthService) hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
