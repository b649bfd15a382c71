package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/schoolplan/timetable-server/authenticator"
	"github.com/schoolplan/timetable-server/models"
	"github.com/schoolplan/timetable-server/repositories"
)

const refreshTokenTTL = 30 * 24 * time.Hour

// AuthService interface defines authentication business logic
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.TokenPair, error)
	Refresh(ctx context.Context, req *models.RefreshRequest) (*models.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	VerifyAccess(tokenString string) (*authenticator.APIClaims, error)
	UpsertOIDCUser(ctx context.Context, claims authenticator.Claims) (*models.User, error)
}

// authService implements AuthService interface
type authService struct {
	userRepo  repositories.UserRepository
	tokenRepo repositories.RefreshTokenRepository
	issuer    *authenticator.TokenIssuer
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	tokenRepo repositories.RefreshTokenRepository,
	issuer *authenticator.TokenIssuer,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		issuer:    issuer,
	}
}

// Login verifies a password and issues a token pair
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenPair, error) {
	if errors := req.Validate(); errors.HasErrors() {
		return nil, fmt.Errorf("validation failed: %s", strings.Join(errors.GetMessages(), ", "))
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		// Same error as a wrong password so login probes learn nothing
		return nil, fmt.Errorf("invalid email or password")
	}

	if user.PasswordHash == "" {
		return nil, fmt.Errorf("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	return s.issueTokenPair(ctx, user)
}

// Refresh rotates a refresh token and issues a fresh token pair
func (s *authService) Refresh(ctx context.Context, req *models.RefreshRequest) (*models.TokenPair, error) {
	if errors := req.Validate(); errors.HasErrors() {
		return nil, fmt.Errorf("validation failed: %s", strings.Join(errors.GetMessages(), ", "))
	}

	stored, err := s.tokenRepo.Get(ctx, req.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token")
	}

	if stored.Expired() {
		if err := s.tokenRepo.Delete(ctx, stored.ID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("refresh token expired")
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Rotate: the old token is single use
	if err := s.tokenRepo.Delete(ctx, stored.ID); err != nil {
		return nil, err
	}

	return s.issueTokenPair(ctx, user)
}

// Logout revokes a refresh token
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	stored, err := s.tokenRepo.Get(ctx, refreshToken)
	if err != nil {
		// Already gone
		return nil
	}

	return s.tokenRepo.Delete(ctx, stored.ID)
}

// VerifyAccess validates a bearer access token
func (s *authService) VerifyAccess(tokenString string) (*authenticator.APIClaims, error) {
	return s.issuer.Verify(tokenString)
}

// UpsertOIDCUser finds or creates the account behind a verified set of OIDC
// claims
func (s *authService) UpsertOIDCUser(ctx context.Context, claims authenticator.Claims) (*models.User, error) {
	subject := claims.Subject()
	email := strings.ToLower(claims.Email())
	if subject == "" || email == "" {
		return nil, fmt.Errorf("id token is missing sub or email claims")
	}

	user, err := s.userRepo.GetByOIDCSubject(ctx, subject)
	if err == nil {
		return user, nil
	}

	// Link an existing password account on first OIDC sign-in
	user, err = s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		user.OIDCSubject = subject
		if claims.Name() != "" {
			user.Name = claims.Name()
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to link account: %w", err)
		}
		return user, nil
	}

	user = &models.User{
		Email:       email,
		Name:        claims.Name(),
		Role:        models.RoleStaff,
		OIDCSubject: subject,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// issueTokenPair mints an access token and stores a new refresh token
func (s *authService) issueTokenPair(ctx context.Context, user *models.User) (*models.TokenPair, error) {
	access, expiresAt, err := s.issuer.IssueAccess(user.ID, user.Email, user.Name, user.Role)
	if err != nil {
		return nil, err
	}

	refresh := &models.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: timeNow().Add(refreshTokenTTL),
	}
	if err := s.tokenRepo.Create(ctx, refresh); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh.ID,
		ExpiresAt:    expiresAt,
	}, nil
}
