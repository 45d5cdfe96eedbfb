package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/podiumpicks/podium-api/models"
	"github.com/podiumpicks/podium-api/repositories"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost              = 12
	verificationTokenLength = 16 // bytes; 32 hex characters
	verificationTokenExpiry = 24 * time.Hour
	minimumPasswordLength   = 6
)

type RegisterInput struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Nickname       string `json:"nickname"`
	InvitationCode string `json:"invitation_code"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService interface {
	// Register creates a user behind an invitation code and returns the
	// verification token the caller should mail out.
	Register(ctx context.Context, input RegisterInput) (*models.User, string, error)
	Login(ctx context.Context, input LoginInput) (*models.User, error)
	VerifyEmail(ctx context.Context, email, token string) (*models.User, error)
	// ValidateInvitationCode is the pre-flight check the registration form
	// uses before asking for the rest of the details.
	ValidateInvitationCode(ctx context.Context, code string) error
	// ResendVerification issues a fresh token for an unverified user,
	// invalidating earlier ones.
	ResendVerification(ctx context.Context, userID int) (*models.User, string, error)
}

type authService struct {
	userRepo         repositories.UserRepository
	invitationRepo   repositories.InvitationCodeRepository
	verificationRepo repositories.VerificationTokenRepository
}

func NewAuthService(
	userRepo repositories.UserRepository,
	invitationRepo repositories.InvitationCodeRepository,
	verificationRepo repositories.VerificationTokenRepository,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		invitationRepo:   invitationRepo,
		verificationRepo: verificationRepo,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, string, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", ErrValidationFailed
	}
	if len(input.Password) < minimumPasswordLength {
		return nil, "", ErrPasswordTooShort
	}
	nickname, err := normalizeNickname(input.Nickname)
	if err != nil {
		return nil, "", err
	}

	code, err := s.invitationRepo.GetByCode(ctx, strings.TrimSpace(input.InvitationCode))
	if err != nil {
		if errors.Is(err, repositories.ErrInvitationCodeNotFound) {
			return nil, "", ErrInvitationCodeInvalid
		}
		return nil, "", fmt.Errorf("failed to check invitation code: %w", err)
	}
	if !code.HasUsesLeft() {
		return nil, "", ErrInvitationCodeInvalid
	}

	// Pre-checks keep constraint failures out of the common path and produce
	// named errors; the unique indexes still backstop races.
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, "", ErrUserEmailConflict
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, "", fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if _, err := s.userRepo.GetByNickname(ctx, nickname); err == nil {
		return nil, "", ErrUserNicknameConflict
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, "", fmt.Errorf("failed to check nickname uniqueness: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		Nickname:     nickname,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserEmailConflict):
			return nil, "", ErrUserEmailConflict
		case errors.Is(err, repositories.ErrUserNicknameConflict):
			return nil, "", ErrUserNicknameConflict
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.invitationRepo.IncrementUses(ctx, code.ID); err != nil {
		// The user exists at this point; an exhausted-between-check-and-use
		// code is tolerated rather than rolling the registration back.
		if !errors.Is(err, repositories.ErrInvitationCodeExhausted) {
			return nil, "", fmt.Errorf("failed to consume invitation code: %w", err)
		}
	}

	token, err := s.issueVerificationToken(ctx, email)
	if err != nil {
		return nil, "", err
	}

	user.PasswordHash = ""
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(input.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) VerifyEmail(ctx context.Context, email, token string) (*models.User, error) {
	vt, err := s.verificationRepo.Get(ctx, email, token)
	if err != nil {
		if errors.Is(err, repositories.ErrVerificationNotFound) {
			return nil, ErrVerificationInvalid
		}
		return nil, fmt.Errorf("failed to look up verification token: %w", err)
	}
	if time.Now().After(vt.ExpiresAt) {
		// Expired tokens are swept so a resend starts clean.
		_ = s.verificationRepo.DeleteByEmail(ctx, email)
		return nil, ErrVerificationExpired
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user for verification: %w", err)
	}

	now := time.Now()
	if err := s.userRepo.SetEmailVerified(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to mark email verified: %w", err)
	}
	if err := s.verificationRepo.DeleteByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("failed to clean up verification tokens: %w", err)
	}

	user.EmailVerifiedAt = &now
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) ValidateInvitationCode(ctx context.Context, code string) error {
	found, err := s.invitationRepo.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, repositories.ErrInvitationCodeNotFound) {
			return ErrInvitationCodeInvalid
		}
		return fmt.Errorf("failed to check invitation code: %w", err)
	}
	if !found.HasUsesLeft() {
		return ErrInvitationCodeInvalid
	}
	return nil
}

func (s *authService) ResendVerification(ctx context.Context, userID int) (*models.User, string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	if user.IsVerified() {
		return nil, "", ErrAlreadyVerified
	}

	if err := s.verificationRepo.DeleteByEmail(ctx, user.Email); err != nil {
		return nil, "", fmt.Errorf("failed to invalidate old tokens: %w", err)
	}
	token, err := s.issueVerificationToken(ctx, user.Email)
	if err != nil {
		return nil, "", err
	}

	user.PasswordHash = ""
	return user, token, nil
}

func (s *authService) issueVerificationToken(ctx context.Context, email string) (string, error) {
	token, err := generateSecureToken(verificationTokenLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate verification token: %w", err)
	}
	vt := &models.VerificationToken{
		Email:     email,
		Token:     token,
		ExpiresAt: time.Now().Add(verificationTokenExpiry),
	}
	if err := s.verificationRepo.Create(ctx, vt); err != nil {
		return "", fmt.Errorf("failed to store verification token: %w", err)
	}
	return token, nil
}
