package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/podiumpicks/podium-api/models"
	"github.com/podiumpicks/podium-api/repositories"
	"github.com/podiumpicks/podium-api/storage"
)

const maxAvatarSizeBytes = 2 << 20

type AdminUpdateUserInput struct {
	Nickname *string          `json:"nickname"`
	Role     *models.UserRole `json:"role"`
}

type UserService interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	UpdateNickname(ctx context.Context, userID int, nickname string) (*models.User, error)
	UploadAvatar(ctx context.Context, userID int, data []byte, contentType string) (*models.User, error)
	// Delete removes an account. Regular users may only delete themselves;
	// admins may delete anyone but themselves.
	Delete(ctx context.Context, actorID int, actorRole models.UserRole, targetID int) error
	List(ctx context.Context) ([]models.User, error)
	AdminUpdate(ctx context.Context, actorID, targetID int, input AdminUpdateUserInput) (*models.User, error)
	AdminVerify(ctx context.Context, targetID int) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewUserService(userRepo repositories.UserRepository, uploader storage.FileUploader, logger *slog.Logger) UserService {
	return &userService{userRepo: userRepo, uploader: uploader, logger: logger}
}

func (s *userService) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	populateUserAvatarURL(user, s.uploader)
	return user, nil
}

func (s *userService) UpdateNickname(ctx context.Context, userID int, nickname string) (*models.User, error) {
	normalized, err := normalizeNickname(nickname)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	user.Nickname = normalized
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserNicknameConflict) {
			return nil, ErrUserNicknameConflict
		}
		return nil, fmt.Errorf("failed to update user %d: %w", userID, err)
	}

	populateUserAvatarURL(user, s.uploader)
	return user, nil
}

func (s *userService) UploadAvatar(ctx context.Context, userID int, data []byte, contentType string) (*models.User, error) {
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}
	if len(data) == 0 || len(data) > maxAvatarSizeBytes {
		return nil, ErrValidationFailed
	}
	ext, err := extensionForImageContentType(contentType)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	key := fmt.Sprintf("avatars/%d-%d%s", userID, time.Now().Unix(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	oldKey := user.AvatarKey
	user.AvatarKey = &key
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save avatar key: %w", err)
	}

	// Old object cleanup is best effort.
	if oldKey != nil && *oldKey != key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.Warn("failed to delete previous avatar", "key", *oldKey, "error", err)
		}
	}

	populateUserAvatarURL(user, s.uploader)
	return user, nil
}

func (s *userService) Delete(ctx context.Context, actorID int, actorRole models.UserRole, targetID int) error {
	if actorRole == models.RoleAdmin {
		if actorID == targetID {
			return ErrCannotDeleteSelf
		}
	} else if actorID != targetID {
		return ErrForbiddenOperation
	}

	if err := s.userRepo.Delete(ctx, targetID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user %d: %w", targetID, err)
	}
	return nil
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for i := range users {
		populateUserAvatarURL(&users[i], s.uploader)
	}
	return users, nil
}

func (s *userService) AdminUpdate(ctx context.Context, actorID, targetID int, input AdminUpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", targetID, err)
	}

	if input.Nickname != nil {
		normalized, err := normalizeNickname(*input.Nickname)
		if err != nil {
			return nil, err
		}
		user.Nickname = normalized
	}
	if input.Role != nil {
		if actorID == targetID {
			return nil, ErrCannotChangeOwnRole
		}
		if !input.Role.IsValid() {
			return nil, ErrValidationFailed
		}
		user.Role = *input.Role
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserNicknameConflict) {
			return nil, ErrUserNicknameConflict
		}
		return nil, fmt.Errorf("failed to update user %d: %w", targetID, err)
	}

	populateUserAvatarURL(user, s.uploader)
	return user, nil
}

func (s *userService) AdminVerify(ctx context.Context, targetID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", targetID, err)
	}
	if user.IsVerified() {
		return nil, ErrAlreadyVerified
	}

	now := time.Now()
	if err := s.userRepo.SetEmailVerified(ctx, targetID, now); err != nil {
		return nil, fmt.Errorf("failed to verify user %d: %w", targetID, err)
	}
	user.EmailVerifiedAt = &now
	populateUserAvatarURL(user, s.uploader)
	return user, nil
}
