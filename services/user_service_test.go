package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/podiumpicks/podium-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rolePtr(r models.UserRole) *models.UserRole { return &r }

func newUserFixture(t *testing.T) (*fakeUserRepo, UserService) {
	t.Helper()
	userRepo := newFakeUserRepo()
	require.NoError(t, userRepo.Create(context.Background(), &models.User{
		Email: "admin@example.com", Nickname: "boss", Role: models.RoleAdmin,
	}))
	require.NoError(t, userRepo.Create(context.Background(), &models.User{
		Email: "marc@example.com", Nickname: "marc93", Role: models.RoleUser,
	}))
	svc := NewUserService(userRepo, nil, slog.Default())
	return userRepo, svc
}

func TestUpdateNickname(t *testing.T) {
	_, svc := newUserFixture(t)
	ctx := context.Background()

	user, err := svc.UpdateNickname(ctx, 2, "  mm93  ")
	require.NoError(t, err)
	assert.Equal(t, "mm93", user.Nickname)

	_, err = svc.UpdateNickname(ctx, 2, "x")
	assert.ErrorIs(t, err, ErrNicknameInvalid)

	_, err = svc.UpdateNickname(ctx, 2, "boss")
	assert.ErrorIs(t, err, ErrUserNicknameConflict)
}

func TestDeleteRules(t *testing.T) {
	userRepo, svc := newUserFixture(t)
	ctx := context.Background()

	// A regular user cannot delete someone else.
	assert.ErrorIs(t, svc.Delete(ctx, 2, models.RoleUser, 1), ErrForbiddenOperation)

	// An admin cannot delete their own account.
	assert.ErrorIs(t, svc.Delete(ctx, 1, models.RoleAdmin, 1), ErrCannotDeleteSelf)

	// An admin can delete another account.
	require.NoError(t, svc.Delete(ctx, 1, models.RoleAdmin, 2))
	_, ok := userRepo.users[2]
	assert.False(t, ok)
}

func TestDeleteSelf(t *testing.T) {
	userRepo, svc := newUserFixture(t)

	require.NoError(t, svc.Delete(context.Background(), 2, models.RoleUser, 2))
	_, ok := userRepo.users[2]
	assert.False(t, ok)
}

func TestAdminUpdateRole(t *testing.T) {
	userRepo, svc := newUserFixture(t)
	ctx := context.Background()

	user, err := svc.AdminUpdate(ctx, 1, 2, AdminUpdateUserInput{Role: rolePtr(models.RoleAdmin)})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, models.RoleAdmin, userRepo.users[2].Role)

	// Changing one's own role is blocked.
	_, err = svc.AdminUpdate(ctx, 1, 1, AdminUpdateUserInput{Role: rolePtr(models.RoleUser)})
	assert.ErrorIs(t, err, ErrCannotChangeOwnRole)

	_, err = svc.AdminUpdate(ctx, 1, 2, AdminUpdateUserInput{Role: rolePtr(models.UserRole("superuser"))})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestAdminVerify(t *testing.T) {
	_, svc := newUserFixture(t)
	ctx := context.Background()

	user, err := svc.AdminVerify(ctx, 2)
	require.NoError(t, err)
	assert.True(t, user.IsVerified())

	_, err = svc.AdminVerify(ctx, 2)
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestGetByIDStripsPasswordHash(t *testing.T) {
	userRepo, svc := newUserFixture(t)
	userRepo.users[2].PasswordHash = "bcrypt-hash"

	user, err := svc.GetByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash)
}

func TestUploadAvatarDisabledWithoutUploader(t *testing.T) {
	_, svc := newUserFixture(t)

	_, err := svc.UploadAvatar(context.Background(), 2, []byte("png-bytes"), "image/png")
	assert.ErrorIs(t, err, ErrUploadsDisabled)
}
