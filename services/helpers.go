package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/podiumpicks/podium-api/models"
	"github.com/podiumpicks/podium-api/storage"
)

func generateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// validatePodiumRiders checks the distinctness invariant and that every rider
// in the triple exists. Active-rider enforcement is opt-in: admins confirming
// results may reference riders deactivated since the race.
func validatePodiumRiders(podium models.Podium, riders []*models.Rider, requireActive bool) error {
	if !podium.IsDistinct() {
		return ErrPredictionSameRider
	}
	byID := make(map[int]*models.Rider, len(riders))
	for _, rider := range riders {
		byID[rider.ID] = rider
	}
	for _, id := range podium.Riders() {
		rider, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: rider %d", ErrRiderNotFound, id)
		}
		if requireActive && !rider.IsActive {
			return fmt.Errorf("%w: rider %d", ErrRiderInactive, id)
		}
	}
	return nil
}

func populateUserAvatarURL(user *models.User, uploader storage.FileUploader) {
	if user == nil {
		return
	}
	user.PasswordHash = ""
	if user.AvatarKey != nil && *user.AvatarKey != "" && uploader != nil {
		if url := uploader.PublicURL(*user.AvatarKey); url != "" {
			user.AvatarURL = &url
		}
	}
}

func populateRaceTrackImageURL(race *models.Race, uploader storage.FileUploader) {
	if race != nil && race.TrackImageKey != nil && *race.TrackImageKey != "" && uploader != nil {
		if url := uploader.PublicURL(*race.TrackImageKey); url != "" {
			race.TrackImageURL = &url
		}
	}
}

func extensionForImageContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	case "image/svg+xml":
		return ".svg", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUploadInvalidType, contentType)
	}
}

func normalizeNickname(nickname string) (string, error) {
	trimmed := strings.TrimSpace(nickname)
	if len(trimmed) < 2 || len(trimmed) > 20 {
		return "", ErrNicknameInvalid
	}
	return trimmed, nil
}
