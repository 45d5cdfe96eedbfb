package services

import "errors"

// Shared errors used across services and the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed      = errors.New("validation failed")
	ErrPasswordTooShort      = errors.New("password must be at least 6 characters")
	ErrNicknameInvalid       = errors.New("nickname must be between 2 and 20 characters")
	ErrInvitationCodeInvalid = errors.New("invitation code is invalid or has no uses left")
	ErrVerificationInvalid   = errors.New("verification token is invalid")
	ErrVerificationExpired   = errors.New("verification token has expired")
	ErrAlreadyVerified       = errors.New("email is already verified")
	ErrPredictionSameRider   = errors.New("the three podium positions must be distinct riders")
	ErrPredictionLocked      = errors.New("predictions are locked for this race")
	ErrRiderInactive         = errors.New("rider is not active")
	ErrRaceStatusInvalid     = errors.New("invalid race status provided")
	ErrRaceNewDateRequired   = errors.New("a rescheduled race requires a new date")
	ErrUploadInvalidType     = errors.New("unsupported image content type")
	ErrUploadsDisabled       = errors.New("file uploads are not configured")

	// Conflicts
	ErrUserEmailConflict    = errors.New("email address is already in use")
	ErrUserNicknameConflict = errors.New("nickname is already in use")

	// Authentication and authorization
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
	ErrCannotChangeOwnRole    = errors.New("admins cannot change their own role")
	ErrCannotDeleteSelf       = errors.New("admins cannot delete their own account")

	// Entity-specific not-found errors
	ErrUserNotFound       = errors.New("user not found")
	ErrRaceNotFound       = errors.New("race not found")
	ErrRiderNotFound      = errors.New("rider not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrPredictionNotFound = errors.New("prediction not found")
	ErrRaceResultNotFound = errors.New("race result not found")
)
