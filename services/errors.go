package services

import "errors"

// Shared errors used across services and the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed    = errors.New("validation failed")
	ErrPasswordTooShort    = errors.New("password is too short")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrTeamNameRequired    = errors.New("team name is required")
	ErrPlayerNameRequired  = errors.New("player name is required")
	ErrSeasonNameRequired  = errors.New("season name is required")
	ErrGameOpponentMissing = errors.New("game opponent is required")
	ErrNegativeCount       = errors.New("counts must not be negative")

	// Edit session state machine
	ErrSessionClosed   = errors.New("edit session is already committed or cancelled")
	ErrRuleNotEditable = errors.New("rule value mirrors the errors count and cannot be edited directly")
	ErrRuleUnknown     = errors.New("rule is not part of this game player record")

	// Conflicts
	ErrUserEmailConflict  = errors.New("email address is already in use")
	ErrTeamNameConflict   = errors.New("team name is already in use")
	ErrPlayerNameConflict = errors.New("player name is already in use")
	ErrSeasonNameConflict = errors.New("season name is already in use")
	ErrGamePlayerConflict = errors.New("player is already recorded for this game")

	// Authentication and authorization
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Entity-specific lookups
	ErrUserNotFound       = errors.New("user not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrSeasonNotFound     = errors.New("season not found")
	ErrGameNotFound       = errors.New("game not found")
	ErrGamePlayerNotFound = errors.New("game player not found")
	ErrPenaltyNotFound    = errors.New("penalty rule not found")
)
