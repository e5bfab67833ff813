package model

// DomainError is an expected, user-actionable rule violation.
// Each instance carries a stable machine-readable code; handlers match
// them with errors.Is against the sentinels below.
type DomainError struct {
	Code    string
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// The closed set of domain errors used across the application
var (
	ErrGameNotFound = &DomainError{
		Code:    "GameNotFound",
		Message: "game not found",
	}
	ErrInvalidGameCode = &DomainError{
		Code:    "InvalidGameCode",
		Message: "game code must be 6-8 uppercase letters and digits",
	}
	ErrGameIsFull = &DomainError{
		Code:    "GameIsFull",
		Message: "the maximum amount of players is reached, no new players can join at this time",
	}
	ErrInvalidState = &DomainError{
		Code:    "InvalidState",
		Message: "the requested operation is not valid in the game's current state",
	}
	ErrInvalidPlayer = &DomainError{
		Code:    "InvalidPlayer",
		Message: "player is not valid for this game",
	}
	ErrPlayerNotFound = &DomainError{
		Code:    "PlayerNotFound",
		Message: "player was not found in the system",
	}
	ErrNewGameAlreadyExists = &DomainError{
		Code:    "NewGameAlreadyExists",
		Message: "there can only be one game in the new state at a time",
	}
	ErrActiveGameAlreadyExists = &DomainError{
		Code:    "ActiveGameAlreadyExists",
		Message: "there can only be one game in the active state at a time",
	}
	ErrInvalidGameVoucher = &DomainError{
		Code:    "InvalidGameVoucher",
		Message: "this game requires a valid voucher to join",
	}
)
