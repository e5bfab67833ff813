package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/wam-arcade/games-service/internal/model"
)

// StateSlot identifies one of the system-wide singleton markers.
// At most one game may hold each slot at a time; the slots back the
// "one new game" and "one active game" invariants with a conditional
// write instead of a read-then-act check.
type StateSlot string

const (
	// SlotNew is held by the single game in the new state
	SlotNew StateSlot = "new"
	// SlotActive is held by the single game in the current or started state
	SlotActive StateSlot = "active"
)

// SlotForState returns the singleton slot a state occupies, if any
func SlotForState(state model.GameState) (StateSlot, bool) {
	switch {
	case state == model.GameStateNew:
		return SlotNew, true
	case state.IsActive():
		return SlotActive, true
	default:
		return "", false
	}
}

// SlotStates returns the states whose games may hold the slot
func SlotStates(slot StateSlot) []model.GameState {
	if slot == SlotNew {
		return []model.GameState{model.GameStateNew}
	}
	return []model.GameState{model.GameStateCurrent, model.GameStateStarted}
}

// Storage defines the persistence contract for games.
// Absent games are reported as model.ErrGameNotFound; state queries
// report absence as a nil game, not an error.
type Storage interface {
	// SaveGame persists the full aggregate, indexed by id and code
	SaveGame(ctx context.Context, game *model.Game) error
	// GetGame retrieves a game by id
	GetGame(ctx context.Context, id uuid.UUID) (*model.Game, error)
	// GetGameByCode retrieves a game by its join code
	GetGameByCode(ctx context.Context, code string) (*model.Game, error)

	// GetGameInState returns the single game holding the slot for the
	// given states, or nil when there is none
	GetGameInState(ctx context.Context, states ...model.GameState) (*model.Game, error)
	// HasGameInState reports whether any game currently holds the slot
	// for the given states
	HasGameInState(ctx context.Context, states ...model.GameState) (bool, error)

	// AcquireStateSlot atomically claims a singleton slot for the given
	// game. Returns false when another live game already holds it. A
	// slot whose holder has since left the slot's states is reclaimed.
	AcquireStateSlot(ctx context.Context, slot StateSlot, id uuid.UUID) (bool, error)
	// ReleaseStateSlot frees a slot if the given game holds it.
	// Releasing a slot held by another game is a no-op.
	ReleaseStateSlot(ctx context.Context, slot StateSlot, id uuid.UUID) error
}
