package model

import (
	"time"

	"github.com/google/uuid"
)

// EventKind identifies the type of realtime event
type EventKind string

const (
	// Dashboard events
	EventNewGameCreated   EventKind = "new-game-created"
	EventGameBecameActive EventKind = "game-became-active"

	// Game channel events
	EventGamePlayerAdded   EventKind = "game-player-added"
	EventGamePlayerRemoved EventKind = "game-player-removed"
	EventGameStateChanged  EventKind = "game-state-changed"
)

// DashboardGroup is the fixed channel for operator-facing events.
// Player-scoped events go to the channel named after the game's code.
const DashboardGroup = "dashboard"

// PlayerAddedPayload contains data for game-player-added events
type PlayerAddedPayload struct {
	Code         string    `json:"code"`
	PlayerID     uuid.UUID `json:"playerId"`
	DisplayName  string    `json:"displayName"`
	EmailAddress string    `json:"emailAddress"`
}

// PlayerRemovedPayload contains data for game-player-removed events
type PlayerRemovedPayload struct {
	Code     string    `json:"code"`
	PlayerID uuid.UUID `json:"playerId"`
}

// StateChangedPayload contains data for game-state-changed and
// game-became-active events
type StateChangedPayload struct {
	ID         uuid.UUID  `json:"id"`
	Code       string     `json:"code"`
	State      GameState  `json:"state"`
	CreatedOn  time.Time  `json:"createdOn"`
	StartedOn  *time.Time `json:"startedOn,omitempty"`
	FinishedOn *time.Time `json:"finishedOn,omitempty"`
}

// NewStateChangedPayload builds the state-change payload for a game
func NewStateChangedPayload(g *Game) StateChangedPayload {
	return StateChangedPayload{
		ID:         g.ID,
		Code:       g.Code,
		State:      g.State,
		CreatedOn:  g.CreatedOn,
		StartedOn:  g.StartedOn,
		FinishedOn: g.FinishedOn,
	}
}
