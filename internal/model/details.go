package model

import (
	"time"

	"github.com/google/uuid"
)

// GamePlayer is a roster entry as exposed to callers
type GamePlayer struct {
	ID           uuid.UUID `json:"id"`
	DisplayName  string    `json:"displayName"`
	EmailAddress string    `json:"emailAddress"`
}

// GameDetails is the projection of a game returned by every
// orchestrator operation. Banned players are filtered out.
type GameDetails struct {
	ID         uuid.UUID    `json:"id"`
	Code       string       `json:"code"`
	State      GameState    `json:"state"`
	CreatedOn  time.Time    `json:"createdOn"`
	StartedOn  *time.Time   `json:"startedOn,omitempty"`
	FinishedOn *time.Time   `json:"finishedOn,omitempty"`
	Players    []GamePlayer `json:"players"`
}

// Details builds the externally visible projection of the game
func (g *Game) Details() *GameDetails {
	players := make([]GamePlayer, 0, len(g.Players))
	for _, p := range g.Players {
		if p.IsBanned {
			continue
		}
		players = append(players, GamePlayer{
			ID:           p.ID,
			DisplayName:  p.DisplayName,
			EmailAddress: p.EmailAddress,
		})
	}

	return &GameDetails{
		ID:         g.ID,
		Code:       g.Code,
		State:      g.State,
		CreatedOn:  g.CreatedOn,
		StartedOn:  g.StartedOn,
		FinishedOn: g.FinishedOn,
		Players:    players,
	}
}
