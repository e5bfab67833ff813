package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GameState represents the current phase of a game's lifecycle
type GameState string

const (
	GameStateNew       GameState = "new"       // Created, waiting to become the active game
	GameStateCurrent   GameState = "current"   // Open for play, accepting players
	GameStateStarted   GameState = "started"   // Play in progress
	GameStateFinished  GameState = "finished"  // Completed normally
	GameStateCancelled GameState = "cancelled" // Abandoned before completion
)

const (
	// DefaultMaxPlayers is the roster capacity unless configured otherwise
	DefaultMaxPlayers = 25
	// GameCodeLength is the length of generated game codes
	GameCodeLength = 6
	// GameCodeAlphabet is the characters used in generated game codes
	GameCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var gameCodePattern = regexp.MustCompile(`^[A-Z0-9]{6,8}$`)

// ValidateGameCode normalizes a user-supplied game code and verifies
// its format. Returns the normalized code or ErrInvalidGameCode.
func ValidateGameCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !gameCodePattern.MatchString(code) {
		return "", ErrInvalidGameCode
	}
	return code, nil
}

// validTransitions is the directed graph of legal state changes.
// Finished and cancelled are terminal.
var validTransitions = map[GameState][]GameState{
	GameStateNew:     {GameStateCurrent, GameStateCancelled},
	GameStateCurrent: {GameStateStarted, GameStateCancelled},
	GameStateStarted: {GameStateFinished, GameStateCancelled},
}

// CanTransitionTo reports whether the state machine allows moving from
// s to target
func (s GameState) CanTransitionTo(target GameState) bool {
	for _, next := range validTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsActive reports whether s counts against the single-active-game
// invariant
func (s GameState) IsActive() bool {
	return s == GameStateCurrent || s == GameStateStarted
}

// Game is the aggregate root for a single play session. All state
// transitions and roster rules are enforced here synchronously; the
// orchestrator owns everything that needs the store or the network.
type Game struct {
	ID         uuid.UUID
	Code       string
	State      GameState
	CreatedOn  time.Time
	StartedOn  *time.Time
	FinishedOn *time.Time
	Players    []Player

	// Capacity bounds the roster. Zero disables the bound.
	Capacity int
}

// NewGame creates a game in the new state with an empty roster
func NewGame(id uuid.UUID, code string, capacity int, now time.Time) *Game {
	return &Game{
		ID:        id,
		Code:      code,
		State:     GameStateNew,
		CreatedOn: now,
		Players:   []Player{},
		Capacity:  capacity,
	}
}

// Player returns the roster entry with the given id, or nil
func (g *Game) Player(id uuid.UUID) *Player {
	for i := range g.Players {
		if g.Players[i].ID == id {
			return &g.Players[i]
		}
	}
	return nil
}

// HasPlayer reports whether the player is in the roster, banned or not
func (g *Game) HasPlayer(id uuid.UUID) bool {
	return g.Player(id) != nil
}

// CanAdmit reports whether the roster has room for another player.
// Players can only be added while the game is new or current; banned
// entries still count toward capacity.
func (g *Game) CanAdmit() error {
	if g.State != GameStateNew && g.State != GameStateCurrent {
		return ErrInvalidState
	}
	if g.Capacity > 0 && len(g.Players) >= g.Capacity {
		return ErrGameIsFull
	}
	return nil
}

// AddPlayer admits a player to the roster
func (g *Game) AddPlayer(player Player) error {
	if err := g.CanAdmit(); err != nil {
		return err
	}
	if g.HasPlayer(player.ID) {
		return ErrInvalidPlayer
	}
	g.Players = append(g.Players, player)
	return nil
}

// RemovePlayer removes a player from the roster
func (g *Game) RemovePlayer(id uuid.UUID) error {
	for i := range g.Players {
		if g.Players[i].ID == id {
			g.Players = append(g.Players[:i], g.Players[i+1:]...)
			return nil
		}
	}
	return ErrInvalidPlayer
}

// BanPlayer marks a roster member as banned without removing them
func (g *Game) BanPlayer(id uuid.UUID) error {
	player := g.Player(id)
	if player == nil {
		return ErrInvalidPlayer
	}
	player.Ban()
	return nil
}

// changeState applies a transition if the state machine allows it.
// The aggregate is left untouched on an illegal transition.
func (g *Game) changeState(target GameState, now time.Time) error {
	if !g.State.CanTransitionTo(target) {
		return ErrInvalidState
	}
	g.State = target
	switch target {
	case GameStateStarted:
		g.StartedOn = &now
	case GameStateFinished, GameStateCancelled:
		g.FinishedOn = &now
	}
	return nil
}

// Activate moves the game from new to current
func (g *Game) Activate(now time.Time) error {
	return g.changeState(GameStateCurrent, now)
}

// Start moves the game from current to started, recording StartedOn
func (g *Game) Start(now time.Time) error {
	return g.changeState(GameStateStarted, now)
}

// Finish moves the game from started to finished, recording FinishedOn
func (g *Game) Finish(now time.Time) error {
	return g.changeState(GameStateFinished, now)
}

// Cancel abandons the game from any non-terminal state
func (g *Game) Cancel(now time.Time) error {
	return g.changeState(GameStateCancelled, now)
}
