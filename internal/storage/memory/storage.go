package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/wam-arcade/games-service/internal/model"
	"github.com/wam-arcade/games-service/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Games are stored as copies so callers never share an aggregate
// instance with the store.
type Storage struct {
	mu    sync.RWMutex
	games map[uuid.UUID]*model.Game
	codes map[string]uuid.UUID
	slots map[storage.StateSlot]uuid.UUID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		games: make(map[uuid.UUID]*model.Game),
		codes: make(map[string]uuid.UUID),
		slots: make(map[storage.StateSlot]uuid.UUID),
	}
}

var _ storage.Storage = (*Storage)(nil)

// clone deep-copies a game so in-memory mutation mirrors a durable store
func clone(g *model.Game) *model.Game {
	c := *g
	c.Players = slices.Clone(g.Players)
	if g.StartedOn != nil {
		t := *g.StartedOn
		c.StartedOn = &t
	}
	if g.FinishedOn != nil {
		t := *g.FinishedOn
		c.FinishedOn = &t
	}
	return &c
}

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.ID] = clone(game)
	s.codes[game.Code] = game.ID
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id uuid.UUID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return clone(game), nil
}

func (s *Storage) GetGameByCode(ctx context.Context, code string) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.codes[code]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return clone(game), nil
}

func (s *Storage) GetGameInState(ctx context.Context, states ...model.GameState) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game := s.gameInStateLocked(states)
	if game == nil {
		return nil, nil
	}
	return clone(game), nil
}

func (s *Storage) HasGameInState(ctx context.Context, states ...model.GameState) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gameInStateLocked(states) != nil, nil
}

// gameInStateLocked resolves the slot holder for the requested states.
// Callers must hold at least the read lock.
func (s *Storage) gameInStateLocked(states []model.GameState) *model.Game {
	seen := make(map[storage.StateSlot]bool)
	for _, state := range states {
		slot, ok := storage.SlotForState(state)
		if !ok || seen[slot] {
			continue
		}
		seen[slot] = true

		id, held := s.slots[slot]
		if !held {
			continue
		}
		game, ok := s.games[id]
		if !ok {
			continue
		}
		if slices.Contains(states, game.State) {
			return game
		}
	}
	return nil
}

func (s *Storage) AcquireStateSlot(ctx context.Context, slot storage.StateSlot, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	holder, held := s.slots[slot]
	if !held || holder == id {
		s.slots[slot] = id
		return true, nil
	}

	// Reclaim the slot if its holder has since left the slot's states
	game, ok := s.games[holder]
	if ok && slices.Contains(storage.SlotStates(slot), game.State) {
		return false, nil
	}
	s.slots[slot] = id
	return true, nil
}

func (s *Storage) ReleaseStateSlot(ctx context.Context, slot storage.StateSlot, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if holder, held := s.slots[slot]; held && holder == id {
		delete(s.slots, slot)
	}
	return nil
}
