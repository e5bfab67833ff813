package redis

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/wam-arcade/games-service/internal/model"
	"github.com/wam-arcade/games-service/internal/storage"
)

// reclaimScript swaps a slot to a new holder only while it still
// holds the stale value the claimant observed; concurrent claimants
// racing over the same stale slot can never both win
var reclaimScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	redis.call("set", KEYS[1], ARGV[2])
	return 1
end
return 0
`)

// Storage is a Redis-backed implementation of the storage interface.
// Games are stored as JSON blobs keyed by id with a code index; the
// singleton state slots are plain keys claimed with SETNX, which gives
// the conditional write the uniqueness invariants rely on.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{client: client, cfg: cfg}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{client: client, cfg: cfg}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	// Terminal games are allowed to age out; live games never expire
	var ttl time.Duration
	if game.State == model.GameStateFinished || game.State == model.GameStateCancelled {
		ttl = s.cfg.GameTTL
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, gameKey(game.ID), data, ttl)
	pipe.Set(ctx, codeIndexKey(game.Code), game.ID.String(), ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGame(ctx context.Context, id uuid.UUID) (*model.Game, error) {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) GetGameByCode(ctx context.Context, code string) (*model.Game, error) {
	idStr, err := s.client.Get(ctx, codeIndexKey(code)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, model.ErrGameNotFound
	}
	return s.GetGame(ctx, id)
}

func (s *Storage) GetGameInState(ctx context.Context, states ...model.GameState) (*model.Game, error) {
	seen := make(map[storage.StateSlot]bool)
	for _, state := range states {
		slot, ok := storage.SlotForState(state)
		if !ok || seen[slot] {
			continue
		}
		seen[slot] = true

		game, err := s.slotHolder(ctx, slot)
		if err != nil {
			return nil, err
		}
		if game != nil && slices.Contains(states, game.State) {
			return game, nil
		}
	}
	return nil, nil
}

func (s *Storage) HasGameInState(ctx context.Context, states ...model.GameState) (bool, error) {
	game, err := s.GetGameInState(ctx, states...)
	if err != nil {
		return false, err
	}
	return game != nil, nil
}

// slotHolder loads the game currently referenced by a slot marker,
// or nil when the slot is free or its holder has expired
func (s *Storage) slotHolder(ctx context.Context, slot storage.StateSlot) (*model.Game, error) {
	idStr, err := s.client.Get(ctx, slotKey(slot)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, nil
	}

	game, err := s.GetGame(ctx, id)
	if errors.Is(err, model.ErrGameNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return game, nil
}

func (s *Storage) AcquireStateSlot(ctx context.Context, slot storage.StateSlot, id uuid.UUID) (bool, error) {
	ok, err := s.client.SetNX(ctx, slotKey(slot), id.String(), 0).Result()
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	holderStr, err := s.client.Get(ctx, slotKey(slot)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Slot freed between SETNX and GET; retry the claim
			return s.client.SetNX(ctx, slotKey(slot), id.String(), 0).Result()
		}
		return false, err
	}
	if holderStr == id.String() {
		return true, nil
	}

	// Reclaim the slot if its holder is gone or no longer in the
	// slot's states (e.g. a crash between transition and release)
	holder, err := s.slotHolder(ctx, slot)
	if err != nil {
		return false, err
	}
	if holder != nil && slices.Contains(storage.SlotStates(slot), holder.State) {
		return false, nil
	}
	swapped, err := reclaimScript.Run(ctx, s.client, []string{slotKey(slot)}, holderStr, id.String()).Int()
	if err != nil {
		return false, err
	}
	return swapped == 1, nil
}

func (s *Storage) ReleaseStateSlot(ctx context.Context, slot storage.StateSlot, id uuid.UUID) error {
	holderStr, err := s.client.Get(ctx, slotKey(slot)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}
	if holderStr != id.String() {
		return nil
	}
	return s.client.Del(ctx, slotKey(slot)).Err()
}
