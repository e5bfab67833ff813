package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/wam-arcade/games-service/internal/model"
	"github.com/wam-arcade/games-service/internal/storage"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
	now     time.Time
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.GameTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
	s.now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) newGame(code string) *model.Game {
	return model.NewGame(uuid.New(), code, model.DefaultMaxPlayers, s.now)
}

// Game tests

func (s *StorageSuite) TestSaveAndGetGame() {
	game := s.newGame("ABC123")
	game.Players = append(game.Players, model.Player{
		ID:           uuid.New(),
		DisplayName:  "Alice",
		EmailAddress: "alice@example.com",
	})

	err := s.storage.SaveGame(s.ctx, game)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(game.ID, retrieved.ID)
	s.Equal(game.Code, retrieved.Code)
	s.Equal(model.GameStateNew, retrieved.State)
	s.Require().Len(retrieved.Players, 1)
	s.Equal("Alice", retrieved.Players[0].DisplayName)
}

func (s *StorageSuite) TestGetGameNotFound() {
	_, err := s.storage.GetGame(s.ctx, uuid.New())
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestGetGameByCode() {
	game := s.newGame("ABC123")
	_ = s.storage.SaveGame(s.ctx, game)

	retrieved, err := s.storage.GetGameByCode(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.Equal(game.ID, retrieved.ID)
}

func (s *StorageSuite) TestGetGameByCodeNotFound() {
	_, err := s.storage.GetGameByCode(s.ctx, "NOPE99")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestLiveGamesDoNotExpire() {
	game := s.newGame("ABC123")
	_ = s.storage.SaveGame(s.ctx, game)

	s.mini.FastForward(48 * time.Hour)

	_, err := s.storage.GetGame(s.ctx, game.ID)
	s.Require().NoError(err)
}

func (s *StorageSuite) TestTerminalGamesExpire() {
	game := s.newGame("ABC123")
	_ = game.Cancel(s.now)
	_ = s.storage.SaveGame(s.ctx, game)

	s.mini.FastForward(2 * time.Hour)

	_, err := s.storage.GetGame(s.ctx, game.ID)
	s.ErrorIs(err, model.ErrGameNotFound)

	_, err = s.storage.GetGameByCode(s.ctx, "ABC123")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestTimestampsSurviveRoundtrip() {
	game := s.newGame("ABC123")
	_ = game.Activate(s.now)
	started := s.now.Add(time.Minute)
	_ = game.Start(started)
	_ = s.storage.SaveGame(s.ctx, game)

	retrieved, err := s.storage.GetGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Require().NotNil(retrieved.StartedOn)
	s.True(retrieved.StartedOn.Equal(started))
	s.Nil(retrieved.FinishedOn)
}

// State slot tests

func (s *StorageSuite) TestAcquireStateSlot() {
	acquired, err := s.storage.AcquireStateSlot(s.ctx, storage.SlotNew, uuid.New())
	s.Require().NoError(err)
	s.True(acquired)
}

func (s *StorageSuite) TestAcquireStateSlotIsIdempotentForHolder() {
	id := uuid.New()
	_, _ = s.storage.AcquireStateSlot(s.ctx, storage.SlotNew, id)

	acquired, err := s.storage.AcquireStateSlot(s.ctx, storage.SlotNew, id)
	s.Require().NoError(err)
	s.True(acquired)
}

func (s *StorageSuite) TestAcquireStateSlotRefusedWhileHeld() {
	holder := s.newGame("ABC123")
	_ = s.storage.SaveGame(s.ctx, holder)
	_, _ = s.storage.AcquireStateSlot(s.ctx, storage.SlotNew, holder.ID)

	acquired, err := s.storage.AcquireStateSlot(s.ctx, storage.SlotNew, uuid.New())
	s.Require().NoError(err)
	s.False(acquired)
}

func (s *StorageSuite) TestAcquireStateSlotReclaimsStaleHolder() {
	holder := s.newGame("ABC123")
	_ = s.storage.SaveGame(s.ctx, holder)
	_, _ = s.storage.AcquireStateSlot(s.ctx, storage.SlotNew, holder.ID)

	// Holder left the slot's states without the slot being released
	_ = holder.Cancel(s.now)
	_ = s.storage.SaveGame(s.ctx, holder)

	newcomer := uuid.New()
	acquired, err := s.storage.AcquireStateSlot(s.ctx, storage.SlotNew, newcomer)
	s.Require().NoError(err)
	s.True(acquired)
}

func (s *StorageSuite) TestAcquireStateSlotReclaimsDeletedHolder() {
	id := uuid.New()
	_, _ = s.storage.AcquireStateSlot(s.ctx, storage.SlotActive, id)

	// No game record exists for the holder at all
	acquired, err := s.storage.AcquireStateSlot(s.ctx, storage.SlotActive, uuid.New())
	s.Require().NoError(err)
	s.True(acquired)
}

func (s *StorageSuite) TestReclaimSwapsOnlyFromObservedHolder() {
	key := slotKey(storage.SlotNew)
	s.Require().NoError(s.mini.Set(key, "observed-holder"))

	// The slot moved on since the claimant looked; the swap must lose
	res, err := reclaimScript.Run(s.ctx, s.storage.client, []string{key}, "someone-else", "claimant").Int()
	s.Require().NoError(err)
	s.Equal(0, res)
	got, err := s.mini.Get(key)
	s.Require().NoError(err)
	s.Equal("observed-holder", got)

	res, err = reclaimScript.Run(s.ctx, s.storage.client, []string{key}, "observed-holder", "claimant").Int()
	s.Require().NoError(err)
	s.Equal(1, res)
	got, err = s.mini.Get(key)
	s.Require().NoError(err)
	s.Equal("claimant", got)
}

func (s *StorageSuite) TestReclaimedSlotRefusedToNextClaimant() {
	stale := s.newGame("ABC123")
	_ = s.storage.SaveGame(s.ctx, stale)
	_, _ = s.storage.AcquireStateSlot(s.ctx, storage.SlotNew, stale.ID)
	_ = stale.Cancel(s.now)
	_ = s.storage.SaveGame(s.ctx, stale)

	winner := s.newGame("DEF456")
	_ = s.storage.SaveGame(s.ctx, winner)
	acquired, err := s.storage.AcquireStateSlot(s.ctx, storage.SlotNew, winner.ID)
	s.Require().NoError(err)
	s.True(acquired)

	acquired, err = s.storage.AcquireStateSlot(s.ctx, storage.SlotNew, uuid.New())
	s.Require().NoError(err)
	s.False(acquired)
}

func (s *StorageSuite) TestReleaseStateSlot() {
	id := uuid.New()
	_, _ = s.storage.AcquireStateSlot(s.ctx, storage.SlotActive, id)

	err := s.storage.ReleaseStateSlot(s.ctx, storage.SlotActive, id)
	s.Require().NoError(err)

	acquired, err := s.storage.AcquireStateSlot(s.ctx, storage.SlotActive, uuid.New())
	s.Require().NoError(err)
	s.True(acquired)
}

func (s *StorageSuite) TestReleaseStateSlotByNonHolderIsNoOp() {
	holder := s.newGame("ABC123")
	_ = s.storage.SaveGame(s.ctx, holder)
	_, _ = s.storage.AcquireStateSlot(s.ctx, storage.SlotNew, holder.ID)

	err := s.storage.ReleaseStateSlot(s.ctx, storage.SlotNew, uuid.New())
	s.Require().NoError(err)

	acquired, _ := s.storage.AcquireStateSlot(s.ctx, storage.SlotNew, uuid.New())
	s.False(acquired)
}

func (s *StorageSuite) TestReleaseUnheldSlotIsNoOp() {
	err := s.storage.ReleaseStateSlot(s.ctx, storage.SlotNew, uuid.New())
	s.Require().NoError(err)
}

// State query tests

func (s *StorageSuite) TestGetGameInStateEmpty() {
	game, err := s.storage.GetGameInState(s.ctx, model.GameStateNew)
	s.Require().NoError(err)
	s.Nil(game)
}

func (s *StorageSuite) TestGetGameInStateReturnsHolder() {
	game := s.newGame("ABC123")
	_ = s.storage.SaveGame(s.ctx, game)
	_, _ = s.storage.AcquireStateSlot(s.ctx, storage.SlotNew, game.ID)

	found, err := s.storage.GetGameInState(s.ctx, model.GameStateNew)
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal(game.ID, found.ID)
}

func (s *StorageSuite) TestGetGameInStateIgnoresStaleHolder() {
	game := s.newGame("ABC123")
	_ = s.storage.SaveGame(s.ctx, game)
	_, _ = s.storage.AcquireStateSlot(s.ctx, storage.SlotNew, game.ID)

	_ = game.Cancel(s.now)
	_ = s.storage.SaveGame(s.ctx, game)

	found, err := s.storage.GetGameInState(s.ctx, model.GameStateNew)
	s.Require().NoError(err)
	s.Nil(found)
}

func (s *StorageSuite) TestGetGameInStateCoversActiveStates() {
	game := s.newGame("ABC123")
	_ = game.Activate(s.now)
	_ = game.Start(s.now)
	_ = s.storage.SaveGame(s.ctx, game)
	_, _ = s.storage.AcquireStateSlot(s.ctx, storage.SlotActive, game.ID)

	found, err := s.storage.GetGameInState(s.ctx, model.GameStateCurrent)
	s.Require().NoError(err)
	s.Nil(found)

	found, err = s.storage.GetGameInState(s.ctx, model.GameStateCurrent, model.GameStateStarted)
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal(game.ID, found.ID)
}

func (s *StorageSuite) TestHasGameInState() {
	has, err := s.storage.HasGameInState(s.ctx, model.GameStateCurrent, model.GameStateStarted)
	s.Require().NoError(err)
	s.False(has)

	game := s.newGame("ABC123")
	_ = game.Activate(s.now)
	_ = s.storage.SaveGame(s.ctx, game)
	_, _ = s.storage.AcquireStateSlot(s.ctx, storage.SlotActive, game.ID)

	has, err = s.storage.HasGameInState(s.ctx, model.GameStateCurrent, model.GameStateStarted)
	s.Require().NoError(err)
	s.True(has)
}
