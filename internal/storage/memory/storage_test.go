package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/wam-arcade/games-service/internal/model"
	"github.com/wam-arcade/games-service/internal/storage"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
	now     time.Time
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
	s.now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *StorageSuite) newGame(code string) *model.Game {
	return model.NewGame(uuid.New(), code, model.DefaultMaxPlayers, s.now)
}

// Game tests

func (s *StorageSuite) TestSaveAndGetGame() {
	game := s.newGame("ABC123")
	game.Players = append(game.Players, model.Player{ID: uuid.New(), DisplayName: "Alice"})

	err := s.storage.SaveGame(s.ctx, game)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(game.ID, retrieved.ID)
	s.Equal(game.Code, retrieved.Code)
	s.Len(retrieved.Players, 1)
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

func (s *StorageSuite) TestGetGameReturnsCopy() {
	game := s.newGame("ABC123")
	_ = s.storage.SaveGame(s.ctx, game)

	first, _ := s.storage.GetGame(s.ctx, game.ID)
	first.Players = append(first.Players, model.Player{ID: uuid.New()})
	first.State = model.GameStateCancelled

	second, _ := s.storage.GetGame(s.ctx, game.ID)
	s.Empty(second.Players)
	s.Equal(model.GameStateNew, second.State)
}

func (s *StorageSuite) TestSaveGameOverwrites() {
	game := s.newGame("ABC123")
	_ = s.storage.SaveGame(s.ctx, game)

	game.State = model.GameStateCurrent
	_ = s.storage.SaveGame(s.ctx, game)

	retrieved, err := s.storage.GetGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(model.GameStateCurrent, retrieved.State)
}

// State slot tests

func (s *StorageSuite) TestAcquireStateSlot() {
	id := uuid.New()
	acquired, err := s.storage.AcquireStateSlot(s.ctx, storage.SlotNew, id)
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

	// Holder moves out of the slot's states without releasing
	_ = holder.Cancel(s.now)
	_ = s.storage.SaveGame(s.ctx, holder)

	acquired, err := s.storage.AcquireStateSlot(s.ctx, storage.SlotNew, uuid.New())
	s.Require().NoError(err)
	s.True(acquired)
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

func (s *StorageSuite) TestSlotsAreIndependent() {
	id := uuid.New()
	_, _ = s.storage.AcquireStateSlot(s.ctx, storage.SlotNew, id)

	acquired, err := s.storage.AcquireStateSlot(s.ctx, storage.SlotActive, uuid.New())
	s.Require().NoError(err)
	s.True(acquired)
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

func (s *StorageSuite) TestGetGameInStateMatchesOnlyRequestedStates() {
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
	has, err := s.storage.HasGameInState(s.ctx, model.GameStateNew)
	s.Require().NoError(err)
	s.False(has)

	game := s.newGame("ABC123")
	_ = s.storage.SaveGame(s.ctx, game)
	_, _ = s.storage.AcquireStateSlot(s.ctx, storage.SlotNew, game.ID)

	has, err = s.storage.HasGameInState(s.ctx, model.GameStateNew)
	s.Require().NoError(err)
	s.True(has)
}
