package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type GameSuite struct {
	suite.Suite
	now time.Time
}

func TestGameSuite(t *testing.T) {
	suite.Run(t, new(GameSuite))
}

func (s *GameSuite) SetupTest() {
	s.now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *GameSuite) newGame() *Game {
	return NewGame(uuid.New(), "ABC123", DefaultMaxPlayers, s.now)
}

func (s *GameSuite) player() Player {
	return Player{ID: uuid.New(), DisplayName: "Alice", EmailAddress: "alice@example.com"}
}

// Construction

func (s *GameSuite) TestNewGameStartsEmpty() {
	game := s.newGame()

	s.Equal(GameStateNew, game.State)
	s.Equal("ABC123", game.Code)
	s.Equal(s.now, game.CreatedOn)
	s.Nil(game.StartedOn)
	s.Nil(game.FinishedOn)
	s.Empty(game.Players)
	s.Equal(DefaultMaxPlayers, game.Capacity)
}

// Code validation

func (s *GameSuite) TestValidateGameCodeNormalizes() {
	code, err := ValidateGameCode("  abc123 ")
	s.Require().NoError(err)
	s.Equal("ABC123", code)
}

func (s *GameSuite) TestValidateGameCodeAcceptsLongCodes() {
	code, err := ValidateGameCode("ABCD1234")
	s.Require().NoError(err)
	s.Equal("ABCD1234", code)
}

func (s *GameSuite) TestValidateGameCodeRejectsBadInput() {
	for _, code := range []string{"", "ABC", "ABC12", "ABCD12345", "ABC-12", "abc 123"} {
		_, err := ValidateGameCode(code)
		s.ErrorIs(err, ErrInvalidGameCode, "code %q", code)
	}
}

// State machine

func (s *GameSuite) TestFullLifecycle() {
	game := s.newGame()

	s.Require().NoError(game.Activate(s.now))
	s.Equal(GameStateCurrent, game.State)

	started := s.now.Add(time.Minute)
	s.Require().NoError(game.Start(started))
	s.Equal(GameStateStarted, game.State)
	s.Require().NotNil(game.StartedOn)
	s.Equal(started, *game.StartedOn)
	s.Nil(game.FinishedOn)

	finished := s.now.Add(2 * time.Minute)
	s.Require().NoError(game.Finish(finished))
	s.Equal(GameStateFinished, game.State)
	s.Require().NotNil(game.FinishedOn)
	s.Equal(finished, *game.FinishedOn)
	s.Equal(started, *game.StartedOn)
}

func (s *GameSuite) TestTransitionTable() {
	cases := []struct {
		from    GameState
		to      GameState
		allowed bool
	}{
		{GameStateNew, GameStateCurrent, true},
		{GameStateNew, GameStateCancelled, true},
		{GameStateNew, GameStateStarted, false},
		{GameStateNew, GameStateFinished, false},
		{GameStateCurrent, GameStateStarted, true},
		{GameStateCurrent, GameStateCancelled, true},
		{GameStateCurrent, GameStateFinished, false},
		{GameStateCurrent, GameStateNew, false},
		{GameStateStarted, GameStateFinished, true},
		{GameStateStarted, GameStateCancelled, true},
		{GameStateStarted, GameStateCurrent, false},
		{GameStateFinished, GameStateCancelled, false},
		{GameStateFinished, GameStateCurrent, false},
		{GameStateCancelled, GameStateCurrent, false},
		{GameStateCancelled, GameStateFinished, false},
	}

	for _, tc := range cases {
		s.Equal(tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func (s *GameSuite) TestIllegalTransitionLeavesGameUntouched() {
	game := s.newGame()

	err := game.Start(s.now)
	s.ErrorIs(err, ErrInvalidState)
	s.Equal(GameStateNew, game.State)
	s.Nil(game.StartedOn)
}

func (s *GameSuite) TestCancelFromEveryNonTerminalState() {
	for _, setup := range []func(g *Game){
		func(g *Game) {},
		func(g *Game) { _ = g.Activate(s.now) },
		func(g *Game) { _ = g.Activate(s.now); _ = g.Start(s.now) },
	} {
		game := s.newGame()
		setup(game)

		cancelled := s.now.Add(time.Hour)
		s.Require().NoError(game.Cancel(cancelled))
		s.Equal(GameStateCancelled, game.State)
		s.Require().NotNil(game.FinishedOn)
		s.Equal(cancelled, *game.FinishedOn)
	}
}

func (s *GameSuite) TestCancelFromTerminalStateFails() {
	game := s.newGame()
	_ = game.Cancel(s.now)

	s.ErrorIs(game.Cancel(s.now), ErrInvalidState)
}

func (s *GameSuite) TestFinishDoesNotTouchStartedOn() {
	game := s.newGame()
	_ = game.Activate(s.now)
	started := s.now.Add(time.Minute)
	_ = game.Start(started)

	s.Require().NoError(game.Finish(s.now.Add(time.Hour)))
	s.Equal(started, *game.StartedOn)
}

func (s *GameSuite) TestIsActive() {
	s.False(GameStateNew.IsActive())
	s.True(GameStateCurrent.IsActive())
	s.True(GameStateStarted.IsActive())
	s.False(GameStateFinished.IsActive())
	s.False(GameStateCancelled.IsActive())
}

// Roster

func (s *GameSuite) TestAddPlayerInNewGame() {
	game := s.newGame()
	player := s.player()

	s.Require().NoError(game.AddPlayer(player))
	s.True(game.HasPlayer(player.ID))
	s.Len(game.Players, 1)
}

func (s *GameSuite) TestAddPlayerInCurrentGame() {
	game := s.newGame()
	_ = game.Activate(s.now)

	s.Require().NoError(game.AddPlayer(s.player()))
}

func (s *GameSuite) TestAddPlayerRejectedAfterStart() {
	game := s.newGame()
	_ = game.Activate(s.now)
	_ = game.Start(s.now)

	s.ErrorIs(game.AddPlayer(s.player()), ErrInvalidState)
}

func (s *GameSuite) TestAddPlayerRejectedWhenFull() {
	game := NewGame(uuid.New(), "ABC123", 2, s.now)
	s.Require().NoError(game.AddPlayer(s.player()))
	s.Require().NoError(game.AddPlayer(s.player()))

	s.ErrorIs(game.AddPlayer(s.player()), ErrGameIsFull)
	s.Len(game.Players, 2)
}

func (s *GameSuite) TestAddPlayerAtDefaultCapacityBoundary() {
	game := s.newGame()
	for i := 0; i < DefaultMaxPlayers; i++ {
		s.Require().NoError(game.AddPlayer(s.player()))
	}

	s.ErrorIs(game.AddPlayer(s.player()), ErrGameIsFull)
}

func (s *GameSuite) TestAddPlayerUnboundedWhenCapacityZero() {
	game := NewGame(uuid.New(), "ABC123", 0, s.now)
	for i := 0; i < DefaultMaxPlayers+5; i++ {
		s.Require().NoError(game.AddPlayer(s.player()))
	}
}

func (s *GameSuite) TestAddPlayerRejectsDuplicate() {
	game := s.newGame()
	player := s.player()
	s.Require().NoError(game.AddPlayer(player))

	s.ErrorIs(game.AddPlayer(player), ErrInvalidPlayer)
	s.Len(game.Players, 1)
}

func (s *GameSuite) TestCapacityCheckedBeforeDuplicate() {
	// A returning member of a full game gets the full error, not the
	// duplicate one
	game := NewGame(uuid.New(), "ABC123", 1, s.now)
	player := s.player()
	s.Require().NoError(game.AddPlayer(player))

	s.ErrorIs(game.AddPlayer(player), ErrGameIsFull)
}

func (s *GameSuite) TestBannedPlayersCountTowardCapacity() {
	game := NewGame(uuid.New(), "ABC123", 1, s.now)
	player := s.player()
	s.Require().NoError(game.AddPlayer(player))
	s.Require().NoError(game.BanPlayer(player.ID))

	s.ErrorIs(game.AddPlayer(s.player()), ErrGameIsFull)
}

func (s *GameSuite) TestCanAdmit() {
	game := NewGame(uuid.New(), "ABC123", 1, s.now)
	s.Require().NoError(game.CanAdmit())

	s.Require().NoError(game.AddPlayer(s.player()))
	s.ErrorIs(game.CanAdmit(), ErrGameIsFull)

	started := s.newGame()
	_ = started.Activate(s.now)
	_ = started.Start(s.now)
	s.ErrorIs(started.CanAdmit(), ErrInvalidState)
}

func (s *GameSuite) TestRemovePlayer() {
	game := s.newGame()
	player := s.player()
	_ = game.AddPlayer(player)

	s.Require().NoError(game.RemovePlayer(player.ID))
	s.False(game.HasPlayer(player.ID))
}

func (s *GameSuite) TestRemovePlayerNotInRoster() {
	game := s.newGame()
	s.ErrorIs(game.RemovePlayer(uuid.New()), ErrInvalidPlayer)
}

func (s *GameSuite) TestBanPlayerKeepsRosterEntry() {
	game := s.newGame()
	player := s.player()
	_ = game.AddPlayer(player)

	s.Require().NoError(game.BanPlayer(player.ID))
	s.True(game.HasPlayer(player.ID))
	s.True(game.Player(player.ID).IsBanned)
}

func (s *GameSuite) TestBanPlayerNotInRoster() {
	game := s.newGame()
	s.ErrorIs(game.BanPlayer(uuid.New()), ErrInvalidPlayer)
}

// Projection

func (s *GameSuite) TestDetailsExcludesBannedPlayers() {
	game := s.newGame()
	kept := s.player()
	banned := s.player()
	_ = game.AddPlayer(kept)
	_ = game.AddPlayer(banned)
	_ = game.BanPlayer(banned.ID)

	details := game.Details()
	s.Require().Len(details.Players, 1)
	s.Equal(kept.ID, details.Players[0].ID)
	s.Equal(kept.DisplayName, details.Players[0].DisplayName)
}

func (s *GameSuite) TestDetailsEmptyRosterIsNotNil() {
	details := s.newGame().Details()
	s.NotNil(details.Players)
	s.Empty(details.Players)
}
