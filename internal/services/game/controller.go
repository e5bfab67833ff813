package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/wam-arcade/games-service/internal/cache"
	"github.com/wam-arcade/games-service/internal/dependencies/clock"
	"github.com/wam-arcade/games-service/internal/dependencies/random"
	"github.com/wam-arcade/games-service/internal/model"
	"github.com/wam-arcade/games-service/internal/pubsub"
	"github.com/wam-arcade/games-service/internal/services/users"
	"github.com/wam-arcade/games-service/internal/services/vouchers"
	"github.com/wam-arcade/games-service/internal/storage"
)

// asyncTimeout bounds detached side-effect work (cache refresh,
// event publish, directory notify)
const asyncTimeout = 5 * time.Second

// voucherPattern is the syntactic gate applied before a remote claim
var voucherPattern = regexp.MustCompile(`^[\w-]{6,32}$`)

// ConfigProvider supplies the orchestrator's per-call configuration
// snapshots
type ConfigProvider interface {
	Admission() model.AdmissionConfig
	CacheTTL() time.Duration
}

// Controller orchestrates the game lifecycle: it loads aggregates,
// invokes their pure transitions, persists them, and issues the
// best-effort cache and broadcast side effects. The store is the
// single source of truth; the singleton slots in the store make the
// one-new-game and one-active-game invariants hold under concurrent
// calls.
type Controller struct {
	storage   storage.Storage
	cache     cache.Client
	publisher pubsub.Publisher
	users     users.Service
	vouchers  vouchers.Service
	config    ConfigProvider
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger

	// runAsync schedules detached side-effect work; tests replace it
	// to run effects inline
	runAsync func(fn func())
}

// NewController creates a new game Controller
func NewController(
	store storage.Storage,
	cacheClient cache.Client,
	publisher pubsub.Publisher,
	usersService users.Service,
	vouchersService vouchers.Service,
	config ConfigProvider,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:   store,
		cache:     cacheClient,
		publisher: publisher,
		users:     usersService,
		vouchers:  vouchersService,
		config:    config,
		clock:     clk,
		random:    rnd,
		logger:    logger.With(slog.String("component", "games")),
		runAsync:  func(fn func()) { go fn() },
	}
}

// Create creates the next pending game. At most one game may be in
// the new state system-wide; the new-game slot is claimed with a
// conditional write before anything is persisted.
func (c *Controller) Create(ctx context.Context) (*model.GameDetails, error) {
	c.logger.Info("creating new game")

	id := uuid.New()

	acquired, err := c.storage.AcquireStateSlot(ctx, storage.SlotNew, id)
	if err != nil {
		return nil, fmt.Errorf("claiming new-game slot: %w", err)
	}
	if !acquired {
		return nil, model.ErrNewGameAlreadyExists
	}

	code, err := c.generateCode(ctx)
	if err != nil {
		_ = c.storage.ReleaseStateSlot(ctx, storage.SlotNew, id)
		return nil, err
	}

	game := model.NewGame(id, code, c.config.Admission().Capacity(), c.clock.Now())

	details, err := c.saveAndProject(ctx, game)
	if err != nil {
		_ = c.storage.ReleaseStateSlot(ctx, storage.SlotNew, id)
		return nil, err
	}

	c.publish(ctx, model.DashboardGroup, model.EventNewGameCreated, model.NewStateChangedPayload(game))

	c.logger.Info("game created",
		slog.String("game_id", id.String()),
		slog.String("code", code))
	return details, nil
}

// generateCode produces a game code not used by any stored game
func (c *Controller) generateCode(ctx context.Context) (string, error) {
	for {
		code := c.random.String(model.GameCodeLength, model.GameCodeAlphabet)
		_, err := c.storage.GetGameByCode(ctx, code)
		if errors.Is(err, model.ErrGameNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
}

// Get returns a game projection by id using the cache-aside pattern
func (c *Controller) Get(ctx context.Context, id uuid.UUID) (*model.GameDetails, error) {
	var cached model.GameDetails
	if hit, err := c.cache.Get(ctx, cache.GameByID(id), &cached); err == nil && hit {
		return &cached, nil
	}

	game, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}

	details := game.Details()
	c.updateCache(ctx, details)
	return details, nil
}

// GetByCode returns a game projection by code using the cache-aside
// pattern
func (c *Controller) GetByCode(ctx context.Context, code string) (*model.GameDetails, error) {
	code, err := model.ValidateGameCode(code)
	if err != nil {
		return nil, err
	}

	var cached model.GameDetails
	if hit, err := c.cache.Get(ctx, cache.GameByCode(code), &cached); err == nil && hit {
		return &cached, nil
	}

	game, err := c.storage.GetGameByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	details := game.Details()
	c.updateCache(ctx, details)
	return details, nil
}

// GetUpcoming returns the single pending game, or nil when there is
// none. Absence is not an error.
func (c *Controller) GetUpcoming(ctx context.Context) (*model.GameDetails, error) {
	game, err := c.storage.GetGameInState(ctx, model.GameStateNew)
	if err != nil {
		return nil, err
	}
	if game == nil {
		c.logger.Info("no upcoming game found")
		return nil, nil
	}

	details := game.Details()
	c.updateCache(ctx, details)
	return details, nil
}

// GetActive returns the single active game, or nil when there is none
func (c *Controller) GetActive(ctx context.Context) (*model.GameDetails, error) {
	game, err := c.storage.GetGameInState(ctx, model.GameStateCurrent, model.GameStateStarted)
	if err != nil {
		return nil, err
	}
	if game == nil {
		c.logger.Info("no active game found")
		return nil, nil
	}

	details := game.Details()
	c.updateCache(ctx, details)
	return details, nil
}

// Join admits a user into the game with the given code. Joining twice
// is an idempotent no-op. The admission decision runs capacity, the
// directory lookup, and (when enabled) the voucher claim, in that
// order; remote failures surface as domain errors, never as transport
// errors.
func (c *Controller) Join(ctx context.Context, code string, userID uuid.UUID, voucher string) (*model.GameDetails, error) {
	code, err := model.ValidateGameCode(code)
	if err != nil {
		return nil, err
	}

	c.logger.Info("joining game",
		slog.String("code", code),
		slog.String("user_id", userID.String()))

	game, err := c.storage.GetGameByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if game.HasPlayer(userID) {
		c.logger.Info("user already part of game, doing nothing",
			slog.String("code", code),
			slog.String("user_id", userID.String()))
		return game.Details(), nil
	}

	admission := c.config.Admission()

	// Capacity follows the admission-time snapshot, not the value the
	// game was created with. Checked before the remote calls so a full
	// or started game never consumes a voucher.
	game.Capacity = admission.Capacity()
	if err := game.CanAdmit(); err != nil {
		return nil, err
	}

	details, err := c.users.GetPlayerDetails(ctx, userID)
	if err != nil {
		c.logger.Error("player directory lookup failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, model.ErrPlayerNotFound
	}
	if details == nil {
		return nil, model.ErrPlayerNotFound
	}

	player := model.Player{
		ID:           details.ID,
		DisplayName:  details.DisplayName,
		EmailAddress: details.EmailAddress,
		// Directory-excluded users are tracked but never projected
		IsBanned: details.IsExcluded,
	}

	if admission.VouchersEnabled {
		if !voucherPattern.MatchString(voucher) {
			return nil, model.ErrInvalidGameVoucher
		}
		claimed, err := c.vouchers.Claim(ctx, userID, voucher)
		if err != nil {
			c.logger.Error("voucher claim failed",
				slog.String("user_id", userID.String()),
				slog.String("error", err.Error()))
			return nil, model.ErrInvalidGameVoucher
		}
		if !claimed {
			return nil, model.ErrInvalidGameVoucher
		}
		player.SetVoucher(voucher)
	}

	if err := game.AddPlayer(player); err != nil {
		return nil, err
	}

	projection, err := c.saveAndProject(ctx, game)
	if err != nil {
		return nil, err
	}

	c.publish(ctx, game.Code, model.EventGamePlayerAdded, model.PlayerAddedPayload{
		Code:         game.Code,
		PlayerID:     player.ID,
		DisplayName:  player.DisplayName,
		EmailAddress: player.EmailAddress,
	})

	return projection, nil
}

// Leave removes a player from a game's roster. Leaving a game the
// player is not part of is a no-op.
func (c *Controller) Leave(ctx context.Context, gameID, playerID uuid.UUID) (*model.GameDetails, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	// Idempotent: a missing member is not an error for leave
	_ = game.RemovePlayer(playerID)

	details, err := c.saveAndProject(ctx, game)
	if err != nil {
		return nil, err
	}

	c.publish(ctx, game.Code, model.EventGamePlayerRemoved, model.PlayerRemovedPayload{
		Code:     game.Code,
		PlayerID: playerID,
	})

	return details, nil
}

// DeletePlayer soft-removes a player by banning them: the entry stays
// in the roster but disappears from every projection. The directory
// ban notification and the removal broadcast are best-effort; their
// failure never fails the operation.
func (c *Controller) DeletePlayer(ctx context.Context, gameID, playerID uuid.UUID) (*model.GameDetails, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	_ = game.BanPlayer(playerID)

	details, err := c.saveAndProject(ctx, game)
	if err != nil {
		return nil, err
	}

	c.fireAndForget(ctx, "directory ban notify", func(ctx context.Context) error {
		return c.users.BanUser(ctx, playerID)
	})
	c.publish(ctx, game.Code, model.EventGamePlayerRemoved, model.PlayerRemovedPayload{
		Code:     game.Code,
		PlayerID: playerID,
	})

	return details, nil
}

// Activate transitions the target game from new to current. At most
// one game may be active system-wide; the active slot is claimed with
// a conditional write before the transition is attempted.
func (c *Controller) Activate(ctx context.Context, gameID uuid.UUID) (*model.GameDetails, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	// Checked before the slot claim: a retried activate on a game that
	// already holds the active slot must not release it on the error
	// path below
	if game.State != model.GameStateNew {
		return nil, model.ErrInvalidState
	}

	acquired, err := c.storage.AcquireStateSlot(ctx, storage.SlotActive, gameID)
	if err != nil {
		return nil, fmt.Errorf("claiming active-game slot: %w", err)
	}
	if !acquired {
		return nil, model.ErrActiveGameAlreadyExists
	}

	if err := game.Activate(c.clock.Now()); err != nil {
		_ = c.storage.ReleaseStateSlot(ctx, storage.SlotActive, gameID)
		return nil, err
	}

	details, err := c.saveAndProject(ctx, game)
	if err != nil {
		_ = c.storage.ReleaseStateSlot(ctx, storage.SlotActive, gameID)
		return nil, err
	}

	if err := c.storage.ReleaseStateSlot(ctx, storage.SlotNew, gameID); err != nil {
		// The slot self-heals on the next claim; just record it
		c.logger.Warn("failed to release new-game slot",
			slog.String("game_id", gameID.String()),
			slog.String("error", err.Error()))
	}

	c.publish(ctx, game.Code, model.EventGameStateChanged, model.NewStateChangedPayload(game))
	c.publish(ctx, model.DashboardGroup, model.EventGameBecameActive, model.NewStateChangedPayload(game))

	c.logger.Info("game activated", slog.String("game_id", gameID.String()))
	return details, nil
}

// Start transitions the active game from current to started
func (c *Controller) Start(ctx context.Context, gameID uuid.UUID) (*model.GameDetails, error) {
	return c.transition(ctx, gameID, (*model.Game).Start)
}

// Finish completes a started game
func (c *Controller) Finish(ctx context.Context, gameID uuid.UUID) (*model.GameDetails, error) {
	return c.transition(ctx, gameID, (*model.Game).Finish)
}

// Cancel abandons a game from any non-terminal state
func (c *Controller) Cancel(ctx context.Context, gameID uuid.UUID) (*model.GameDetails, error) {
	return c.transition(ctx, gameID, (*model.Game).Cancel)
}

// transition applies a state-machine edge, persists the aggregate,
// releases any singleton slot the game no longer occupies, and
// broadcasts the change
func (c *Controller) transition(ctx context.Context, gameID uuid.UUID, apply func(*model.Game, time.Time) error) (*model.GameDetails, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	prevSlot, hadSlot := storage.SlotForState(game.State)

	if err := apply(game, c.clock.Now()); err != nil {
		return nil, err
	}

	details, err := c.saveAndProject(ctx, game)
	if err != nil {
		return nil, err
	}

	// Free the slot the game held before a transition into a terminal
	// state; activate->start keeps the active slot
	newSlot, hasSlot := storage.SlotForState(game.State)
	if hadSlot && (!hasSlot || newSlot != prevSlot) {
		if err := c.storage.ReleaseStateSlot(ctx, prevSlot, gameID); err != nil {
			c.logger.Warn("failed to release state slot",
				slog.String("slot", string(prevSlot)),
				slog.String("game_id", gameID.String()),
				slog.String("error", err.Error()))
		}
	}

	c.publish(ctx, game.Code, model.EventGameStateChanged, model.NewStateChangedPayload(game))

	c.logger.Info("game state changed",
		slog.String("game_id", gameID.String()),
		slog.String("state", string(game.State)))
	return details, nil
}

// GetConfiguration returns the current admission feature toggles
func (c *Controller) GetConfiguration(ctx context.Context) model.AdmissionConfig {
	return c.config.Admission()
}

// saveAndProject persists the aggregate and returns its projection.
// A failed save fails the operation; the cache refresh that follows
// is best-effort.
func (c *Controller) saveAndProject(ctx context.Context, game *model.Game) (*model.GameDetails, error) {
	if err := c.storage.SaveGame(ctx, game); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", game.ID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("saving game %s: %w", game.ID, err)
	}

	details := game.Details()
	c.updateCache(ctx, details)
	return details, nil
}

// updateCache refreshes the projection under both cache keys,
// fire-and-forget
func (c *Controller) updateCache(ctx context.Context, details *model.GameDetails) {
	ttl := c.config.CacheTTL()
	c.fireAndForget(ctx, "cache update", func(ctx context.Context) error {
		if err := c.cache.Set(ctx, cache.GameByID(details.ID), details, ttl); err != nil {
			return err
		}
		return c.cache.Set(ctx, cache.GameByCode(details.Code), details, ttl)
	})
}

// publish broadcasts an event envelope to a group, fire-and-forget
func (c *Controller) publish(ctx context.Context, group string, kind model.EventKind, payload any) {
	c.fireAndForget(ctx, "publish "+string(kind), func(ctx context.Context) error {
		return c.publisher.SendToGroup(ctx, group, pubsub.Envelope{Kind: kind, Payload: payload})
	})
}

// fireAndForget runs fn detached from the caller with its own error
// boundary. Failures are logged and never reach the caller; a
// cancelled caller loses the effect but never the persisted state.
func (c *Controller) fireAndForget(ctx context.Context, name string, fn func(ctx context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	c.runAsync(func() {
		ctx, cancel := context.WithTimeout(ctx, asyncTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			c.logger.Error("background side effect failed",
				slog.String("side_effect", name),
				slog.String("error", err.Error()))
		}
	})
}

// ControllerInterface is the orchestrator surface consumed by the API
// and CLI layers
type ControllerInterface interface {
	Create(ctx context.Context) (*model.GameDetails, error)
	Get(ctx context.Context, id uuid.UUID) (*model.GameDetails, error)
	GetByCode(ctx context.Context, code string) (*model.GameDetails, error)
	GetUpcoming(ctx context.Context) (*model.GameDetails, error)
	GetActive(ctx context.Context) (*model.GameDetails, error)
	Join(ctx context.Context, code string, userID uuid.UUID, voucher string) (*model.GameDetails, error)
	Leave(ctx context.Context, gameID, playerID uuid.UUID) (*model.GameDetails, error)
	DeletePlayer(ctx context.Context, gameID, playerID uuid.UUID) (*model.GameDetails, error)
	Activate(ctx context.Context, gameID uuid.UUID) (*model.GameDetails, error)
	Start(ctx context.Context, gameID uuid.UUID) (*model.GameDetails, error)
	Finish(ctx context.Context, gameID uuid.UUID) (*model.GameDetails, error)
	Cancel(ctx context.Context, gameID uuid.UUID) (*model.GameDetails, error)
	GetConfiguration(ctx context.Context) model.AdmissionConfig
}

var _ ControllerInterface = (*Controller)(nil)
