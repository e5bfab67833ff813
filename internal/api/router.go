package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wam-arcade/games-service/internal/api/handler"
	"github.com/wam-arcade/games-service/internal/api/middleware"
	"github.com/wam-arcade/games-service/internal/pubsub"
	"github.com/wam-arcade/games-service/internal/services/game"
)

// RouterConfig holds the dependencies for the API router
type RouterConfig struct {
	Logger     *slog.Logger
	Controller game.ControllerInterface
	HubManager *pubsub.HubManager
}

// NewRouter builds the API router with all routes and middleware
func NewRouter(cfg RouterConfig) http.Handler {
	games := handler.NewGames(cfg.Controller, cfg.Logger)

	r := mux.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", handler.Health).Methods(http.MethodGet)
	api.HandleFunc("/configuration", games.GetConfiguration).Methods(http.MethodGet)

	api.HandleFunc("/games", games.Create).Methods(http.MethodPost)
	api.HandleFunc("/games/next", games.GetUpcoming).Methods(http.MethodGet)
	api.HandleFunc("/games/active", games.GetActive).Methods(http.MethodGet)
	api.HandleFunc("/games/code/{code}", games.GetByCode).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}", games.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/games/{code}/join", games.Join).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/leave", games.Leave).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/players/{playerId}", games.DeletePlayer).Methods(http.MethodDelete)
	api.HandleFunc("/games/{id}/activate", games.Activate).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/start", games.Start).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/finish", games.Finish).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/cancel", games.Cancel).Methods(http.MethodPost)

	// Realtime subscriptions; the group is a game code or "dashboard"
	api.HandleFunc("/events/{group}", func(w http.ResponseWriter, r *http.Request) {
		cfg.HubManager.ServeWS(w, r, mux.Vars(r)["group"])
	}).Methods(http.MethodGet)

	return r
}
