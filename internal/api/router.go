package api

import (
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/go-chi/chi/v5"

	"github.com/voicescore/voicescore/internal/api/handler"
	"github.com/voicescore/voicescore/internal/api/middleware"
	"github.com/voicescore/voicescore/internal/auth"
	"github.com/voicescore/voicescore/internal/command"
	"github.com/voicescore/voicescore/internal/ledger"
	"github.com/voicescore/voicescore/internal/stream"
	"github.com/voicescore/voicescore/internal/team"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	DBPinger        handler.DBPinger
	Version         string
	AuthService     *auth.Service
	TeamRepo        team.Repository
	TeamService     *team.Service
	Interpreter     *command.Interpreter
	Ledger          *ledger.Ledger
	Broadcaster     *stream.Broadcaster
	TelegramBotName string
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	authHandler := handler.NewAuthHandler(deps.AuthService, deps.TelegramBotName)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/anonymous", authHandler.SignInAnonymous)
		r.Post("/telegram", authHandler.SignInTelegram)
		r.Get("/telegram/qr", authHandler.TelegramQR)
	})

	teamHandler := handler.NewTeamHandler(deps.TeamRepo, deps.TeamService, deps.Broadcaster)
	commandHandler := handler.NewCommandHandler(deps.Interpreter, deps.Ledger, deps.Broadcaster)
	streamHandler := handler.NewStreamHandler(deps.TeamRepo, deps.Broadcaster)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(deps.AuthService))

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", teamHandler.List)
			r.Post("/", teamHandler.Create)
			r.Get("/stream", streamHandler.Serve)
			r.Delete("/inactive", teamHandler.CleanupInactive)
			r.Post("/{id}/points", teamHandler.AdjustPoints)
			r.Post("/{id}/reset", teamHandler.ResetPoints)
		})

		r.Post("/commands", commandHandler.Submit)
	})

	return r
}
