package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/xiangqi-backend/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type boardReader interface {
	Snapshot() entity.Snapshot
	Elapsed() time.Duration
	Participants() int
}

type playerService interface {
	Register(ctx context.Context, name string) (*entity.Player, error)
	LookupPlayer(ctx context.Context, name string) (*entity.Player, error)
	Leaderboard(ctx context.Context, limit int) ([]*entity.Player, error)
	History(ctx context.Context, name string, limit int) ([]*entity.GameRecord, error)
}

// Server - read-mostly HTTP API next to the game socket.
type Server struct {
	logger *slog.Logger
	router *chi.Mux

	board   boardReader
	players playerService
}

func New(logger *slog.Logger, board boardReader, players playerService) *Server {
	server := &Server{
		logger:  logger.With("component", "rest"),
		router:  chi.NewRouter(),
		board:   board,
		players: players,
	}

	server.router.Use(chimw.RequestID)
	server.router.Use(chimw.RealIP)
	server.router.Use(chimw.Recoverer)
	server.router.Use(chimw.Timeout(10 * time.Second))

	server.router.Get("/ping", NewPingHandler().PingHandler)
	server.router.Get("/board", server.handleBoard)
	server.router.Get("/leaderboard", server.handleLeaderboard)

	server.router.Route("/players", func(r chi.Router) {
		r.Post("/", server.handleRegister)
		r.Get("/{name}", server.handleGetPlayer)
		r.Get("/{name}/games", server.handleHistory)
	})

	server.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	return server
}

func (that *Server) Router() http.Handler {
	return that.router
}

// Start - serves HTTP until ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down HTTP server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
