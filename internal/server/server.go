// Package server wires the router, handlers and store together and owns
// their lifecycle: the database is opened here, injected downward, and
// closed on shutdown. Nothing holds a global handle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/achowdhury/flashgen/internal/config"
	"github.com/achowdhury/flashgen/internal/generator"
	"github.com/achowdhury/flashgen/internal/handler"
	"github.com/achowdhury/flashgen/internal/middleware"
	sqliteRepo "github.com/achowdhury/flashgen/internal/repository/sqlite"
	"github.com/achowdhury/flashgen/internal/service"
)

// Server is the HTTP server and the dependencies it owns.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and assembles the dependency chain:
// store → service (with generator) → handler → routes.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes()

	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// The web client runs on a different origin.
	s.router.Use(cors.New(cors.Options{
		AllowedOrigins: strings.Split(s.cfg.CORSOrigins, ","),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler)

	gen := generator.NewOpenAIClient(s.cfg.OpenAI, s.logger)
	deckService := service.NewDeckService(s.db, gen, s.logger)
	deckHandler := handler.NewDeckHandler(deckService, s.logger)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/createUser", deckHandler.HandleCreateUser)
		r.Delete("/deleteUser", deckHandler.HandleDeleteUser)
		r.Post("/createDeck", deckHandler.HandleCreateDeck)
		r.Post("/generateDeck", deckHandler.HandleGenerateDeck)
		r.Get("/getUserDecks/{userID}", deckHandler.HandleGetUserDecks)
		r.Get("/getDeck/{userID}/{deckID}", deckHandler.HandleGetDeck)
		r.Post("/card/{userID}/{deckID}", deckHandler.HandleAddCard)
		r.Put("/card/{userID}/{deckID}/{cardIndex}", deckHandler.HandleEditCard)
		r.Delete("/card/{userID}/{deckID}/{cardIndex}", deckHandler.HandleDeleteCard)
		r.Delete("/deck/{userID}/{deckID}", deckHandler.HandleDeleteDeck)
	})
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests and
// closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * s.cfg.OpenAI.Timeout, // deck creation blocks on generation
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("database", s.cfg.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Shutdown)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
