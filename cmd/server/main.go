package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/pellmont/gridwar/internal/bot"
	"github.com/pellmont/gridwar/internal/config"
	"github.com/pellmont/gridwar/internal/handler"
	"github.com/pellmont/gridwar/internal/logger"
	"github.com/pellmont/gridwar/internal/mapfile"
	"github.com/pellmont/gridwar/internal/middleware"
	"github.com/pellmont/gridwar/internal/repository"
	"github.com/pellmont/gridwar/internal/repository/postgres"
	redisrepo "github.com/pellmont/gridwar/internal/repository/redis"
	"github.com/pellmont/gridwar/internal/service"
	"github.com/pellmont/gridwar/internal/session"
	"github.com/pellmont/gridwar/internal/tutorial"
	"github.com/pellmont/gridwar/pkg/gridwar"
)

func main() {
	envErr := godotenv.Load()
	logger.Init()
	if envErr != nil && !os.IsNotExist(envErr) {
		log.Warn().Err(envErr).Msg("Failed to load .env file")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	bot.ExternalEnginePath = os.Getenv("GBI_ENGINE_PATH")
	bot.NeuralModelPath = os.Getenv("NEURAL_MODEL_DIR")
	log.Info().
		Str("port", cfg.Port).
		Bool("tutorial", cfg.Tutorial).
		Str("gamelogDir", cfg.GameLogDir).
		Msg("Config loaded")

	// Map
	mapCfg, err := mapfile.LoadOrStandard(cfg.MapFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.MapFile).Msg("Map load failed")
	}

	// Database (optional; empty DATABASE_URL runs without the match archive)
	var archive repository.MatchArchive
	if cfg.DatabaseURL != "" {
		db, err := postgres.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Database connection failed")
		}
		defer db.Close()
		matchRepo := postgres.NewMatchRepo(db)
		if err := matchRepo.EnsureSchema(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("Database schema setup failed")
		}
		archive = matchRepo
	}

	// Redis (optional; empty REDIS_URL runs without the leaderboard)
	var board repository.Leaderboard
	if cfg.RedisURL != "" {
		redisClient, err := redisrepo.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		defer redisClient.Close()
		board = redisClient
	}

	// Services
	recordSvc := service.NewRecordService(cfg.GameLogDir, archive, board)
	statsSvc := service.NewStatsService(archive, board)

	// Session manager
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	params := session.Params{
		Config:       mapCfg,
		TurnTimeMs:   cfg.TurnTimeMs,
		FoodScarcity: cfg.FoodScarcity,
		MaxTurns:     cfg.MaxTurns,
		Seed:         cfg.GameSeed,
	}
	if cfg.Tutorial {
		// The scripted opponent attaches first and takes player1. It also
		// wins at the turn limit, so the human has MAX_TURNS turns to win.
		params.TutorialSide = gridwar.Player1
	}
	mgr := session.NewManager(ctx, params, recordSvc)
	if cfg.Tutorial {
		opponent := bot.StrategyForName(cfg.TutorialStrategy)
		tutorial.Install(mgr, opponent, "coach")
		log.Info().Str("strategy", opponent.Name()).Msg("Tutorial mode enabled")
	}

	// Handlers
	wsHandler := handler.NewWSHandler(mgr)
	statsHandler := handler.NewStatsHandler(statsSvc)

	// Router
	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Game socket
	mux.HandleFunc("GET /ws", wsHandler.ServeWS)

	// Stats API
	mux.HandleFunc("GET /api/leaderboard", statsHandler.Leaderboard)
	mux.HandleFunc("GET /api/callsigns/{callsign}", statsHandler.CallsignStats)
	mux.HandleFunc("GET /api/matches/recent", statsHandler.RecentMatches)
	mux.HandleFunc("GET /api/matches/{id}", statsHandler.MatchByID)

	// Apply global middleware
	root := middleware.Chain(mux, middleware.Logger, middleware.CORS("*"), middleware.JSON)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}
