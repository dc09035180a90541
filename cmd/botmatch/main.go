package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/pellmont/gridwar/internal/bot"
	"github.com/pellmont/gridwar/internal/mapfile"
	"github.com/pellmont/gridwar/internal/repository"
	"github.com/pellmont/gridwar/internal/repository/postgres"
	"github.com/pellmont/gridwar/internal/service"
	"github.com/pellmont/gridwar/internal/session"
	"github.com/pellmont/gridwar/pkg/gridwar"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var (
		matchup    string
		numGames   int
		workers    int
		dbURL      string
		gamelogDir string
		mapFile    string
		maxTurns   int
		scarcity   float64
		seed       int64
		enginePath string
		jsonOut    bool
	)

	flag.StringVar(&matchup, "matchup", "greedy-vs-greedy", "Strategy pairing (e.g. greedy-vs-hold); a single name plays itself")
	flag.IntVar(&numGames, "n", 1, "Number of games to run")
	flag.IntVar(&workers, "workers", 1, "Concurrency (parallel games)")
	flag.StringVar(&dbURL, "db", "", "Postgres URL for archive writes (or DATABASE_URL env); empty skips the archive")
	flag.StringVar(&gamelogDir, "gamelog-dir", "", "Directory for game log files; empty skips them")
	flag.StringVar(&mapFile, "map", "", "Map file (.arena or .json); empty uses the built-in map")
	flag.IntVar(&maxTurns, "max-turns", 200, "Max turns before the game is called")
	flag.Float64Var(&scarcity, "scarcity", 0.15, "Food spawn probability per turn")
	flag.Int64Var(&seed, "seed", 0, "Base seed (0 = random); game i plays with seed+i")
	flag.StringVar(&enginePath, "engine", "", "Path to a GBI engine binary (external strategy)")
	flag.BoolVar(&jsonOut, "json", false, "Output results as JSON")
	flag.Parse()

	if enginePath != "" {
		bot.ExternalEnginePath = enginePath
	}
	p1Name, p2Name := parseMatchup(matchup)

	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}

	mapCfg, err := mapfile.LoadOrStandard(mapFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", mapFile).Msg("Map load failed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("Shutting down...")
		cancel()
	}()

	var archive repository.MatchArchive
	if dbURL != "" {
		db, err := postgres.Connect(dbURL)
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
	recordSvc := service.NewRecordService(gamelogDir, archive, nil)

	results := make([]*bot.MatchResult, numGames)
	var mu sync.Mutex
	errCount := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < numGames; i++ {
		idx := i
		g.Go(func() error {
			gameSeed := seed
			if seed != 0 {
				gameSeed = seed + int64(idx)
			}

			p1 := bot.StrategyForName(p1Name)
			p2 := bot.StrategyForName(p2Name)
			defer closeStrategy(p1)
			defer closeStrategy(p2)

			result, err := bot.RunMatch(gctx, bot.MatchConfig{
				Config:       mapCfg,
				P1:           p1,
				P2:           p2,
				MaxTurns:     maxTurns,
				Seed:         gameSeed,
				FoodScarcity: scarcity,
			})
			if err != nil {
				log.Error().Err(err).Int("game", idx+1).Msg("Game failed")
				mu.Lock()
				errCount++
				mu.Unlock()
				return nil
			}

			mu.Lock()
			results[idx] = result
			mu.Unlock()

			recordSvc.RecordMatch(context.Background(), session.Result{
				Winner:  result.Winner,
				Turns:   result.Turns,
				StartAt: result.StartAt,
				EndedAt: result.EndedAt,
				Callsigns: map[gridwar.PlayerID]string{
					gridwar.Player1: "bot:" + p1Name,
					gridwar.Player2: "bot:" + p2Name,
				},
				Layout: mapCfg.Layout,
				Deltas: result.Deltas,
			})

			log.Info().
				Int("game", idx+1).
				Str("winner", string(result.Winner)).
				Int("turns", result.Turns).
				Msg("Game completed")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Worker pool failed")
	}

	if jsonOut {
		printJSON(results, numGames, errCount)
	} else {
		printSummary(results, p1Name, p2Name, maxTurns, errCount)
	}
}

// parseMatchup splits "greedy-vs-hold" style pairings; a bare strategy name
// plays both sides.
func parseMatchup(s string) (string, string) {
	parts := strings.SplitN(s, "-vs-", 2)
	if len(parts) != 2 {
		return s, s
	}
	return parts[0], parts[1]
}

func closeStrategy(s bot.Strategy) {
	if c, ok := s.(io.Closer); ok {
		c.Close()
	}
}

func printSummary(results []*bot.MatchResult, p1Name, p2Name string, maxTurns, errCount int) {
	type stats struct {
		wins       int
		draws      int
		totalPawns int
		games      int
	}

	bySide := map[gridwar.PlayerID]*stats{
		gridwar.Player1: {},
		gridwar.Player2: {},
	}
	names := map[gridwar.PlayerID]string{
		gridwar.Player1: p1Name,
		gridwar.Player2: p2Name,
	}

	completed := 0
	totalTurns := 0
	for _, r := range results {
		if r == nil {
			continue
		}
		completed++
		totalTurns += r.Turns
		for _, p := range gridwar.AllPlayers() {
			s := bySide[p]
			s.games++
			s.totalPawns += r.Pawns[string(p)]
			if r.Winner == p {
				s.wins++
			} else if r.Winner == gridwar.NoPlayer {
				s.draws++
			}
		}
	}

	fmt.Printf("\nResults (%d games, max %d turns):\n", completed, maxTurns)
	if errCount > 0 {
		fmt.Printf("  (%d games failed)\n", errCount)
	}

	for _, p := range gridwar.AllPlayers() {
		s := bySide[p]
		avgPawns := 0.0
		if s.games > 0 {
			avgPawns = float64(s.totalPawns) / float64(s.games)
		}
		fmt.Printf("  %-7s (%s):  %d wins, %d draws  -- avg pawns: %.1f\n",
			p, names[p], s.wins, s.draws, avgPawns)
	}
	if completed > 0 {
		fmt.Printf("  avg game length: %.1f turns\n", float64(totalTurns)/float64(completed))
	}
}

func printJSON(results []*bot.MatchResult, total, errCount int) {
	out := struct {
		Total   int                `json:"total"`
		Errors  int                `json:"errors"`
		Results []*bot.MatchResult `json:"results"`
	}{
		Total:   total,
		Errors:  errCount,
		Results: results,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(out)
}
