// Command import_gamelogs backfills the match archive from game log files
// written by the server or cmd/botmatch, for games finished while Postgres
// was unavailable.
//
// Usage:
//
//	go run ./cmd/import_gamelogs/ --dir gamelogs --db postgres://...
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pellmont/gridwar/internal/gamelog"
	"github.com/pellmont/gridwar/internal/model"
	"github.com/pellmont/gridwar/internal/repository/postgres"
	redisrepo "github.com/pellmont/gridwar/internal/repository/redis"
	"github.com/pellmont/gridwar/pkg/gridwar"
)

var errAborted = errors.New("aborted game")

func main() {
	dir := flag.String("dir", "gamelogs", "Directory of game_*.json files")
	dbURL := flag.String("db", os.Getenv("DATABASE_URL"), "Postgres connection URL")
	redisURL := flag.String("redis", os.Getenv("REDIS_URL"), "Redis URL for leaderboard updates (optional)")
	flag.Parse()

	if *dbURL == "" {
		log.Fatal("--db or DATABASE_URL is required")
	}

	db, err := postgres.Connect(*dbURL)
	if err != nil {
		log.Fatalf("connect to postgres: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	repo := postgres.NewMatchRepo(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	var board *redisrepo.Client
	if *redisURL != "" {
		board, err = redisrepo.NewClient(*redisURL)
		if err != nil {
			log.Fatalf("connect to redis: %v", err)
		}
		defer board.Close()
	}

	paths, err := filepath.Glob(filepath.Join(*dir, "game_*.json"))
	if err != nil {
		log.Fatalf("scan %s: %v", *dir, err)
	}
	if len(paths) == 0 {
		log.Fatalf("no game_*.json files under %s", *dir)
	}
	// File names embed the end-of-game timestamp, so this is oldest first.
	sort.Strings(paths)

	imported, skipped := 0, 0
	for _, path := range paths {
		doc, err := gamelog.Load(path)
		if err != nil {
			log.Printf("WARN: skip %s: %v", path, err)
			skipped++
			continue
		}
		rec, err := buildRecord(doc, path)
		if errors.Is(err, errAborted) {
			log.Printf("skip %s: aborted game", filepath.Base(path))
			skipped++
			continue
		}
		if err != nil {
			log.Printf("WARN: skip %s: %v", path, err)
			skipped++
			continue
		}

		id, err := repo.SaveMatch(ctx, rec)
		if err != nil {
			log.Printf("ERROR: archive %s: %v", path, err)
			skipped++
			continue
		}
		rec.ID = id
		if board != nil {
			if err := board.RecordResult(ctx, rec); err != nil {
				log.Printf("ERROR: leaderboard %s: %v", path, err)
			}
		}

		imported++
		log.Printf("imported %s -> match %d (%s vs %s, %d turns)",
			filepath.Base(path), id, rec.Player1, rec.Player2, rec.Turns)
	}

	log.Printf("done: imported %d games, skipped %d", imported, skipped)
}

// buildRecord maps a replayable game log onto an archive row, the same
// mapping the record service applies at the end of a live game.
func buildRecord(doc *gamelog.GameLog, path string) (*model.MatchRecord, error) {
	if doc.Aborted {
		return nil, errAborted
	}
	if len(doc.Turns) == 0 {
		return nil, fmt.Errorf("no turns recorded")
	}

	p1 := doc.Players[string(gridwar.Player1)]
	p2 := doc.Players[string(gridwar.Player2)]
	if p1 == "" || p2 == "" {
		return nil, fmt.Errorf("missing player callsigns in %v", doc.Players)
	}

	winner := ""
	if doc.Winner != nil {
		winner = doc.Players[*doc.Winner]
		if winner == "" {
			return nil, fmt.Errorf("winner %q has no callsign", *doc.Winner)
		}
	}

	startAt := doc.Turns[0].Timestamp
	return &model.MatchRecord{
		Player1:    p1,
		Player2:    p2,
		Winner:     winner,
		Turns:      len(doc.Turns) - 1,
		DurationMs: doc.Timestamp - startAt,
		LogPath:    path,
		StartedAt:  time.UnixMilli(startAt).UTC(),
		FinishedAt: time.UnixMilli(doc.Timestamp).UTC(),
	}, nil
}
