package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pellmont/gridwar/internal/gamelog"
	"github.com/pellmont/gridwar/internal/model"
	"github.com/pellmont/gridwar/internal/protocol"
	"github.com/pellmont/gridwar/internal/repository"
	"github.com/pellmont/gridwar/internal/session"
	"github.com/pellmont/gridwar/pkg/gridwar"
)

// RecordService fans a finished game out to the three sinks: the game-log
// file, the match archive, and the leaderboard. Every sink is optional, and
// a failing sink is logged and skipped so the session never sees the error.
type RecordService struct {
	logDir  string
	archive repository.MatchArchive
	board   repository.Leaderboard
}

// NewRecordService creates a RecordService. logDir empty disables the log
// file; archive and board may be nil.
func NewRecordService(logDir string, archive repository.MatchArchive, board repository.Leaderboard) *RecordService {
	return &RecordService{logDir: logDir, archive: archive, board: board}
}

// RecordMatch persists one terminal result. The session's context is
// ignored: recording happens during teardown, often after that context was
// cancelled, and must still complete.
func (s *RecordService) RecordMatch(_ context.Context, res session.Result) {
	ctx := context.Background()

	logPath := ""
	if s.logDir != "" {
		path, err := gamelog.Write(s.logDir, buildGameLog(res))
		if err != nil {
			log.Error().Err(err).Msg("game log write failed")
		} else {
			logPath = path
			log.Info().Str("path", path).Msg("game log written")
		}
	}

	// Aborted games keep their replay log but stay out of the archive and
	// the leaderboard: nobody earned that result.
	if res.Aborted {
		return
	}

	rec := &model.MatchRecord{
		Player1:    res.Callsigns[gridwar.Player1],
		Player2:    res.Callsigns[gridwar.Player2],
		Winner:     res.Callsigns[res.Winner],
		Turns:      res.Turns,
		DurationMs: res.EndedAt - res.StartAt,
		LogPath:    logPath,
		StartedAt:  time.UnixMilli(res.StartAt).UTC(),
		FinishedAt: time.UnixMilli(res.EndedAt).UTC(),
	}

	if s.archive != nil {
		id, err := s.archive.SaveMatch(ctx, rec)
		if err != nil {
			log.Error().Err(err).Msg("match archive write failed")
		} else {
			rec.ID = id
		}
	}
	if s.board != nil {
		if err := s.board.RecordResult(ctx, rec); err != nil {
			log.Error().Err(err).Msg("leaderboard update failed")
		}
	}
}

func buildGameLog(res session.Result) *gamelog.GameLog {
	players := make(map[string]string, len(res.Callsigns))
	for p, cs := range res.Callsigns {
		players[string(p)] = cs
	}
	m := protocol.FromMap(res.Layout)
	return &gamelog.GameLog{
		Players:       players,
		MapDimensions: m.Dimension,
		Walls:         m.Walls,
		Winner:        protocol.WinnerID(res.Winner),
		Timestamp:     res.EndedAt,
		Turns:         protocol.FromDeltas(res.Deltas),
		Aborted:       res.Aborted,
	}
}

// NoopRecorder discards results. Used where nothing should be persisted,
// like tutorial games.
type NoopRecorder struct{}

// RecordMatch implements session.Recorder.
func (NoopRecorder) RecordMatch(context.Context, session.Result) {}
