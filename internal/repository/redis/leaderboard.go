package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pellmont/gridwar/internal/model"
)

// Key patterns for the leaderboard keyspace.
const (
	leaderboardKey = "leaderboard"
	recentKey      = "matches:recent"
	recentKeep     = 50
)

func statsKey(callsign string) string { return "callsign:" + callsign + ":stats" }

// RecordResult folds one finished match into the leaderboard: win counts on
// the ranking ZSET, per-callsign win/loss/draw hashes, and a capped
// recent-match list.
func (c *Client) RecordResult(ctx context.Context, rec *model.MatchRecord) error {
	if rec.Winner != "" {
		loser := rec.Player2
		if rec.Winner == rec.Player2 {
			loser = rec.Player1
		}
		if err := c.rdb.ZIncrBy(ctx, leaderboardKey, 1, rec.Winner).Err(); err != nil {
			return fmt.Errorf("leaderboard incr: %w", err)
		}
		if err := c.rdb.HIncrBy(ctx, statsKey(rec.Winner), "wins", 1).Err(); err != nil {
			return fmt.Errorf("winner stats incr: %w", err)
		}
		if err := c.rdb.HIncrBy(ctx, statsKey(loser), "losses", 1).Err(); err != nil {
			return fmt.Errorf("loser stats incr: %w", err)
		}
	} else {
		for _, cs := range []string{rec.Player1, rec.Player2} {
			if err := c.rdb.HIncrBy(ctx, statsKey(cs), "draws", 1).Err(); err != nil {
				return fmt.Errorf("draw stats incr: %w", err)
			}
		}
	}

	summary, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal match summary: %w", err)
	}
	if err := c.rdb.LPush(ctx, recentKey, summary).Err(); err != nil {
		return fmt.Errorf("recent list push: %w", err)
	}
	if err := c.rdb.LTrim(ctx, recentKey, 0, recentKeep-1).Err(); err != nil {
		return fmt.Errorf("recent list trim: %w", err)
	}
	return nil
}

// Top returns the n highest win counts, best first.
func (c *Client) Top(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	zs, err := c.rdb.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard range: %w", err)
	}
	entries := make([]model.LeaderboardEntry, 0, len(zs))
	for i, z := range zs {
		cs, _ := z.Member.(string)
		entries = append(entries, model.LeaderboardEntry{
			Rank:     i + 1,
			Callsign: cs,
			Wins:     int64(z.Score),
		})
	}
	return entries, nil
}

// Stats returns one callsign's lifetime results. A callsign that never
// played reports all zeroes.
func (c *Client) Stats(ctx context.Context, callsign string) (*model.CallsignStats, error) {
	vals, err := c.rdb.HGetAll(ctx, statsKey(callsign)).Result()
	if err != nil {
		return nil, fmt.Errorf("stats fetch: %w", err)
	}
	return &model.CallsignStats{
		Callsign: callsign,
		Wins:     parseCount(vals["wins"]),
		Losses:   parseCount(vals["losses"]),
		Draws:    parseCount(vals["draws"]),
	}, nil
}

// RecentSummaries returns up to n of the most recently recorded matches,
// newest first.
func (c *Client) RecentSummaries(ctx context.Context, n int) ([]model.MatchRecord, error) {
	raw, err := c.rdb.LRange(ctx, recentKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("recent list range: %w", err)
	}
	recs := make([]model.MatchRecord, 0, len(raw))
	for _, item := range raw {
		var rec model.MatchRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("parse match summary: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func parseCount(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
