package service

import (
	"context"
	"fmt"

	"github.com/pellmont/gridwar/internal/model"
)

type mockArchive struct {
	records []*model.MatchRecord
	seq     int64
	failing bool
}

func (m *mockArchive) SaveMatch(_ context.Context, rec *model.MatchRecord) (int64, error) {
	if m.failing {
		return 0, fmt.Errorf("archive down")
	}
	m.seq++
	cp := *rec
	cp.ID = m.seq
	m.records = append(m.records, &cp)
	return m.seq, nil
}

func (m *mockArchive) RecentMatches(_ context.Context, limit int) ([]model.MatchRecord, error) {
	if m.failing {
		return nil, fmt.Errorf("archive down")
	}
	var out []model.MatchRecord
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *m.records[i])
	}
	return out, nil
}

func (m *mockArchive) MatchByID(_ context.Context, id int64) (*model.MatchRecord, error) {
	if m.failing {
		return nil, fmt.Errorf("archive down")
	}
	for _, rec := range m.records {
		if rec.ID == id {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

type mockBoard struct {
	results   []*model.MatchRecord
	top       []model.LeaderboardEntry
	stats     map[string]*model.CallsignStats
	summaries []model.MatchRecord
	failing   bool
}

func (m *mockBoard) RecordResult(_ context.Context, rec *model.MatchRecord) error {
	if m.failing {
		return fmt.Errorf("leaderboard down")
	}
	cp := *rec
	m.results = append(m.results, &cp)
	return nil
}

func (m *mockBoard) Top(_ context.Context, n int) ([]model.LeaderboardEntry, error) {
	if m.failing {
		return nil, fmt.Errorf("leaderboard down")
	}
	if n > len(m.top) {
		n = len(m.top)
	}
	return m.top[:n], nil
}

func (m *mockBoard) Stats(_ context.Context, callsign string) (*model.CallsignStats, error) {
	if m.failing {
		return nil, fmt.Errorf("leaderboard down")
	}
	if st, ok := m.stats[callsign]; ok {
		return st, nil
	}
	return &model.CallsignStats{Callsign: callsign}, nil
}

func (m *mockBoard) RecentSummaries(_ context.Context, n int) ([]model.MatchRecord, error) {
	if m.failing {
		return nil, fmt.Errorf("leaderboard down")
	}
	if n > len(m.summaries) {
		n = len(m.summaries)
	}
	return m.summaries[:n], nil
}
