package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/pellmont/gridwar/internal/logger"
	"github.com/pellmont/gridwar/internal/model"
	"github.com/pellmont/gridwar/internal/service"
)

// StatsHandler serves the read-only REST surface beside the game socket.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Leaderboard handles GET /api/leaderboard
func (h *StatsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.stats.Leaderboard(r.Context(), queryInt(r, "limit", 10))
	if err != nil {
		writeStatsError(w, r, err)
		return
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// CallsignStats handles GET /api/callsigns/{callsign}
func (h *StatsHandler) CallsignStats(w http.ResponseWriter, r *http.Request) {
	callsign := r.PathValue("callsign")
	if callsign == "" {
		writeError(w, http.StatusBadRequest, "callsign is required")
		return
	}
	stats, err := h.stats.CallsignStats(r.Context(), callsign)
	if err != nil {
		writeStatsError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// RecentMatches handles GET /api/matches/recent
func (h *StatsHandler) RecentMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.stats.RecentMatches(r.Context(), queryInt(r, "limit", 20))
	if err != nil {
		writeStatsError(w, r, err)
		return
	}
	if matches == nil {
		matches = []model.MatchRecord{}
	}
	writeJSON(w, http.StatusOK, matches)
}

// MatchByID handles GET /api/matches/{id}
func (h *StatsHandler) MatchByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid match id")
		return
	}
	rec, err := h.stats.MatchByID(r.Context(), id)
	if err != nil {
		writeStatsError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeStatsError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrMatchNotFound):
		writeError(w, http.StatusNotFound, "match not found")
	case errors.Is(err, service.ErrArchiveDisabled), errors.Is(err, service.ErrLeaderboardDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		l := logger.ForRequest(r.Context())
		l.Error().Err(err).Str("path", r.URL.Path).Msg("stats query failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
