package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/vantage/backend/internal/brain"
	"github.com/wonny/vantage/backend/internal/contracts"
	"github.com/wonny/vantage/backend/internal/s0_data"
	"github.com/wonny/vantage/backend/internal/selection"
	"github.com/wonny/vantage/backend/pkg/logger"
)

// RankingService is the pipeline the handlers read from and trigger
type RankingService interface {
	Latest() (*brain.Snapshot, bool)
	Run(ctx context.Context) (*brain.Snapshot, error)
}

// RankingHandler handles ranking-related API endpoints
// ⭐ SSOT: 랭킹 API 핸들러는 이 구조체에서만
type RankingHandler struct {
	service RankingService
	logger  *logger.Logger
}

// NewRankingHandler creates a new ranking handler
func NewRankingHandler(service RankingService, log *logger.Logger) *RankingHandler {
	return &RankingHandler{
		service: service,
		logger:  log,
	}
}

// RankingResponse is the ranked table of the latest run
type RankingResponse struct {
	RunAt      time.Time                      `json:"run_at"`
	ConfigHash string                         `json:"config_hash"`
	Sector     string                         `json:"sector"`
	Count      int                            `json:"count"`
	Rows       []contracts.RankedRow          `json:"rows"`
	Warnings   []contracts.MissingDataWarning `json:"warnings"`
}

// IssuerResponse is the detail view of one issuer
type IssuerResponse struct {
	RunAt   time.Time                            `json:"run_at"`
	Row     contracts.RankedRow                  `json:"row"`
	Raw     map[contracts.Metric]contracts.Value `json:"raw"`
	Profile contracts.Profile                    `json:"profile"`
}

// RunSummary describes a completed run
type RunSummary struct {
	RunID          string             `json:"run_id"`
	RunAt          time.Time          `json:"run_at"`
	ConfigHash     string             `json:"config_hash"`
	UniverseSource string             `json:"universe_source"`
	Issuers        int                `json:"issuers"`
	Ranked         int                `json:"ranked"`
	Warnings       int                `json:"warnings"`
	Fetch          s0_data.FetchStats `json:"fetch"`
	DurationMs     int64              `json:"duration_ms"`
}

// NewRunSummary summarizes a snapshot
func NewRunSummary(snap *brain.Snapshot) RunSummary {
	return RunSummary{
		RunID:          snap.RunID,
		RunAt:          snap.RunAt,
		ConfigHash:     snap.ConfigHash,
		UniverseSource: snap.UniverseSource,
		Issuers:        len(snap.Result.Rows),
		Ranked:         snap.Result.RankedCount(),
		Warnings:       len(snap.Result.Warnings),
		Fetch:          snap.Fetch,
		DurationMs:     snap.Duration.Milliseconds(),
	}
}

// latest writes 503 and returns false until the first run completes
func (h *RankingHandler) latest(w http.ResponseWriter) (*brain.Snapshot, bool) {
	snap, ok := h.service.Latest()
	if !ok {
		respondError(w, http.StatusServiceUnavailable, "No ranking available yet")
		return nil, false
	}
	return snap, true
}

// GetRanking returns the ranked table
// GET /api/ranking?sector=<sector>&sort=rank|ticker
func (h *RankingHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	sector := r.URL.Query().Get("sector")
	if sector == "" {
		sector = selection.AllSectors
	}

	var order func([]contracts.RankedRow) []contracts.RankedRow
	switch r.URL.Query().Get("sort") {
	case "", "rank":
		order = selection.SortByRank
	case "ticker":
		order = selection.SortByTicker
	default:
		respondError(w, http.StatusBadRequest, "Invalid sort (valid: rank, ticker)")
		return
	}

	snap, ok := h.latest(w)
	if !ok {
		return
	}

	rows := order(selection.FilterBySector(snap.Result.Rows, sector))
	respondJSON(w, http.StatusOK, RankingResponse{
		RunAt:      snap.RunAt,
		ConfigHash: snap.ConfigHash,
		Sector:     sector,
		Count:      len(rows),
		Rows:       rows,
		Warnings:   snap.Result.Warnings,
	})
}

// GetSectors returns the sector selector options
// GET /api/ranking/sectors
func (h *RankingHandler) GetSectors(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.latest(w)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, selection.Sectors(snap.Result.Rows))
}

// GetIssuer returns one issuer's row, raw metrics and profile
// GET /api/issuers/{ticker}
func (h *RankingHandler) GetIssuer(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])

	snap, ok := h.latest(w)
	if !ok {
		return
	}

	row, found := selection.Find(snap.Result.Rows, ticker)
	if !found {
		respondError(w, http.StatusNotFound, "Issuer not found: "+ticker)
		return
	}

	resp := IssuerResponse{
		RunAt: snap.RunAt,
		Row:   *row,
		Raw:   map[contracts.Metric]contracts.Value{},
	}
	if raw, ok := snap.Raw[ticker]; ok && raw != nil {
		resp.Raw = raw.Values
		resp.Profile = raw.Profile
	}

	respondJSON(w, http.StatusOK, resp)
}

// Refresh runs the pipeline synchronously
// POST /api/ranking/refresh
func (h *RankingHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Run(r.Context())
	if errors.Is(err, brain.ErrRunInProgress) {
		respondError(w, http.StatusConflict, "Ranking run already in progress")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Ranking refresh failed")
		respondError(w, http.StatusBadGateway, "Ranking refresh failed: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, NewRunSummary(snap))
}
