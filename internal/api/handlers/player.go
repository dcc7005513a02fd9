package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/hoopsight/hoopsight/internal/models"
	"github.com/hoopsight/hoopsight/internal/prediction"
	"github.com/hoopsight/hoopsight/internal/providers"
	"github.com/hoopsight/hoopsight/internal/services"
	"github.com/hoopsight/hoopsight/internal/storage"
	"github.com/hoopsight/hoopsight/pkg/config"
	"github.com/hoopsight/hoopsight/pkg/utils"
)

const (
	searchCacheTTL     = 60 * time.Second
	predictionCacheTTL = 30 * time.Second
)

type PlayerHandler struct {
	client    *providers.Client
	predictor *prediction.Service
	registry  *prediction.Registry
	store     *storage.Store
	cache     *services.CacheService
	breaker   *services.CircuitBreakerService
	cfg       *config.Config
	logger    *logrus.Logger
}

func NewPlayerHandler(client *providers.Client, predictor *prediction.Service, registry *prediction.Registry, store *storage.Store, cache *services.CacheService, breaker *services.CircuitBreakerService, cfg *config.Config, logger *logrus.Logger) *PlayerHandler {
	return &PlayerHandler{
		client:    client,
		predictor: predictor,
		registry:  registry,
		store:     store,
		cache:     cache,
		breaker:   breaker,
		cfg:       cfg,
		logger:    logger,
	}
}

// PlayerSummary is the search result shape.
type PlayerSummary struct {
	ID        int         `json:"id"`
	Firstname string      `json:"firstname"`
	Lastname  string      `json:"lastname"`
	Team      string      `json:"team,omitempty"`
	Jersey    interface{} `json:"jersey,omitempty"`
}

// PredictionResponse is the prediction endpoint payload. Values are rounded
// to one decimal place at this boundary only; everything upstream stays
// full precision.
type PredictionResponse struct {
	Player      PlayerSummary           `json:"player"`
	Season      string                  `json:"season"`
	Prediction  models.PredictionResult `json:"prediction"`
	Sources     map[string]string       `json:"sources"`
	GeneratedAt time.Time               `json:"generated_at"`
}

// SearchPlayers handles GET /players?q=<name>.
func (h *PlayerHandler) SearchPlayers(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if len(query) < 2 {
		utils.SendValidationError(c, "Invalid search query", "q must be at least 2 characters")
		return
	}

	ctx := c.Request.Context()
	cacheKey := services.SearchCacheKey(strings.ToLower(query))

	var cached []PlayerSummary
	if err := h.cache.Get(ctx, cacheKey, &cached); err == nil {
		utils.SendSuccess(c, cached)
		return
	}

	result, err := h.breaker.Execute("players", func() (interface{}, error) {
		return h.client.SearchPlayers(ctx, query)
	})
	if err != nil {
		h.sendUpstreamFailure(c, err, "Player search failed")
		return
	}

	raw := result.([]providers.RawPlayer)
	summaries := make([]PlayerSummary, 0, len(raw))
	for _, p := range raw {
		id := p.PlayerID()
		if id == 0 {
			continue
		}
		summary := PlayerSummary{
			ID:        id,
			Firstname: p.Firstname,
			Lastname:  p.Lastname,
			Jersey:    p.Leagues.Standard.Jersey,
		}
		if p.Team != nil {
			summary.Team = p.Team.Name
		}
		summaries = append(summaries, summary)
	}

	if err := h.cache.Set(ctx, cacheKey, summaries, searchCacheTTL); err != nil {
		h.logger.WithError(err).Warn("Failed to cache player search")
	}

	utils.SendSuccess(c, summaries)
}

// GetPrediction handles GET /players/:id/prediction?season=<year>.
func (h *PlayerHandler) GetPrediction(c *gin.Context) {
	playerID, err := strconv.Atoi(c.Param("id"))
	if err != nil || playerID <= 0 {
		utils.SendValidationError(c, "Invalid player id", "id must be a positive integer")
		return
	}

	season := c.DefaultQuery("season", h.cfg.DefaultSeason)
	if _, err := strconv.Atoi(season); err != nil {
		utils.SendValidationError(c, "Invalid season", "season must be a year, e.g. 2025")
		return
	}

	ctx := c.Request.Context()
	cacheKey := services.PredictionCacheKey(playerID, season)

	var cached PredictionResponse
	if err := h.cache.Get(ctx, cacheKey, &cached); err == nil {
		utils.SendSuccess(c, cached)
		return
	}

	detail, err := h.breaker.Execute("players", func() (interface{}, error) {
		return h.client.FetchPlayerDetails(ctx, playerID)
	})
	if err != nil {
		h.sendUpstreamFailure(c, err, "Player lookup failed")
		return
	}
	found := detail.([]providers.RawPlayer)
	if len(found) == 0 {
		utils.SendNotFound(c, "Player not found")
		return
	}

	result, err := h.breaker.Execute("statistics", func() (interface{}, error) {
		return h.predictor.Predict(ctx, playerID, season)
	})
	if err != nil {
		h.sendUpstreamFailure(c, err, "Prediction failed")
		return
	}

	player := PlayerSummary{
		ID:        playerID,
		Firstname: found[0].Firstname,
		Lastname:  found[0].Lastname,
		Jersey:    found[0].Leagues.Standard.Jersey,
	}
	if found[0].Team != nil {
		player.Team = found[0].Team.Name
	}

	pred := result.(models.PredictionResult)
	resp := PredictionResponse{
		Player: player,
		Season: season,
		Prediction: models.PredictionResult{
			Points:   roundStat(pred.Points),
			Assists:  roundStat(pred.Assists),
			Rebounds: roundStat(pred.Rebounds),
		},
		Sources:     h.sources(),
		GeneratedAt: time.Now().UTC(),
	}

	if err := h.cache.Set(ctx, cacheKey, resp, predictionCacheTTL); err != nil {
		h.logger.WithError(err).Warn("Failed to cache prediction")
	}

	utils.SendSuccess(c, resp)
}

// GetHistory handles GET /players/:id/history, served from stored game logs.
func (h *PlayerHandler) GetHistory(c *gin.Context) {
	if h.store == nil {
		utils.SendServiceUnavailable(c, "Game log storage is not configured")
		return
	}

	playerID, err := strconv.Atoi(c.Param("id"))
	if err != nil || playerID <= 0 {
		utils.SendValidationError(c, "Invalid player id", "id must be a positive integer")
		return
	}

	logs, err := h.store.PlayerHistory(playerID)
	if err != nil {
		h.logger.WithError(err).WithField("player_id", playerID).Error("Failed to load player history")
		utils.SendInternalError(c, "Failed to load player history")
		return
	}
	if len(logs) == 0 {
		utils.SendNotFound(c, "No stored games for this player")
		return
	}

	utils.SendSuccess(c, gin.H{
		"player_id": playerID,
		"games":     logs,
	})
}

func (h *PlayerHandler) sources() map[string]string {
	out := make(map[string]string, len(prediction.Targets))
	for _, target := range prediction.Targets {
		if h.registry.IsAvailable(target) {
			out[string(target)] = "model"
		} else {
			out[string(target)] = "ewma"
		}
	}
	return out
}

// sendUpstreamFailure maps online-path failures to API responses.
func (h *PlayerHandler) sendUpstreamFailure(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		utils.SendServiceUnavailable(c, "Upstream API is temporarily unavailable")
	case errors.Is(err, providers.ErrMissingCredentials):
		utils.SendError(c, http.StatusInternalServerError, utils.NewAppError(utils.ErrCodeConfiguration, "Upstream API credentials are not configured"))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		utils.SendUpstreamError(c, "Upstream request timed out")
	default:
		h.logger.WithError(err).Error(message)
		utils.SendUpstreamError(c, message)
	}
}

func roundStat(v float64) float64 {
	return math.Round(v*10) / 10
}
