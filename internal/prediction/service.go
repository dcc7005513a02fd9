package prediction

import (
	"context"
	"errors"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/hoopsight/hoopsight/internal/features"
	"github.com/hoopsight/hoopsight/internal/ingest"
	"github.com/hoopsight/hoopsight/internal/models"
	"github.com/hoopsight/hoopsight/internal/providers"
)

// fallbackWindow is how many recent games feed the EWMA fallback.
const fallbackWindow = 10

// GameSource supplies a player's raw per-game stat records.
// *ingest.Collector is the production implementation.
type GameSource interface {
	CollectPlayerGames(ctx context.Context, playerID int, season string) ([]providers.RawPlayerStat, error)
}

// Service produces the three-statistic prediction for a player, resolving
// each target independently through the trained model when available and the
// EWMA fallback otherwise. Stateless per call apart from the shared read-only
// registry, so concurrent predictions are safe.
type Service struct {
	source   GameSource
	engine   *features.Engine
	registry *Registry
	logger   *logrus.Logger
}

// NewService creates a prediction service.
func NewService(source GameSource, engine *features.Engine, registry *Registry, logger *logrus.Logger) *Service {
	return &Service{
		source:   source,
		engine:   engine,
		registry: registry,
		logger:   logger,
	}
}

// Predict returns raw (unrounded) predicted points, assists and rebounds for
// a player's next game. A player with no retrievable history, or too little
// history to derive features, yields the defined zero result rather than an
// error. Upstream fetch failures propagate to the caller.
func (s *Service) Predict(ctx context.Context, playerID int, season string) (models.PredictionResult, error) {
	raw, err := s.source.CollectPlayerGames(ctx, playerID, season)
	if err != nil {
		return models.PredictionResult{}, err
	}
	if len(raw) == 0 {
		s.logger.WithFields(logrus.Fields{
			"component": "prediction",
			"player_id": playerID,
			"season":    season,
		}).Info("No game history, returning zero prediction")
		return models.PredictionResult{}, nil
	}

	history := make([]models.GameLogRecord, 0, len(raw))
	for _, g := range raw {
		history = append(history, ingest.Normalize(g))
	}

	vector, err := s.engine.Derive(history)
	if err != nil {
		if errors.Is(err, features.ErrInsufficientHistory) {
			s.logger.WithFields(logrus.Fields{
				"component": "prediction",
				"player_id": playerID,
				"games":     len(history),
			}).Info("Insufficient history for features, returning zero prediction")
			return models.PredictionResult{}, nil
		}
		return models.PredictionResult{}, err
	}

	recent := recentGames(history, fallbackWindow)

	result := models.PredictionResult{
		Points:   s.resolve(TargetPoints, vector, recent, playerID),
		Assists:  s.resolve(TargetAssists, vector, recent, playerID),
		Rebounds: s.resolve(TargetRebounds, vector, recent, playerID),
	}
	return result, nil
}

// resolve picks the tier for one target: trained model first, EWMA over the
// raw recent series otherwise.
func (s *Service) resolve(target Target, vector *models.FeatureVector, recent []models.GameLogRecord, playerID int) float64 {
	if value, ok := s.registry.Predict(target, vector.Values); ok {
		return value
	}

	series := make([]float64, 0, len(recent))
	for _, rec := range recent {
		if v := targetValue(target, rec); v != nil {
			series = append(series, *v)
		} else {
			series = append(series, 0)
		}
	}

	value := EWMA(series, ewmaAlpha)
	s.logger.WithFields(logrus.Fields{
		"component": "prediction",
		"player_id": playerID,
		"target":    string(target),
		"games":     len(series),
	}).Debug("Resolved target via EWMA fallback")
	return value
}

func targetValue(target Target, rec models.GameLogRecord) *float64 {
	switch target {
	case TargetPoints:
		return rec.Points
	case TargetAssists:
		return rec.Assists
	case TargetRebounds:
		return rec.Rebounds
	default:
		return nil
	}
}

// recentGames returns the last n games in chronological order.
func recentGames(history []models.GameLogRecord, n int) []models.GameLogRecord {
	sorted := make([]models.GameLogRecord, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].GameDate.Before(sorted[j].GameDate)
	})
	if len(sorted) > n {
		sorted = sorted[len(sorted)-n:]
	}
	return sorted
}
