package features

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/hoopsight/hoopsight/internal/models"
)

// ErrInsufficientHistory is reported when no game in the supplied history has
// every required feature defined. Callers resolve it to a degraded default
// rather than surfacing it.
var ErrInsufficientHistory = errors.New("insufficient history to derive features")

// Windows are the rolling look-back sizes, in games.
var Windows = []int{3, 5, 10}

// trackedColumns are the statistics summarized by rolling windows.
var trackedColumns = []string{
	"minutes", "fga", "fg3a", "fta", "usage_proxy", "pts", "ast", "reb", "tov",
}

const (
	// usageFTAWeight scales free-throw attempts in the usage proxy,
	// fga + 0.44*fta + tov.
	usageFTAWeight = 0.44

	// onlineHistoryLimit bounds the history considered for a single
	// prediction; offline table construction uses the full history.
	onlineHistoryLimit = 10

	// defaultRestDays is assumed when a player has no prior game.
	defaultRestDays = 3.0
)

// FeatureNames returns every model-input feature in a stable order: all
// rolling mean/std columns, then rest_days and home.
func FeatureNames() []string {
	names := make([]string, 0, len(trackedColumns)*len(Windows)*2+2)
	for _, col := range trackedColumns {
		for _, w := range Windows {
			names = append(names, fmt.Sprintf("%s_rmean_%d", col, w))
			names = append(names, fmt.Sprintf("%s_rstd_%d", col, w))
		}
	}
	names = append(names, "rest_days", "home")
	return names
}

// requiredFeatures are the features that must be non-null for a row to be
// usable as model input. Home is excluded: it stays tri-state and is imputed
// at assembly time, identically for training tables and online derivation.
func requiredFeatures() []string {
	names := FeatureNames()
	required := make([]string, 0, len(names))
	for _, n := range names {
		if n != "home" && n != "rest_days" {
			required = append(required, n)
		}
	}
	return required
}

// Engine derives leakage-free rolling features from a single player's
// chronological game log.
type Engine struct {
	logger *logrus.Logger
}

// NewEngine creates a feature engine.
func NewEngine(logger *logrus.Logger) *Engine {
	return &Engine{logger: logger}
}

// Derive computes the feature vector for the most recent usable point of one
// player's history. Only the last games up to the online limit are
// considered. Returns ErrInsufficientHistory when no row has every required
// feature defined.
func (e *Engine) Derive(history []models.GameLogRecord) (*models.FeatureVector, error) {
	if len(history) == 0 {
		return nil, ErrInsufficientHistory
	}

	sorted := sortByDate(history)
	if len(sorted) > onlineHistoryLimit {
		sorted = sorted[len(sorted)-onlineHistoryLimit:]
	}

	rows := e.buildRows(sorted)
	required := requiredFeatures()

	// Most recent row with a complete feature set wins.
	for i := len(rows) - 1; i >= 0; i-- {
		if !rowComplete(rows[i], required) {
			continue
		}
		return assembleVector(rows[i]), nil
	}

	e.logger.WithFields(logrus.Fields{
		"component": "feature_engine",
		"player_id": sorted[0].PlayerID,
		"games":     len(sorted),
	}).Debug("No row with complete features in history window")

	return nil, ErrInsufficientHistory
}

// DeriveTable computes one feature row per game over the full history, in
// chronological order. Used for training-table construction; rows with
// undefined features are kept (with nil entries) so the caller controls
// filtering.
func (e *Engine) DeriveTable(history []models.GameLogRecord) []models.FeatureRow {
	if len(history) == 0 {
		return nil
	}
	return e.buildRows(sortByDate(history))
}

// buildRows computes rolling statistics and rest days for an already-sorted
// history. Every feature at index i uses only games at indexes < i.
func (e *Engine) buildRows(sorted []models.GameLogRecord) []models.FeatureRow {
	columns := make(map[string][]*float64, len(trackedColumns))
	for _, col := range trackedColumns {
		series := make([]*float64, len(sorted))
		for i, rec := range sorted {
			series[i] = columnValue(rec, col)
		}
		columns[col] = series
	}

	rows := make([]models.FeatureRow, len(sorted))
	for i, rec := range sorted {
		feats := make(map[string]*float64, len(trackedColumns)*len(Windows)*2)
		for _, col := range trackedColumns {
			series := columns[col]
			for _, w := range Windows {
				mean, std := lookback(series, i, w)
				feats[fmt.Sprintf("%s_rmean_%d", col, w)] = mean
				feats[fmt.Sprintf("%s_rstd_%d", col, w)] = std
			}
		}

		rows[i] = models.FeatureRow{
			PlayerID: rec.PlayerID,
			GameDate: rec.GameDate,
			Features: feats,
			RestDays: restDays(sorted, i),
			Home:     rec.Home,
			Points:   rec.Points,
			Assists:  rec.Assists,
			Rebounds: rec.Rebounds,
		}
	}
	return rows
}

// lookback computes the rolling mean and sample standard deviation of the w
// values strictly before index i, skipping undefined entries. Mean needs at
// least one prior observation, std at least two; otherwise nil.
func lookback(series []*float64, i, w int) (*float64, *float64) {
	start := i - w
	if start < 0 {
		start = 0
	}

	vals := make([]float64, 0, w)
	for _, v := range series[start:i] {
		if v != nil {
			vals = append(vals, *v)
		}
	}
	if len(vals) == 0 {
		return nil, nil
	}

	mean := stat.Mean(vals, nil)
	if len(vals) < 2 {
		return &mean, nil
	}
	std := stat.StdDev(vals, nil)
	return &mean, &std
}

// restDays is the non-negative day gap to the previous game, defaulting to 3
// when there is no usable prior game.
func restDays(sorted []models.GameLogRecord, i int) float64 {
	if i == 0 {
		return defaultRestDays
	}
	cur, prev := sorted[i].GameDate, sorted[i-1].GameDate
	if cur.IsZero() || prev.IsZero() {
		return defaultRestDays
	}
	days := int(cur.Sub(prev).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return float64(days)
}

// rowComplete reports whether every required feature is defined on the row.
func rowComplete(row models.FeatureRow, required []string) bool {
	for _, name := range required {
		if row.Features[name] == nil {
			return false
		}
	}
	return true
}

// assembleVector flattens a complete row into concrete model input. Unknown
// home is imputed as 0.5, the neutral midpoint of the tri-state.
func assembleVector(row models.FeatureRow) *models.FeatureVector {
	values := make(map[string]float64, len(row.Features)+2)
	for name, v := range row.Features {
		if v != nil {
			values[name] = *v
		}
	}
	values["rest_days"] = row.RestDays

	switch {
	case row.Home == nil:
		values["home"] = 0.5
	case *row.Home:
		values["home"] = 1.0
	default:
		values["home"] = 0.0
	}

	return &models.FeatureVector{
		PlayerID: row.PlayerID,
		AsOf:     row.GameDate,
		Values:   values,
	}
}

// columnValue extracts one tracked statistic from a record. The usage proxy
// is derived on the spot; it is undefined when fga or fta is missing, while a
// missing turnover count contributes zero.
func columnValue(rec models.GameLogRecord, col string) *float64 {
	switch col {
	case "minutes":
		return rec.Minutes
	case "fga":
		return rec.FGA
	case "fg3a":
		return rec.FG3A
	case "fta":
		return rec.FTA
	case "usage_proxy":
		if rec.FGA == nil || rec.FTA == nil {
			return nil
		}
		tov := 0.0
		if rec.Turnovers != nil {
			tov = *rec.Turnovers
		}
		usage := *rec.FGA + usageFTAWeight**rec.FTA + tov
		return &usage
	case "pts":
		return rec.Points
	case "ast":
		return rec.Assists
	case "reb":
		return rec.Rebounds
	case "tov":
		return rec.Turnovers
	default:
		return nil
	}
}

// sortByDate returns a copy of history ordered by game date ascending.
func sortByDate(history []models.GameLogRecord) []models.GameLogRecord {
	sorted := make([]models.GameLogRecord, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].GameDate.Before(sorted[j].GameDate)
	})
	return sorted
}
