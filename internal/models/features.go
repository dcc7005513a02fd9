package models

import "time"

// FeatureRow is one game's derived features. Rolling statistics are strictly
// look-back: every value in Features is computed only from games played
// before GameDate. A nil entry means the statistic is undefined at this point
// in the player's history (for example a rolling std with fewer than two
// prior games).
type FeatureRow struct {
	PlayerID int
	GameDate time.Time
	Features map[string]*float64
	RestDays float64
	Home     *bool

	// Per-game outcomes, carried for training-table construction only.
	// Never fed back into the row's own features.
	Points   *float64
	Assists  *float64
	Rebounds *float64
}

// FeatureVector is the fully-resolved model input for a single prediction:
// every required feature present and non-null, home imputed where unknown.
type FeatureVector struct {
	PlayerID int
	AsOf     time.Time
	Values   map[string]float64
}

// PredictionResult carries the three predicted statistics. Each value is
// resolved independently, so in degraded mode some may come from a trained
// model and others from the statistical fallback.
type PredictionResult struct {
	Points   float64 `json:"points"`
	Assists  float64 `json:"assists"`
	Rebounds float64 `json:"rebounds"`
}
