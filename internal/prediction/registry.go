package prediction

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Target identifies one predicted statistic.
type Target string

const (
	TargetPoints   Target = "points"
	TargetAssists  Target = "assists"
	TargetRebounds Target = "rebounds"
)

// Targets lists every target in output order.
var Targets = []Target{TargetPoints, TargetAssists, TargetRebounds}

// Registry holds the per-target trained model artifacts. Loading is attempted
// exactly once per target at construction; a target whose file is missing or
// corrupt is simply unavailable for the process lifetime, and one target's
// failure never blocks the others. Read-only after construction.
type Registry struct {
	logger    *logrus.Logger
	artifacts map[Target]*Artifact
}

// NewRegistry loads model artifacts from dir (model_points.json,
// model_assists.json, model_rebounds.json).
func NewRegistry(dir string, logger *logrus.Logger) *Registry {
	r := &Registry{
		logger:    logger,
		artifacts: make(map[Target]*Artifact, len(Targets)),
	}

	for _, target := range Targets {
		path := filepath.Join(dir, fmt.Sprintf("model_%s.json", target))
		artifact, err := LoadArtifact(path)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"component": "model_registry",
				"target":    string(target),
				"path":      path,
			}).Warnf("Model unavailable, target falls back to EWMA: %v", err)
			continue
		}
		r.artifacts[target] = artifact
		logger.WithFields(logrus.Fields{
			"component": "model_registry",
			"target":    string(target),
			"trees":     len(artifact.Trees),
		}).Info("Loaded model artifact")
	}

	return r
}

// IsAvailable reports whether a trained model is loaded for the target.
func (r *Registry) IsAvailable(target Target) bool {
	_, ok := r.artifacts[target]
	return ok
}

// Predict scores the feature values with the target's model. The second
// return is false when the target has no loaded model.
func (r *Registry) Predict(target Target, values map[string]float64) (float64, bool) {
	artifact, ok := r.artifacts[target]
	if !ok {
		return 0, false
	}
	return artifact.Predict(values), true
}
