package prediction

import (
	"encoding/json"
	"fmt"
	"os"
)

// TreeNode is one node of a regression tree. Interior nodes route on
// feature <= threshold; leaf nodes carry the additive value.
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Leaf      bool    `json:"leaf"`
	Value     float64 `json:"value"`
}

// Tree is a single regression tree, nodes indexed from the root at 0.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// Artifact is a trained gradient-boosted regression ensemble for one target,
// serialized by the offline trainer. Immutable once loaded; safe for
// concurrent use.
type Artifact struct {
	Target    string   `json:"target"`
	Features  []string `json:"features"`
	BaseScore float64  `json:"base_score"`
	Trees     []Tree   `json:"trees"`
}

// LoadArtifact reads and validates a serialized model file.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to decode model file: %w", err)
	}

	if err := artifact.validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact %s: %w", path, err)
	}
	return &artifact, nil
}

func (a *Artifact) validate() error {
	if len(a.Features) == 0 {
		return fmt.Errorf("no feature list")
	}
	if len(a.Trees) == 0 {
		return fmt.Errorf("no trees")
	}
	for ti, tree := range a.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("tree %d is empty", ti)
		}
		for ni, node := range tree.Nodes {
			if node.Leaf {
				continue
			}
			if node.Feature < 0 || node.Feature >= len(a.Features) {
				return fmt.Errorf("tree %d node %d references unknown feature %d", ti, ni, node.Feature)
			}
			if node.Left < 0 || node.Left >= len(tree.Nodes) || node.Right < 0 || node.Right >= len(tree.Nodes) {
				return fmt.Errorf("tree %d node %d has out-of-range children", ti, ni)
			}
		}
	}
	return nil
}

// Predict scores one feature vector: base score plus the leaf value of every
// tree. Features absent from the input score as zero.
func (a *Artifact) Predict(values map[string]float64) float64 {
	input := make([]float64, len(a.Features))
	for i, name := range a.Features {
		input[i] = values[name]
	}

	score := a.BaseScore
	for _, tree := range a.Trees {
		score += tree.evaluate(input)
	}
	return score
}

// evaluate walks from the root to a leaf. The step cap guards against a
// malformed (cyclic) tree that slipped past validation.
func (t Tree) evaluate(input []float64) float64 {
	idx := 0
	for steps := 0; steps <= len(t.Nodes); steps++ {
		node := t.Nodes[idx]
		if node.Leaf {
			return node.Value
		}
		if input[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
	return 0
}
