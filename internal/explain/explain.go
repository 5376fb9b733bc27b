// Package explain computes per-feature signed contributions for a single
// prediction. Two modes exist, selected once at artifact-load time from the
// model's capability: exact coefficient contributions for linear models, and
// additive path attribution for tree ensembles. Attribution is explanatory,
// not decision-critical — callers degrade failures to an empty list.
package explain

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/carebridge/oncorisk/internal/scoring"
)

// DirectionIncreases and DirectionDecreases label the sign of a contribution.
const (
	DirectionIncreases = "increases risk"
	DirectionDecreases = "decreases risk"
)

// Attribution is one ranked entry: the feature, its signed contribution to
// this prediction (rounded to 4 decimals), and the direction derived from the
// sign.
type Attribution struct {
	Feature      string  `json:"feature"`
	Contribution float64 `json:"contribution"`
	Direction    string  `json:"direction"`
}

// Kind tags the attribution algorithm.
type Kind string

const (
	// KindCoefficient is coefficient × value, exact for linear models.
	KindCoefficient Kind = "coefficient"
	// KindTree is additive path attribution over a tree ensemble.
	KindTree Kind = "tree"
)

// Explainer produces one signed contribution per transformed feature. It
// never mutates the model it reads from.
type Explainer interface {
	Kind() Kind
	Contributions(row []float64) ([]float64, error)
}

// Coefficient explains a linear model: contribution i = coef[i] * x[i].
// No background dataset is needed.
type Coefficient struct {
	Coefficients []float64
}

func (c *Coefficient) Kind() Kind { return KindCoefficient }

func (c *Coefficient) Contributions(row []float64) ([]float64, error) {
	if len(row) != len(c.Coefficients) {
		return nil, eris.Errorf("explain: %d coefficients for %d features", len(c.Coefficients), len(row))
	}
	out := make([]float64, len(row))
	for i, coef := range c.Coefficients {
		out[i] = coef * row[i]
	}
	return out, nil
}

// TreePath explains a tree ensemble by walking each tree's decision path and
// crediting the change in the node expectation to the feature split on. For
// ensembles that carry one value per class, the positive/main class is
// selected via Class.
type TreePath struct {
	Ensemble *scoring.TreeEnsemble
	Class    int
}

func (t *TreePath) Kind() Kind { return KindTree }

func (t *TreePath) Contributions(row []float64) ([]float64, error) {
	if t.Ensemble == nil {
		return nil, eris.New("explain: nil ensemble")
	}
	out := make([]float64, len(row))
	for ti := range t.Ensemble.Trees {
		tree := &t.Ensemble.Trees[ti]
		path, err := tree.Path(row)
		if err != nil {
			return nil, err
		}
		for pi := 0; pi < len(path)-1; pi++ {
			parent := tree.Nodes[path[pi]]
			child := tree.Nodes[path[pi+1]]
			pv, err := t.classValue(parent.Value)
			if err != nil {
				return nil, err
			}
			cv, err := t.classValue(child.Value)
			if err != nil {
				return nil, err
			}
			out[parent.Feature] += cv - pv
		}
	}
	return out, nil
}

// classValue picks the tracked class from a node value vector. Single-output
// boosted trees carry one raw value per node.
func (t *TreePath) classValue(value []float64) (float64, error) {
	if len(value) == 0 {
		return 0, eris.New("explain: tree node has no value")
	}
	if len(value) == 1 {
		return value[0], nil
	}
	if t.Class < 0 || t.Class >= len(value) {
		return 0, eris.Errorf("explain: class %d outside %d-class node value", t.Class, len(value))
	}
	return value[t.Class], nil
}

// Rank orders contributions by absolute magnitude descending and truncates to
// topN. The sort is stable, so ties keep original feature order and output is
// fully deterministic.
func Rank(features []string, contributions []float64, topN int, names *Namer) ([]Attribution, error) {
	if len(features) != len(contributions) {
		return nil, eris.Errorf("explain: %d features for %d contributions", len(features), len(contributions))
	}

	idx := make([]int, len(features))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return math.Abs(contributions[idx[a]]) > math.Abs(contributions[idx[b]])
	})

	if topN > 0 && topN < len(idx) {
		idx = idx[:topN]
	}

	out := make([]Attribution, 0, len(idx))
	for _, i := range idx {
		v := round4(contributions[i])
		dir := DirectionDecreases
		if contributions[i] > 0 {
			dir = DirectionIncreases
		}
		out = append(out, Attribution{
			Feature:      names.Display(features[i]),
			Contribution: v,
			Direction:    dir,
		})
	}
	return out, nil
}

func round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }
