// Package scoring wraps the pre-fit classifier artifacts. Models are opaque
// parameter sets loaded once at startup; the core only asks them for class
// probabilities.
package scoring

import (
	"math"

	"github.com/rotisserie/eris"
)

// Model is a pre-fit classifier. PredictProba returns one probability per
// class for a single feature row; implementations are read-only and safe for
// concurrent use.
type Model interface {
	NumFeatures() int
	PredictProba(row []float64) ([]float64, error)
}

// Linear is a fitted logistic-regression model: probability of the positive
// class is sigmoid(coef · x + intercept).
type Linear struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

func (m *Linear) NumFeatures() int { return len(m.Coefficients) }

func (m *Linear) PredictProba(row []float64) ([]float64, error) {
	if len(row) != len(m.Coefficients) {
		return nil, eris.Errorf("scoring: linear model fit on %d features, got %d",
			len(m.Coefficients), len(row))
	}
	z := m.Intercept
	for i, c := range m.Coefficients {
		z += c * row[i]
	}
	p := sigmoid(z)
	return []float64{1 - p, p}, nil
}

// Node is one split or leaf in a fitted decision tree. Leaf nodes have
// Feature == -1. Split convention follows the training library: go left when
// x[Feature] <= Threshold.
type Node struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value"`
}

// Tree is a fitted decision tree stored as a node array rooted at index 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Path returns the node indices visited for a row, root to leaf.
func (t *Tree) Path(row []float64) ([]int, error) {
	if len(t.Nodes) == 0 {
		return nil, eris.New("scoring: empty tree")
	}
	path := []int{0}
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return path, nil
		}
		if n.Feature >= len(row) {
			return nil, eris.Errorf("scoring: tree split on feature %d, row has %d", n.Feature, len(row))
		}
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
		if i < 0 || i >= len(t.Nodes) {
			return nil, eris.Errorf("scoring: tree child index %d out of range", i)
		}
		path = append(path, i)
	}
}

// Leaf returns the leaf node reached for a row.
func (t *Tree) Leaf(row []float64) (Node, error) {
	path, err := t.Path(row)
	if err != nil {
		return Node{}, err
	}
	return t.Nodes[path[len(path)-1]], nil
}

// EnsembleKind selects how tree outputs combine.
type EnsembleKind string

const (
	// Forest averages per-tree class distributions (random forest).
	Forest EnsembleKind = "forest"
	// Boosted sums per-tree raw scores and squashes through a sigmoid,
	// optionally Platt-calibrated (gradient boosting, binary only).
	Boosted EnsembleKind = "gbdt"
)

// Platt holds sigmoid calibration fitted on top of a boosted model's raw
// score: p = 1 / (1 + exp(A*raw + B)).
type Platt struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// TreeEnsemble is a fitted forest or boosted ensemble.
type TreeEnsemble struct {
	Kind        EnsembleKind `json:"kind"`
	Features    int          `json:"features"`
	Classes     int          `json:"classes"`
	Base        float64      `json:"base"`
	Trees       []Tree       `json:"trees"`
	Calibration *Platt       `json:"calibration,omitempty"`
}

func (m *TreeEnsemble) NumFeatures() int { return m.Features }

// Validate checks the ensemble is internally consistent after load.
func (m *TreeEnsemble) Validate() error {
	switch m.Kind {
	case Forest, Boosted:
	default:
		return eris.Errorf("scoring: unknown ensemble kind %q", m.Kind)
	}
	if len(m.Trees) == 0 {
		return eris.New("scoring: ensemble has no trees")
	}
	if m.Kind == Forest && m.Classes < 2 {
		return eris.New("scoring: forest needs at least two classes")
	}
	return nil
}

func (m *TreeEnsemble) PredictProba(row []float64) ([]float64, error) {
	if len(row) != m.Features {
		return nil, eris.Errorf("scoring: ensemble fit on %d features, got %d", m.Features, len(row))
	}

	switch m.Kind {
	case Forest:
		probs := make([]float64, m.Classes)
		for ti := range m.Trees {
			leaf, err := m.Trees[ti].Leaf(row)
			if err != nil {
				return nil, err
			}
			if len(leaf.Value) != m.Classes {
				return nil, eris.Errorf("scoring: leaf carries %d classes, want %d", len(leaf.Value), m.Classes)
			}
			for c, v := range leaf.Value {
				probs[c] += v
			}
		}
		for c := range probs {
			probs[c] /= float64(len(m.Trees))
		}
		return probs, nil

	case Boosted:
		raw := m.Base
		for ti := range m.Trees {
			leaf, err := m.Trees[ti].Leaf(row)
			if err != nil {
				return nil, err
			}
			if len(leaf.Value) == 0 {
				return nil, eris.New("scoring: boosted leaf has no value")
			}
			raw += leaf.Value[0]
		}
		p := sigmoid(raw)
		if m.Calibration != nil {
			p = 1 / (1 + math.Exp(m.Calibration.A*raw+m.Calibration.B))
		}
		return []float64{1 - p, p}, nil
	}
	return nil, eris.Errorf("scoring: unknown ensemble kind %q", m.Kind)
}

// LabelEncoder decodes class indices to names in the fixed fitted order.
type LabelEncoder struct {
	Classes []string `json:"classes"`
}

// Decode maps a class index to its name.
func (e *LabelEncoder) Decode(i int) (string, error) {
	if i < 0 || i >= len(e.Classes) {
		return "", eris.Errorf("scoring: class index %d outside encoder range %d", i, len(e.Classes))
	}
	return e.Classes[i], nil
}

func sigmoid(z float64) float64 { return 1 / (1 + math.Exp(-z)) }
