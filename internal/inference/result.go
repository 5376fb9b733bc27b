package inference

import (
	"math"

	"github.com/carebridge/oncorisk/internal/explain"
)

// Secondary is the multi-task variants' categorical prediction, decoded
// through the fixed label encoder.
type Secondary struct {
	Label              string             `json:"label"`
	Confidence         float64            `json:"confidence"`
	ClassProbabilities map[string]float64 `json:"class_probabilities"`
}

// Result is the JSON-serializable response for one inference request. All
// floating values are rounded to 4 decimals; risk tiers render as their fixed
// string literals.
type Result struct {
	Probability     float64               `json:"probability"`
	Prediction      *int                  `json:"prediction,omitempty"`
	RiskTier        string                `json:"risk_tier"`
	RiskColor       string                `json:"risk_color,omitempty"`
	Thresholds      map[string]float64    `json:"thresholds"`
	Attribution     []explain.Attribution `json:"attribution"`
	Recommendations []string              `json:"recommendations"`
	Secondary       *Secondary            `json:"secondary_prediction,omitempty"`
	SurvivalLabel   string                `json:"survival_prediction,omitempty"`
	Disclaimer      string                `json:"disclaimer,omitempty"`
}

// ModelInfo describes a loaded variant for the /model-info endpoint.
type ModelInfo struct {
	Name        string             `json:"model_name"`
	ModelType   string             `json:"model_type"`
	Version     string             `json:"version"`
	Features    []string           `json:"features"`
	Thresholds  map[string]float64 `json:"thresholds"`
	Subtypes    []string           `json:"subtypes,omitempty"`
	Limitations []string           `json:"limitations,omitempty"`
}

func round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }
