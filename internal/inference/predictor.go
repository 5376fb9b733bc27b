// Package inference wires the full per-request call chain: raw fields →
// feature record → fitted transforms → calibrated score → risk tier +
// attribution → clinical guidance → result object. Every stage is a pure
// function of (fitted artifacts, request input), so predictors are safe to
// share across concurrent requests without locking.
package inference

import (
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/carebridge/oncorisk/internal/explain"
	"github.com/carebridge/oncorisk/internal/feature"
	"github.com/carebridge/oncorisk/internal/guidance"
	"github.com/carebridge/oncorisk/internal/risk"
	"github.com/carebridge/oncorisk/internal/scoring"
	"github.com/carebridge/oncorisk/internal/transform"
)

// Task is one (transform chain, scorer) pair. The attribution explainer is
// the only lazily-built state; it is constructed exactly once and read-only
// afterwards.
type Task struct {
	Pipeline *transform.Pipeline
	Scorer   *scoring.Scorer

	NewExplainer func() (explain.Explainer, error)

	once       sync.Once
	explainer  explain.Explainer
	explainErr error
}

// Explainer returns the task's attribution explainer, building it on first
// use.
func (t *Task) Explainer() (explain.Explainer, error) {
	t.once.Do(func() {
		if t.NewExplainer == nil {
			return
		}
		t.explainer, t.explainErr = t.NewExplainer()
	})
	return t.explainer, t.explainErr
}

// Predictor is one fully-assembled pipeline variant.
type Predictor struct {
	Variant string
	Schema  feature.Schema

	Primary *Task
	// Subtype is the optional secondary classification task (multi-task
	// variants only); it runs concurrently with Primary.
	Subtype *Task
	Encoder *scoring.LabelEncoder

	Thresholds    risk.ThresholdSet
	ThresholdEcho map[string]float64

	Guidance *guidance.Engine
	Namer    *explain.Namer
	TopN     int

	RiskColors map[risk.Tier]string
	Disclaimer string
	// EmitPrediction adds the 0.5-cut binary prediction to the result.
	EmitPrediction bool
	// PosLabel/NegLabel, when set, add a 0.5-cut outcome label
	// ("DECEASED"/"LIVING") to the result.
	PosLabel string
	NegLabel string

	Info ModelInfo
}

// Infer runs the full chain for one request. Validation errors abort before
// any transform; schema and inference errors abort immediately with no
// partial response; attribution failures degrade to an empty list.
func (p *Predictor) Infer(raw map[string]any) (*Result, error) {
	rec, err := feature.Build(raw, p.Schema)
	if err != nil {
		return nil, err
	}

	var (
		prob       float64
		primaryRow []float64
		secondary  *Secondary
	)

	runPrimary := func() error {
		transformed, err := p.Primary.Pipeline.Apply(rec)
		if err != nil {
			return err
		}
		row, err := p.Primary.Scorer.Vector(transformed)
		if err != nil {
			return err
		}
		probs, err := p.Primary.Scorer.Model.PredictProba(row)
		if err != nil {
			return &scoring.InferenceError{Reason: "model scoring failed", Err: err}
		}
		primaryRow = row
		prob = probs[p.Primary.Scorer.Positive]
		return nil
	}

	if p.Subtype != nil {
		var g errgroup.Group
		g.Go(runPrimary)
		g.Go(func() error {
			sec, err := p.classifySubtype(rec)
			if err != nil {
				return err
			}
			secondary = sec
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else if err := runPrimary(); err != nil {
		return nil, err
	}

	tier := p.Thresholds.Classify(prob)

	result := &Result{
		Probability:     round4(prob),
		RiskTier:        string(tier),
		RiskColor:       p.RiskColors[tier],
		Thresholds:      p.ThresholdEcho,
		Attribution:     p.attribute(primaryRow),
		Recommendations: p.Guidance.Recommend(tier, guidance.Fields(raw)),
		Secondary:       secondary,
		Disclaimer:      p.Disclaimer,
	}

	if p.EmitPrediction {
		pred := 0
		if prob >= 0.5 {
			pred = 1
		}
		result.Prediction = &pred
	}
	if p.PosLabel != "" {
		result.SurvivalLabel = p.NegLabel
		if prob >= 0.5 {
			result.SurvivalLabel = p.PosLabel
		}
	}

	return result, nil
}

// classifySubtype runs the secondary task and decodes its class prediction.
func (p *Predictor) classifySubtype(rec *feature.Record) (*Secondary, error) {
	transformed, err := p.Subtype.Pipeline.Apply(rec)
	if err != nil {
		return nil, err
	}
	probs, err := p.Subtype.Scorer.ScoreClasses(transformed)
	if err != nil {
		return nil, err
	}
	if p.Encoder == nil || len(probs) != len(p.Encoder.Classes) {
		return nil, &scoring.InferenceError{Reason: "subtype class count does not match label encoder"}
	}

	best := 0
	for i, v := range probs {
		if v > probs[best] {
			best = i
		}
	}
	label, err := p.Encoder.Decode(best)
	if err != nil {
		return nil, &scoring.InferenceError{Reason: "subtype label decode failed", Err: err}
	}

	classProbs := make(map[string]float64, len(probs))
	for i, name := range p.Encoder.Classes {
		classProbs[name] = round4(probs[i])
	}

	return &Secondary{
		Label:              label,
		Confidence:         round4(probs[best]),
		ClassProbabilities: classProbs,
	}, nil
}

// attribute ranks the top contributing features for the primary prediction.
// Attribution is explanatory only: any failure logs a warning and yields an
// empty list rather than failing the request.
func (p *Predictor) attribute(row []float64) []explain.Attribution {
	empty := make([]explain.Attribution, 0)

	ex, err := p.Primary.Explainer()
	if err != nil || ex == nil {
		if err != nil {
			zap.L().Warn("inference: attribution explainer unavailable",
				zap.String("variant", p.Variant), zap.Error(err))
		}
		return empty
	}

	contribs, err := ex.Contributions(row)
	if err != nil {
		zap.L().Warn("inference: attribution failed",
			zap.String("variant", p.Variant), zap.Error(err))
		return empty
	}

	ranked, err := explain.Rank(p.Primary.Scorer.Columns, contribs, p.TopN, p.Namer)
	if err != nil {
		zap.L().Warn("inference: attribution ranking failed",
			zap.String("variant", p.Variant), zap.Error(err))
		return empty
	}
	return ranked
}
