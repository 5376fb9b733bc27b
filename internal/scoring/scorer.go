package scoring

import (
	"fmt"

	"github.com/carebridge/oncorisk/internal/feature"
)

// InferenceError means model scoring failed — most often because the
// transformed record's column layout no longer matches what the model was fit
// on. That is pipeline/schema drift, fatal for the request and never retried.
type InferenceError struct {
	Reason string
	Err    error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference: %s", e.Reason)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// Scorer binds a pre-fit model to the exact column order it was fit with.
type Scorer struct {
	Model   Model
	Columns []string
	// Positive is the class index read as "the probability"; 1 for the
	// binary classifiers in every shipped variant.
	Positive int
}

// checkLayout verifies the transformed record matches the fitted layout in
// count and order.
func (s *Scorer) checkLayout(rec *feature.Record) error {
	cols := rec.Columns()
	if len(cols) != len(s.Columns) {
		return &InferenceError{Reason: fmt.Sprintf(
			"transformed record has %d columns, model was fit on %d", len(cols), len(s.Columns))}
	}
	for i, want := range s.Columns {
		if cols[i] != want {
			return &InferenceError{Reason: fmt.Sprintf(
				"column %d is %q, model was fit on %q", i, cols[i], want)}
		}
	}
	return nil
}

// Vector validates the layout and flattens the record into the model row.
func (s *Scorer) Vector(rec *feature.Record) ([]float64, error) {
	if err := s.checkLayout(rec); err != nil {
		return nil, err
	}
	row, err := rec.Vector()
	if err != nil {
		return nil, &InferenceError{Reason: "record not fully numeric after transform", Err: err}
	}
	return row, nil
}

// Score returns the positive-class probability for a transformed record.
func (s *Scorer) Score(rec *feature.Record) (float64, error) {
	probs, err := s.ScoreClasses(rec)
	if err != nil {
		return 0, err
	}
	if s.Positive >= len(probs) {
		return 0, &InferenceError{Reason: fmt.Sprintf(
			"positive class index %d outside %d-class output", s.Positive, len(probs))}
	}
	return probs[s.Positive], nil
}

// ScoreClasses returns the full per-class probability vector.
func (s *Scorer) ScoreClasses(rec *feature.Record) ([]float64, error) {
	row, err := s.Vector(rec)
	if err != nil {
		return nil, err
	}
	probs, err := s.Model.PredictProba(row)
	if err != nil {
		return nil, &InferenceError{Reason: "model scoring failed", Err: err}
	}
	return probs, nil
}
