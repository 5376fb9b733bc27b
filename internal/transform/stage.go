// Package transform implements the fitted preprocessing chain: each stage
// holds parameters learned at training time and replays them deterministically
// against a single feature record. Stage order is fixed per pipeline variant —
// every stage's output column set is the next stage's required input.
package transform

import (
	"fmt"

	"github.com/carebridge/oncorisk/internal/feature"
)

// SchemaMismatchError means a stage did not find a column it was fit with.
// That is artifact/schema version skew, a defect, never a user error.
type SchemaMismatchError struct {
	Stage  string
	Column string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: stage %q expects column %q", e.Stage, e.Column)
}

// Stage is one fitted preprocessing step. Apply returns a new record and
// never mutates its input; fitted parameters are read-only for the process
// lifetime, so stages are safe to share across concurrent requests.
type Stage interface {
	Name() string
	Apply(rec *feature.Record) (*feature.Record, error)
}

// Pipeline chains stages in fitted order.
type Pipeline struct {
	stages []Stage
}

// NewPipeline builds a pipeline from stages in the order given.
func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Apply runs every stage in order, aborting on the first failure.
func (p *Pipeline) Apply(rec *feature.Record) (*feature.Record, error) {
	cur := rec
	for _, s := range p.stages {
		next, err := s.Apply(cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// Select pins the exact column set and order the downstream model was fit on.
type Select struct {
	StageName string
	Columns   []string
}

func (s *Select) Name() string { return s.StageName }

// Apply reorders to the fitted layout, dropping everything else.
func (s *Select) Apply(rec *feature.Record) (*feature.Record, error) {
	out := feature.NewRecord(len(s.Columns))
	for _, col := range s.Columns {
		v, ok := rec.Get(col)
		if !ok {
			return nil, &SchemaMismatchError{Stage: s.Name(), Column: col}
		}
		_ = out.Append(col, v)
	}
	return out, nil
}
