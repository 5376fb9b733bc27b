package transform

import (
	"github.com/carebridge/oncorisk/internal/feature"
)

// RobustScale applies a pre-fit robust scaler, (x - center) / scale, to the
// listed numeric columns only. Indicator and encoded columns are left
// untouched. Listed columns absent from the record are skipped; a fitted
// scale of 0 leaves the column centered but unscaled.
type RobustScale struct {
	Columns []string
	Center  map[string]float64
	Scale   map[string]float64
}

func (r *RobustScale) Name() string { return "robust_scale" }

func (r *RobustScale) Apply(rec *feature.Record) (*feature.Record, error) {
	out := rec.Clone()
	for _, col := range r.Columns {
		v, ok := out.Get(col)
		if !ok || v.Missing {
			continue
		}
		scaled := v.Num - r.Center[col]
		if s := r.Scale[col]; s != 0 {
			scaled /= s
		}
		_ = out.Set(col, feature.Num(scaled))
	}
	return out, nil
}

// AverageMerge collapses two correlated scaled columns into one synthetic
// component by simple averaging (a cheap stand-in for the training-time PCA)
// and drops the originals. Both inputs must exist.
type AverageMerge struct {
	Left   string
	Right  string
	Output string
}

func (m *AverageMerge) Name() string { return "average_merge" }

func (m *AverageMerge) Apply(rec *feature.Record) (*feature.Record, error) {
	l, ok := rec.Get(m.Left)
	if !ok {
		return nil, &SchemaMismatchError{Stage: m.Name(), Column: m.Left}
	}
	r, ok := rec.Get(m.Right)
	if !ok {
		return nil, &SchemaMismatchError{Stage: m.Name(), Column: m.Right}
	}

	out := rec.Drop(m.Left, m.Right)
	if err := out.Append(m.Output, feature.Num((l.Num+r.Num)/2)); err != nil {
		return nil, err
	}
	return out, nil
}
