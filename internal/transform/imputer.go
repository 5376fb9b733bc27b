package transform

import (
	"github.com/carebridge/oncorisk/internal/feature"
)

// Imputer fills remaining missing values column-by-column from fitted
// parameter tables: medians for continuous columns, modes for binary and
// encoded-categorical columns. Columns absent from the record are skipped,
// never invented.
type Imputer struct {
	Medians map[string]float64
	Modes   map[string]float64
}

func (im *Imputer) Name() string { return "imputer" }

// Apply walks the record in column order, so the fill sequence is
// deterministic regardless of map iteration.
func (im *Imputer) Apply(rec *feature.Record) (*feature.Record, error) {
	out := rec.Clone()
	for _, col := range out.Columns() {
		v, _ := out.Get(col)
		if !v.Missing {
			continue
		}
		if med, ok := im.Medians[col]; ok {
			_ = out.Set(col, feature.Num(med))
			continue
		}
		if mode, ok := im.Modes[col]; ok {
			filled := feature.Value{Num: mode, Kind: v.Kind}
			_ = out.Set(col, filled)
		}
	}
	return out, nil
}
