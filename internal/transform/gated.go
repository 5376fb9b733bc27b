package transform

import (
	"github.com/carebridge/oncorisk/internal/feature"
)

// GatedImpute handles a column group whose values only make sense when a
// gating flag is positive (the STD sub-fields in the cervical pipeline).
//
// Gate evaluation happens before any per-field fill:
//   - gate == Negative: every dependent column is forced to 0 regardless of
//     its raw value;
//   - otherwise: missing continuous dependents get their fitted median,
//     missing binary dependents get 0.
//
// Dependent columns absent from the record are skipped. A missing gate value
// is treated as not-negative, so dependents are imputed rather than zeroed.
type GatedImpute struct {
	Gate       string
	Negative   float64
	BinaryDeps []string
	// Medians holds the fitted per-column medians for continuous dependents,
	// iterated via MedianOrder so fills are reproducible.
	Medians     map[string]float64
	MedianOrder []string
}

func (g *GatedImpute) Name() string { return "gated_impute" }

// Apply replays the conditional fill.
func (g *GatedImpute) Apply(rec *feature.Record) (*feature.Record, error) {
	out := rec.Clone()

	gateNegative := false
	if gv, ok := out.Get(g.Gate); ok && !gv.Missing && gv.Num == g.Negative {
		gateNegative = true
	}

	if gateNegative {
		for _, col := range g.BinaryDeps {
			if out.Has(col) {
				_ = out.Set(col, feature.Bin(0))
			}
		}
		for _, col := range g.medianCols() {
			if out.Has(col) {
				_ = out.Set(col, feature.Num(0))
			}
		}
		return out, nil
	}

	for _, col := range g.medianCols() {
		if v, ok := out.Get(col); ok && v.Missing {
			_ = out.Set(col, feature.Num(g.Medians[col]))
		}
	}
	for _, col := range g.BinaryDeps {
		if v, ok := out.Get(col); ok && v.Missing {
			_ = out.Set(col, feature.Bin(0))
		}
	}
	return out, nil
}

func (g *GatedImpute) medianCols() []string {
	if len(g.MedianOrder) > 0 {
		return g.MedianOrder
	}
	cols := make([]string, 0, len(g.Medians))
	for col := range g.Medians {
		cols = append(cols, col)
	}
	return cols
}
