package transform

import (
	"github.com/carebridge/oncorisk/internal/feature"
)

// DeriveAggregates collapses a binary column group into summary features:
// "any positive", "count of positives", and "any positive in a high-risk
// subgroup". The raw group columns and any listed now-redundant columns are
// dropped afterwards, so the output column set is strictly different from the
// input.
type DeriveAggregates struct {
	Group    []string
	HighRisk []string

	AnyName      string
	CountName    string
	HighRiskName string

	// DropExtra lists columns made redundant by the aggregates (e.g. raw
	// time-since-diagnosis columns).
	DropExtra []string
}

func (d *DeriveAggregates) Name() string { return "derive_aggregates" }

// Apply appends the three aggregates then drops the raw columns. Group
// columns absent from the record contribute nothing.
func (d *DeriveAggregates) Apply(rec *feature.Record) (*feature.Record, error) {
	out := rec.Clone()

	count := d.sumPositives(out, d.Group)
	highRisk := d.sumPositives(out, d.HighRisk)

	any := 0.0
	if count > 0 {
		any = 1.0
	}
	anyHigh := 0.0
	if highRisk > 0 {
		anyHigh = 1.0
	}

	if err := out.Append(d.AnyName, feature.Bin(any)); err != nil {
		return nil, err
	}
	if err := out.Append(d.CountName, feature.Num(count)); err != nil {
		return nil, err
	}
	if err := out.Append(d.HighRiskName, feature.Bin(anyHigh)); err != nil {
		return nil, err
	}

	drop := append(append([]string{}, d.Group...), d.DropExtra...)
	return out.Drop(drop...), nil
}

func (d *DeriveAggregates) sumPositives(rec *feature.Record, cols []string) float64 {
	sum := 0.0
	for _, col := range cols {
		if v, ok := rec.Get(col); ok && !v.Missing {
			sum += v.Num
		}
	}
	return sum
}
