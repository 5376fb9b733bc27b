package transform

import (
	"github.com/carebridge/oncorisk/internal/feature"
)

// MissingIndicator appends a binary "<col>_missing" column for each configured
// column, recording whether the value was absent before imputation. The stage
// must therefore run ahead of any imputer touching its columns; the pipeline
// variants are wired that way.
type MissingIndicator struct {
	Columns []string
}

func (m *MissingIndicator) Name() string { return "missing_indicator" }

// Apply appends the indicators in configured order. Columns absent from the
// record get no indicator.
func (m *MissingIndicator) Apply(rec *feature.Record) (*feature.Record, error) {
	out := rec.Clone()
	for _, col := range m.Columns {
		v, ok := out.Get(col)
		if !ok {
			continue
		}
		flag := 0.0
		if v.Missing {
			flag = 1.0
		}
		if err := out.Append(col+"_missing", feature.Bin(flag)); err != nil {
			return nil, err
		}
	}
	return out, nil
}
