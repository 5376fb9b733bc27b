package transform

import (
	"github.com/carebridge/oncorisk/internal/feature"
)

// OneHot expands one raw categorical column into the fixed dummy columns the
// model was fit with. The pre-declared baseline category is implicitly
// dropped: it is never materialized as a column. Unknown category values (and
// missing ones) map to all-zero dummies silently.
type OneHot struct {
	Column string
	// Categories lists the non-baseline categories in fitted dummy order.
	Categories []string
	// Prefix forms dummy names as Prefix + category
	// (e.g. "Race Category_" + "White").
	Prefix string
}

func (o *OneHot) Name() string { return "one_hot" }

// Apply drops the raw column and appends the dummies in fitted order.
func (o *OneHot) Apply(rec *feature.Record) (*feature.Record, error) {
	v, ok := rec.Get(o.Column)
	if !ok {
		return nil, &SchemaMismatchError{Stage: o.Name(), Column: o.Column}
	}

	out := rec.Drop(o.Column)
	for _, cat := range o.Categories {
		hit := 0.0
		if !v.Missing && v.Cat == cat {
			hit = 1.0
		}
		if err := out.Append(o.Prefix+cat, feature.Bin(hit)); err != nil {
			return nil, err
		}
	}
	return out, nil
}
