package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebridge/oncorisk/internal/feature"
)

func raceStage() *OneHot {
	return &OneHot{
		Column:     "Race Category",
		Categories: []string{"Black or African American", "White"},
		Prefix:     "Race Category_",
	}
}

func TestOneHot(t *testing.T) {
	tests := []struct {
		name      string
		value     feature.Value
		wantBlack float64
		wantWhite float64
	}{
		{"known category", feature.Cat("White"), 0, 1},
		{"other known category", feature.Cat("Black or African American"), 1, 0},
		{"baseline category is all zeros", feature.Cat("Asian"), 0, 0},
		{"unknown category is all zeros", feature.Cat("Unknown"), 0, 0},
		{"missing is all zeros", feature.Missing(feature.Categorical), 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := feature.NewRecord(2)
			require.NoError(t, rec.Append("Race Category", tt.value))
			require.NoError(t, rec.Append("Diagnosis Age", feature.Num(60)))

			out, err := raceStage().Apply(rec)
			require.NoError(t, err)

			assert.Equal(t, []string{
				"Diagnosis Age",
				"Race Category_Black or African American",
				"Race Category_White",
			}, out.Columns(), "raw column dropped, dummies appended in fitted order")

			black, _ := out.Get("Race Category_Black or African American")
			white, _ := out.Get("Race Category_White")
			assert.Equal(t, tt.wantBlack, black.Num)
			assert.Equal(t, tt.wantWhite, white.Num)
		})
	}
}

func TestOneHot_MissingRawColumnIsSchemaMismatch(t *testing.T) {
	rec := feature.NewRecord(1)
	require.NoError(t, rec.Append("Diagnosis Age", feature.Num(60)))

	_, err := raceStage().Apply(rec)

	var serr *SchemaMismatchError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "Race Category", serr.Column)
}
