package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebridge/oncorisk/internal/feature"
)

func TestRobustScale(t *testing.T) {
	stage := &RobustScale{
		Columns: []string{"Age", "BMI", "Degenerate", "Absent"},
		Center:  map[string]float64{"Age": 50, "BMI": 25, "Degenerate": 10},
		Scale:   map[string]float64{"Age": 12, "BMI": 6, "Degenerate": 0},
	}

	rec := feature.NewRecord(4)
	require.NoError(t, rec.Append("Age", feature.Num(62)))
	require.NoError(t, rec.Append("BMI", feature.Missing(feature.Numeric)))
	require.NoError(t, rec.Append("Degenerate", feature.Num(13)))
	require.NoError(t, rec.Append("Flag", feature.Bin(1)))

	out, err := stage.Apply(rec)
	require.NoError(t, err)

	age, _ := out.Get("Age")
	assert.InDelta(t, 1.0, age.Num, 1e-12)

	bmi, _ := out.Get("BMI")
	assert.True(t, bmi.Missing, "missing values pass through untouched")

	deg, _ := out.Get("Degenerate")
	assert.Equal(t, 3.0, deg.Num, "zero fitted scale centers without dividing")

	flag, _ := out.Get("Flag")
	assert.Equal(t, 1.0, flag.Num, "unlisted columns are untouched")
}

func TestAverageMerge(t *testing.T) {
	rec := feature.NewRecord(3)
	require.NoError(t, rec.Append("Mutation Count", feature.Num(1.2)))
	require.NoError(t, rec.Append("Fraction Genome Altered", feature.Num(0.8)))
	require.NoError(t, rec.Append("Diagnosis Age", feature.Num(0.5)))

	stage := &AverageMerge{
		Left:   "Mutation Count",
		Right:  "Fraction Genome Altered",
		Output: "Genomic Instability",
	}
	out, err := stage.Apply(rec)
	require.NoError(t, err)

	assert.Equal(t, []string{"Diagnosis Age", "Genomic Instability"}, out.Columns())
	v, _ := out.Get("Genomic Instability")
	assert.InDelta(t, 1.0, v.Num, 1e-12)
}

func TestAverageMerge_MissingInputIsSchemaMismatch(t *testing.T) {
	rec := feature.NewRecord(1)
	require.NoError(t, rec.Append("Mutation Count", feature.Num(1)))

	stage := &AverageMerge{Left: "Mutation Count", Right: "Fraction Genome Altered", Output: "Genomic Instability"}
	_, err := stage.Apply(rec)

	var serr *SchemaMismatchError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "Fraction Genome Altered", serr.Column)
}
