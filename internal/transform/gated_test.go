package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebridge/oncorisk/internal/feature"
)

func gatedStage() *GatedImpute {
	return &GatedImpute{
		Gate:        "STDs",
		Negative:    0,
		BinaryDeps:  []string{"STDs:HIV", "STDs:HPV"},
		Medians:     map[string]float64{"STDs (number)": 1},
		MedianOrder: []string{"STDs (number)"},
	}
}

func TestGatedImpute_NegativeGateZeroesDependents(t *testing.T) {
	rec := feature.NewRecord(4)
	require.NoError(t, rec.Append("STDs", feature.Bin(0)))
	// Contradictory raw input: gate says no STDs but a sub-field claims one.
	require.NoError(t, rec.Append("STDs:HIV", feature.Bin(1)))
	require.NoError(t, rec.Append("STDs:HPV", feature.Missing(feature.Binary)))
	require.NoError(t, rec.Append("STDs (number)", feature.Num(3)))

	out, err := gatedStage().Apply(rec)
	require.NoError(t, err)

	for _, col := range []string{"STDs:HIV", "STDs:HPV", "STDs (number)"} {
		v, ok := out.Get(col)
		require.True(t, ok, col)
		assert.False(t, v.Missing, col)
		assert.Zero(t, v.Num, "%s must be forced to 0 when the gate is negative", col)
	}
}

func TestGatedImpute_PositiveGateImputes(t *testing.T) {
	rec := feature.NewRecord(4)
	require.NoError(t, rec.Append("STDs", feature.Bin(1)))
	require.NoError(t, rec.Append("STDs:HIV", feature.Missing(feature.Binary)))
	require.NoError(t, rec.Append("STDs:HPV", feature.Bin(1)))
	require.NoError(t, rec.Append("STDs (number)", feature.Missing(feature.Numeric)))

	out, err := gatedStage().Apply(rec)
	require.NoError(t, err)

	hiv, _ := out.Get("STDs:HIV")
	assert.Equal(t, 0.0, hiv.Num, "missing binary dependent fills with 0")
	hpv, _ := out.Get("STDs:HPV")
	assert.Equal(t, 1.0, hpv.Num, "present dependent is untouched")
	n, _ := out.Get("STDs (number)")
	assert.Equal(t, 1.0, n.Num, "missing continuous dependent fills with its median")
}

func TestGatedImpute_MissingGateImputesRatherThanZeroes(t *testing.T) {
	rec := feature.NewRecord(3)
	require.NoError(t, rec.Append("STDs", feature.Missing(feature.Binary)))
	require.NoError(t, rec.Append("STDs:HIV", feature.Bin(1)))
	require.NoError(t, rec.Append("STDs (number)", feature.Missing(feature.Numeric)))

	out, err := gatedStage().Apply(rec)
	require.NoError(t, err)

	hiv, _ := out.Get("STDs:HIV")
	assert.Equal(t, 1.0, hiv.Num)
	n, _ := out.Get("STDs (number)")
	assert.Equal(t, 1.0, n.Num)
}

func TestGatedImpute_AbsentDependentsSkipped(t *testing.T) {
	rec := feature.NewRecord(1)
	require.NoError(t, rec.Append("STDs", feature.Bin(0)))

	out, err := gatedStage().Apply(rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"STDs"}, out.Columns())
}

func TestGatedImpute_DoesNotMutateInput(t *testing.T) {
	rec := feature.NewRecord(2)
	require.NoError(t, rec.Append("STDs", feature.Bin(0)))
	require.NoError(t, rec.Append("STDs:HIV", feature.Bin(1)))

	_, err := gatedStage().Apply(rec)
	require.NoError(t, err)

	v, _ := rec.Get("STDs:HIV")
	assert.Equal(t, 1.0, v.Num)
}
