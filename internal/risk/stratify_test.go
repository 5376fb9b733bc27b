package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeTier() ThresholdSet {
	return ThresholdSet{
		Lowest: "Low Risk",
		Cuts: []Cut{
			{Value: 0.3, Tier: "Moderate Risk"},
			{Value: 0.65, Tier: "High Risk"},
		},
	}
}

func TestClassify(t *testing.T) {
	ts := threeTier()

	tests := []struct {
		name string
		prob float64
		want Tier
	}{
		{"zero", 0, "Low Risk"},
		{"below first cut", 0.2999, "Low Risk"},
		{"exactly first cut promotes", 0.3, "Moderate Risk"},
		{"mid band", 0.5, "Moderate Risk"},
		{"just below second cut", 0.64999, "Moderate Risk"},
		{"exactly second cut promotes", 0.65, "High Risk"},
		{"above second cut", 0.70, "High Risk"},
		{"one", 1, "High Risk"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ts.Classify(tt.prob))
		})
	}
}

func TestClassify_EveryProbabilityGetsExactlyOneTier(t *testing.T) {
	ts := threeTier()
	for p := 0.0; p <= 1.0; p += 0.001 {
		tier := ts.Classify(p)
		assert.Contains(t, ts.Tiers(), tier, "probability %f", p)
	}
}

func TestTiers_AscendingOrder(t *testing.T) {
	assert.Equal(t, []Tier{"Low Risk", "Moderate Risk", "High Risk"}, threeTier().Tiers())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		ts      ThresholdSet
		wantErr bool
	}{
		{"valid", threeTier(), false},
		{"no cuts", ThresholdSet{Lowest: "Low"}, true},
		{"empty lowest name", ThresholdSet{Cuts: []Cut{{Value: 0.5, Tier: "High"}}}, true},
		{"empty cut name", ThresholdSet{Lowest: "Low", Cuts: []Cut{{Value: 0.5}}}, true},
		{"non-increasing cuts", ThresholdSet{
			Lowest: "Low",
			Cuts:   []Cut{{Value: 0.6, Tier: "Mid"}, {Value: 0.4, Tier: "High"}},
		}, true},
		{"cut at zero", ThresholdSet{Lowest: "Low", Cuts: []Cut{{Value: 0, Tier: "High"}}}, true},
		{"cut at one", ThresholdSet{Lowest: "Low", Cuts: []Cut{{Value: 1, Tier: "High"}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ts.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
