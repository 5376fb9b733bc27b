package guidance

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebridge/oncorisk/internal/risk"
)

func TestFields_Num(t *testing.T) {
	f := Fields{
		"float":  36.5,
		"int":    int(42),
		"string": " 12.5 ",
		"json":   json.Number("7"),
		"junk":   "not a number",
	}

	assert.Equal(t, 36.5, f.Num("float"))
	assert.Equal(t, 42.0, f.Num("int"))
	assert.Equal(t, 12.5, f.Num("string"))
	assert.Equal(t, 7.0, f.Num("json"))
	assert.Equal(t, 0.0, f.Num("junk"), "unparsable reads as zero, never an error")
	assert.Equal(t, 0.0, f.Num("absent"))
}

func TestFields_Flag(t *testing.T) {
	f := Fields{
		"yes":    "Yes",
		"no":     "No",
		"bool":   true,
		"one":    1,
		"zero":   0,
		"number": json.Number("1"),
	}

	assert.True(t, f.Flag("yes"))
	assert.False(t, f.Flag("no"))
	assert.True(t, f.Flag("bool"))
	assert.True(t, f.Flag("one"))
	assert.False(t, f.Flag("zero"))
	assert.True(t, f.Flag("number"))
	assert.False(t, f.Flag("absent"))
}

func TestFields_Str(t *testing.T) {
	f := Fields{"s": " Postmenopausal ", "n": 5}
	assert.Equal(t, "Postmenopausal", f.Str("s"))
	assert.Equal(t, "", f.Str("n"))
	assert.Equal(t, "", f.Str("absent"))
}

func testEngine() *Engine {
	return &Engine{
		Rules: []Rule{
			{
				Name: "elevated_marker",
				When: func(_ risk.Tier, f Fields) bool { return f.Num("CA125_Level") > 35 },
				Message: func(f Fields) string {
					return fmt.Sprintf("Elevated CA-125 (%g U/mL) warrants further evaluation.", f.Num("CA125_Level"))
				},
			},
			{
				Name:    "high_tier_referral",
				When:    func(tier risk.Tier, _ Fields) bool { return tier == "High Risk" },
				Message: func(Fields) string { return "Specialist referral recommended." },
			},
			{
				Name:    "smoking",
				When:    func(_ risk.Tier, f Fields) bool { return f.Flag("Smokes") },
				Message: func(Fields) string { return "Smoking cessation support is advised." },
			},
		},
		Closing: map[risk.Tier]string{
			"Low Risk":  "Continue routine screening.",
			"High Risk": "Discuss results with a clinician promptly.",
		},
	}
}

func TestRecommend_DeclarationOrderAndClosingLast(t *testing.T) {
	e := testEngine()

	recs := e.Recommend("High Risk", Fields{"CA125_Level": 40.0, "Smokes": "Yes"})
	assert.Equal(t, []string{
		"Elevated CA-125 (40 U/mL) warrants further evaluation.",
		"Specialist referral recommended.",
		"Smoking cessation support is advised.",
		"Discuss results with a clinician promptly.",
	}, recs)
}

func TestRecommend_NoMatchesStillCloses(t *testing.T) {
	e := testEngine()

	recs := e.Recommend("Low Risk", Fields{})
	assert.Equal(t, []string{"Continue routine screening."}, recs)
}

func TestRecommend_EachRuleInIsolation(t *testing.T) {
	e := testEngine()

	tests := []struct {
		name   string
		fields Fields
		want   string
	}{
		{"marker", Fields{"CA125_Level": 36}, "Elevated CA-125 (36 U/mL) warrants further evaluation."},
		{"smoking", Fields{"Smokes": 1}, "Smoking cessation support is advised."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := e.Recommend("Low Risk", tt.fields)
			require.Len(t, recs, 2)
			assert.Equal(t, tt.want, recs[0])
			assert.Equal(t, "Continue routine screening.", recs[1])
		})
	}
}

func TestRecommend_BoundaryIsExclusive(t *testing.T) {
	e := testEngine()

	recs := e.Recommend("Low Risk", Fields{"CA125_Level": 35.0})
	assert.Equal(t, []string{"Continue routine screening."}, recs,
		"a value exactly at the rule threshold must not fire a strict-greater rule")
}

func TestValidate(t *testing.T) {
	e := testEngine()
	assert.NoError(t, e.Validate([]risk.Tier{"Low Risk", "High Risk"}))

	err := e.Validate([]risk.Tier{"Low Risk", "Moderate Risk", "High Risk"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Moderate Risk")

	broken := &Engine{Rules: []Rule{{Name: "half"}}, Closing: map[risk.Tier]string{"Low": "x"}}
	err = broken.Validate([]risk.Tier{"Low"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "half")
}
