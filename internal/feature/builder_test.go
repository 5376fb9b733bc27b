package feature

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() Schema {
	return Schema{
		{Name: "Age", Kind: Numeric, Required: true},
		{Name: "Smokes", Kind: Binary, Required: true},
		{Name: "MenopauseStatus", Kind: Categorical, Required: true},
		{Name: "CA125_Level", Kind: Numeric, Required: false},
	}
}

func TestBuild_SchemaOrder(t *testing.T) {
	rec, err := Build(map[string]any{
		"CA125_Level":     12.5,
		"MenopauseStatus": "Postmenopausal",
		"Smokes":          "Yes",
		"Age":             52,
	}, testSchema())
	require.NoError(t, err)

	assert.Equal(t, []string{"Age", "Smokes", "MenopauseStatus", "CA125_Level"}, rec.Columns())
}

func TestBuild_MissingRequiredListsEveryField(t *testing.T) {
	_, err := Build(map[string]any{"Age": 40}, testSchema())
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Smokes", "MenopauseStatus"}, verr.Missing)
	assert.Contains(t, verr.Error(), "Smokes")
	assert.Contains(t, verr.Error(), "MenopauseStatus")
}

func TestBuild_EveryRequiredFieldIsChecked(t *testing.T) {
	schema := testSchema()
	full := map[string]any{
		"Age": 40, "Smokes": 1, "MenopauseStatus": "Premenopausal", "CA125_Level": 10,
	}
	for _, f := range schema {
		if !f.Required {
			continue
		}
		t.Run(f.Name, func(t *testing.T) {
			raw := make(map[string]any, len(full))
			for k, v := range full {
				raw[k] = v
			}
			delete(raw, f.Name)

			_, err := Build(raw, schema)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, []string{f.Name}, verr.Missing)
		})
	}
}

func TestBuild_MissingSentinel(t *testing.T) {
	tests := []struct {
		name string
		raw  any
	}{
		{"empty string", ""},
		{"whitespace string", "  "},
		{"null", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Build(map[string]any{
				"Age": tt.raw, "Smokes": 0, "MenopauseStatus": "Premenopausal",
			}, testSchema())
			require.NoError(t, err)

			v, ok := rec.Get("Age")
			require.True(t, ok)
			assert.True(t, v.Missing, "empty input must become the missing sentinel, not zero")
		})
	}
}

func TestBuild_AbsentOptionalFieldIsMissing(t *testing.T) {
	rec, err := Build(map[string]any{
		"Age": 40, "Smokes": 0, "MenopauseStatus": "Premenopausal",
	}, testSchema())
	require.NoError(t, err)

	v, ok := rec.Get("CA125_Level")
	require.True(t, ok)
	assert.True(t, v.Missing)
}

func TestBuild_Coercion(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		raw  any
		want float64
	}{
		{"numeric string", Numeric, "42.5", 42.5},
		{"numeric int", Numeric, 42, 42},
		{"numeric json number", Numeric, json.Number("17"), 17},
		{"binary yes", Binary, "Yes", 1},
		{"binary no", Binary, "No", 0},
		{"binary true bool", Binary, true, 1},
		{"binary one", Binary, 1, 1},
		{"binary zero", Binary, 0, 0},
		{"binary string one", Binary, "1", 1},
		{"binary nonzero number", Binary, 3, 1},
		{"binary unrecognized string falls back to no-flag", Binary, "Maybe", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := coerce(tt.raw, tt.kind)
			require.True(t, ok)
			require.False(t, v.Missing)
			assert.Equal(t, tt.want, v.Num)
		})
	}
}

func TestBuild_MalformedNumeric(t *testing.T) {
	_, err := Build(map[string]any{
		"Age": "forty", "Smokes": 0, "MenopauseStatus": "Premenopausal",
	}, testSchema())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Age"}, verr.Malformed)
}

func TestBuild_UnknownFieldsDropped(t *testing.T) {
	rec, err := Build(map[string]any{
		"Age": 40, "Smokes": 0, "MenopauseStatus": "Premenopausal",
		"not_in_schema": 99,
	}, testSchema())
	require.NoError(t, err)

	assert.False(t, rec.Has("not_in_schema"), "no unknown field may survive into the model input")
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	raw := map[string]any{"Age": 40, "Smokes": "Yes", "MenopauseStatus": "Premenopausal"}
	_, err := Build(raw, testSchema())
	require.NoError(t, err)

	assert.Equal(t, "Yes", raw["Smokes"])
	assert.Len(t, raw, 3)
}
