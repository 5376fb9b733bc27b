// Package risk maps a calibrated probability to a discrete ordered risk tier
// using fixed, fitted cut-points.
package risk

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Tier is a fixed risk label ("Low Risk", "Intermediate", ...). Values come
// from the threshold set a variant was loaded with.
type Tier string

// Cut promotes a probability to Tier when prob >= Value.
type Cut struct {
	Value float64
	Tier  Tier
}

// ThresholdSet partitions [0,1] into contiguous, non-overlapping tiers.
// Lowest is the tier below the first cut; Cuts are ascending. The boundary
// rule is uniform across variants: a probability exactly equal to a cut
// belongs to the higher tier.
type ThresholdSet struct {
	Lowest Tier
	Cuts   []Cut
}

// Validate checks the cuts strictly increase inside [0,1] and every tier is
// named.
func (t ThresholdSet) Validate() error {
	var errs []string
	if t.Lowest == "" {
		errs = append(errs, "lowest tier name is empty")
	}
	if len(t.Cuts) == 0 {
		errs = append(errs, "at least one cut is required")
	}
	prev := 0.0
	for _, c := range t.Cuts {
		if c.Tier == "" {
			errs = append(errs, "cut tier name is empty")
		}
		if c.Value <= prev || c.Value >= 1 {
			errs = append(errs, "cuts must be strictly increasing inside (0,1)")
			break
		}
		prev = c.Value
	}
	if len(errs) > 0 {
		return eris.Errorf("risk: invalid thresholds: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Classify returns the tier for a probability. Pure, constant time.
func (t ThresholdSet) Classify(prob float64) Tier {
	tier := t.Lowest
	for _, c := range t.Cuts {
		if prob >= c.Value {
			tier = c.Tier
		}
	}
	return tier
}

// Tiers returns every tier label in ascending risk order.
func (t ThresholdSet) Tiers() []Tier {
	out := make([]Tier, 0, len(t.Cuts)+1)
	out = append(out, t.Lowest)
	for _, c := range t.Cuts {
		out = append(out, c.Tier)
	}
	return out
}
