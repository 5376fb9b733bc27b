// Package guidance attaches rule-based clinical recommendations to a scored
// prediction. Rules are a declarative ordered list evaluated against the risk
// tier and the original pre-transform field values; every matching rule
// contributes, in declaration order, and a tier-specific closing line always
// ends the list.
package guidance

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/carebridge/oncorisk/internal/risk"
)

// Fields exposes the raw request values to rule predicates with conservative
// defaults: a missing or unparsable field reads as zero / empty / no-flag,
// never an error.
type Fields map[string]any

// Num reads a numeric field, defaulting to 0.
func (f Fields) Num(name string) float64 {
	switch v := f[name].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return n
	default:
		if j, ok := f[name].(interface{ Float64() (float64, error) }); ok {
			if n, err := j.Float64(); err == nil {
				return n
			}
		}
		return 0
	}
}

// Str reads a string field, defaulting to "".
func (f Fields) Str(name string) string {
	if v, ok := f[name].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// Flag reads a Yes/No style field as a boolean, defaulting to false.
func (f Fields) Flag(name string) bool {
	switch v := f[name].(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes", "true", "1":
			return true
		}
		return false
	default:
		return f.Num(name) != 0
	}
}

// Rule is one (predicate, text) pair. Message receives the fields so rule
// text can quote the offending value.
type Rule struct {
	Name    string
	When    func(tier risk.Tier, f Fields) bool
	Message func(f Fields) string
}

// Engine evaluates an ordered rule list plus per-tier closing lines.
type Engine struct {
	Rules   []Rule
	Closing map[risk.Tier]string
}

// Validate checks every tier has a closing line and every rule is complete.
func (e *Engine) Validate(tiers []risk.Tier) error {
	var errs []string
	for _, tier := range tiers {
		if e.Closing[tier] == "" {
			errs = append(errs, "no closing recommendation for tier "+string(tier))
		}
	}
	for _, r := range e.Rules {
		if r.When == nil || r.Message == nil {
			errs = append(errs, "rule "+r.Name+" is incomplete")
		}
	}
	if len(errs) > 0 {
		return eris.Errorf("guidance: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Recommend evaluates every rule in declaration order — no short-circuiting,
// no priority beyond that order — and appends the tier closing line last.
// Total function: never fails given validated fields.
func (e *Engine) Recommend(tier risk.Tier, f Fields) []string {
	var out []string
	for _, r := range e.Rules {
		if r.When(tier, f) {
			out = append(out, r.Message(f))
		}
	}
	if closing, ok := e.Closing[tier]; ok {
		out = append(out, closing)
	}
	return out
}
