package transform

import (
	"regexp"
	"strings"

	"github.com/carebridge/oncorisk/internal/feature"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// SanitizeName normalizes one column name to the allowed character set:
// runs of anything outside [A-Za-z0-9_] collapse to a single underscore,
// then leading/trailing underscores are trimmed.
// "STDs: Number of diagnosis" → "STDs_Number_of_diagnosis".
func SanitizeName(name string) string {
	return strings.Trim(unsafeChars.ReplaceAllString(name, "_"), "_")
}

// NameSanitizer rewrites every column name via SanitizeName. Downstream
// consumers (the model's fitted column list, attribution display names) match
// on sanitized names.
type NameSanitizer struct{}

func (NameSanitizer) Name() string { return "name_sanitizer" }

func (NameSanitizer) Apply(rec *feature.Record) (*feature.Record, error) {
	return rec.Rename(SanitizeName)
}
