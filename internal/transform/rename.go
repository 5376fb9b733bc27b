package transform

import (
	"github.com/carebridge/oncorisk/internal/feature"
)

// RenameColumns maps raw request field names onto the column names the fitted
// pipeline was trained with (e.g. "mutation_count" → "Mutation Count").
// Unmapped columns keep their name.
type RenameColumns struct {
	Mapping map[string]string
}

func (r *RenameColumns) Name() string { return "rename_columns" }

func (r *RenameColumns) Apply(rec *feature.Record) (*feature.Record, error) {
	return rec.Rename(func(name string) string {
		if mapped, ok := r.Mapping[name]; ok {
			return mapped
		}
		return name
	})
}
