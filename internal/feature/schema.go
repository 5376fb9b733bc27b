// Package feature defines the ordered, typed feature table that flows through
// the preprocessing pipeline, and the builder that constructs it from raw
// request fields.
package feature

// Kind is the declared type of a schema field.
type Kind int

const (
	// Numeric is a continuous value (age, lab measurement, years).
	Numeric Kind = iota
	// Binary is a 0/1 flag, accepting Yes/No style raw input.
	Binary
	// Categorical is a free string category resolved later by one-hot encoding.
	Categorical
)

// FieldSpec declares one raw input field: its name, type, and whether the
// request must carry the key at all.
type FieldSpec struct {
	Name     string
	Kind     Kind
	Required bool
}

// Schema is the ordered list of raw fields a pipeline variant was fit with.
// Order is load-bearing: the builder emits columns in schema order, and the
// fitted transforms and model expect exactly that order.
type Schema []FieldSpec

// Names returns the field names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Lookup returns the declaration for a field name.
func (s Schema) Lookup(name string) (FieldSpec, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}
