package feature

import (
	"github.com/rotisserie/eris"
)

// Value is a single cell: either a number, a category string, or the explicit
// missing sentinel. The zero Value is a missing numeric.
type Value struct {
	Num     float64
	Cat     string
	Kind    Kind
	Missing bool
}

// Num returns a present numeric value.
func Num(v float64) Value { return Value{Num: v, Kind: Numeric} }

// Bin returns a present 0/1 value.
func Bin(v float64) Value { return Value{Num: v, Kind: Binary} }

// Cat returns a present categorical value.
func Cat(s string) Value { return Value{Cat: s, Kind: Categorical} }

// Missing returns the missing sentinel for a kind.
func Missing(k Kind) Value { return Value{Kind: k, Missing: true} }

// Record is an ordered column → value table for one subject. Columns keep
// insertion order; transforms never mutate a shared record, they clone first.
type Record struct {
	names []string
	index map[string]int
	vals  []Value
}

// NewRecord returns an empty record with capacity for n columns.
func NewRecord(n int) *Record {
	return &Record{
		names: make([]string, 0, n),
		index: make(map[string]int, n),
		vals:  make([]Value, 0, n),
	}
}

// Append adds a column at the end. Duplicate names are rejected.
func (r *Record) Append(name string, v Value) error {
	if _, ok := r.index[name]; ok {
		return eris.Errorf("feature: duplicate column %q", name)
	}
	r.index[name] = len(r.names)
	r.names = append(r.names, name)
	r.vals = append(r.vals, v)
	return nil
}

// Get returns the value of a column.
func (r *Record) Get(name string) (Value, bool) {
	i, ok := r.index[name]
	if !ok {
		return Value{}, false
	}
	return r.vals[i], true
}

// Has reports whether a column exists.
func (r *Record) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Set overwrites an existing column in place.
func (r *Record) Set(name string, v Value) error {
	i, ok := r.index[name]
	if !ok {
		return eris.Errorf("feature: no column %q", name)
	}
	r.vals[i] = v
	return nil
}

// Len returns the number of columns.
func (r *Record) Len() int { return len(r.names) }

// Columns returns a copy of the column names in order.
func (r *Record) Columns() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Clone returns an independent copy. Stages clone before mutating so the
// caller's record is never touched.
func (r *Record) Clone() *Record {
	c := NewRecord(len(r.names))
	for i, name := range r.names {
		_ = c.Append(name, r.vals[i])
	}
	return c
}

// Drop returns a copy without the named columns. Names absent from the record
// are ignored.
func (r *Record) Drop(names ...string) *Record {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	c := NewRecord(len(r.names))
	for i, name := range r.names {
		if drop[name] {
			continue
		}
		_ = c.Append(name, r.vals[i])
	}
	return c
}

// Rename returns a copy with every column name passed through fn. A collision
// between renamed columns is an error.
func (r *Record) Rename(fn func(string) string) (*Record, error) {
	c := NewRecord(len(r.names))
	for i, name := range r.names {
		if err := c.Append(fn(name), r.vals[i]); err != nil {
			return nil, eris.Wrap(err, "feature: rename collision")
		}
	}
	return c, nil
}

// Select returns a copy holding exactly the named columns in the given order.
// A missing column is an error: the caller declares the exact layout it needs.
func (r *Record) Select(names []string) (*Record, error) {
	c := NewRecord(len(names))
	for _, name := range names {
		v, ok := r.Get(name)
		if !ok {
			return nil, eris.Errorf("feature: column %q not present", name)
		}
		_ = c.Append(name, v)
	}
	return c, nil
}

// Vector flattens the record into the model input row. It fails if any column
// is still missing or categorical: those must have been resolved by the
// pipeline before scoring.
func (r *Record) Vector() ([]float64, error) {
	row := make([]float64, len(r.vals))
	for i, v := range r.vals {
		if v.Missing {
			return nil, eris.Errorf("feature: column %q is still missing", r.names[i])
		}
		if v.Kind == Categorical {
			return nil, eris.Errorf("feature: column %q is still categorical", r.names[i])
		}
		row[i] = v.Num
	}
	return row, nil
}
