// Package features builds the ordered feature vector a trained fraud
// classifier expects from a raw transaction record. Categorical attributes
// are expanded into one-hot indicator columns; numeric attributes are
// carried through as-is.
package features

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Record is a flat raw transaction: attribute name to scalar value
// (number or category string).
type Record map[string]any

// CategoricalMapping maps a raw attribute name to the prefix of its
// one-hot encoded columns. Hand-authored, static per model.
type CategoricalMapping map[string]string

// Vector is a single-row frame keyed by the model's expected feature list,
// in that exact order. Immutable after Build.
type Vector struct {
	columns []string
	values  []float64
	index   map[string]int
}

// Build maps a raw record onto the expected feature list.
//
// Every expected feature starts at 0. Attributes absent from the
// categorical mapping are treated as numeric and assigned when their name
// is an expected feature; otherwise they are dropped with a warning.
// Attributes present in the mapping derive a candidate one-hot column
// "{prefix}_{value}" which is set to 1 when expected, otherwise dropped
// with a warning so the slot stays 0.
func Build(rec Record, expected []string, cats CategoricalMapping) (*Vector, error) {
	if len(expected) == 0 {
		return nil, fmt.Errorf("expected feature list is empty")
	}

	index := make(map[string]int, len(expected))
	for i, name := range expected {
		index[name] = i
	}

	values := make([]float64, len(expected))

	for name, raw := range rec {
		prefix, categorical := cats[name]
		if !categorical {
			v, ok := toFloat(raw)
			if !ok {
				log.Warn().Str("attribute", name).Interface("value", raw).
					Msg("non-numeric value for numeric attribute, dropping")
				continue
			}
			i, ok := index[name]
			if !ok {
				log.Warn().Str("attribute", name).
					Msg("attribute not in expected features, dropping")
				continue
			}
			values[i] = v
			continue
		}

		column := fmt.Sprintf("%s_%v", prefix, raw)
		i, ok := index[column]
		if !ok {
			log.Warn().Str("attribute", name).Str("column", column).
				Msg("one-hot column not in expected features, dropping")
			continue
		}
		values[i] = 1
	}

	cols := make([]string, len(expected))
	copy(cols, expected)

	return &Vector{columns: cols, values: values, index: index}, nil
}

// Columns returns the feature names in model order.
func (v *Vector) Columns() []string {
	return v.columns
}

// Values returns the feature values aligned with Columns.
func (v *Vector) Values() []float64 {
	return v.values
}

// Len returns the number of features.
func (v *Vector) Len() int {
	return len(v.columns)
}

// Get returns the value for a feature name.
func (v *Vector) Get(name string) (float64, bool) {
	i, ok := v.index[name]
	if !ok {
		return 0, false
	}
	return v.values[i], true
}

// Has reports whether the vector carries a column.
func (v *Vector) Has(name string) bool {
	_, ok := v.index[name]
	return ok
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
