package restraint

import (
	"errors"
	"fmt"
	"math"
)

// Constants are the normalization spans for a scoring run: the peptide
// sequence length Ls and the protein bounding extents Lx/Ly/Lz. They are
// passed explicitly into every computation; there is no package-level state.
type Constants struct {
	Ls float64 `json:"ls" yaml:"ls"`
	Lx float64 `json:"lx" yaml:"lx"`
	Ly float64 `json:"ly" yaml:"ly"`
	Lz float64 `json:"lz" yaml:"lz"`
}

// Record is one distance restraint between a protein atom and a peptide
// residue.
type Record struct {
	ID  string  `json:"id"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Z   float64 `json:"z"`
	SL  float64 `json:"sl"`  // peptide residue index
	WI  float64 `json:"wi"`  // evolutionary conservation weight, [0,1]
	Dij float64 `json:"dij"` // interatomic distance, >= 0
}

// Set is an ordered collection of restraint records. Scoring is a pure
// function of the set's contents; insertion order does not affect the score.
type Set []Record

// ErrEmptySet is returned when a scoring run is attempted with zero records.
var ErrEmptySet = errors.New("restraint set is empty")

// ConstantsError reports a normalization span that makes scoring undefined.
type ConstantsError struct {
	Field string
	Value float64
}

func (e *ConstantsError) Error() string {
	return fmt.Sprintf("invalid constant %s=%g: must be positive and finite", e.Field, e.Value)
}

// RecordError reports a single invalid restraint record.
type RecordError struct {
	ID     string
	Field  string
	Value  float64
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %s: %s=%g %s", e.ID, e.Field, e.Value, e.Reason)
}

// Validate checks that all four spans are positive and finite.
func (c Constants) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"ls", c.Ls},
		{"lx", c.Lx},
		{"ly", c.Ly},
		{"lz", c.Lz},
	}
	for _, ch := range checks {
		if ch.value <= 0 || math.IsNaN(ch.value) || math.IsInf(ch.value, 0) {
			return &ConstantsError{Field: ch.name, Value: ch.value}
		}
	}
	return nil
}

// Validate checks that all numeric fields are finite, dij is non-negative,
// and wi is within [0,1].
func (r Record) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"x", r.X},
		{"y", r.Y},
		{"z", r.Z},
		{"sl", r.SL},
		{"wi", r.WI},
		{"dij", r.Dij},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &RecordError{ID: r.ID, Field: f.name, Value: f.value, Reason: "is not finite"}
		}
	}
	if r.Dij < 0 {
		return &RecordError{ID: r.ID, Field: "dij", Value: r.Dij, Reason: "must be non-negative"}
	}
	if r.WI < 0 || r.WI > 1 {
		return &RecordError{ID: r.ID, Field: "wi", Value: r.WI, Reason: "must be within [0,1]"}
	}
	return nil
}

// Validate checks the whole set: non-empty, every record valid. Record
// errors are collected and joined so the caller sees every bad record,
// not just the first.
func (s Set) Validate() error {
	if len(s) == 0 {
		return ErrEmptySet
	}
	var errs []error
	for _, r := range s {
		if err := r.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
