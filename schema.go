package jsonschema

import (
	"iter"

	"github.com/corvid-labs/jsonschema/kind"
)

// A Schema represents compiled version of json-schema.
//
// A Schema is immutable. It can be used by multiple goroutines
// to validate different instances at the same time.
type Schema struct {
	Location string // absolute location
	Draft    *Draft

	// nodes is the arena of compiled schema nodes; validators refer
	// to subschemas by index into it.
	nodes []Validator
	root  int
}

func (s *Schema) String() string {
	return s.Location
}

// Describe renders the compiled validator tree of the root node.
func (s *Schema) Describe() string {
	return s.nodes[s.root].String()
}

// IsValid tells whether v conforms to the schema.
// It stops at the first violation and allocates no errors.
//
// v must be a json value as returned by UnmarshalJSON, that is one of
// nil, bool, json.Number, float64, string, []any or map[string]any.
// Go integer and float types are accepted as numbers.
func (s *Schema) IsValid(v any) bool {
	return s.nodes[s.root].IsValid(s, v)
}

// Errors returns the violations of the schema by v, in keyword order.
// The sequence is lazy: errors are produced only as the caller
// ranges over them, so taking the first error is cheap.
func (s *Schema) Errors(v any) iter.Seq[*ValidationError] {
	return s.nodes[s.root].Validate(s, v, nil)
}

// ErrorsAt is like Errors, but treats v as located at p within
// some enclosing instance.
func (s *Schema) ErrorsAt(v any, p *Path) iter.Seq[*ValidationError] {
	return s.nodes[s.root].Validate(s, v, p)
}

// Validate validates given value v, against the json-schema s.
//
// returns *ValidationError if v does not confirm with schema s,
// with all the violations as its Causes.
func (s *Schema) Validate(v any) error {
	errs := collect(s.Errors(v))
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{
		SchemaURL:        s.Location,
		InstanceLocation: []string{},
		Value:            v,
		ErrorKind:        &kind.Schema{Location: s.Location},
		Causes:           errs,
	}
}
