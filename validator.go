package jsonschema

import (
	"iter"
	"strings"

	"github.com/corvid-labs/jsonschema/kind"
)

// Validator is the compiled form of a single keyword, or of a whole
// schema node holding several keywords.
//
// Validators are immutable once compiled and hold no per-call state,
// so they may be used from many goroutines at once.
type Validator interface {
	// IsValid reports whether v satisfies the constraint. It stops at
	// the first violation and never constructs errors.
	IsValid(s *Schema, v any) bool

	// Validate yields the violations of the constraint by v, which is
	// located at p within the instance. It yields nothing exactly when
	// IsValid returns true.
	Validate(s *Schema, v any, p *Path) iter.Seq[*ValidationError]

	// String describes the compiled constraint.
	String() string
}

// noErrors is the sequence of a successful validation.
func noErrors(func(*ValidationError) bool) {}

func fail(v any, p *Path, k ErrorKind) iter.Seq[*ValidationError] {
	return func(yield func(*ValidationError) bool) {
		yield(&ValidationError{InstanceLocation: p.Tokens(), Value: v, ErrorKind: k})
	}
}

func failWith(v any, p *Path, k ErrorKind, causes []*ValidationError) iter.Seq[*ValidationError] {
	return func(yield func(*ValidationError) bool) {
		yield(&ValidationError{InstanceLocation: p.Tokens(), Value: v, ErrorKind: k, Causes: causes})
	}
}

func collect(seq iter.Seq[*ValidationError]) []*ValidationError {
	var errs []*ValidationError
	for e := range seq {
		errs = append(errs, e)
	}
	return errs
}

// --

// node is a compiled schema object: the logical AND of its keywords,
// kept in compile order.
type node struct {
	loc      string
	keywords []Validator
}

func (n *node) IsValid(s *Schema, v any) bool {
	if jsonType(v) == "" {
		return false
	}
	for _, kw := range n.keywords {
		if !kw.IsValid(s, v) {
			return false
		}
	}
	return true
}

func (n *node) Validate(s *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	if jsonType(v) == "" {
		return func(yield func(*ValidationError) bool) {
			yield(&ValidationError{SchemaURL: n.loc, InstanceLocation: p.Tokens(), Value: v, ErrorKind: &kind.InvalidJsonValue{Value: v}})
		}
	}
	return func(yield func(*ValidationError) bool) {
		for _, kw := range n.keywords {
			for e := range kw.Validate(s, v, p) {
				if e.SchemaURL == "" {
					e.SchemaURL = n.loc
				}
				if !yield(e) {
					return
				}
			}
		}
	}
}

func (n *node) String() string {
	if len(n.keywords) == 0 {
		return n.loc + " {}"
	}
	kws := make([]string, len(n.keywords))
	for i, kw := range n.keywords {
		kws[i] = kw.String()
	}
	return n.loc + " {" + strings.Join(kws, ", ") + "}"
}

// --

// boolSchema is the compiled form of true/false used as a schema.
type boolSchema struct {
	loc   string
	allow bool
}

func (b *boolSchema) IsValid(*Schema, any) bool {
	return b.allow
}

func (b *boolSchema) Validate(_ *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	if b.allow {
		return noErrors
	}
	return func(yield func(*ValidationError) bool) {
		yield(&ValidationError{SchemaURL: b.loc, InstanceLocation: p.Tokens(), Value: v, ErrorKind: &kind.FalseSchema{}})
	}
}

func (b *boolSchema) String() string {
	if b.allow {
		return "true"
	}
	return "false"
}

// --

// refValidator defers to the node at target in the schema arena.
// targets are resolved through the *Schema at validation time, which
// keeps recursive schemas from being expanded at compile time.
type refValidator struct {
	url    string
	target int
}

func (r *refValidator) IsValid(s *Schema, v any) bool {
	return s.nodes[r.target].IsValid(s, v)
}

func (r *refValidator) Validate(s *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	return s.nodes[r.target].Validate(s, v, p)
}

func (r *refValidator) String() string {
	return "$ref: " + quote(r.url)
}
