package jsonschema

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/corvid-labs/jsonschema/kind"
)

var jsonTypes = []string{"null", "boolean", "number", "integer", "string", "array", "object"}

type typeValidator struct {
	types []string
}

func (t *typeValidator) matches(v any) bool {
	typ := jsonType(v)
	for _, want := range t.types {
		if want == typ || want == "integer" && typ == "number" && isInteger(v) {
			return true
		}
	}
	return false
}

func (t *typeValidator) IsValid(_ *Schema, v any) bool {
	return t.matches(v)
}

func (t *typeValidator) Validate(_ *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	if t.matches(v) {
		return noErrors
	}
	return fail(v, p, &kind.Type{Got: jsonType(v), Want: t.types})
}

func (t *typeValidator) String() string {
	return "type: " + strings.Join(t.types, "|")
}

func compileType(_ *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	var types []string
	switch v := obj["type"].(type) {
	case string:
		types = []string{v}
	case []any:
		types, _ = stringSlice(v)
	}
	if len(types) == 0 {
		return nil, &InvalidKeywordError{Location: sl.kw("type"), Want: "type name or non-empty array of type names", Got: obj["type"]}
	}
	for _, t := range types {
		if !slices.Contains(jsonTypes, t) {
			return nil, &InvalidKeywordError{Location: sl.kw("type"), Want: "one of " + strings.Join(jsonTypes, ", "), Got: t}
		}
	}
	return &typeValidator{types: types}, nil
}

// --

type enumValidator struct {
	values []any
}

func (e *enumValidator) IsValid(_ *Schema, v any) bool {
	for _, item := range e.values {
		if equals(v, item) {
			return true
		}
	}
	return false
}

func (e *enumValidator) Validate(s *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	if e.IsValid(s, v) {
		return noErrors
	}
	return fail(v, p, &kind.Enum{Got: v, Want: e.values})
}

func (e *enumValidator) String() string {
	return fmt.Sprintf("enum: %d values", len(e.values))
}

func compileEnum(_ *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	arr, ok := obj["enum"].([]any)
	if !ok {
		return nil, &InvalidKeywordError{Location: sl.kw("enum"), Want: "array", Got: obj["enum"]}
	}
	return &enumValidator{values: arr}, nil
}

// --

type constValidator struct {
	value any
}

func (c *constValidator) IsValid(_ *Schema, v any) bool {
	return equals(v, c.value)
}

func (c *constValidator) Validate(_ *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	if equals(v, c.value) {
		return noErrors
	}
	return fail(v, p, &kind.Const{Got: v, Want: c.value})
}

func (c *constValidator) String() string {
	return "const: " + describe(c.value)
}

func compileConst(_ *compileCtx, obj map[string]any, _ schemaLoc) (Validator, error) {
	return &constValidator{value: obj["const"]}, nil
}

// --

type formatValidator struct {
	f *Format
}

func (f *formatValidator) IsValid(_ *Schema, v any) bool {
	return f.f.Validate(v) == nil
}

func (f *formatValidator) Validate(_ *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	err := f.f.Validate(v)
	if err == nil {
		return noErrors
	}
	return fail(v, p, &kind.Format{Got: v, Want: f.f.Name, Err: err})
}

func (f *formatValidator) String() string {
	return "format: " + f.f.Name
}

// compileFormat returns nil when format is only an annotation: for
// drafts after 7 unless assertions are enabled, and for unknown names.
func compileFormat(ctx *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	name, ok := obj["format"].(string)
	if !ok {
		return nil, &InvalidKeywordError{Location: sl.kw("format"), Want: "string", Got: obj["format"]}
	}
	if !ctx.c.assertFormat && sl.draft().version >= 2019 {
		return nil, nil
	}
	if name == "regex" {
		engine := ctx.c.regexpEngine
		return &formatValidator{stringFormat("regex", func(s string) error {
			_, err := engine(s)
			return err
		})}, nil
	}
	f, ok := ctx.c.formats[name]
	if !ok {
		if f, ok = formats[name]; !ok {
			return nil, nil
		}
	}
	return &formatValidator{f}, nil
}
