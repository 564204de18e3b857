package jsonschema

import (
	"strings"
	"testing"
)

const (
	draft4Schema = `"$schema": "http://json-schema.org/draft-04/schema#"`
	draft7Schema = `"$schema": "http://json-schema.org/draft-07/schema#"`
)

func TestKeywords(t *testing.T) {
	tests := []struct {
		schema  string
		valid   []string
		invalid []string
	}{
		{`true`, []string{`1`, `null`}, nil},
		{`false`, nil, []string{`1`, `null`}},
		{`{}`, []string{`1`, `{}`}, nil},

		{`{"type": "integer"}`, []string{`1`, `1.0`, `-7`}, []string{`1.5`, `"1"`}},
		{`{"type": ["string", "null"]}`, []string{`null`, `"a"`}, []string{`1`, `false`}},
		{`{"enum": [1, "a", [1]]}`, []string{`1`, `1.0`, `"a"`, `[1]`}, []string{`"b"`, `[1, 1]`}},
		{`{"const": {"a": 1}}`, []string{`{"a": 1.0}`}, []string{`{"a": 2}`, `{"a": 1, "b": 1}`}},

		{`{"minLength": 2}`, []string{`"ab"`, `5`}, []string{`"é"`, `""`}},
		{`{"maxLength": 1}`, []string{`"é"`, `""`}, []string{`"ab"`}},
		{`{"pattern": "^a"}`, []string{`"abc"`, `1`}, []string{`"ba"`}},

		{`{"minItems": 1}`, []string{`[1]`, `"x"`}, []string{`[]`}},
		{`{"maxItems": 1}`, []string{`[1]`}, []string{`[1, 2]`}},
		{`{"uniqueItems": true}`, []string{`[1, "1"]`, `[]`}, []string{`[1, 1.0]`, `[{"a": 1}, {"a": 1}]`}},
		{`{"uniqueItems": false}`, []string{`[1, 1]`}, nil},
		{`{"items": {"type": "number"}}`, []string{`[1, 2]`, `{}`}, []string{`[1, "a"]`}},
		{`{"prefixItems": [{"type": "string"}]}`, []string{`["a", 1]`, `[]`}, []string{`[1]`}},
		{`{"prefixItems": [{"type": "string"}], "items": false}`, []string{`["a"]`}, []string{`["a", 1]`, `[1]`}},
		{`{` + draft7Schema + `, "items": [{"type": "string"}], "additionalItems": false}`, []string{`["a"]`}, []string{`["a", "b"]`}},
		{`{` + draft7Schema + `, "items": [{"type": "string"}], "additionalItems": {"type": "number"}}`, []string{`["a", 1]`}, []string{`["a", "b"]`}},
		{`{` + draft7Schema + `, "items": {"type": "string"}}`, []string{`["a", "b"]`}, []string{`["a", 1]`}},
		{`{"contains": {"const": 2}}`, []string{`[1, 2]`}, []string{`[1]`, `[]`}},
		{`{"contains": {"const": 2}, "minContains": 2, "maxContains": 3}`, []string{`[2, 2]`, `[2, 1, 2, 2]`}, []string{`[2]`, `[2, 2, 2, 2]`}},
		{`{"contains": {"const": 2}, "minContains": 0}`, []string{`[]`, `[1]`}, nil},
		{`{` + draft7Schema + `, "contains": {"const": 2}, "minContains": 2}`, []string{`[2]`}, []string{`[1]`}},

		{`{"minProperties": 1}`, []string{`{"a": 1}`, `[]`}, []string{`{}`}},
		{`{"maxProperties": 1}`, []string{`{"a": 1}`}, []string{`{"a": 1, "b": 2}`}},
		{`{"required": ["a"]}`, []string{`{"a": null}`, `[]`}, []string{`{}`}},
		{`{"properties": {"a": {"type": "string"}}}`, []string{`{"a": "x"}`, `{"b": 1}`}, []string{`{"a": 1}`}},
		{`{"patternProperties": {"^x-": {"type": "string"}}}`, []string{`{"x-a": "1", "y": 1}`}, []string{`{"x-a": 1}`}},
		{
			`{"properties": {"a": true}, "patternProperties": {"^x-": true}, "additionalProperties": false}`,
			[]string{`{"a": 1, "x-b": 2}`, `{}`},
			[]string{`{"c": 1}`},
		},
		{`{"additionalProperties": {"type": "string"}}`, []string{`{"a": "x"}`}, []string{`{"a": 1}`}},
		{`{"propertyNames": {"maxLength": 3}}`, []string{`{"abc": 1}`}, []string{`{"abcd": 1}`}},
		{`{"dependentRequired": {"a": ["b"]}}`, []string{`{"a": 1, "b": 1}`, `{"b": 1}`}, []string{`{"a": 1}`}},
		{`{"dependentSchemas": {"a": {"required": ["b"]}}}`, []string{`{"a": 1, "b": 1}`, `{"b": 1}`}, []string{`{"a": 1}`}},
		{
			`{` + draft7Schema + `, "dependencies": {"a": ["b"], "c": {"required": ["d"]}}}`,
			[]string{`{"a": 1, "b": 1, "c": 1, "d": 1}`, `{}`},
			[]string{`{"a": 1}`, `{"c": 1}`},
		},

		{`{"allOf": [{"minimum": 1}, {"maximum": 3}]}`, []string{`2`}, []string{`4`, `0`}},
		{`{"anyOf": [{"type": "string"}, {"minimum": 10}]}`, []string{`"a"`, `10`}, []string{`5`}},
		{`{"oneOf": [{"minimum": 1}, {"maximum": 3}]}`, []string{`5`, `0`}, []string{`2`}},
		{`{"not": {"type": "string"}}`, []string{`1`}, []string{`"a"`}},
		{
			`{"if": {"minimum": 10}, "then": {"multipleOf": 2}, "else": {"maximum": 0}}`,
			[]string{`12`, `-1`}, []string{`11`, `5`},
		},
		{`{"if": {"minimum": 10}}`, []string{`1`, `11`}, nil},
		{`{"if": {"minimum": 10}, "then": false}`, []string{`1`}, []string{`11`}},

		{`{"$ref": "#/$defs/pos", "$defs": {"pos": {"minimum": 0}}}`, []string{`0`}, []string{`-1`}},
		{`{"$ref": "#/$defs/a", "$defs": {"a": {"type": "string"}}, "maxLength": 1}`, []string{`"x"`}, []string{`"xx"`, `1`}},
		// siblings of $ref are ignored before 2019-09
		{`{` + draft7Schema + `, "$ref": "#/definitions/a", "definitions": {"a": {"type": "string"}}, "type": "number"}`, []string{`"x"`}, []string{`1`}},
		{`{` + draft4Schema + `, "properties": {"a": {"$ref": "#/definitions/a"}}, "definitions": {"a": {"type": "string"}}}`, []string{`{"a": "x"}`}, []string{`{"a": 1}`}},

		// format and content are annotations by default from 2019-09
		{`{"format": "email"}`, []string{`"x"`}, nil},
		{`{` + draft7Schema + `, "format": "email"}`, []string{`"a@b.c"`, `1`}, []string{`"x"`}},
		{`{"format": "no-such-format"}`, []string{`"x"`}, nil},
		{`{"contentEncoding": "base64", "contentMediaType": "application/json"}`, []string{`"!!"`}, nil},
	}
	for _, test := range tests {
		sch := mustCompileSchema(t, test.schema)
		check := func(inst string, want bool) {
			v := decodeJSON(t, inst)
			if got := sch.IsValid(v); got != want {
				t.Errorf("%s, %s: IsValid got %v, want %v", test.schema, inst, got, want)
			}
			if got := len(collect(sch.Errors(v))) == 0; got != want {
				t.Errorf("%s, %s: Errors empty got %v, want %v", test.schema, inst, got, want)
			}
		}
		for _, inst := range test.valid {
			check(inst, true)
		}
		for _, inst := range test.invalid {
			check(inst, false)
		}
	}
}

func TestKeywords_Causes(t *testing.T) {
	tests := []struct {
		schema string
		inst   string
		causes int
	}{
		{`{"anyOf": [{"type": "string"}, {"minimum": 10}]}`, `5`, 2},
		{`{"oneOf": [{"type": "string"}, {"minimum": 10}]}`, `5`, 2},
		{`{"oneOf": [{"minimum": 1}, {"maximum": 3}]}`, `2`, 0},
		{`{"not": {"type": "integer"}}`, `5`, 0},
		{`{"if": true, "then": {"type": "string", "minLength": 2}}`, `5`, 1},
		{`{"contains": {"type": "string"}}`, `[1, 2]`, 2},
		{`{"propertyNames": {"pattern": "^a"}}`, `{"b": 1}`, 1},
	}
	for _, test := range tests {
		sch := mustCompileSchema(t, test.schema)
		errs := collect(sch.Errors(decodeJSON(t, test.inst)))
		if len(errs) != 1 {
			t.Errorf("%s, %s: got %d errors, want 1", test.schema, test.inst, len(errs))
			continue
		}
		if got := len(errs[0].Causes); got != test.causes {
			t.Errorf("%s, %s: got %d causes, want %d", test.schema, test.inst, got, test.causes)
		}
	}
}

func TestKeywords_Flattened(t *testing.T) {
	sch := mustCompileSchema(t, `{"allOf": [{"minimum": 10}, {"$ref": "#/$defs/even"}], "$defs": {"even": {"multipleOf": 2}}}`)
	errs := collect(sch.Errors(decodeJSON(t, `5`)))
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2", len(errs))
	}
	for i, suffix := range []string{"#/allOf/0/minimum", "#/$defs/even/multipleOf"} {
		if got := errs[i].KeywordLocation(); !strings.HasSuffix(got, suffix) {
			t.Errorf("error %d: got %q, want suffix %q", i, got, suffix)
		}
	}
}

