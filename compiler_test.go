package jsonschema

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestCompiler_AddResource(t *testing.T) {
	c := NewCompiler()
	err := c.AddResource("main.json", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id": map[string]any{
				"type":   "string",
				"format": "uuid",
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	c.AssertFormat()
	sch, err := c.Compile("main.json")
	if err != nil {
		t.Fatal(err)
	}
	if err := sch.Validate(map[string]any{"id": "00000000-0000-0000-0000-000000000000"}); err != nil {
		t.Fatal(err)
	}
	if err := sch.Validate(map[string]any{"id": "0000"}); err == nil {
		t.Fatal("want error for invalid uuid")
	}
}

func TestCompiler_IDAndAnchor(t *testing.T) {
	c := NewCompiler()
	err := c.AddResource("http://example.com/root.json", decodeJSON(t, `{
		"$id": "http://example.com/root.json",
		"$defs": {
			"name": {"$anchor": "name", "type": "string"},
			"item": {"$id": "item.json", "type": "integer"}
		},
		"properties": {
			"n": {"$ref": "#name"},
			"items": {"items": {"$ref": "item.json"}}
		}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	sch, err := c.Compile("http://example.com/root.json")
	if err != nil {
		t.Fatal(err)
	}
	if !sch.IsValid(decodeJSON(t, `{"n": "x", "items": [1, 2]}`)) {
		t.Error("valid instance rejected")
	}
	for _, inst := range []string{`{"n": 1}`, `{"items": [1, "2"]}`} {
		if sch.IsValid(decodeJSON(t, inst)) {
			t.Errorf("%s: invalid instance accepted", inst)
		}
	}

	// subschemas can be compiled by their own id, or by anchor
	item, err := c.Compile("http://example.com/item.json")
	if err != nil {
		t.Fatal(err)
	}
	if item.IsValid("x") {
		t.Error("item.json accepted string")
	}
	name, err := c.Compile("http://example.com/root.json#name")
	if err != nil {
		t.Fatal(err)
	}
	if name.IsValid(1) {
		t.Error("#name accepted number")
	}
}

func TestCompiler_LegacyIDAnchor(t *testing.T) {
	sch := mustCompileSchema(t, `{
		`+draft7Schema+`,
		"definitions": {"a": {"$id": "#pos", "minimum": 0}},
		"items": {"$ref": "#pos"}
	}`)
	if sch.IsValid(decodeJSON(t, `[1, -1]`)) {
		t.Error("invalid instance accepted")
	}
}

func TestCompiler_RetrievalURLDiffersFromID(t *testing.T) {
	sch := mustCompileSchema(t, `{
		"$id": "http://example.com/s.json",
		"$ref": "#pos",
		"$defs": {"pos": {"$anchor": "pos", "minimum": 0}}
	}`)
	if sch.IsValid(-1) || !sch.IsValid(1) {
		t.Error("anchor not resolved against $id")
	}
}

func TestCompiler_RemoteRef(t *testing.T) {
	c := NewCompiler()
	c.UseLoader(MapLoader{
		"http://example.com/main.json": decodeJSON(t, `{"items": {"$ref": "defs.json#/$defs/even"}}`),
		"http://example.com/defs.json": decodeJSON(t, `{"$defs": {"even": {"type": "integer", "multipleOf": 2}}}`),
	})
	sch, err := c.Compile("http://example.com/main.json")
	if err != nil {
		t.Fatal(err)
	}
	errs := collect(sch.Errors(decodeJSON(t, `[2, 3]`)))
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if want := "http://example.com/defs.json#/$defs/even/multipleOf"; errs[0].KeywordLocation() != want {
		t.Errorf("got %q, want %q", errs[0].KeywordLocation(), want)
	}
}

func TestCompiler_LoadURLError(t *testing.T) {
	c := NewCompiler()
	c.UseLoader(MapLoader{
		"http://example.com/main.json": decodeJSON(t, `{"$ref": "missing.json"}`),
	})
	_, err := c.Compile("http://example.com/main.json")
	var serr *SchemaError
	if !errors.As(err, &serr) {
		t.Fatalf("got %T, want *SchemaError", err)
	}
	var lerr *LoadURLError
	if !errors.As(err, &lerr) {
		t.Fatalf("got %v, want LoadURLError", err)
	}
	if lerr.URL != "http://example.com/missing.json" {
		t.Errorf("got url %q", lerr.URL)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("want os.ErrNotExist in chain: %v", err)
	}
}

func TestCompiler_UnsupportedScheme(t *testing.T) {
	_, err := NewCompiler().Compile("ftp://example.com/schema.json")
	var uerr *UnsupportedURLSchemeError
	if !errors.As(err, &uerr) {
		t.Fatalf("got %v, want UnsupportedURLSchemeError", err)
	}
}

func TestCompiler_FromFile(t *testing.T) {
	dir := t.TempDir()
	writeFile := func(name, content string) string {
		path := dir + "/" + name
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}
	writeFile("defs.json", `{"$defs": {"price": {"multipleOf": 0.01}}}`)
	main := writeFile("main.json", `{"properties": {"price": {"$ref": "defs.json#/$defs/price"}}}`)

	sch, err := Compile(main)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(sch.Location, "file://") {
		t.Errorf("location %q is not a file url", sch.Location)
	}
	if !sch.IsValid(decodeJSON(t, `{"price": 0.1}`)) || sch.IsValid(decodeJSON(t, `{"price": 0.015}`)) {
		t.Error("wrong result")
	}
}

func TestCompiler_Drafts(t *testing.T) {
	tests := []struct {
		schema string
		want   *Draft
	}{
		{`{}`, Draft2020},
		{`{` + draft4Schema + `}`, Draft4},
		{`{"$schema": "http://json-schema.org/draft-06/schema#"}`, Draft6},
		{`{` + draft7Schema + `}`, Draft7},
		{`{"$schema": "https://json-schema.org/draft/2019-09/schema"}`, Draft2019},
		{`{"$schema": "https://json-schema.org/draft/2020-12/schema"}`, Draft2020},
		{`{"$schema": "http://example.com/my-meta-schema"}`, Draft2020},
	}
	for _, test := range tests {
		sch := mustCompileSchema(t, test.schema)
		if sch.Draft != test.want {
			t.Errorf("%s: got %v, want %v", test.schema, sch.Draft, test.want)
		}
	}

	c := NewCompiler()
	c.DefaultDraft(Draft4)
	sch, err := compileSchema(c, `{"maximum": 1, "exclusiveMaximum": true}`)
	if err != nil {
		t.Fatal(err)
	}
	if sch.Draft != Draft4 || sch.IsValid(1) {
		t.Errorf("default draft not applied")
	}
}

func TestCompiler_InfiniteLoop(t *testing.T) {
	for _, schema := range []string{
		`{"$ref": "#"}`,
		`{"allOf": [{"$ref": "#"}]}`,
		`{"$defs": {"a": {"$ref": "#/$defs/b"}, "b": {"anyOf": [{"$ref": "#/$defs/a"}]}}, "not": {"$ref": "#/$defs/a"}}`,
		`{"if": {"$ref": "#"}, "then": true}`,
	} {
		_, err := compileSchema(NewCompiler(), schema)
		var lerr *InfiniteLoopError
		if !errors.As(err, &lerr) {
			t.Errorf("%s: got %v, want InfiniteLoopError", schema, err)
		}
	}
}

func TestCompiler_RecursiveSchema(t *testing.T) {
	sch := mustCompileSchema(t, `{
		"type": "object",
		"properties": {
			"children": {"type": "array", "items": {"$ref": "#"}}
		}
	}`)
	if !sch.IsValid(decodeJSON(t, `{"children": [{"children": []}, {}]}`)) {
		t.Error("valid tree rejected")
	}
	errs := collect(sch.Errors(decodeJSON(t, `{"children": [{"children": [1]}]}`)))
	if len(errs) != 1 || joinTokens(errs[0].InstanceLocation) != "/children/0/children/0" {
		t.Errorf("got %v", errs)
	}
}

func TestCompiler_UnknownKeywords(t *testing.T) {
	schema := `{"title": "x", "$comment": "y", "minimun": 1}`
	if _, err := compileSchema(NewCompiler(), schema); err != nil {
		t.Fatalf("unknown keywords must be ignored by default: %v", err)
	}

	c := NewCompiler()
	c.DisallowUnknownKeywords()
	_, err := compileSchema(c, schema)
	var kerr *UnknownKeywordError
	if !errors.As(err, &kerr) {
		t.Fatalf("got %v, want UnknownKeywordError", err)
	}
	if !strings.HasSuffix(kerr.Location, "#/minimun") {
		t.Errorf("location: got %q", kerr.Location)
	}
}

func TestCompiler_UnsupportedKeywords(t *testing.T) {
	for _, schema := range []string{
		`{"unevaluatedProperties": false}`,
		`{"items": {"unevaluatedItems": false}}`,
		`{"$dynamicRef": "#meta"}`,
		`{"$schema": "https://json-schema.org/draft/2019-09/schema", "$recursiveRef": "#"}`,
	} {
		_, err := compileSchema(NewCompiler(), schema)
		var uerr *UnsupportedKeywordError
		if !errors.As(err, &uerr) {
			t.Errorf("%s: got %v, want UnsupportedKeywordError", schema, err)
		}
	}
	// draft-07 does not define them
	if _, err := compileSchema(NewCompiler(), `{`+draft7Schema+`, "unevaluatedProperties": false}`); err != nil {
		t.Error(err)
	}
}

func TestCompiler_InvalidKeywords(t *testing.T) {
	tests := []struct {
		schema string
		want   any
	}{
		{`{"type": "foo"}`, &InvalidKeywordError{}},
		{`{"type": []}`, &InvalidKeywordError{}},
		{`{"minLength": -1}`, &InvalidKeywordError{}},
		{`{"maxItems": 1.5}`, &InvalidKeywordError{}},
		{`{"required": "a"}`, &InvalidKeywordError{}},
		{`{"allOf": []}`, &InvalidKeywordError{}},
		{`{"not": 1}`, &InvalidKeywordError{}},
		{`{"properties": {"a": 1}}`, &InvalidKeywordError{}},
		{`{"enum": {}}`, &InvalidKeywordError{}},
		{`{"format": 1}`, &InvalidKeywordError{}},
		{`{"uniqueItems": 1}`, &InvalidKeywordError{}},
		{`{` + draft7Schema + `, "dependencies": {"a": 1}}`, &InvalidKeywordError{}},
		{`{"pattern": "("}`, &InvalidRegexError{}},
		{`{"patternProperties": {"(": {}}}`, &InvalidRegexError{}},
		{`{"$ref": "#/$defs/missing"}`, &JSONPointerNotFoundError{}},
		{`{"$ref": "#missing"}`, &AnchorNotFoundError{}},
		{`1`, &InvalidKeywordError{}},
	}
	for _, test := range tests {
		_, err := compileSchema(NewCompiler(), test.schema)
		if err == nil {
			t.Errorf("%s: want error", test.schema)
			continue
		}
		var serr *SchemaError
		if !errors.As(err, &serr) {
			t.Errorf("%s: got %T, want *SchemaError", test.schema, err)
			continue
		}
		if got, want := fmt.Sprintf("%T", serr.Err), fmt.Sprintf("%T", test.want); got != want {
			t.Errorf("%s: got %s (%v), want %s", test.schema, got, serr.Err, want)
		}
	}
}

func TestCompiler_SeparateArenas(t *testing.T) {
	c := NewCompiler()
	if err := c.AddResource("a.json", decodeJSON(t, `{"$defs": {"s": {"type": "string"}, "n": {"type": "number"}}}`)); err != nil {
		t.Fatal(err)
	}
	s := c.MustCompile("a.json#/$defs/s")
	n := c.MustCompile("a.json#/$defs/n")
	if !s.IsValid("x") || s.IsValid(1) || !n.IsValid(1) || n.IsValid("x") {
		t.Error("schemas compiled from one document interfere")
	}
}

func TestCompiler_MustCompilePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("want panic")
		}
	}()
	c := NewCompiler()
	c.UseLoader(MapLoader{})
	c.MustCompile("http://example.com/missing.json")
}

func TestCompiler_RegisterFormat(t *testing.T) {
	c := NewCompiler()
	c.RegisterFormat(&Format{
		Name: "odd",
		Validate: func(v any) error {
			f, ok := toFloat(v)
			if !ok {
				return nil
			}
			if int64(f)%2 == 0 {
				return errors.New("not odd")
			}
			return nil
		},
	})
	sch, err := compileSchema(c, `{"format": "odd"}`)
	if err != nil {
		t.Fatal(err)
	}
	if !sch.IsValid(2) {
		t.Error("format asserted without AssertFormat")
	}

	c.AssertFormat()
	sch, err = compileSchema(c, `{"format": "odd"}`)
	if err != nil {
		t.Fatal(err)
	}
	if !sch.IsValid(3) || sch.IsValid(2) {
		t.Error("custom format not applied")
	}
}

func TestCompiler_RegexFormat(t *testing.T) {
	c := NewCompiler()
	c.AssertFormat()
	sch, err := compileSchema(c, `{"format": "regex"}`)
	if err != nil {
		t.Fatal(err)
	}
	if !sch.IsValid("^a+$") || sch.IsValid("(") {
		t.Error("regex format")
	}
}

func TestCompiler_AssertContent(t *testing.T) {
	schema := `{"contentEncoding": "base64", "contentMediaType": "application/json"}`
	c := NewCompiler()
	c.AssertContent()
	sch, err := compileSchema(c, schema)
	if err != nil {
		t.Fatal(err)
	}
	enc := base64.StdEncoding.EncodeToString
	tests := []struct {
		inst  any
		valid bool
	}{
		{enc([]byte(`{"a": 1}`)), true},
		{enc([]byte(`{"a": `)), false},
		{"!!", false},
		{1, true},
	}
	for _, test := range tests {
		if got := sch.IsValid(test.inst); got != test.valid {
			t.Errorf("%v: got %v, want %v", test.inst, got, test.valid)
		}
	}

	sch, err = compileSchema(c, `{"contentMediaType": "application/yaml"}`)
	if err != nil {
		t.Fatal(err)
	}
	if !sch.IsValid("a: [1, 2]") || sch.IsValid("a: [1, 2") {
		t.Error("yaml media type")
	}

	c.RegisterContentEncoding(&Decoder{Name: "hex", Decode: func(s string) ([]byte, error) {
		return nil, errors.New("no hex today")
	}})
	c.RegisterContentMediaType(&MediaType{Name: "text/plain", Validate: func([]byte) error { return nil }})
	sch, err = compileSchema(c, `{"contentEncoding": "hex", "contentMediaType": "text/plain"}`)
	if err != nil {
		t.Fatal(err)
	}
	if sch.IsValid("00") {
		t.Error("custom decoder not used")
	}
}
