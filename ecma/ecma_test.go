package ecma_test

import (
	"strings"
	"testing"

	"github.com/corvid-labs/jsonschema"
	"github.com/corvid-labs/jsonschema/ecma"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    bool
	}{
		{`^\cc$`, "\u0003", true},
		{`^(?=.*\d)\w+$`, "abc1", true},
		{`^(?=.*\d)\w+$`, "abc", false},
		{`^(a)\1$`, "aa", true},
		{`^\d+$`, "12x", false},
	}
	for _, test := range tests {
		re, err := ecma.Compile(test.pattern)
		if err != nil {
			t.Fatalf("%s: %v", test.pattern, err)
		}
		if got := re.MatchString(test.input); got != test.want {
			t.Errorf("%s.MatchString(%q): got %v, want %v", test.pattern, test.input, got, test.want)
		}
		if re.String() != test.pattern {
			t.Errorf("String(): got %q, want %q", re.String(), test.pattern)
		}
	}
}

func TestCompileInvalid(t *testing.T) {
	if _, err := ecma.Compile(`(`); err == nil {
		t.Fatal("error expected")
	}
}

func TestUseRegexpEngine(t *testing.T) {
	schema, err := jsonschema.UnmarshalJSON(strings.NewReader(`{"type": "string", "pattern": "^\\cc$"}`))
	if err != nil {
		t.Fatal(err)
	}
	c := jsonschema.NewCompiler()
	c.UseRegexpEngine(ecma.Compile)
	if err := c.AddResource("schema.json", schema); err != nil {
		t.Fatal(err)
	}
	sch, err := c.Compile("schema.json")
	if err != nil {
		t.Fatal(err)
	}
	if !sch.IsValid("\u0003") {
		t.Error("control character should match")
	}
	if sch.IsValid("c") {
		t.Error("c should not match")
	}

	// go regexp rejects \c
	c = jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", schema); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Compile("schema.json"); err == nil {
		t.Error("go regexp engine should reject \\c")
	}
}
