package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs a fresh jv command with the given args and captures stdout/stderr.
func executeCommand(stdin string, args ...string) (stdout, stderr string, err error) {
	var outBuf, errBuf bytes.Buffer
	root := NewRootCmd("test")
	root.SetOut(&outBuf)
	root.SetErr(&errBuf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err = root.Execute()
	return outBuf.String(), errBuf.String(), err
}

// writeTestFile creates a temporary file with the given content and returns its path.
func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const priceSchema = `{
  "type": "object",
  "properties": {
    "price": {"type": "number", "multipleOf": 0.01}
  },
  "required": ["price"]
}`

func TestValidate_Valid(t *testing.T) {
	schema := writeTestFile(t, "schema.json", priceSchema)
	doc := writeTestFile(t, "doc.json", `{"price": 0.1}`)

	stdout, _, err := executeCommand("", schema, doc)
	require.NoError(t, err)
	assert.Equal(t, doc+": ok\n", stdout)
}

func TestValidate_Invalid(t *testing.T) {
	schema := writeTestFile(t, "schema.json", priceSchema)
	good := writeTestFile(t, "good.json", `{"price": 12.34}`)
	bad := writeTestFile(t, "bad.json", `{"price": 0.015}`)

	stdout, _, err := executeCommand("", schema, good, bad)
	require.Error(t, err)
	assert.Equal(t, exitInvalid, Code(err))
	assert.Contains(t, err.Error(), "1 of 2 documents are invalid")
	assert.Contains(t, stdout, good+": ok")
	assert.Contains(t, stdout, bad+": jsonschema validation failed")
	assert.Contains(t, stdout, `at '/price': 0.015 is not a multiple of 0.01`)
}

func TestValidate_SchemaError(t *testing.T) {
	schema := writeTestFile(t, "schema.json", `{"multipleOf": 0}`)

	_, stderr, err := executeCommand("", schema)
	require.Error(t, err)
	assert.Equal(t, exitSchema, Code(err))
	assert.Contains(t, stderr, "multipleOf")
}

func TestValidate_MissingDocument(t *testing.T) {
	schema := writeTestFile(t, "schema.json", priceSchema)

	_, stderr, err := executeCommand("", schema, filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Equal(t, exitUsage, Code(err))
	assert.Contains(t, stderr, "loading document failed")
}

func TestValidate_NoArgs(t *testing.T) {
	_, _, err := executeCommand("")
	require.Error(t, err)
	assert.Equal(t, exitUsage, Code(err))
}

func TestValidate_BadOutputFlag(t *testing.T) {
	schema := writeTestFile(t, "schema.json", priceSchema)

	_, _, err := executeCommand("", "--output", "xml", schema)
	require.Error(t, err)
	assert.Equal(t, exitUsage, Code(err))
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestValidate_Stdin(t *testing.T) {
	schema := writeTestFile(t, "schema.json", priceSchema)

	stdout, _, err := executeCommand(`{"price": 3}`, schema, "-")
	require.NoError(t, err)
	assert.Equal(t, "-: ok\n", stdout)

	_, _, err = executeCommand(`{"cost": 3}`, schema, "-")
	assert.Equal(t, exitInvalid, Code(err))
}

func TestValidate_YAML(t *testing.T) {
	schema := writeTestFile(t, "schema.yaml", `
type: object
properties:
  count:
    type: integer
    minimum: 1
`)
	good := writeTestFile(t, "good.yml", "count: 3\n")
	bad := writeTestFile(t, "bad.yaml", "count: 0\n")

	stdout, _, err := executeCommand("", schema, good)
	require.NoError(t, err)
	assert.Equal(t, good+": ok\n", stdout)

	stdout, _, err = executeCommand("", schema, bad)
	assert.Equal(t, exitInvalid, Code(err))
	assert.Contains(t, stdout, "minimum: got 0, want 1")
}

func TestValidate_Quiet(t *testing.T) {
	schema := writeTestFile(t, "schema.json", priceSchema)
	bad := writeTestFile(t, "bad.json", `{"price": "free"}`)

	stdout, _, err := executeCommand("", "-q", schema, bad)
	assert.Equal(t, exitInvalid, Code(err))
	assert.Empty(t, stdout)
}

func TestValidate_FlagOutput(t *testing.T) {
	schema := writeTestFile(t, "schema.json", priceSchema)
	good := writeTestFile(t, "good.json", `{"price": 1}`)
	bad := writeTestFile(t, "bad.json", `{}`)

	stdout, _, err := executeCommand("", "-o", "flag", schema, good)
	require.NoError(t, err)
	assert.JSONEq(t, `{"valid": true}`, stdout)

	stdout, _, err = executeCommand("", "-o", "flag", schema, bad)
	assert.Equal(t, exitInvalid, Code(err))
	assert.JSONEq(t, `{"valid": false}`, stdout)
}

func TestValidate_BasicOutput(t *testing.T) {
	schema := writeTestFile(t, "schema.json", priceSchema)
	bad := writeTestFile(t, "bad.json", `{"price": "free"}`)

	stdout, _, err := executeCommand("", "--output", "basic", schema, bad)
	assert.Equal(t, exitInvalid, Code(err))

	var out struct {
		Valid  bool `json:"valid"`
		Errors []struct {
			KeywordLocation  string `json:"keywordLocation"`
			InstanceLocation string `json:"instanceLocation"`
			Error            string `json:"error"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.False(t, out.Valid)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "/properties/price/type", out.Errors[0].KeywordLocation)
	assert.Equal(t, "/price", out.Errors[0].InstanceLocation)
	assert.Equal(t, "got string, want number", out.Errors[0].Error)
}

func TestValidate_DetailedOutput(t *testing.T) {
	schema := writeTestFile(t, "schema.json", `{"anyOf": [{"type": "string"}, {"minimum": 10}]}`)
	bad := writeTestFile(t, "bad.json", `5`)

	stdout, _, err := executeCommand("", "--output", "detailed", schema, bad)
	assert.Equal(t, exitInvalid, Code(err))

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, false, out["valid"])
	errs := out["errors"].([]any)
	require.Len(t, errs, 1)
	anyOf := errs[0].(map[string]any)
	assert.Equal(t, "/anyOf", anyOf["keywordLocation"])
	assert.Len(t, anyOf["errors"], 2)
}

func TestValidate_Draft4(t *testing.T) {
	schema := writeTestFile(t, "schema.json", `{"maximum": 10, "exclusiveMaximum": true}`)
	doc := writeTestFile(t, "doc.json", `10`)

	_, _, err := executeCommand("", schema, doc)
	assert.Equal(t, exitSchema, Code(err), "boolean exclusiveMaximum is draft4 only")

	stdout, _, err := executeCommand("", "--draft", "4", schema, doc)
	assert.Equal(t, exitInvalid, Code(err))
	assert.Contains(t, stdout, "exclusiveMaximum")
}

func TestValidate_EcmaRegexp(t *testing.T) {
	schema := writeTestFile(t, "schema.json", `{"pattern": "^\\cc$"}`)
	doc := writeTestFile(t, "doc.json", `"\u0003"`)

	_, _, err := executeCommand("", schema, doc)
	assert.Equal(t, exitSchema, Code(err))

	_, _, err = executeCommand("", "--regexp", "ecma", schema, doc)
	assert.NoError(t, err)
}

func TestValidate_Strict(t *testing.T) {
	schema := writeTestFile(t, "schema.json", `{"minimun": 1}`)

	_, _, err := executeCommand("", schema)
	require.NoError(t, err)

	_, stderr, err := executeCommand("", "--strict", schema)
	assert.Equal(t, exitSchema, Code(err))
	assert.Contains(t, stderr, "unknown keyword")
}

func TestValidate_ConfigFile(t *testing.T) {
	schema := writeTestFile(t, "schema.json", priceSchema)
	bad := writeTestFile(t, "bad.json", `{}`)
	cfg := writeTestFile(t, "jv.json", `{"output": "flag"}`)

	stdout, _, err := executeCommand("", "--config", cfg, schema, bad)
	assert.Equal(t, exitInvalid, Code(err))
	assert.JSONEq(t, `{"valid": false}`, stdout)

	// flags win over the config file
	stdout, _, err = executeCommand("", "--config", cfg, "-o", "simple", schema, bad)
	assert.Equal(t, exitInvalid, Code(err))
	assert.Contains(t, stdout, `missing property 'price'`)
}

func TestValidate_Describe(t *testing.T) {
	schema := writeTestFile(t, "schema.json", `{"multipleOf": 0.5}`)

	stdout, _, err := executeCommand("", "--describe", schema)
	require.NoError(t, err)
	assert.Contains(t, stdout, "multipleOf")
}

func TestValidate_LogFile(t *testing.T) {
	schema := writeTestFile(t, "schema.json", priceSchema)
	logFile := filepath.Join(t.TempDir(), "jv.log")

	_, _, err := executeCommand("", "--log-level", "info", "--log-file", logFile, schema)
	require.NoError(t, err)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"schema compiled"`)
}

func TestNewRootCmd_Flags(t *testing.T) {
	cmd := NewRootCmd("1.2.3")
	assert.Equal(t, "1.2.3", cmd.Version)
	for _, name := range []string{"config", "draft", "output", "regexp", "lang", "otlp-endpoint", "quiet"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}
