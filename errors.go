// Copyright 2017 Santhosh Kumar Tekuri. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsonschema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/corvid-labs/jsonschema/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SchemaError is the error type returned by Compile.
type SchemaError struct {
	// SchemaURL is the url to json-schema that failed to compile.
	// This is helpful, if your schema refers to external schemas
	SchemaURL string

	// Err is the error that occurred during compilation.
	Err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("jsonschema: compilation of %s failed: %v", quote(e.SchemaURL), e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// InvalidKeywordError is returned when a keyword's value has
// the wrong json shape, for example a multipleOf that is not a number.
type InvalidKeywordError struct {
	Location string // absolute location of the keyword
	Want     string // description of accepted values
	Got      any
}

func (e *InvalidKeywordError) Error() string {
	return fmt.Sprintf("invalid keyword at %s: want %s, got %s", quote(e.Location), e.Want, describe(e.Got))
}

// UnknownKeywordError is returned for keywords not defined by the draft,
// when Compiler.DisallowUnknownKeywords is in effect.
type UnknownKeywordError struct {
	Location string
}

func (e *UnknownKeywordError) Error() string {
	return fmt.Sprintf("unknown keyword at %s", quote(e.Location))
}

// UnsupportedKeywordError is returned for keywords this package
// recognizes but does not evaluate.
type UnsupportedKeywordError struct {
	Location string
	Keyword  string
}

func (e *UnsupportedKeywordError) Error() string {
	return fmt.Sprintf("keyword %s at %s is not supported", e.Keyword, quote(e.Location))
}

type InvalidRegexError struct {
	Location string
	Regex    string
	Err      error
}

func (e *InvalidRegexError) Error() string {
	return fmt.Sprintf("invalid regex %s at %s: %v", quote(e.Regex), quote(e.Location), e.Err)
}

func (e *InvalidRegexError) Unwrap() error {
	return e.Err
}

type JSONPointerNotFoundError struct {
	URL string
}

func (e *JSONPointerNotFoundError) Error() string {
	return fmt.Sprintf("json-pointer in %s not found", quote(e.URL))
}

type AnchorNotFoundError struct {
	URL       string
	Reference string
}

func (e *AnchorNotFoundError) Error() string {
	return fmt.Sprintf("anchor in %s is not found in schema %s", quote(e.Reference), quote(e.URL))
}

// InfiniteLoopError is returned by Compile, when a chain of references
// applies a schema to the same instance location it started from.
type InfiniteLoopError struct {
	URL string
}

func (e *InfiniteLoopError) Error() string {
	return fmt.Sprintf("reference cycle at %s applies schema to the same instance forever", quote(e.URL))
}

type ParseURLError struct {
	URL string
	Err error
}

func (e *ParseURLError) Error() string {
	return fmt.Sprintf("error in parsing %s: %v", quote(e.URL), e.Err)
}

func (e *ParseURLError) Unwrap() error {
	return e.Err
}

// --

// ErrorKind is the payload of a ValidationError.
type ErrorKind interface {
	KeywordPath() []string
	LocalizedString(*message.Printer) string
}

// ValidationError describes one violation of a compiled schema by an instance.
type ValidationError struct {
	// SchemaURL is the absolute location of the schema node
	// whose keyword failed.
	SchemaURL string

	// InstanceLocation are the json-pointer tokens leading
	// from the instance root to the offending value.
	InstanceLocation []string

	// Value is the offending instance value.
	Value any

	// ErrorKind is the keyword specific payload.
	ErrorKind ErrorKind

	// Causes are nested errors, used by keywords like anyOf
	// that fail when their subschemas fail.
	Causes []*ValidationError
}

// KeywordLocation returns the absolute location of the failed keyword.
func (e *ValidationError) KeywordLocation() string {
	loc := e.SchemaURL
	for _, tok := range e.ErrorKind.KeywordPath() {
		loc += "/" + escape(tok)
	}
	return loc
}

var defaultPrinter = message.NewPrinter(language.English)

func (e *ValidationError) Error() string {
	return e.LocalizedError(defaultPrinter)
}

// LocalizedError renders the error and its causes using given printer.
func (e *ValidationError) LocalizedError(p *message.Printer) string {
	var sb strings.Builder
	e.write(&sb, "", p)
	return sb.String()
}

func (e *ValidationError) write(sb *strings.Builder, indent string, p *message.Printer) {
	if _, ok := e.ErrorKind.(*kind.Schema); ok {
		sb.WriteString(indent)
		sb.WriteString(e.ErrorKind.LocalizedString(p))
	} else {
		fmt.Fprintf(sb, "%sat %s: %s", indent, quote(joinTokens(e.InstanceLocation)), e.ErrorKind.LocalizedString(p))
	}
	for _, c := range e.Causes {
		sb.WriteByte('\n')
		c.write(sb, indent+"  ", p)
	}
}

// Leaves yields errors that have no causes, in order.
func (e *ValidationError) Leaves(yield func(*ValidationError) bool) {
	e.leaves(yield)
}

func (e *ValidationError) leaves(yield func(*ValidationError) bool) bool {
	if len(e.Causes) == 0 {
		return yield(e)
	}
	for _, c := range e.Causes {
		if !c.leaves(yield) {
			return false
		}
	}
	return true
}

// --

// Path is the location inside the instance currently being validated.
// It is extended one segment at a time while descending; the nil
// *Path denotes the instance root.
type Path struct {
	parent *Path
	tok    string
}

// Prop returns the path of property name within p.
func (p *Path) Prop(name string) *Path {
	return &Path{p, name}
}

// Index returns the path of array item i within p.
func (p *Path) Index(i int) *Path {
	return &Path{p, strconv.Itoa(i)}
}

// Tokens returns the json-pointer tokens of p, root first.
func (p *Path) Tokens() []string {
	n := 0
	for q := p; q != nil; q = q.parent {
		n++
	}
	toks := make([]string, n)
	for q := p; q != nil; q = q.parent {
		n--
		toks[n] = q.tok
	}
	return toks
}

func (p *Path) String() string {
	return joinTokens(p.Tokens())
}

func joinTokens(toks []string) string {
	var sb strings.Builder
	for _, tok := range toks {
		sb.WriteByte('/')
		sb.WriteString(escape(tok))
	}
	return sb.String()
}

func describe(v any) string {
	switch v := v.(type) {
	case string:
		return quote(v)
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%v", v)
	}
}
