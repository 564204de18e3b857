// Package ecma provides an ECMA-262 regexp engine for jsonschema,
// backed by github.com/dlclark/regexp2.
//
// JSON Schema specifies ECMA-262 dialect for "pattern",
// "patternProperties" and the "regex" format. Go's regexp package
// lacks lookaround, backreferences and escapes such as \cc;
// use this engine when schemas depend on them:
//
//	c := jsonschema.NewCompiler()
//	c.UseRegexpEngine(ecma.Compile)
package ecma

import (
	"time"

	"github.com/dlclark/regexp2"

	"github.com/corvid-labs/jsonschema"
)

// MatchTimeout bounds a single match, guarding against
// catastrophic backtracking. Zero means no limit.
var MatchTimeout = 2 * time.Second

// Regexp is an ECMA-262 regular expression.
type Regexp regexp2.Regexp

// MatchString reports whether s contains a match. A match that times
// out is reported as no match.
func (re *Regexp) MatchString(s string) bool {
	matched, err := (*regexp2.Regexp)(re).MatchString(s)
	return err == nil && matched
}

func (re *Regexp) String() string {
	return (*regexp2.Regexp)(re).String()
}

// Compile is a jsonschema.RegexpEngine.
func Compile(s string) (jsonschema.Regexp, error) {
	re, err := regexp2.Compile(s, regexp2.ECMAScript)
	if err != nil {
		return nil, err
	}
	if MatchTimeout > 0 {
		re.MatchTimeout = MatchTimeout
	}
	return (*Regexp)(re), nil
}
