package jsonschema

import (
	"fmt"
	"regexp"
)

// Regexp is the representation of compiled regular expression.
type Regexp interface {
	fmt.Stringer

	// MatchString reports whether the string s contains
	// any match of the regular expression.
	MatchString(string) bool
}

// RegexpEngine parses a regular expression and returns,
// if successful, a Regexp object that can be used to
// match against text.
//
// The standard library engine is RE2, which lacks lookaround and
// backreferences. See package ecma for an ECMA-262 engine.
type RegexpEngine func(string) (Regexp, error)

func goRegexpCompile(s string) (Regexp, error) {
	return regexp.Compile(s)
}
