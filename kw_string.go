package jsonschema

import (
	"fmt"
	"iter"
	"unicode/utf8"

	"github.com/corvid-labs/jsonschema/kind"
)

// stringLength is minLength or maxLength. Length counts code points.
type stringLength struct {
	max bool
	n   int
}

func (l *stringLength) IsValid(_ *Schema, v any) bool {
	s, ok := v.(string)
	if !ok {
		return true
	}
	n := utf8.RuneCountInString(s)
	if l.max {
		return n <= l.n
	}
	return n >= l.n
}

func (l *stringLength) Validate(s *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	if l.IsValid(s, v) {
		return noErrors
	}
	got := utf8.RuneCountInString(v.(string))
	if l.max {
		return fail(v, p, &kind.MaxLength{Got: got, Want: l.n})
	}
	return fail(v, p, &kind.MinLength{Got: got, Want: l.n})
}

func (l *stringLength) String() string {
	if l.max {
		return fmt.Sprintf("maxLength: %d", l.n)
	}
	return fmt.Sprintf("minLength: %d", l.n)
}

func compileMinLength(_ *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	n, err := limitOf(obj, "minLength", sl)
	if err != nil {
		return nil, err
	}
	return &stringLength{n: n}, nil
}

func compileMaxLength(_ *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	n, err := limitOf(obj, "maxLength", sl)
	if err != nil {
		return nil, err
	}
	return &stringLength{max: true, n: n}, nil
}

// limitOf returns the non-negative integer value of kw.
func limitOf(obj map[string]any, kw string, sl schemaLoc) (int, error) {
	n, ok := nonNegativeInt(obj[kw])
	if !ok {
		return 0, &InvalidKeywordError{Location: sl.kw(kw), Want: "non-negative integer", Got: obj[kw]}
	}
	return n, nil
}

// --

type patternValidator struct {
	re Regexp
}

func (pv *patternValidator) IsValid(_ *Schema, v any) bool {
	s, ok := v.(string)
	return !ok || pv.re.MatchString(s)
}

func (pv *patternValidator) Validate(s *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	if pv.IsValid(s, v) {
		return noErrors
	}
	return fail(v, p, &kind.Pattern{Got: v.(string), Want: pv.re.String()})
}

func (pv *patternValidator) String() string {
	return "pattern: " + quote(pv.re.String())
}

func compilePattern(ctx *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	re, err := ctx.regexp(obj["pattern"], sl.kw("pattern"))
	if err != nil {
		return nil, err
	}
	return &patternValidator{re: re}, nil
}

// regexp compiles v, found at loc, with the configured engine.
func (ctx *compileCtx) regexp(v any, loc string) (Regexp, error) {
	s, ok := v.(string)
	if !ok {
		return nil, &InvalidKeywordError{Location: loc, Want: "string", Got: v}
	}
	re, err := ctx.c.regexpEngine(s)
	if err != nil {
		return nil, &InvalidRegexError{Location: loc, Regex: s, Err: err}
	}
	return re, nil
}

// --

// contentValidator checks contentEncoding, and contentMediaType of
// the decoded bytes. When decoding fails, only the encoding is
// reported.
type contentValidator struct {
	decoder   *Decoder
	mediaType *MediaType
}

func (c *contentValidator) check(v any) ErrorKind {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	b := []byte(s)
	if c.decoder != nil {
		var err error
		if b, err = c.decoder.Decode(s); err != nil {
			return &kind.ContentEncoding{Want: c.decoder.Name, Err: err}
		}
	}
	if c.mediaType != nil {
		if err := c.mediaType.Validate(b); err != nil {
			return &kind.ContentMediaType{Got: b, Want: c.mediaType.Name, Err: err}
		}
	}
	return nil
}

func (c *contentValidator) IsValid(_ *Schema, v any) bool {
	return c.check(v) == nil
}

func (c *contentValidator) Validate(_ *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	k := c.check(v)
	if k == nil {
		return noErrors
	}
	return fail(v, p, k)
}

func (c *contentValidator) String() string {
	var enc, mt string
	if c.decoder != nil {
		enc = c.decoder.Name
	}
	if c.mediaType != nil {
		mt = c.mediaType.Name
	}
	return fmt.Sprintf("content: %s %s", enc, mt)
}

// compileContentEncoding builds the validator for both content
// keywords; compileContentMediaType only covers a media type
// without encoding.
func compileContentEncoding(ctx *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	name, ok := obj["contentEncoding"].(string)
	if !ok {
		return nil, &InvalidKeywordError{Location: sl.kw("contentEncoding"), Want: "string", Got: obj["contentEncoding"]}
	}
	if !ctx.c.assertContent {
		return nil, nil
	}
	cv := &contentValidator{decoder: ctx.c.decoder(name)}
	mt, err := ctx.mediaType(obj, sl)
	if err != nil {
		return nil, err
	}
	cv.mediaType = mt
	if cv.decoder == nil && cv.mediaType == nil {
		return nil, nil
	}
	return cv, nil
}

func compileContentMediaType(ctx *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	mt, err := ctx.mediaType(obj, sl)
	if err != nil {
		return nil, err
	}
	if _, ok := obj["contentEncoding"]; ok || mt == nil || !ctx.c.assertContent {
		return nil, nil
	}
	return &contentValidator{mediaType: mt}, nil
}

func (ctx *compileCtx) mediaType(obj map[string]any, sl schemaLoc) (*MediaType, error) {
	v, ok := obj["contentMediaType"]
	if !ok {
		return nil, nil
	}
	name, ok := v.(string)
	if !ok {
		return nil, &InvalidKeywordError{Location: sl.kw("contentMediaType"), Want: "string", Got: v}
	}
	if mt, ok := ctx.c.mediaTypes[name]; ok {
		return mt, nil
	}
	return mediaTypes[name], nil
}

func (c *Compiler) decoder(name string) *Decoder {
	if d, ok := c.decoders[name]; ok {
		return d
	}
	return decoders[name]
}
