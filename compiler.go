// Copyright 2017 Santhosh Kumar Tekuri. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsonschema

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// A Compiler represents a json-schema compiler.
//
// A Compiler caches the documents it loads, so that compiling several
// schemas referring to the same document loads it only once. Compiler
// is not safe for concurrent use; the schemas it returns are.
type Compiler struct {
	resources map[string]*resource
	ids       map[string]idTarget

	defaultDraft   *Draft
	loader         URLLoader
	regexpEngine   RegexpEngine
	formats        map[string]*Format
	decoders       map[string]*Decoder
	mediaTypes     map[string]*MediaType
	assertFormat   bool
	assertContent  bool
	strictKeywords bool
	logger         *zap.Logger
}

// NewCompiler returns a json-schema Compiler object.
// if '$schema' attribute is missing, it is treated as draft2020.
// to change this behavior, use Compiler.DefaultDraft method.
func NewCompiler() *Compiler {
	return &Compiler{
		resources:    map[string]*resource{},
		ids:          map[string]idTarget{},
		defaultDraft: draftLatest,
		loader:       SchemeURLLoader{"file": FileLoader{}},
		regexpEngine: goRegexpCompile,
		formats:      map[string]*Format{},
		decoders:     map[string]*Decoder{},
		mediaTypes:   map[string]*MediaType{},
		logger:       zap.NewNop(),
	}
}

// DefaultDraft overrides the draft used to
// compile schemas without `$schema` field.
//
// By default, this library uses the latest
// draft supported.
func (c *Compiler) DefaultDraft(d *Draft) {
	c.defaultDraft = d
}

// UseLoader overrides the default [URLLoader] used
// to load schema resources.
func (c *Compiler) UseLoader(loader URLLoader) {
	c.loader = loader
}

// UseRegexpEngine changes the regexp-engine used.
// By default it uses regexp package from go standard
// library.
func (c *Compiler) UseRegexpEngine(engine RegexpEngine) {
	if engine == nil {
		engine = goRegexpCompile
	}
	c.regexpEngine = engine
}

// UseLogger sets the logger used to report loading and compilation
// progress at debug level. Validation never logs.
func (c *Compiler) UseLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	c.logger = l
}

// AssertFormat always enables format assertions.
//
// Default Behavior:
// for draft-07: enabled.
// for draft/2019-09 and later: disabled.
func (c *Compiler) AssertFormat() {
	c.assertFormat = true
}

// AssertContent enables content assertions.
//
// Content assertions include keywords:
//   - contentEncoding
//   - contentMediaType
func (c *Compiler) AssertContent() {
	c.assertContent = true
}

// DisallowUnknownKeywords makes Compile fail on keywords
// the draft of the schema does not define.
func (c *Compiler) DisallowUnknownKeywords() {
	c.strictKeywords = true
}

// RegisterFormat registers custom format.
//
// NOTE:
//   - "regex" format can not be overridden
//   - format assertions are disabled for draft >= 2019-09
//     see [Compiler.AssertFormat]
func (c *Compiler) RegisterFormat(f *Format) {
	if f.Name != "regex" {
		c.formats[f.Name] = f
	}
}

// RegisterContentEncoding registers custom contentEncoding.
//
// NOTE: content assertions are disabled by default.
// see [Compiler.AssertContent].
func (c *Compiler) RegisterContentEncoding(d *Decoder) {
	c.decoders[d.Name] = d
}

// RegisterContentMediaType registers custom contentMediaType.
//
// NOTE: content assertions are disabled by default.
// see [Compiler.AssertContent].
func (c *Compiler) RegisterContentMediaType(mt *MediaType) {
	c.mediaTypes[mt.Name] = mt
}

// AddResource adds schema resource which gets used later in reference
// resolution.
//
// The argument url can be file path or url. Any fragment in url is ignored.
// The argument doc must be valid json value, as returned by UnmarshalJSON.
func (c *Compiler) AddResource(url string, doc any) error {
	u, err := absolute(url)
	if err != nil {
		return err
	}
	u, _ = split(u)
	c.addResource(u, doc)
	return nil
}

func (c *Compiler) addResource(u string, doc any) *resource {
	draft := c.defaultDraft
	if obj, ok := doc.(map[string]any); ok {
		if s, ok := obj["$schema"].(string); ok {
			if d := draftFromURL(s); d != nil {
				draft = d
			} else {
				c.logger.Debug("unrecognized $schema, using default draft",
					zap.String("url", u), zap.String("$schema", s), zap.Stringer("draft", draft))
			}
		}
	}
	res := newResource(u, doc, draft)
	c.resources[u] = res
	c.ids[u] = idTarget{res: res}
	for ptr, id := range res.ids {
		c.ids[id] = idTarget{res: res, ptr: ptr}
	}
	c.logger.Debug("added schema resource",
		zap.String("url", u), zap.Stringer("draft", draft), zap.Int("ids", len(res.ids)))
	return res
}

func (c *Compiler) loadResource(u string) (*resource, error) {
	if res, ok := c.resources[u]; ok {
		return res, nil
	}
	doc, err := c.loader.Load(u)
	if err != nil {
		var lerr *LoadURLError
		if errors.As(err, &lerr) {
			return nil, err
		}
		return nil, &LoadURLError{URL: u, Err: err}
	}
	return c.addResource(u, doc), nil
}

// MustCompile is like Compile but panics if the url cannot be compiled to *Schema.
// It simplifies safe initialization of global variables holding compiled Schemas.
func (c *Compiler) MustCompile(url string) *Schema {
	s, err := c.Compile(url)
	if err != nil {
		panic(fmt.Sprintf("jsonschema: %#v", err))
	}
	return s
}

// Compile parses json-schema at given url returns, if successful,
// a Schema object that can be used to match against json.
//
// The argument url can be file path or url, optionally
// with a json-pointer or anchor fragment.
func (c *Compiler) Compile(url string) (*Schema, error) {
	loc, err := absolute(url)
	if err != nil {
		return nil, &SchemaError{SchemaURL: url, Err: err}
	}
	sch, err := c.compile(loc)
	if err != nil {
		return nil, &SchemaError{SchemaURL: loc, Err: err}
	}
	return sch, nil
}

func (c *Compiler) compile(loc string) (*Schema, error) {
	ctx := newCompileCtx(c)
	res, ptr, u, err := ctx.resolve(loc, "")
	if err != nil {
		return nil, err
	}
	root, err := ctx.compileAt(res, ptr)
	if err != nil {
		return nil, err
	}
	if err := ctx.checkLoops(); err != nil {
		return nil, err
	}
	c.logger.Debug("compiled schema", zap.String("url", u), zap.Int("nodes", len(ctx.nodes)))
	return &Schema{
		Location: res.url + "#" + string(ptr),
		Draft:    res.draft,
		nodes:    ctx.nodes,
		root:     root,
	}, nil
}

// Compile parses json-schema at given url returns, if successful,
// a Schema object that can be used to match against json.
//
// Returned error can be *SchemaError
func Compile(url string) (*Schema, error) {
	return NewCompiler().Compile(url)
}

// MustCompile is like Compile but panics if the url cannot be compiled to *Schema.
// It simplifies safe initialization of global variables holding compiled Schemas.
func MustCompile(url string) *Schema {
	return NewCompiler().MustCompile(url)
}
