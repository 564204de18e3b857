package jsonschema

import (
	"fmt"
	"iter"
	"strings"

	"github.com/corvid-labs/jsonschema/kind"
)

func compileRef(ctx *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	ref, ok := obj["$ref"].(string)
	if !ok {
		return nil, &InvalidKeywordError{Location: sl.kw("$ref"), Want: "string", Got: obj["$ref"]}
	}
	target, u, err := ctx.ref(sl, ref)
	if err != nil {
		return nil, err
	}
	return &refValidator{url: u, target: target}, nil
}

// --

// group is several validators compiled from one keyword.
type group []Validator

func (g group) IsValid(s *Schema, v any) bool {
	for _, val := range g {
		if !val.IsValid(s, v) {
			return false
		}
	}
	return true
}

func (g group) Validate(s *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	return func(yield func(*ValidationError) bool) {
		for _, val := range g {
			for e := range val.Validate(s, v, p) {
				if !yield(e) {
					return
				}
			}
		}
	}
}

func (g group) String() string {
	res := make([]string, len(g))
	for i, val := range g {
		res[i] = val.String()
	}
	return strings.Join(res, ", ")
}

// --

func describeSubs(kw string, subs []int) string {
	ids := make([]string, len(subs))
	for i, sub := range subs {
		ids[i] = fmt.Sprintf("#%d", sub)
	}
	return kw + ": [" + strings.Join(ids, " ") + "]"
}

type allOf struct {
	subs []int
}

func (a *allOf) IsValid(s *Schema, v any) bool {
	for _, sub := range a.subs {
		if !s.nodes[sub].IsValid(s, v) {
			return false
		}
	}
	return true
}

func (a *allOf) Validate(s *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	return func(yield func(*ValidationError) bool) {
		for _, sub := range a.subs {
			for e := range s.nodes[sub].Validate(s, v, p) {
				if !yield(e) {
					return
				}
			}
		}
	}
}

func (a *allOf) String() string {
	return describeSubs("allOf", a.subs)
}

func compileAllOf(ctx *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	subs, err := ctx.subschemas(obj, sl, "allOf", true)
	if err != nil {
		return nil, err
	}
	return &allOf{subs: subs}, nil
}

// --

type anyOf struct {
	subs []int
}

func (a *anyOf) IsValid(s *Schema, v any) bool {
	for _, sub := range a.subs {
		if s.nodes[sub].IsValid(s, v) {
			return true
		}
	}
	return false
}

func (a *anyOf) Validate(s *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	if a.IsValid(s, v) {
		return noErrors
	}
	var causes []*ValidationError
	for _, sub := range a.subs {
		causes = append(causes, collect(s.nodes[sub].Validate(s, v, p))...)
	}
	return failWith(v, p, &kind.AnyOf{}, causes)
}

func (a *anyOf) String() string {
	return describeSubs("anyOf", a.subs)
}

func compileAnyOf(ctx *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	subs, err := ctx.subschemas(obj, sl, "anyOf", true)
	if err != nil {
		return nil, err
	}
	return &anyOf{subs: subs}, nil
}

// --

type oneOf struct {
	subs []int
}

// matched returns indexes of the first two matching subschemas.
func (o *oneOf) matched(s *Schema, v any) []int {
	var m []int
	for i, sub := range o.subs {
		if s.nodes[sub].IsValid(s, v) {
			if m = append(m, i); len(m) == 2 {
				break
			}
		}
	}
	return m
}

func (o *oneOf) IsValid(s *Schema, v any) bool {
	return len(o.matched(s, v)) == 1
}

func (o *oneOf) Validate(s *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	m := o.matched(s, v)
	switch len(m) {
	case 1:
		return noErrors
	case 2:
		return fail(v, p, &kind.OneOf{Subschemas: m})
	}
	var causes []*ValidationError
	for _, sub := range o.subs {
		causes = append(causes, collect(s.nodes[sub].Validate(s, v, p))...)
	}
	return failWith(v, p, &kind.OneOf{}, causes)
}

func (o *oneOf) String() string {
	return describeSubs("oneOf", o.subs)
}

func compileOneOf(ctx *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	subs, err := ctx.subschemas(obj, sl, "oneOf", true)
	if err != nil {
		return nil, err
	}
	return &oneOf{subs: subs}, nil
}

// --

type not struct {
	sub int
}

func (n *not) IsValid(s *Schema, v any) bool {
	return !s.nodes[n.sub].IsValid(s, v)
}

func (n *not) Validate(s *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	if n.IsValid(s, v) {
		return noErrors
	}
	return fail(v, p, &kind.Not{})
}

func (n *not) String() string {
	return fmt.Sprintf("not: #%d", n.sub)
}

func compileNot(ctx *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	sub, err := ctx.subschemaOf(obj, sl, "not", true)
	if err != nil {
		return nil, err
	}
	return &not{sub: sub}, nil
}

// --

// ifThenElse applies then or else depending on whether if holds.
// A missing branch is -1.
type ifThenElse struct {
	cond, then, els int
}

func (c *ifThenElse) branch(s *Schema, v any) (int, ErrorKind) {
	if s.nodes[c.cond].IsValid(s, v) {
		return c.then, &kind.Then{}
	}
	return c.els, &kind.Else{}
}

func (c *ifThenElse) IsValid(s *Schema, v any) bool {
	sub, _ := c.branch(s, v)
	return sub == -1 || s.nodes[sub].IsValid(s, v)
}

func (c *ifThenElse) Validate(s *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	sub, k := c.branch(s, v)
	if sub == -1 {
		return noErrors
	}
	causes := collect(s.nodes[sub].Validate(s, v, p))
	if len(causes) == 0 {
		return noErrors
	}
	return failWith(v, p, k, causes)
}

func (c *ifThenElse) String() string {
	return fmt.Sprintf("if: #%d then: #%d else: #%d", c.cond, c.then, c.els)
}

// compileIf returns nil if neither then nor else is present,
// since if alone never fails.
func compileIf(ctx *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	_, hasThen := obj["then"]
	_, hasElse := obj["else"]
	if !hasThen && !hasElse {
		return nil, nil
	}
	c := &ifThenElse{then: -1, els: -1}
	var err error
	if c.cond, err = ctx.subschemaOf(obj, sl, "if", true); err != nil {
		return nil, err
	}
	if hasThen {
		if c.then, err = ctx.subschemaOf(obj, sl, "then", true); err != nil {
			return nil, err
		}
	}
	if hasElse {
		if c.els, err = ctx.subschemaOf(obj, sl, "else", true); err != nil {
			return nil, err
		}
	}
	return c, nil
}
