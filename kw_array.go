package jsonschema

import (
	"fmt"
	"iter"
	"strconv"

	"github.com/corvid-labs/jsonschema/kind"
)

type itemCount struct {
	max bool
	n   int
}

func (c *itemCount) IsValid(_ *Schema, v any) bool {
	arr, ok := v.([]any)
	if !ok {
		return true
	}
	if c.max {
		return len(arr) <= c.n
	}
	return len(arr) >= c.n
}

func (c *itemCount) Validate(s *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	if c.IsValid(s, v) {
		return noErrors
	}
	got := len(v.([]any))
	if c.max {
		return fail(v, p, &kind.MaxItems{Got: got, Want: c.n})
	}
	return fail(v, p, &kind.MinItems{Got: got, Want: c.n})
}

func (c *itemCount) String() string {
	if c.max {
		return fmt.Sprintf("maxItems: %d", c.n)
	}
	return fmt.Sprintf("minItems: %d", c.n)
}

func compileMinItems(_ *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	n, err := limitOf(obj, "minItems", sl)
	if err != nil {
		return nil, err
	}
	return &itemCount{n: n}, nil
}

func compileMaxItems(_ *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	n, err := limitOf(obj, "maxItems", sl)
	if err != nil {
		return nil, err
	}
	return &itemCount{max: true, n: n}, nil
}

// --

type uniqueItems struct{}

// duplicates returns the indexes of the first pair of equal items.
func (uniqueItems) duplicates(arr []any) (int, int, bool) {
	for i := 1; i < len(arr); i++ {
		for j := 0; j < i; j++ {
			if equals(arr[i], arr[j]) {
				return j, i, true
			}
		}
	}
	return 0, 0, false
}

func (u uniqueItems) IsValid(_ *Schema, v any) bool {
	arr, ok := v.([]any)
	if !ok {
		return true
	}
	_, _, dup := u.duplicates(arr)
	return !dup
}

func (u uniqueItems) Validate(_ *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	arr, ok := v.([]any)
	if !ok {
		return noErrors
	}
	i, j, dup := u.duplicates(arr)
	if !dup {
		return noErrors
	}
	return fail(v, p, &kind.UniqueItems{Duplicates: [2]int{i, j}})
}

func (uniqueItems) String() string {
	return "uniqueItems"
}

func compileUniqueItems(_ *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	unique, ok := obj["uniqueItems"].(bool)
	if !ok {
		return nil, &InvalidKeywordError{Location: sl.kw("uniqueItems"), Want: "boolean", Got: obj["uniqueItems"]}
	}
	if !unique {
		return nil, nil
	}
	return uniqueItems{}, nil
}

// --

// itemsValidator covers prefixItems, items and additionalItems in
// all their draft specific forms: the first len(prefix) items are
// checked against their own schema, the rest against rest.
type itemsValidator struct {
	prefix []int
	rest   int  // -1 if none
	noRest bool // additionalItems: false
}

func (iv *itemsValidator) schemaFor(i int) int {
	if i < len(iv.prefix) {
		return iv.prefix[i]
	}
	return iv.rest
}

func (iv *itemsValidator) IsValid(s *Schema, v any) bool {
	arr, ok := v.([]any)
	if !ok {
		return true
	}
	if iv.noRest && len(arr) > len(iv.prefix) {
		return false
	}
	for i, item := range arr {
		sch := iv.schemaFor(i)
		if sch == -1 {
			break
		}
		if !s.nodes[sch].IsValid(s, item) {
			return false
		}
	}
	return true
}

func (iv *itemsValidator) Validate(s *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	arr, ok := v.([]any)
	if !ok {
		return noErrors
	}
	return func(yield func(*ValidationError) bool) {
		for i, item := range arr {
			sch := iv.schemaFor(i)
			if sch == -1 {
				break
			}
			for e := range s.nodes[sch].Validate(s, item, p.Index(i)) {
				if !yield(e) {
					return
				}
			}
		}
		if iv.noRest && len(arr) > len(iv.prefix) {
			yield(&ValidationError{InstanceLocation: p.Tokens(), Value: v, ErrorKind: &kind.AdditionalItems{Count: len(arr) - len(iv.prefix)}})
		}
	}
}

func (iv *itemsValidator) String() string {
	switch {
	case iv.noRest:
		return fmt.Sprintf("items: %d prefix, no more", len(iv.prefix))
	case iv.rest == -1:
		return fmt.Sprintf("items: %d prefix", len(iv.prefix))
	default:
		return fmt.Sprintf("items: %d prefix, rest #%d", len(iv.prefix), iv.rest)
	}
}

// prefixItems is compiled by compileItems, when items is present.
func compilePrefixItems(ctx *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	if _, ok := obj["items"]; ok {
		return nil, nil
	}
	prefix, err := ctx.subschemas(obj, sl, "prefixItems", false)
	if err != nil {
		return nil, err
	}
	return &itemsValidator{prefix: prefix, rest: -1}, nil
}

func compileItems(ctx *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	iv := &itemsValidator{rest: -1}
	if sl.draft().version >= 2020 {
		if _, ok := obj["prefixItems"]; ok {
			prefix, err := ctx.subschemas(obj, sl, "prefixItems", false)
			if err != nil {
				return nil, err
			}
			iv.prefix = prefix
		}
		rest, err := ctx.subschemaOf(obj, sl, "items", false)
		if err != nil {
			return nil, err
		}
		iv.rest = rest
		return iv, nil
	}

	if _, ok := obj["items"].([]any); !ok {
		rest, err := ctx.subschemaOf(obj, sl, "items", false)
		if err != nil {
			return nil, err
		}
		iv.rest = rest
		return iv, nil
	}
	prefix, err := ctx.subschemas(obj, sl, "items", false)
	if err != nil {
		return nil, err
	}
	iv.prefix = prefix
	switch additional := obj["additionalItems"].(type) {
	case nil:
	case bool:
		iv.noRest = !additional
	default:
		rest, err := ctx.subschemaOf(obj, sl, "additionalItems", false)
		if err != nil {
			return nil, err
		}
		iv.rest = rest
	}
	return iv, nil
}

// subschemaOf compiles the schema held by keyword kw.
func (ctx *compileCtx) subschemaOf(obj map[string]any, sl schemaLoc, kw string, inPlace bool) (int, error) {
	switch obj[kw].(type) {
	case map[string]any, bool:
		return ctx.subschema(sl, inPlace, kw)
	}
	return 0, &InvalidKeywordError{Location: sl.kw(kw), Want: "schema", Got: obj[kw]}
}

// --

// containsValidator is contains with its minContains and maxContains
// companions. max is -1 when unbounded.
type containsValidator struct {
	sub      int
	min, max int
	explicit bool // minContains given
}

func (c *containsValidator) IsValid(s *Schema, v any) bool {
	arr, ok := v.([]any)
	if !ok {
		return true
	}
	if c.min == 0 && c.max == -1 {
		return true
	}
	matched := 0
	for _, item := range arr {
		if s.nodes[c.sub].IsValid(s, item) {
			matched++
			if c.max == -1 && matched >= c.min {
				return true
			}
			if c.max != -1 && matched > c.max {
				return false
			}
		}
	}
	return matched >= c.min
}

func (c *containsValidator) Validate(s *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	if c.IsValid(s, v) {
		return noErrors
	}
	arr := v.([]any)
	var matched []int
	var causes []*ValidationError
	for i, item := range arr {
		errs := collect(s.nodes[c.sub].Validate(s, item, p.Index(i)))
		if len(errs) == 0 {
			matched = append(matched, i)
		} else {
			causes = append(causes, errs...)
		}
	}
	switch {
	case len(matched) < c.min && !c.explicit:
		return failWith(v, p, &kind.Contains{}, causes)
	case len(matched) < c.min:
		return failWith(v, p, &kind.MinContains{Got: matched, Want: c.min}, causes)
	default:
		return fail(v, p, &kind.MaxContains{Got: matched, Want: c.max})
	}
}

func (c *containsValidator) String() string {
	return "contains #" + strconv.Itoa(c.sub)
}

func compileContains(ctx *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	sub, err := ctx.subschemaOf(obj, sl, "contains", false)
	if err != nil {
		return nil, err
	}
	c := &containsValidator{sub: sub, min: 1, max: -1}
	if sl.draft().version >= 2019 {
		if _, ok := obj["minContains"]; ok {
			if c.min, err = limitOf(obj, "minContains", sl); err != nil {
				return nil, err
			}
			c.explicit = true
		}
		if _, ok := obj["maxContains"]; ok {
			if c.max, err = limitOf(obj, "maxContains", sl); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}
