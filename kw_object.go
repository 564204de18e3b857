package jsonschema

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/corvid-labs/jsonschema/kind"
)

type propCount struct {
	max bool
	n   int
}

func (c *propCount) IsValid(_ *Schema, v any) bool {
	obj, ok := v.(map[string]any)
	if !ok {
		return true
	}
	if c.max {
		return len(obj) <= c.n
	}
	return len(obj) >= c.n
}

func (c *propCount) Validate(s *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	if c.IsValid(s, v) {
		return noErrors
	}
	got := len(v.(map[string]any))
	if c.max {
		return fail(v, p, &kind.MaxProperties{Got: got, Want: c.n})
	}
	return fail(v, p, &kind.MinProperties{Got: got, Want: c.n})
}

func (c *propCount) String() string {
	if c.max {
		return fmt.Sprintf("maxProperties: %d", c.n)
	}
	return fmt.Sprintf("minProperties: %d", c.n)
}

func compileMinProperties(_ *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	n, err := limitOf(obj, "minProperties", sl)
	if err != nil {
		return nil, err
	}
	return &propCount{n: n}, nil
}

func compileMaxProperties(_ *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	n, err := limitOf(obj, "maxProperties", sl)
	if err != nil {
		return nil, err
	}
	return &propCount{max: true, n: n}, nil
}

// --

type requiredValidator struct {
	props []string
}

func missing(obj map[string]any, props []string) []string {
	var m []string
	for _, prop := range props {
		if _, ok := obj[prop]; !ok {
			m = append(m, prop)
		}
	}
	return m
}

func (r *requiredValidator) IsValid(_ *Schema, v any) bool {
	obj, ok := v.(map[string]any)
	if !ok {
		return true
	}
	for _, prop := range r.props {
		if _, ok := obj[prop]; !ok {
			return false
		}
	}
	return true
}

func (r *requiredValidator) Validate(_ *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	obj, ok := v.(map[string]any)
	if !ok {
		return noErrors
	}
	m := missing(obj, r.props)
	if len(m) == 0 {
		return noErrors
	}
	return fail(v, p, &kind.Required{Missing: m})
}

func (r *requiredValidator) String() string {
	return "required: " + strings.Join(r.props, ",")
}

func compileRequired(_ *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	props, ok := stringSlice(obj["required"])
	if !ok {
		return nil, &InvalidKeywordError{Location: sl.kw("required"), Want: "array of strings", Got: obj["required"]}
	}
	if len(props) == 0 {
		return nil, nil
	}
	return &requiredValidator{props: props}, nil
}

// --

// propSchemas applies a schema to each listed property that is present.
type propSchemas struct {
	kw    string
	names []string // sorted
	subs  map[string]int
}

func (ps *propSchemas) IsValid(s *Schema, v any) bool {
	obj, ok := v.(map[string]any)
	if !ok {
		return true
	}
	for _, name := range ps.names {
		if pv, ok := obj[name]; ok && !s.nodes[ps.subs[name]].IsValid(s, pv) {
			return false
		}
	}
	return true
}

func (ps *propSchemas) Validate(s *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	obj, ok := v.(map[string]any)
	if !ok {
		return noErrors
	}
	return func(yield func(*ValidationError) bool) {
		for _, name := range ps.names {
			pv, ok := obj[name]
			if !ok {
				continue
			}
			for e := range s.nodes[ps.subs[name]].Validate(s, pv, p.Prop(name)) {
				if !yield(e) {
					return
				}
			}
		}
	}
}

func (ps *propSchemas) String() string {
	return ps.kw + ": " + strings.Join(ps.names, ",")
}

// schemaMap compiles every value of the object keyword kw.
func (ctx *compileCtx) schemaMap(obj map[string]any, sl schemaLoc, kw string, inPlace bool) ([]string, map[string]int, error) {
	m, ok := obj[kw].(map[string]any)
	if !ok {
		return nil, nil, &InvalidKeywordError{Location: sl.kw(kw), Want: "object", Got: obj[kw]}
	}
	names := slices.Sorted(maps.Keys(m))
	subs := make(map[string]int, len(m))
	for _, name := range names {
		idx, err := ctx.subschema(sl, inPlace, kw, name)
		if err != nil {
			return nil, nil, err
		}
		subs[name] = idx
	}
	return names, subs, nil
}

func compileProperties(ctx *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	names, subs, err := ctx.schemaMap(obj, sl, "properties", false)
	if err != nil || len(names) == 0 {
		return nil, err
	}
	return &propSchemas{kw: "properties", names: names, subs: subs}, nil
}

// --

type patternSchema struct {
	re  Regexp
	sub int
}

type patternProperties struct {
	patterns []patternSchema
}

func (pp *patternProperties) IsValid(s *Schema, v any) bool {
	obj, ok := v.(map[string]any)
	if !ok {
		return true
	}
	for pname, pv := range obj {
		for _, ps := range pp.patterns {
			if ps.re.MatchString(pname) && !s.nodes[ps.sub].IsValid(s, pv) {
				return false
			}
		}
	}
	return true
}

func (pp *patternProperties) Validate(s *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	obj, ok := v.(map[string]any)
	if !ok {
		return noErrors
	}
	return func(yield func(*ValidationError) bool) {
		for _, pname := range slices.Sorted(maps.Keys(obj)) {
			for _, ps := range pp.patterns {
				if !ps.re.MatchString(pname) {
					continue
				}
				for e := range s.nodes[ps.sub].Validate(s, obj[pname], p.Prop(pname)) {
					if !yield(e) {
						return
					}
				}
			}
		}
	}
}

func (pp *patternProperties) String() string {
	res := make([]string, len(pp.patterns))
	for i, ps := range pp.patterns {
		res[i] = ps.re.String()
	}
	return "patternProperties: " + strings.Join(res, ",")
}

func (ctx *compileCtx) patterns(obj map[string]any, sl schemaLoc, compileSchemas bool) ([]patternSchema, error) {
	v, ok := obj["patternProperties"]
	if !ok {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &InvalidKeywordError{Location: sl.kw("patternProperties"), Want: "object", Got: v}
	}
	var res []patternSchema
	for _, pattern := range slices.Sorted(maps.Keys(m)) {
		re, err := ctx.regexp(pattern, sl.kw("patternProperties", pattern))
		if err != nil {
			return nil, err
		}
		ps := patternSchema{re: re}
		if compileSchemas {
			if ps.sub, err = ctx.subschema(sl, false, "patternProperties", pattern); err != nil {
				return nil, err
			}
		}
		res = append(res, ps)
	}
	return res, nil
}

func compilePatternProperties(ctx *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	patterns, err := ctx.patterns(obj, sl, true)
	if err != nil || len(patterns) == 0 {
		return nil, err
	}
	return &patternProperties{patterns: patterns}, nil
}

// --

// additionalProperties applies to properties matched neither by
// properties nor by patternProperties of the same schema.
type additionalProperties struct {
	known    map[string]struct{}
	patterns []patternSchema
	sub      int // -1 when additional properties are not allowed
}

func (ap *additionalProperties) additional(pname string) bool {
	if _, ok := ap.known[pname]; ok {
		return false
	}
	for _, ps := range ap.patterns {
		if ps.re.MatchString(pname) {
			return false
		}
	}
	return true
}

func (ap *additionalProperties) IsValid(s *Schema, v any) bool {
	obj, ok := v.(map[string]any)
	if !ok {
		return true
	}
	for pname, pv := range obj {
		if !ap.additional(pname) {
			continue
		}
		if ap.sub == -1 || !s.nodes[ap.sub].IsValid(s, pv) {
			return false
		}
	}
	return true
}

func (ap *additionalProperties) Validate(s *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	obj, ok := v.(map[string]any)
	if !ok {
		return noErrors
	}
	var extra []string
	for _, pname := range slices.Sorted(maps.Keys(obj)) {
		if ap.additional(pname) {
			extra = append(extra, pname)
		}
	}
	if len(extra) == 0 {
		return noErrors
	}
	if ap.sub == -1 {
		return fail(v, p, &kind.AdditionalProperties{Properties: extra})
	}
	return func(yield func(*ValidationError) bool) {
		for _, pname := range extra {
			for e := range s.nodes[ap.sub].Validate(s, obj[pname], p.Prop(pname)) {
				if !yield(e) {
					return
				}
			}
		}
	}
}

func (ap *additionalProperties) String() string {
	if ap.sub == -1 {
		return "additionalProperties: false"
	}
	return fmt.Sprintf("additionalProperties: #%d", ap.sub)
}

func compileAdditionalProperties(ctx *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	ap := &additionalProperties{known: map[string]struct{}{}, sub: -1}
	switch v := obj["additionalProperties"].(type) {
	case bool:
		if v {
			return nil, nil
		}
	default:
		sub, err := ctx.subschemaOf(obj, sl, "additionalProperties", false)
		if err != nil {
			return nil, err
		}
		ap.sub = sub
	}
	if props, ok := obj["properties"].(map[string]any); ok {
		for pname := range props {
			ap.known[pname] = struct{}{}
		}
	}
	patterns, err := ctx.patterns(obj, sl, false)
	if err != nil {
		return nil, err
	}
	ap.patterns = patterns
	return ap, nil
}

// --

type propertyNames struct {
	sub int
}

func (pn *propertyNames) IsValid(s *Schema, v any) bool {
	obj, ok := v.(map[string]any)
	if !ok {
		return true
	}
	for pname := range obj {
		if !s.nodes[pn.sub].IsValid(s, pname) {
			return false
		}
	}
	return true
}

func (pn *propertyNames) Validate(s *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	obj, ok := v.(map[string]any)
	if !ok {
		return noErrors
	}
	return func(yield func(*ValidationError) bool) {
		for _, pname := range slices.Sorted(maps.Keys(obj)) {
			causes := collect(s.nodes[pn.sub].Validate(s, pname, p))
			if len(causes) == 0 {
				continue
			}
			e := &ValidationError{InstanceLocation: p.Tokens(), Value: v, ErrorKind: &kind.PropertyNames{Property: pname}, Causes: causes}
			if !yield(e) {
				return
			}
		}
	}
}

func (pn *propertyNames) String() string {
	return fmt.Sprintf("propertyNames: #%d", pn.sub)
}

func compilePropertyNames(ctx *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	sub, err := ctx.subschemaOf(obj, sl, "propertyNames", false)
	if err != nil {
		return nil, err
	}
	return &propertyNames{sub: sub}, nil
}

// --

// dependentRequired is dependentRequired, or the array form of
// dependencies in older drafts.
type dependentRequired struct {
	kw    string
	names []string // sorted
	deps  map[string][]string
}

func (d *dependentRequired) IsValid(_ *Schema, v any) bool {
	obj, ok := v.(map[string]any)
	if !ok {
		return true
	}
	for _, name := range d.names {
		if _, ok := obj[name]; ok && len(missing(obj, d.deps[name])) > 0 {
			return false
		}
	}
	return true
}

func (d *dependentRequired) Validate(_ *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	obj, ok := v.(map[string]any)
	if !ok {
		return noErrors
	}
	return func(yield func(*ValidationError) bool) {
		for _, name := range d.names {
			if _, ok := obj[name]; !ok {
				continue
			}
			m := missing(obj, d.deps[name])
			if len(m) == 0 {
				continue
			}
			var k ErrorKind = &kind.DependentRequired{Prop: name, Missing: m}
			if d.kw == "dependencies" {
				k = &kind.Dependency{Prop: name, Missing: m}
			}
			if !yield(&ValidationError{InstanceLocation: p.Tokens(), Value: v, ErrorKind: k}) {
				return
			}
		}
	}
}

func (d *dependentRequired) String() string {
	return d.kw + ": " + strings.Join(d.names, ",")
}

func compileDependentRequired(_ *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	m, ok := obj["dependentRequired"].(map[string]any)
	if !ok {
		return nil, &InvalidKeywordError{Location: sl.kw("dependentRequired"), Want: "object", Got: obj["dependentRequired"]}
	}
	d := &dependentRequired{kw: "dependentRequired", deps: map[string][]string{}}
	for _, name := range slices.Sorted(maps.Keys(m)) {
		props, ok := stringSlice(m[name])
		if !ok {
			return nil, &InvalidKeywordError{Location: sl.kw("dependentRequired", name), Want: "array of strings", Got: m[name]}
		}
		d.names = append(d.names, name)
		d.deps[name] = props
	}
	return d, nil
}

// --

// dependentSchemas applies a schema to the whole object, when
// the property it is keyed by is present.
type dependentSchemas struct {
	propSchemas
}

func (d *dependentSchemas) IsValid(s *Schema, v any) bool {
	obj, ok := v.(map[string]any)
	if !ok {
		return true
	}
	for _, name := range d.names {
		if _, ok := obj[name]; ok && !s.nodes[d.subs[name]].IsValid(s, v) {
			return false
		}
	}
	return true
}

func (d *dependentSchemas) Validate(s *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	obj, ok := v.(map[string]any)
	if !ok {
		return noErrors
	}
	return func(yield func(*ValidationError) bool) {
		for _, name := range d.names {
			if _, ok := obj[name]; !ok {
				continue
			}
			for e := range s.nodes[d.subs[name]].Validate(s, v, p) {
				if !yield(e) {
					return
				}
			}
		}
	}
}

func compileDependentSchemas(ctx *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	names, subs, err := ctx.schemaMap(obj, sl, "dependentSchemas", true)
	if err != nil || len(names) == 0 {
		return nil, err
	}
	return &dependentSchemas{propSchemas{kw: "dependentSchemas", names: names, subs: subs}}, nil
}

// compileDependencies splits dependencies into its property and
// schema forms.
func compileDependencies(ctx *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	m, ok := obj["dependencies"].(map[string]any)
	if !ok {
		return nil, &InvalidKeywordError{Location: sl.kw("dependencies"), Want: "object", Got: obj["dependencies"]}
	}
	req := &dependentRequired{kw: "dependencies", deps: map[string][]string{}}
	sch := &dependentSchemas{propSchemas{kw: "dependencies", subs: map[string]int{}}}
	for _, name := range slices.Sorted(maps.Keys(m)) {
		switch dep := m[name].(type) {
		case []any:
			props, ok := stringSlice(dep)
			if !ok {
				return nil, &InvalidKeywordError{Location: sl.kw("dependencies", name), Want: "array of strings", Got: dep}
			}
			req.names = append(req.names, name)
			req.deps[name] = props
		case map[string]any, bool:
			sub, err := ctx.subschema(sl, true, "dependencies", name)
			if err != nil {
				return nil, err
			}
			sch.names = append(sch.names, name)
			sch.subs[name] = sub
		default:
			return nil, &InvalidKeywordError{Location: sl.kw("dependencies", name), Want: "array of strings or schema", Got: dep}
		}
	}
	switch {
	case len(sch.names) == 0:
		return req, nil
	case len(req.names) == 0:
		return sch, nil
	}
	return group{req, sch}, nil
}
