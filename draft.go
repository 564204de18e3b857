package jsonschema

import (
	"strings"
)

type position uint

const (
	posSelf position = 1 << iota
	posProp
	posItem
)

// keywordCompiler compiles the keyword it is registered for. obj is the
// whole schema object, since some keywords read their siblings.
// A nil Validator means the keyword has no effect.
type keywordCompiler func(ctx *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error)

// Draft represents json-schema draft
type Draft struct {
	version    int
	url        string
	id         string              // property name used to represent id
	subschemas map[string]position // locations of subschemas

	// keywords are compiled in order; compilers are looked up in
	// keywords, which is filled by init to break the dependency
	// between compilers and draft detection.
	order    []string
	keywords map[string]keywordCompiler

	companions  []string // read by the compiler of another keyword
	annotations []string // recognized, no effect on validation
	unsupported []string // recognized, rejected at compile time
}

func (d *Draft) String() string {
	return d.url
}

// Version returns the draft number, for example 7 or 2020.
func (d *Draft) Version() int {
	return d.version
}

var (
	Draft4 = &Draft{
		version: 4,
		url:     "http://json-schema.org/draft-04/schema",
		id:      "id",
		subschemas: map[string]position{
			// type agonistic
			"definitions": posProp,
			"not":         posSelf,
			"allOf":       posItem,
			"anyOf":       posItem,
			"oneOf":       posItem,
			// object
			"properties":           posProp,
			"additionalProperties": posSelf,
			"patternProperties":    posProp,
			// array
			"items":           posSelf | posItem,
			"additionalItems": posSelf,
			"dependencies":    posProp,
		},
		order: []string{
			"$ref", "type", "enum", "format",
			"multipleOf", "minimum", "maximum",
			"minLength", "maxLength", "pattern",
			"minItems", "maxItems", "uniqueItems", "items",
			"minProperties", "maxProperties", "required", "properties", "patternProperties",
			"additionalProperties", "dependencies",
			"allOf", "anyOf", "oneOf", "not",
		},
		companions:  []string{"exclusiveMinimum", "exclusiveMaximum", "additionalItems"},
		annotations: []string{"$schema", "id", "title", "description", "default", "definitions"},
	}

	Draft6 = &Draft{
		version: 6,
		url:     "http://json-schema.org/draft-06/schema",
		id:      "$id",
		subschemas: joinMaps(Draft4.subschemas, map[string]position{
			"propertyNames": posSelf,
			"contains":      posSelf,
		}),
		order: []string{
			"$ref", "type", "enum", "const", "format",
			"multipleOf", "minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum",
			"minLength", "maxLength", "pattern",
			"minItems", "maxItems", "uniqueItems", "items", "contains",
			"minProperties", "maxProperties", "required", "properties", "patternProperties",
			"additionalProperties", "propertyNames", "dependencies",
			"allOf", "anyOf", "oneOf", "not",
		},
		companions:  []string{"additionalItems"},
		annotations: []string{"$schema", "$id", "title", "description", "default", "examples", "definitions"},
	}

	Draft7 = &Draft{
		version: 7,
		url:     "http://json-schema.org/draft-07/schema",
		id:      "$id",
		subschemas: joinMaps(Draft6.subschemas, map[string]position{
			"if":   posSelf,
			"then": posSelf,
			"else": posSelf,
		}),
		order: []string{
			"$ref", "type", "enum", "const", "format",
			"multipleOf", "minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum",
			"minLength", "maxLength", "pattern", "contentEncoding", "contentMediaType",
			"minItems", "maxItems", "uniqueItems", "items", "contains",
			"minProperties", "maxProperties", "required", "properties", "patternProperties",
			"additionalProperties", "propertyNames", "dependencies",
			"allOf", "anyOf", "oneOf", "not", "if",
		},
		companions: []string{"additionalItems", "then", "else"},
		annotations: []string{
			"$schema", "$id", "$comment", "title", "description", "default", "examples",
			"readOnly", "writeOnly", "definitions",
		},
	}

	Draft2019 = &Draft{
		version: 2019,
		url:     "https://json-schema.org/draft/2019-09/schema",
		id:      "$id",
		subschemas: joinMaps(Draft7.subschemas, map[string]position{
			"$defs":                 posProp,
			"dependentSchemas":      posProp,
			"unevaluatedProperties": posSelf,
			"unevaluatedItems":      posSelf,
			"contentSchema":         posSelf,
		}),
		order: []string{
			"$ref", "type", "enum", "const", "format",
			"multipleOf", "minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum",
			"minLength", "maxLength", "pattern", "contentEncoding", "contentMediaType",
			"minItems", "maxItems", "uniqueItems", "items", "contains",
			"minProperties", "maxProperties", "required", "dependentRequired", "properties", "patternProperties",
			"additionalProperties", "propertyNames", "dependentSchemas",
			"allOf", "anyOf", "oneOf", "not", "if",
		},
		companions: []string{"additionalItems", "then", "else", "minContains", "maxContains"},
		annotations: []string{
			"$schema", "$id", "$anchor", "$comment", "$vocabulary", "$recursiveAnchor", "$defs", "definitions",
			"title", "description", "default", "examples", "readOnly", "writeOnly", "deprecated", "contentSchema",
		},
		unsupported: []string{"$recursiveRef", "unevaluatedProperties", "unevaluatedItems"},
	}

	Draft2020 = &Draft{
		version: 2020,
		url:     "https://json-schema.org/draft/2020-12/schema",
		id:      "$id",
		subschemas: joinMaps(Draft2019.subschemas, map[string]position{
			"prefixItems": posItem,
		}),
		order: []string{
			"$ref", "type", "enum", "const", "format",
			"multipleOf", "minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum",
			"minLength", "maxLength", "pattern", "contentEncoding", "contentMediaType",
			"minItems", "maxItems", "uniqueItems", "prefixItems", "items", "contains",
			"minProperties", "maxProperties", "required", "dependentRequired", "properties", "patternProperties",
			"additionalProperties", "propertyNames", "dependentSchemas",
			"allOf", "anyOf", "oneOf", "not", "if",
		},
		companions: []string{"then", "else", "minContains", "maxContains"},
		annotations: []string{
			"$schema", "$id", "$anchor", "$dynamicAnchor", "$comment", "$vocabulary", "$defs", "definitions",
			"title", "description", "default", "examples", "readOnly", "writeOnly", "deprecated", "contentSchema",
		},
		unsupported: []string{"$dynamicRef", "unevaluatedProperties", "unevaluatedItems"},
	}

	draftLatest = Draft2020
)

func init() {
	common := map[string]keywordCompiler{
		"$ref":                 compileRef,
		"type":                 compileType,
		"enum":                 compileEnum,
		"const":                compileConst,
		"format":               compileFormat,
		"multipleOf":           compileMultipleOf,
		"minimum":              compileMinimum,
		"maximum":              compileMaximum,
		"exclusiveMinimum":     compileExclusiveMinimum,
		"exclusiveMaximum":     compileExclusiveMaximum,
		"minLength":            compileMinLength,
		"maxLength":            compileMaxLength,
		"pattern":              compilePattern,
		"contentEncoding":      compileContentEncoding,
		"contentMediaType":     compileContentMediaType,
		"minItems":             compileMinItems,
		"maxItems":             compileMaxItems,
		"uniqueItems":          compileUniqueItems,
		"prefixItems":          compilePrefixItems,
		"items":                compileItems,
		"contains":             compileContains,
		"minProperties":        compileMinProperties,
		"maxProperties":        compileMaxProperties,
		"required":             compileRequired,
		"dependentRequired":    compileDependentRequired,
		"properties":           compileProperties,
		"patternProperties":    compilePatternProperties,
		"additionalProperties": compileAdditionalProperties,
		"propertyNames":        compilePropertyNames,
		"dependencies":         compileDependencies,
		"dependentSchemas":     compileDependentSchemas,
		"allOf":                compileAllOf,
		"anyOf":                compileAnyOf,
		"oneOf":                compileOneOf,
		"not":                  compileNot,
		"if":                   compileIf,
	}
	for _, d := range []*Draft{Draft4, Draft6, Draft7, Draft2019, Draft2020} {
		d.keywords = make(map[string]keywordCompiler, len(d.order))
		for _, kw := range d.order {
			d.keywords[kw] = common[kw]
		}
	}
}

func draftFromURL(url string) *Draft {
	u, frag := split(url)
	if frag != "" {
		return nil
	}
	u, ok := strings.CutPrefix(u, "http://")
	if !ok {
		u, _ = strings.CutPrefix(u, "https://")
	}
	switch u {
	case "json-schema.org/schema":
		return draftLatest
	case "json-schema.org/draft/2020-12/schema":
		return Draft2020
	case "json-schema.org/draft/2019-09/schema":
		return Draft2019
	case "json-schema.org/draft-07/schema":
		return Draft7
	case "json-schema.org/draft-06/schema":
		return Draft6
	case "json-schema.org/draft-04/schema":
		return Draft4
	default:
		return nil
	}
}

// known tells whether kw means something in this draft.
func (d *Draft) known(kw string) bool {
	if _, ok := d.keywords[kw]; ok {
		return true
	}
	for _, list := range [][]string{d.companions, d.annotations, d.unsupported} {
		for _, k := range list {
			if k == kw {
				return true
			}
		}
	}
	return false
}

// getID returns the id declared by obj, without fragment.
func (d *Draft) getID(obj map[string]any) (id string, anchor string) {
	if d.version < 2019 {
		if _, ok := obj["$ref"]; ok {
			// All other properties in a "$ref" object MUST be ignored
			return "", ""
		}
	}
	s, ok := obj[d.id].(string)
	if !ok {
		return "", ""
	}
	id, frag := split(s)
	if d.version < 2019 && frag != "" && !strings.HasPrefix(frag, "/") {
		anchor = frag
	}
	return id, anchor
}

// walk calls fn for every subschema directly under obj.
func (d *Draft) walk(obj map[string]any, ptr jsonPointer, fn func(ptr jsonPointer, sch any)) {
	for kw, pos := range d.subschemas {
		v, ok := obj[kw]
		if !ok {
			continue
		}
		if pos&posSelf != 0 {
			switch v.(type) {
			case map[string]any, bool:
				fn(ptr.append(kw), v)
			}
		}
		if pos&posItem != 0 {
			if arr, ok := v.([]any); ok {
				for i, item := range arr {
					fn(ptr.append(kw).appendIndex(i), item)
				}
			}
		}
		if pos&posProp != 0 {
			if m, ok := v.(map[string]any); ok {
				for pname, pvalue := range m {
					fn(ptr.append(kw).append(pname), pvalue)
				}
			}
		}
	}
}

// --

func joinMaps(m1 map[string]position, m2 map[string]position) map[string]position {
	m := make(map[string]position)
	for k, v := range m1 {
		m[k] = v
	}
	for k, v := range m2 {
		m[k] = v
	}
	return m
}
