package jsonschema

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// schemaLoc identifies the schema object being compiled.
type schemaLoc struct {
	res  *resource
	ptr  jsonPointer
	base string // base url for resolving references
	node int    // arena index of the node being compiled
}

func (sl schemaLoc) url() string {
	return sl.res.url + "#" + string(sl.ptr)
}

// kw returns the absolute location of keyword path under sl.
func (sl schemaLoc) kw(path ...string) string {
	ptr := sl.ptr
	for _, tok := range path {
		ptr = ptr.append(tok)
	}
	return sl.res.url + "#" + string(ptr)
}

func (sl schemaLoc) draft() *Draft {
	return sl.res.draft
}

// compileCtx holds the state of a single Compile call. Each call gets
// a fresh arena, so schemas returned by separate calls share nothing.
type compileCtx struct {
	c     *Compiler
	nodes []Validator
	index map[string]int // "url#ptr" to arena index

	// inPlace records, per node, the nodes it applies to the very
	// same instance value. A cycle in this graph never terminates.
	inPlace map[int][]int
}

func newCompileCtx(c *Compiler) *compileCtx {
	return &compileCtx{
		c:       c,
		index:   map[string]int{},
		inPlace: map[int][]int{},
	}
}

// compileAt compiles the schema at ptr in res, unless already done,
// and returns its arena index.
func (ctx *compileCtx) compileAt(res *resource, ptr jsonPointer) (int, error) {
	key := res.url + "#" + string(ptr)
	if idx, ok := ctx.index[key]; ok {
		return idx, nil
	}
	doc, ok := ptr.lookup(res.doc)
	if !ok {
		return 0, &JSONPointerNotFoundError{URL: key}
	}
	idx := len(ctx.nodes)
	ctx.nodes = append(ctx.nodes, nil)
	ctx.index[key] = idx

	sl := schemaLoc{res: res, ptr: ptr, base: res.baseURL(ptr), node: idx}
	v, err := ctx.compileNode(sl, doc)
	if err != nil {
		return 0, err
	}
	ctx.nodes[idx] = v
	return idx, nil
}

func (ctx *compileCtx) compileNode(sl schemaLoc, doc any) (Validator, error) {
	var obj map[string]any
	switch doc := doc.(type) {
	case bool:
		return &boolSchema{loc: sl.url(), allow: doc}, nil
	case map[string]any:
		obj = doc
	default:
		return nil, &InvalidKeywordError{Location: sl.url(), Want: "object or boolean", Got: doc}
	}

	d := sl.draft()
	n := &node{loc: sl.url()}
	if d.version < 2019 {
		if _, ok := obj["$ref"]; ok {
			// All other properties in a "$ref" object MUST be ignored
			v, err := compileRef(ctx, obj, sl)
			if err != nil {
				return nil, err
			}
			n.keywords = append(n.keywords, v)
			return n, nil
		}
	}

	for _, kw := range d.unsupported {
		if _, ok := obj[kw]; ok {
			return nil, &UnsupportedKeywordError{Location: sl.kw(kw), Keyword: kw}
		}
	}
	if ctx.c.strictKeywords {
		for kw := range obj {
			if !d.known(kw) {
				return nil, &UnknownKeywordError{Location: sl.kw(kw)}
			}
		}
	}

	for _, kw := range d.order {
		if _, ok := obj[kw]; !ok {
			continue
		}
		v, err := d.keywords[kw](ctx, obj, sl)
		if err != nil {
			return nil, err
		}
		if v != nil {
			n.keywords = append(n.keywords, v)
		}
	}
	return n, nil
}

// subschema compiles the schema found at path under sl. inPlace
// tells that the subschema is applied to the same instance value as sl,
// as with allOf, rather than to a child of it, as with properties.
func (ctx *compileCtx) subschema(sl schemaLoc, inPlace bool, path ...string) (int, error) {
	ptr := sl.ptr
	for _, tok := range path {
		ptr = ptr.append(tok)
	}
	idx, err := ctx.compileAt(sl.res, ptr)
	if err != nil {
		return 0, err
	}
	if inPlace {
		ctx.inPlace[sl.node] = append(ctx.inPlace[sl.node], idx)
	}
	return idx, nil
}

// subschemas compiles every item of the array keyword kw.
func (ctx *compileCtx) subschemas(obj map[string]any, sl schemaLoc, kw string, inPlace bool) ([]int, error) {
	arr, ok := obj[kw].([]any)
	if !ok || len(arr) == 0 {
		return nil, &InvalidKeywordError{Location: sl.kw(kw), Want: "non-empty array of schemas", Got: obj[kw]}
	}
	subs := make([]int, len(arr))
	for i := range arr {
		idx, err := ctx.subschema(sl, inPlace, kw, strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		subs[i] = idx
	}
	return subs, nil
}

// ref resolves reference found at sl and compiles its target.
func (ctx *compileCtx) ref(sl schemaLoc, ref string) (int, string, error) {
	res, ptr, u, err := ctx.resolve(sl.base, ref)
	if err != nil {
		return 0, "", err
	}
	idx, err := ctx.compileAt(res, ptr)
	if err != nil {
		return 0, "", err
	}
	ctx.inPlace[sl.node] = append(ctx.inPlace[sl.node], idx)
	return idx, u, nil
}

// resolve finds the schema that ref, relative to base, points to.
// Documents not seen before are loaded.
func (ctx *compileCtx) resolve(base, ref string) (*resource, jsonPointer, string, error) {
	u, err := resolveURL(base, ref)
	if err != nil {
		return nil, "", "", err
	}
	doc, frag := split(u)

	var res *resource
	var ptr jsonPointer
	if t, ok := ctx.c.ids[doc]; ok {
		res, ptr = t.res, t.ptr
	} else if res, err = ctx.c.loadResource(doc); err != nil {
		return nil, "", "", err
	}

	frag, err = url.PathUnescape(frag)
	if err != nil {
		return nil, "", "", &ParseURLError{URL: u, Err: err}
	}
	switch {
	case frag == "":
	case strings.HasPrefix(frag, "/"):
		ptr = jsonPointer(string(ptr) + frag)
	default:
		p, ok := res.anchors[doc+"#"+frag]
		if !ok {
			p, ok = res.anchors[res.baseURL(ptr)+"#"+frag]
		}
		if !ok {
			return nil, "", "", &AnchorNotFoundError{URL: doc, Reference: ref}
		}
		ptr = p
	}
	return res, ptr, u, nil
}

// checkLoops reports a cycle of schemas applied in place,
// such as {"$ref": "#"} or {"allOf": [{"$ref": "#"}]}.
func (ctx *compileCtx) checkLoops() error {
	const (
		unvisited = iota
		visiting
		visited
	)
	state := make([]int, len(ctx.nodes))
	var visit func(i int) int
	visit = func(i int) int {
		state[i] = visiting
		for _, j := range ctx.inPlace[i] {
			switch state[j] {
			case visiting:
				return j
			case unvisited:
				if k := visit(j); k != -1 {
					return k
				}
			}
		}
		state[i] = visited
		return -1
	}
	for i := range ctx.nodes {
		if state[i] != unvisited {
			continue
		}
		if j := visit(i); j != -1 {
			return &InfiniteLoopError{URL: ctx.location(j)}
		}
	}
	return nil
}

func (ctx *compileCtx) location(idx int) string {
	locs := make([]string, 0, 1)
	for loc, i := range ctx.index {
		if i == idx {
			locs = append(locs, loc)
		}
	}
	slices.Sort(locs)
	return locs[0]
}
