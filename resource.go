package jsonschema

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
)

// resource is a json document loaded by the compiler, along with the
// ids and anchors declared inside it.
type resource struct {
	url   string // retrieval url, without fragment
	doc   any
	draft *Draft

	// ids maps the location of each schema declaring an id
	// to the base url established by it.
	ids map[jsonPointer]string

	// anchors maps "base#name" to the schema location of the anchor.
	anchors map[string]jsonPointer
}

// idTarget is where an absolute schema id is declared.
type idTarget struct {
	res *resource
	ptr jsonPointer
}

func newResource(u string, doc any, draft *Draft) *resource {
	res := &resource{
		url:     u,
		doc:     doc,
		draft:   draft,
		ids:     map[jsonPointer]string{"": u},
		anchors: map[string]jsonPointer{},
	}
	res.collect(doc, "", u)
	return res
}

// collect records ids and anchors found in sch and its subschemas.
func (res *resource) collect(sch any, ptr jsonPointer, base string) {
	obj, ok := sch.(map[string]any)
	if !ok {
		return
	}
	id, anchor := res.draft.getID(obj)
	if id != "" {
		if u, err := resolveURL(base, id); err == nil {
			base, _ = split(u)
			res.ids[ptr] = base
		}
	}
	if anchor != "" {
		res.anchors[base+"#"+anchor] = ptr
	}
	if res.draft.version >= 2019 {
		if a, ok := obj["$anchor"].(string); ok {
			res.anchors[base+"#"+a] = ptr
		}
	}
	res.draft.walk(obj, ptr, func(ptr jsonPointer, sch any) {
		res.collect(sch, ptr, base)
	})
}

// baseURL returns the base url in effect at ptr: the id of the
// nearest enclosing schema that declares one.
func (res *resource) baseURL(ptr jsonPointer) string {
	for {
		if base, ok := res.ids[ptr]; ok {
			return base
		}
		slash := strings.LastIndexByte(string(ptr), '/')
		if slash == -1 {
			return res.url
		}
		ptr = ptr[:slash]
	}
}

// --

// split separates fragment from url.
func split(u string) (string, string) {
	if i := strings.IndexByte(u, '#'); i != -1 {
		return u[:i], u[i+1:]
	}
	return u, ""
}

// resolveURL resolves ref relative to absolute url base.
func resolveURL(base, ref string) (string, error) {
	if ref == "" {
		return base, nil
	}
	if strings.HasPrefix(ref, "#") {
		b, _ := split(base)
		return b + ref, nil
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", &ParseURLError{URL: ref, Err: err}
	}
	if r.IsAbs() {
		return ref, nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", &ParseURLError{URL: base, Err: err}
	}
	return b.ResolveReference(r).String(), nil
}

// absolute converts a file path or url to an absolute url.
func absolute(loc string) (string, error) {
	if u, err := url.Parse(loc); err == nil && u.IsAbs() && len(u.Scheme) > 1 {
		return loc, nil
	}
	path, frag := split(loc)
	path, err := filepath.Abs(path)
	if err != nil {
		return "", &ParseURLError{URL: loc, Err: err}
	}
	path = filepath.ToSlash(path)
	if runtime.GOOS == "windows" {
		path = "/" + path
	}
	u := (&url.URL{Scheme: "file", Path: path}).String()
	if frag != "" {
		u += "#" + frag
	}
	return u, nil
}
