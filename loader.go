package jsonschema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	gourl "net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// URLLoader resolves an absolute url to a decoded json document.
// Compiler calls it for every document a schema refers to that was
// not added with AddResource, at most once per url.
type URLLoader interface {
	Load(url string) (any, error)
}

// --

// FileLoader loads json documents from file urls.
type FileLoader struct{}

func (l FileLoader) Load(url string) (any, error) {
	path, err := l.ToFile(url)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := UnmarshalJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// ToFile converts a file url to a local path. Only urls without
// host, or with host localhost, are accepted.
func (FileLoader) ToFile(url string) (string, error) {
	u, err := gourl.Parse(url)
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("not a file url: %s", url)
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", fmt.Errorf("file url %s names remote host %s", url, u.Host)
	}
	if runtime.GOOS != "windows" {
		return u.Path, nil
	}
	return filepath.FromSlash(strings.TrimPrefix(u.Path, "/")), nil
}

// --

// SchemeURLLoader picks the URLLoader registered for
// the scheme of the url.
type SchemeURLLoader map[string]URLLoader

func (l SchemeURLLoader) Load(url string) (any, error) {
	u, err := gourl.Parse(url)
	if err != nil {
		return nil, err
	}
	if loader, ok := l[u.Scheme]; ok {
		return loader.Load(url)
	}
	return nil, &UnsupportedURLSchemeError{URL: url, Scheme: u.Scheme}
}

// --

// MapLoader serves documents from memory, keyed by absolute url.
type MapLoader map[string]any

func (l MapLoader) Load(url string) (any, error) {
	doc, ok := l[url]
	if !ok {
		return nil, fmt.Errorf("%s: %w", url, os.ErrNotExist)
	}
	return doc, nil
}

// --

// LoadURLError is returned when a schema document could not be loaded.
type LoadURLError struct {
	URL string
	Err error
}

func (e *LoadURLError) Error() string {
	return fmt.Sprintf("loading %s failed: %v", quote(e.URL), e.Err)
}

func (e *LoadURLError) Unwrap() error {
	return e.Err
}

// UnsupportedURLSchemeError is returned by SchemeURLLoader
// for a url whose scheme has no loader.
type UnsupportedURLSchemeError struct {
	URL    string
	Scheme string
}

func (e *UnsupportedURLSchemeError) Error() string {
	return fmt.Sprintf("no loader for scheme %s of %s", quote(e.Scheme), quote(e.URL))
}

// --

// UnmarshalJSON decodes a single json value from r. Numbers are kept
// as json.Number, so that their decimal text survives for keywords
// like multipleOf.
func UnmarshalJSON(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	switch _, err := dec.Token(); {
	case errors.Is(err, io.EOF):
		return doc, nil
	case err != nil:
		return nil, err
	default:
		return nil, fmt.Errorf("unexpected data after top-level value at offset %d", dec.InputOffset())
	}
}
