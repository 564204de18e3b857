package cli

import (
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/corvid-labs/jsonschema"
)

// newLoader loads schemas from files and over http, in json or yaml.
func newLoader(timeout time.Duration, insecure bool) jsonschema.URLLoader {
	httpLoader := HTTPLoader(http.Client{
		Timeout: timeout,
	})
	if insecure {
		httpLoader.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return jsonschema.SchemeURLLoader{
		"file":  FileLoader{},
		"http":  &httpLoader,
		"https": &httpLoader,
	}
}

func isYAML(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}

// decode reads a json document, or a yaml one when yml is set.
// yaml documents are converted so that they look like decoded json.
func decode(r io.Reader, yml bool) (any, error) {
	if !yml {
		return jsonschema.UnmarshalJSON(r)
	}
	var v any
	if err := yaml.NewDecoder(r).Decode(&v); err != nil {
		return nil, err
	}
	return fromYAML(v)
}

// fromYAML converts yaml.v3 output to json values: integers become
// float64 and maps must have string keys.
func fromYAML(v any) (any, error) {
	switch v := v.(type) {
	case map[string]any:
		for k, item := range v {
			item, err := fromYAML(item)
			if err != nil {
				return nil, err
			}
			v[k] = item
		}
		return v, nil
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, item := range v {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("yaml: non-string key %v", k)
			}
			item, err := fromYAML(item)
			if err != nil {
				return nil, err
			}
			m[key] = item
		}
		return m, nil
	case []any:
		for i, item := range v {
			item, err := fromYAML(item)
			if err != nil {
				return nil, err
			}
			v[i] = item
		}
		return v, nil
	case int:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	default:
		return v, nil
	}
}

// FileLoader loads json and yaml files.
type FileLoader struct{}

func (l FileLoader) Load(url string) (any, error) {
	path, err := jsonschema.FileLoader{}.ToFile(url)
	if err != nil {
		return nil, err
	}
	return loadFile(path)
}

func loadFile(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decode(f, isYAML(path))
}

// HTTPLoader loads json and yaml documents over http.
type HTTPLoader http.Client

func (l *HTTPLoader) Load(url string) (any, error) {
	client := (*http.Client)(l)
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status code %d", url, resp.StatusCode)
	}

	yml := isYAML(url)
	if !yml {
		ctype := resp.Header.Get("Content-Type")
		yml = strings.HasSuffix(ctype, "/yaml") || strings.HasSuffix(ctype, "-yaml")
	}
	return decode(resp.Body, yml)
}

// loadInstance reads an instance document; "-" is stdin, read as json.
func loadInstance(name string, stdin io.Reader) (any, error) {
	if name == "-" {
		return decode(stdin, false)
	}
	return loadFile(name)
}
