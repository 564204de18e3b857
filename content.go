// Copyright 2017 Santhosh Kumar Tekuri. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsonschema

import (
	"bytes"
	"encoding/base64"

	"gopkg.in/yaml.v3"
)

// Decoder specifies how to decode specific contentEncoding.
type Decoder struct {
	// Name of contentEncoding.
	Name string
	// Decode given string to byte array.
	Decode func(string) ([]byte, error)
}

// MediaType specified how to validate bytes against specific contentMediaType.
type MediaType struct {
	// Name of contentMediaType.
	Name string
	// Validate checks whether bytes conform to this mediatype.
	Validate func([]byte) error
}

var decoders = map[string]*Decoder{
	"base64": {Name: "base64", Decode: base64.StdEncoding.DecodeString},
}

var mediaTypes = map[string]*MediaType{
	"application/json": {Name: "application/json", Validate: validateJSON},
	"application/yaml": {Name: "application/yaml", Validate: validateYAML},
}

func validateJSON(b []byte) error {
	_, err := UnmarshalJSON(bytes.NewReader(b))
	return err
}

func validateYAML(b []byte) error {
	var v any
	return yaml.Unmarshal(b, &v)
}
