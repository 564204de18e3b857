// Copyright 2017 Santhosh Kumar Tekuri. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsonschema_test

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/corvid-labs/jsonschema"
)

func Example() {
	schema, err := jsonschema.UnmarshalJSON(strings.NewReader(`{
		"type": "object",
		"properties": {
			"price": {"type": "number", "multipleOf": 0.01}
		}
	}`))
	if err != nil {
		log.Fatal(err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("order.json", schema); err != nil {
		log.Fatal(err)
	}
	sch, err := c.Compile("order.json")
	if err != nil {
		log.Fatalf("%#v", err)
	}

	for _, order := range []string{`{"price": 19.95}`, `{"price": 0.015}`} {
		inst, err := jsonschema.UnmarshalJSON(strings.NewReader(order))
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(sch.IsValid(inst))
	}
	// Output:
	// true
	// false
}

// Example_errors shows how to take only the first violation.
func Example_errors() {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("list.json", map[string]any{
		"items": map[string]any{"multipleOf": 2},
	}); err != nil {
		log.Fatal(err)
	}
	sch := c.MustCompile("list.json")

	inst := []any{json.Number("2"), json.Number("3"), json.Number("5")}
	for e := range sch.Errors(inst) {
		fmt.Println(e)
		break
	}
	// Output:
	// at '/1': 3 is not a multiple of 2
}

// Example_basicOutput shows the basic output format.
func Example_basicOutput() {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("person.json", map[string]any{
		"required": []any{"name"},
		"properties": map[string]any{
			"age": map[string]any{"minimum": 0},
		},
	}); err != nil {
		log.Fatal(err)
	}
	sch := c.MustCompile("person.json")

	err := sch.Validate(map[string]any{"age": -1})
	verr := err.(*jsonschema.ValidationError)
	for _, unit := range verr.BasicOutput().Errors {
		fmt.Println(unit.KeywordLocation, unit.InstanceLocation, unit.Error)
	}
	// Output:
	// /required  missing property 'name'
	// /properties/age/minimum /age minimum: got -1, want 0
}
