// Copyright 2017 Santhosh Kumar Tekuri. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package jsonschema compiles json-schema documents and validates json
instances against them.

Drafts 4, 6, 7, 2019-09 and 2020-12 are supported. The keywords
$recursiveRef, $dynamicRef, unevaluatedProperties and unevaluatedItems
are rejected at compile time.

An example of using this package:

	sch, err := jsonschema.Compile("schemas/purchaseOrder.json")
	if err != nil {
		return err
	}
	f, err := os.Open("purchaseOrder.json")
	if err != nil {
		return err
	}
	defer f.Close()
	inst, err := jsonschema.UnmarshalJSON(f)
	if err != nil {
		return err
	}
	if err := sch.Validate(inst); err != nil {
		return err
	}

Instances should be decoded with UnmarshalJSON, which keeps numbers as
json.Number, so that keywords like multipleOf can fall back to exact
decimal arithmetic when float64 is not precise enough.

A compiled Schema offers three ways to validate:

  - IsValid stops at the first violation and allocates nothing
  - Errors yields every violation lazily, as an iter.Seq
  - Validate collects them into a single *ValidationError

The ValidationError can be rendered as text, or in the flag, basic and
detailed output formats defined by json-schema. Messages can
be localized with a golang.org/x/text/message.Printer.

This package loads schemas from file paths and file urls. Other url
schemes are plugged in with Compiler.UseLoader. To load schemas from
memory:

	c := jsonschema.NewCompiler()
	if err := c.AddResource("sch.json", map[string]any{"type": "string"}); err != nil {
		return err
	}
	sch, err := c.Compile("sch.json")

Format assertions are on for drafts before 2019-09; see
Compiler.AssertFormat. Custom formats are added with
Compiler.RegisterFormat.

Patterns use the go regexp package by default. For ECMA-262 patterns,
see package jsonschema/ecma.
*/
package jsonschema
