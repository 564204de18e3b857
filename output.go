package jsonschema

import (
	"encoding/json"

	"golang.org/x/text/message"
)

// Flag is output format with simple boolean property valid.
type FlagOutput struct {
	Valid bool `json:"valid"`
}

// The `Flag` output format, merely the boolean result.
func (e *ValidationError) FlagOutput() *FlagOutput {
	return &FlagOutput{Valid: false}
}

// --

// OutputUnit is a node of the basic and detailed output formats.
type OutputUnit struct {
	Valid                   bool         `json:"valid"`
	KeywordLocation         string       `json:"keywordLocation"`
	AbsoluteKeywordLocation string       `json:"absoluteKeywordLocation,omitempty"`
	InstanceLocation        string       `json:"instanceLocation"`
	Error                   *OutputError `json:"error,omitempty"`
	Errors                  []OutputUnit `json:"errors,omitempty"`
}

// OutputError is the message of an OutputUnit, rendered lazily
// with the printer the output was requested with.
type OutputError struct {
	Kind    ErrorKind
	printer *message.Printer
}

func (k OutputError) String() string {
	return k.Kind.LocalizedString(k.printer)
}

func (k OutputError) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (e *ValidationError) unit(p *message.Printer) OutputUnit {
	abs := e.KeywordLocation()
	_, rel := split(abs)
	return OutputUnit{
		KeywordLocation:         rel,
		AbsoluteKeywordLocation: abs,
		InstanceLocation:        joinTokens(e.InstanceLocation),
		Error:                   &OutputError{Kind: e.ErrorKind, printer: p},
	}
}

// The `Basic` structure, a flat list of output units.
func (e *ValidationError) BasicOutput() *OutputUnit {
	return e.LocalizedBasicOutput(defaultPrinter)
}

// LocalizedBasicOutput is BasicOutput with messages rendered by p.
func (e *ValidationError) LocalizedBasicOutput(p *message.Printer) *OutputUnit {
	out := e.unit(p)
	out.Error = nil
	for leaf := range e.Leaves {
		out.Errors = append(out.Errors, leaf.unit(p))
	}
	return &out
}

// The `Detailed` structure, based on the schema.
func (e *ValidationError) DetailedOutput() *OutputUnit {
	return e.LocalizedDetailedOutput(defaultPrinter)
}

// LocalizedDetailedOutput is DetailedOutput with messages rendered by p.
func (e *ValidationError) LocalizedDetailedOutput(p *message.Printer) *OutputUnit {
	out := e.unit(p)
	if len(e.Causes) > 0 {
		out.Error = nil
		for _, c := range e.Causes {
			out.Errors = append(out.Errors, *c.LocalizedDetailedOutput(p))
		}
	}
	return &out
}
