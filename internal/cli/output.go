package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/text/message"

	"github.com/corvid-labs/jsonschema"
)

// printer writes the outcome of each instance in the configured format.
type printer struct {
	w      io.Writer
	format string
	quiet  bool
	msg    *message.Printer
}

func (p *printer) result(name string, verr *jsonschema.ValidationError) error {
	if p.quiet {
		return nil
	}
	if p.format == "simple" {
		if verr == nil {
			_, err := fmt.Fprintf(p.w, "%s: ok\n", name)
			return err
		}
		_, err := fmt.Fprintf(p.w, "%s: %s\n", name, verr.LocalizedError(p.msg))
		return err
	}

	var out any
	switch {
	case p.format == "flag" && verr == nil:
		out = jsonschema.FlagOutput{Valid: true}
	case p.format == "flag":
		out = verr.FlagOutput()
	case verr == nil:
		out = jsonschema.OutputUnit{Valid: true}
	case p.format == "basic":
		out = verr.LocalizedBasicOutput(p.msg)
	default:
		out = verr.LocalizedDetailedOutput(p.msg)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(p.w, "%s\n", data)
	return err
}
