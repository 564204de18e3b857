// Package cli implements the jv command: compile a schema, then
// validate instance documents against it.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/corvid-labs/jsonschema"
	"github.com/corvid-labs/jsonschema/ecma"
	"github.com/corvid-labs/jsonschema/internal/config"
	"github.com/corvid-labs/jsonschema/internal/logging"
	"github.com/corvid-labs/jsonschema/internal/telemetry"
)

// NewRootCmd creates the jv command.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jv [flags] <json-schema> [<json-or-yaml-doc>]...",
		Short: "Validate json and yaml documents against a json-schema",
		Long: `jv compiles the given json-schema and validates each document against it.
A document named "-" is read from stdin.

Exit codes: 0 all valid, 1 some document invalid, 2 schema error,
3 usage, config or document load error.`,
		Args:          cobra.MinimumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runValidate,
	}

	defaults := config.GetDefaults()
	f := cmd.Flags()
	f.String("config", "", "config file (default ./"+config.FileName+" if present)")
	f.Int("draft", defaults["draft"].(int), "draft used when '$schema' is missing: 4, 6, 7, 2019 or 2020")
	f.StringP("output", "o", defaults["output"].(string), "output format: simple | flag | basic | detailed")
	f.Bool("assert-format", false, "enable format assertions with draft >= 2019")
	f.Bool("assert-content", false, "enable contentEncoding and contentMediaType assertions")
	f.Bool("strict", false, "reject keywords unknown to the draft")
	f.String("regexp", defaults["regexp"].(string), "regexp engine: go | ecma")
	f.BoolP("insecure", "k", false, "skip tls verification when loading schemas over https")
	f.Int("timeout", defaults["timeout"].(int), "http timeout in seconds")
	f.String("lang", defaults["lang"].(string), "language of error messages, as BCP 47 tag")
	f.String("log-level", defaults["log_level"].(string), "log level: debug | info | warn | error")
	f.String("log-file", "", "also write json logs to this file")
	f.String("otlp-endpoint", "", "export validation spans to this OTLP/HTTP host:port")
	f.BoolP("quiet", "q", false, "print nothing, report through exit code only")
	f.Bool("describe", false, "print the compiled schema")

	return cmd
}

// applyFlags overrides cfg with the flags given on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Configuration) {
	f := cmd.Flags()
	if f.Changed("draft") {
		cfg.Draft, _ = f.GetInt("draft")
	}
	if f.Changed("output") {
		cfg.Output, _ = f.GetString("output")
	}
	if f.Changed("assert-format") {
		cfg.AssertFormat, _ = f.GetBool("assert-format")
	}
	if f.Changed("assert-content") {
		cfg.AssertContent, _ = f.GetBool("assert-content")
	}
	if f.Changed("strict") {
		cfg.Strict, _ = f.GetBool("strict")
	}
	if f.Changed("regexp") {
		cfg.Regexp, _ = f.GetString("regexp")
	}
	if f.Changed("insecure") {
		cfg.Insecure, _ = f.GetBool("insecure")
	}
	if f.Changed("timeout") {
		cfg.Timeout, _ = f.GetInt("timeout")
	}
	if f.Changed("lang") {
		cfg.Lang, _ = f.GetString("lang")
	}
	if f.Changed("log-level") {
		cfg.LogLevel, _ = f.GetString("log-level")
	}
	if f.Changed("log-file") {
		cfg.LogFile, _ = f.GetString("log-file")
	}
	if f.Changed("otlp-endpoint") {
		cfg.OTLPEndpoint, _ = f.GetString("otlp-endpoint")
	}
}

func draft(version int) *jsonschema.Draft {
	switch version {
	case 4:
		return jsonschema.Draft4
	case 6:
		return jsonschema.Draft6
	case 7:
		return jsonschema.Draft7
	case 2019:
		return jsonschema.Draft2019
	default:
		return jsonschema.Draft2020
	}
}

func newCompiler(cfg *config.Configuration, logger *zap.Logger) *jsonschema.Compiler {
	c := jsonschema.NewCompiler()
	c.UseLogger(logger)
	c.UseLoader(newLoader(time.Duration(cfg.Timeout)*time.Second, cfg.Insecure))
	c.DefaultDraft(draft(cfg.Draft))
	if cfg.Regexp == "ecma" {
		c.UseRegexpEngine(ecma.Compile)
	}
	if cfg.AssertFormat {
		c.AssertFormat()
	}
	if cfg.AssertContent {
		c.AssertContent()
	}
	if cfg.Strict {
		c.DisallowUnknownKeywords()
	}
	return c
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return exitError(exitUsage, "%v", err)
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return exitError(exitUsage, "%v", err)
	}
	quiet, _ := cmd.Flags().GetBool("quiet")
	describe, _ := cmd.Flags().GetBool("describe")

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Out: cmd.ErrOrStderr()})
	if err != nil {
		return exitError(exitUsage, "%v", err)
	}
	defer func() { _ = logger.Sync() }()

	tag, err := language.Parse(cfg.Lang)
	if err != nil {
		return exitError(exitUsage, "invalid language %q: %v", cfg.Lang, err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	tel, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, cfg.Insecure, logger)
	if err != nil {
		return exitError(exitUsage, "telemetry: %v", err)
	}
	defer func() {
		if err := tel.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	sch, err := newCompiler(cfg, logger).Compile(args[0])
	if err != nil {
		if !quiet {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
		return exitError(exitSchema, "schema %s failed to compile", args[0])
	}
	logger.Info("schema compiled", zap.String("url", sch.Location), zap.Stringer("draft", sch.Draft))
	if describe && !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), sch.Describe())
	}

	out := &printer{
		w:      cmd.OutOrStdout(),
		format: cfg.Output,
		quiet:  quiet,
		msg:    message.NewPrinter(tag),
	}
	var invalid, failed int
	for _, name := range args[1:] {
		doc, err := loadInstance(name, cmd.InOrStdin())
		if err != nil {
			failed++
			logger.Error("loading document failed", zap.String("document", name), zap.Error(err))
			continue
		}
		var verr *jsonschema.ValidationError
		if err := tel.Validate(ctx, sch, name, doc); errors.As(err, &verr) {
			invalid++
		}
		if err := out.result(name, verr); err != nil {
			return exitError(exitUsage, "writing output: %v", err)
		}
	}

	switch {
	case failed > 0:
		return exitError(exitUsage, "%d of %d documents could not be loaded", failed, len(args)-1)
	case invalid > 0:
		return exitError(exitInvalid, "%d of %d documents are invalid", invalid, len(args)-1)
	}
	return nil
}
