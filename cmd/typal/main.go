// Command typal validates record files against schema catalogs, exports
// JSON Schema and checks subsumption between catalog models.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/reoring/typal"
	"github.com/reoring/typal/i18n"
	"github.com/reoring/typal/jsonschema"
	"github.com/reoring/typal/model"
	"github.com/reoring/typal/schemafile"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "typal CLI\n\nUsage:\n  typal validate --schema cat.yaml --model User [--config typal.toml] FILE...\n  typal jsonschema --schema cat.yaml --model User\n  typal check --schema cat.yaml --sub A --super B")
}

// run dispatches a subcommand and returns the exit code: 0 success, 1 a
// failed validation or check, 2 a usage or input error.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	switch args[0] {
	case "validate":
		return validateCmd(args[1:], stdout, stderr)
	case "jsonschema":
		return jsonSchemaCmd(args[1:], stdout, stderr)
	case "check":
		return checkCmd(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	}
	usage(stderr)
	return 2
}

// common holds the flags every subcommand shares.
type common struct {
	fs       *pflag.FlagSet
	schema   string
	config   string
	logLevel string
	lang     string
}

func newCommon(name string, stderr io.Writer) *common {
	c := &common{fs: pflag.NewFlagSet(name, pflag.ContinueOnError)}
	c.fs.SetOutput(stderr)
	c.fs.StringVar(&c.schema, "schema", "", "schema catalog (.yaml, .toml or .json)")
	c.fs.StringVar(&c.config, "config", "", "TOML config file")
	c.fs.StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	c.fs.StringVar(&c.lang, "lang", "", "message language (en, ja)")
	return c
}

// setup merges the config file and flags, installs the logger and loads
// the catalog.
func (c *common) setup(stderr io.Writer) (config, *schemafile.Catalog, error) {
	cfg, err := loadConfig(c.config)
	if err != nil {
		return config{}, nil, err
	}
	if c.fs.Changed("lang") {
		cfg.Language = c.lang
	}
	if c.fs.Changed("log-level") {
		lvl, err := zerolog.ParseLevel(c.logLevel)
		if err != nil {
			return config{}, nil, fmt.Errorf("parse --log-level: %w", err)
		}
		cfg.LogLevel = lvl
	}
	if err := cfg.check(); err != nil {
		return config{}, nil, err
	}
	out := zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}
	typal.SetLogger(zerolog.New(out).Level(cfg.LogLevel).With().Timestamp().Str("app", "typal").Logger())
	i18n.SetLanguage(cfg.Language)
	if c.schema == "" {
		return config{}, nil, errors.New("--schema is required")
	}
	cat, err := schemafile.LoadFile(c.schema)
	if err != nil {
		return config{}, nil, err
	}
	return cfg, cat, nil
}

func lookup(cat *schemafile.Catalog, name string) (*model.Schema, error) {
	if name == "" {
		return nil, errors.New("model name is required")
	}
	s, ok := cat.Schema(name)
	if !ok {
		return nil, fmt.Errorf("model %q not found in catalog", name)
	}
	return s, nil
}

func validateCmd(args []string, stdout, stderr io.Writer) int {
	c := newCommon("validate", stderr)
	var name, format string
	var failFast bool
	c.fs.StringVar(&name, "model", "", "model to validate against")
	c.fs.BoolVar(&failFast, "fail-fast", false, "stop at the first issue per record")
	c.fs.StringVar(&format, "format", "", "report format (text, json)")
	if err := c.fs.Parse(args); err != nil {
		return 2
	}
	cfg, cat, err := c.setup(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "typal: %v\n", err)
		return 2
	}
	if c.fs.Changed("fail-fast") {
		cfg.FailFast = failFast
	}
	if c.fs.Changed("format") {
		cfg.Format = format
		if err := cfg.check(); err != nil {
			fmt.Fprintf(stderr, "typal: %v\n", err)
			return 2
		}
	}
	s, err := lookup(cat, name)
	if err != nil {
		fmt.Fprintf(stderr, "typal: %v\n", err)
		return 2
	}
	files := c.fs.Args()
	if len(files) == 0 {
		fmt.Fprintln(stderr, "typal: no record files given")
		return 2
	}
	var reports []report
	for _, f := range files {
		recs, err := schemafile.ReadRecords(f)
		if err != nil {
			if iss, ok := typal.AsIssues(err); ok {
				reports = append(reports, newReport(f, 0, iss))
				continue
			}
			fmt.Fprintf(stderr, "typal: %s: %v\n", f, err)
			return 2
		}
		for i, r := range recs {
			_, err := s.Validate(r, model.ValidateOpt{FailFast: cfg.FailFast})
			iss, _ := typal.AsIssues(err)
			if err != nil && iss == nil {
				iss = typal.Issues{typal.IssueFrom("/", err)}
			}
			reports = append(reports, newReport(f, i, iss))
		}
	}
	failed := 0
	for _, r := range reports {
		if !r.OK {
			failed++
		}
	}
	typal.Log().Info().Str("model", name).Int("records", len(reports)).Int("failed", failed).Msg("validate finished")
	if err := writeReports(stdout, cfg.Format, reports); err != nil {
		fmt.Fprintf(stderr, "typal: %v\n", err)
		return 2
	}
	if failed > 0 {
		return 1
	}
	return 0
}

type issueLine struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

type report struct {
	File   string      `json:"file"`
	Doc    int         `json:"doc"`
	OK     bool        `json:"ok"`
	Issues []issueLine `json:"issues,omitempty"`
}

func newReport(file string, doc int, iss typal.Issues) report {
	r := report{File: file, Doc: doc, OK: len(iss) == 0}
	for _, it := range iss {
		r.Issues = append(r.Issues, issueLine{Path: it.Path, Code: it.Code, Message: it.Message, Hint: it.Hint})
	}
	return r
}

func writeReports(w io.Writer, format string, reports []report) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}
	for _, r := range reports {
		if r.OK {
			fmt.Fprintf(w, "%s#%d: ok\n", r.File, r.Doc)
			continue
		}
		fmt.Fprintf(w, "%s#%d: %d issue(s)\n", r.File, r.Doc, len(r.Issues))
		for _, it := range r.Issues {
			fmt.Fprintf(w, "  - %s at %s: %s", it.Code, it.Path, it.Message)
			if it.Hint != "" {
				fmt.Fprintf(w, " (%s)", it.Hint)
			}
			fmt.Fprintln(w)
		}
	}
	return nil
}

func jsonSchemaCmd(args []string, stdout, stderr io.Writer) int {
	c := newCommon("jsonschema", stderr)
	var name string
	c.fs.StringVar(&name, "model", "", "model to export")
	if err := c.fs.Parse(args); err != nil {
		return 2
	}
	_, cat, err := c.setup(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "typal: %v\n", err)
		return 2
	}
	s, err := lookup(cat, name)
	if err != nil {
		fmt.Fprintf(stderr, "typal: %v\n", err)
		return 2
	}
	b, err := jsonschema.Marshal(s)
	if err != nil {
		fmt.Fprintf(stderr, "typal: %v\n", err)
		return 2
	}
	fmt.Fprintln(stdout, string(b))
	return 0
}

func checkCmd(args []string, stdout, stderr io.Writer) int {
	c := newCommon("check", stderr)
	var sub, super string
	c.fs.StringVar(&sub, "sub", "", "candidate subtype (model name or type expression)")
	c.fs.StringVar(&super, "super", "", "candidate supertype (model name or type expression)")
	if err := c.fs.Parse(args); err != nil {
		return 2
	}
	_, cat, err := c.setup(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "typal: %v\n", err)
		return 2
	}
	a, err := cat.Type(sub)
	if err != nil {
		fmt.Fprintf(stderr, "typal: --sub: %v\n", err)
		return 2
	}
	b, err := cat.Type(super)
	if err != nil {
		fmt.Fprintf(stderr, "typal: --super: %v\n", err)
		return 2
	}
	ok := typal.IsSubtype(a, b)
	fmt.Fprintf(stdout, "%s <: %s: %v\n", a.Name(), b.Name(), ok)
	if !ok {
		return 1
	}
	return 0
}
