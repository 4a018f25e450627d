// Command fy-dump parses YAML documents and re-emits them under the
// selected mode, indent, width and style rules.
//
//	fy-dump [flags] <file.yaml|-> ...
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/esainane/libfyaml"
	liblog "github.com/esainane/libfyaml/log"
)

type options struct {
	mode      string
	indent    int
	width     int
	sortKeys  bool
	comments  bool
	stripLbl  bool
	stripTags bool
	stripDoc  bool
	startMark string
	endMark   string

	logCfg *liblog.Config
}

func (o *options) registerFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&o.mode, "mode", "m", "block",
		"output mode, one of: block, flow, flow-oneline, json, json-tp, json-oneline")
	flags.IntVarP(&o.indent, "indent", "i", 2, "indentation step (1-9)")
	flags.IntVarP(&o.width, "width", "w", 80, "preferred line width, 0 for the default, negative for unbounded")
	flags.BoolVar(&o.sortKeys, "sort-keys", false, "emit mapping keys in sorted order")
	flags.BoolVarP(&o.comments, "comments", "c", false, "emit comments")
	flags.BoolVar(&o.stripLbl, "strip-labels", false, "strip anchors and aliases")
	flags.BoolVar(&o.stripTags, "strip-tags", false, "strip tags")
	flags.BoolVar(&o.stripDoc, "strip-doc", false, "strip document markers and directives")
	flags.StringVar(&o.startMark, "document-start", "auto", "document start mark policy: auto, on, off")
	flags.StringVar(&o.endMark, "document-end", "auto", "document end mark policy: auto, on, off")
	o.logCfg.RegisterFlags(flags)
}

func parseMode(s string) (libfyaml.Mode, error) {
	switch s {
	case "block":
		return libfyaml.ModeBlock, nil
	case "flow":
		return libfyaml.ModeFlow, nil
	case "flow-oneline":
		return libfyaml.ModeFlowOneline, nil
	case "json":
		return libfyaml.ModeJSON, nil
	case "json-tp":
		return libfyaml.ModeJSONTP, nil
	case "json-oneline":
		return libfyaml.ModeJSONOneline, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

func parsePolicy(s string) (libfyaml.Policy, error) {
	switch s {
	case "auto":
		return libfyaml.PolicyAuto, nil
	case "on":
		return libfyaml.PolicyOn, nil
	case "off":
		return libfyaml.PolicyOff, nil
	}
	return 0, fmt.Errorf("unknown policy %q", s)
}

func (o *options) emitterConfig() (libfyaml.Config, error) {
	var cfg libfyaml.Config
	var err error

	if cfg.Mode, err = parseMode(o.mode); err != nil {
		return cfg, err
	}
	cfg.Indent = o.indent
	cfg.Width = o.width
	if cfg.DocStartMark, err = parsePolicy(o.startMark); err != nil {
		return cfg, err
	}
	if cfg.DocEndMark, err = parsePolicy(o.endMark); err != nil {
		return cfg, err
	}
	cfg.SortKeys = o.sortKeys
	cfg.OutputComments = o.comments
	cfg.StripLabels = o.stripLbl
	cfg.StripTags = o.stripTags
	cfg.StripDoc = o.stripDoc
	return cfg, nil
}

func main() {
	opts := &options{logCfg: liblog.NewConfig()}

	rootCmd := &cobra.Command{
		Use:   "fy-dump [flags] <file.yaml|-> ...",
		Short: "Parse YAML and re-emit it under the configured formatting rules",
		Long: `fy-dump reads YAML documents, converts them into a document tree and
writes them back out through the emitter, honoring the selected mode,
indentation, width, chomping and style rules.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, args []string) error {
			return run(opts, args)
		},
	}

	opts.registerFlags(rootCmd.Flags())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(opts *options, args []string) error {
	handler, err := opts.logCfg.NewHandler(os.Stderr)
	if err != nil {
		return err
	}
	logger := slog.New(handler)

	cfg, err := opts.emitterConfig()
	if err != nil {
		return err
	}

	for _, arg := range args {
		var data []byte

		if arg == "-" {
			data, err = io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("stdin: %w", err)
			}
		} else {
			data, err = os.ReadFile(arg)
			if err != nil {
				return err
			}
		}

		logger.Debug("dumping input", "source", arg, "bytes", len(data))

		doc, err := libfyaml.FromYAML(data)
		if err != nil {
			return fmt.Errorf("%s: %w", arg, err)
		}

		if err := libfyaml.EmitDocument(os.Stdout, doc, cfg); err != nil {
			return fmt.Errorf("%s: %w", arg, err)
		}
	}

	return nil
}
