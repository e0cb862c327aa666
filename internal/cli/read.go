package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtlgraph/rtlgraph/pkg/errors"
	"github.com/rtlgraph/rtlgraph/pkg/frontend/netjson"
	"github.com/rtlgraph/rtlgraph/pkg/graph"
	"github.com/rtlgraph/rtlgraph/pkg/netlist"
)

const (
	formatJSON = "json"
	formatBSON = "bson"
)

// readOpts holds the command-line flags for the read command.
type readOpts struct {
	output     string // output file path (stdout if empty)
	format     string // export format: "json" or "bson"
	strict     bool   // require strict separator placement
	strictKeys bool   // reject duplicate object keys
}

// newReadCmd creates the read command. It imports a JSON netlist, logs
// per-module statistics, and optionally re-exports the design in canonical
// form.
func newReadCmd() *cobra.Command {
	var opts readOpts

	cmd := &cobra.Command{
		Use:   "read <file>",
		Short: "Import a JSON netlist and print module statistics",
		Long: `Import a JSON netlist into a design and print per-module statistics.

Pass "-" to read from stdin. With --output or --format, the design is
re-exported in canonical form after import.

Examples:
  rtlgraph read design.json                  # Stats only
  rtlgraph read design.json -o canon.json    # Re-export canonical JSON
  rtlgraph read design.json -f bson -o out   # BSON for storage
  rtlgraph read - < design.json              # From stdin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			export := cmd.Flags().Changed("output") || cmd.Flags().Changed("format")
			return runRead(cmd.Context(), args[0], &opts, export)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatJSON, "export format: json, bson")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "require exactly one separator between elements")
	cmd.Flags().BoolVar(&opts.strictKeys, "strict-keys", false, "reject duplicate object keys")

	return cmd
}

func runRead(ctx context.Context, path string, opts *readOpts, export bool) error {
	logger := loggerFromContext(ctx)

	design, err := importDesign(ctx, path, importOptions(ctx, opts.strict, opts.strictKeys))
	if err != nil {
		return err
	}

	for _, s := range graph.Summarize(design) {
		logger.Infof("%s: %d ports, %d wires, %d cells, %d connections",
			s.Name, s.Ports, s.Wires, s.Cells, s.Connections)
	}

	if !export {
		return nil
	}
	return writeDesign(design, opts.output, opts.format, logger)
}

// importOptions builds frontend options from the loaded config, tightened
// by any per-command strictness flags.
func importOptions(ctx context.Context, strict, strictKeys bool) netjson.Options {
	cfg := configFromContext(ctx)
	logger := loggerFromContext(ctx)
	return netjson.Options{
		StrictSeparators:    cfg.StrictSeparators || strict,
		RejectDuplicateKeys: cfg.RejectDuplicateKeys || strictKeys,
		Logger:              func(msg string, args ...any) { logger.Debugf(msg, args...) },
	}
}

// importDesign imports the netlist at path into a fresh design, logging
// progress. Pass "-" to read from stdin.
func importDesign(ctx context.Context, path string, opts netjson.Options) (*netlist.Design, error) {
	logger := loggerFromContext(ctx)
	logger.Infof("Reading %s", displayPath(path))

	prog := newProgress(logger)
	design := netlist.NewDesign()

	var err error
	if path == "-" {
		err = netjson.Read(os.Stdin, design, opts)
	} else {
		err = netjson.ImportFile(path, design, opts)
	}
	if err != nil {
		return nil, err
	}

	prog.done(fmt.Sprintf("Imported %d modules", design.ModuleCount()))
	return design, nil
}

func displayPath(path string) string {
	if path == "-" {
		return "stdin"
	}
	return path
}

// writeDesign exports the design to path (or stdout if empty) in the
// requested format.
func writeDesign(design *netlist.Design, path, format string, logger interface{ Infof(string, ...any) }) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	switch format {
	case formatJSON:
		err = graph.Write(design, out)
	case formatBSON:
		var data []byte
		if data, err = graph.EncodeBSON(design); err == nil {
			_, err = out.Write(data)
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (available: json, bson)", format)
	}
	if err != nil {
		return err
	}

	if path != "" {
		logger.Infof("Wrote design to %s", path)
	}
	return nil
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
