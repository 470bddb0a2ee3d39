package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-graphviz"
	"github.com/spf13/cobra"
)

const (
	formatSVG = "svg"
	formatDOT = "dot"
)

type treeOpts struct {
	buildFlags
	page   int
	format string
	output string
}

func (c *CLI) treeCommand() *cobra.Command {
	var opts treeOpts

	cmd := &cobra.Command{
		Use:   "tree [paths...]",
		Short: "Render the partition tree of a packed page",
		Long: `Tree packs the given images exactly like pack and dumps the binary
partition tree of one page. Internal nodes are boxes, occupied leaves are
filled and free leaves dashed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != formatSVG && opts.format != formatDOT {
				return fmt.Errorf("unknown format %q (want %s or %s)", opts.format, formatSVG, formatDOT)
			}
			cfg := opts.apply(cmd.Flags(), c.config)
			sheet, err := c.buildSheet(cmd.Context(), args, cfg, opts.jobs)
			if err != nil {
				return err
			}
			l := sheet.Layout(opts.page)
			if l == nil {
				return fmt.Errorf("page %d out of range (sheet has %d pages)", opts.page, len(sheet.Pages))
			}

			var dot bytes.Buffer
			if err := l.WriteDOT(&dot); err != nil {
				return err
			}
			out := dot.Bytes()
			if opts.format == formatSVG {
				if out, err = renderSVG(cmd.Context(), out); err != nil {
					return err
				}
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, out)
		},
	}

	opts.register(cmd.Flags())
	cmd.Flags().IntVarP(&opts.page, "page", "p", 0, "page to dump")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatSVG, "output format: svg or dot")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")

	return cmd
}

// renderSVG renders a DOT graph to SVG using Graphviz.
func renderSVG(ctx context.Context, dot []byte) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes(dot)
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
