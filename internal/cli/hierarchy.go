package cli

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fusiongraph/pkg/mfg"
	"github.com/matzehuels/fusiongraph/pkg/render"
)

type hierarchyOpts struct {
	mode   string
	format string
	output string
	ids    bool
}

// hierarchyCommand creates the hierarchy command.
func (c *CLI) hierarchyCommand() *cobra.Command {
	opts := hierarchyOpts{}

	cmd := &cobra.Command{
		Use:   "hierarchy",
		Short: "Print the assembly hierarchy of a design",
		Long: `Print the assembly hierarchy of the tip version of a design.

Modes:
  flat  read every occurrence of the design in pages (default)
  lazy  expand the tree level by level, one batched query per level

Shared subassemblies are printed under every parent that uses them.`,
		Example: `  fusiongraph hierarchy --hub "My Hub" --project "Bike" --component "Frame"
  fusiongraph hierarchy --mode lazy --format json
  fusiongraph hierarchy --format svg -o frame.svg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runHierarchy(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.mode, "mode", string(mfg.ModeFlat), "assembly mode: flat or lazy")
	cmd.Flags().StringVarP(&opts.format, "format", "f", string(render.FormatTree), "output format: "+formatList(render.HierarchyFormats))
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&opts.ids, "ids", false, "show component version ids")
	completeModes(cmd)
	completeFormats(cmd, render.HierarchyFormats)

	return cmd
}

func (c *CLI) runHierarchy(cmd *cobra.Command, opts hierarchyOpts) error {
	mode, err := mfg.ParseMode(opts.mode)
	if err != nil {
		return err
	}
	format, err := render.ParseFormat(opts.format, render.HierarchyFormats)
	if err != nil {
		return err
	}

	cfg, err := c.config()
	if err != nil {
		return err
	}
	key, err := c.lookupKey(cfg)
	if err != nil {
		return err
	}
	client, closeClient, err := c.newClient(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeClient()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(cmd.Context(), "Reading "+key.String()+"...")
	spinner.Start()
	tree, err := client.ModelHierarchy(cmd.Context(), key, mfg.HierarchyOptions{Mode: mode, Refresh: c.refresh})
	if err != nil {
		spinner.StopWithError("Failed to read hierarchy")
		return err
	}
	lines, err := mfg.Materialize(tree)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Assembled %d positions", len(lines)))

	var buf bytes.Buffer
	renderOpts := render.Options{ShowIDs: opts.ids, Color: opts.output == "" && isTerminal(os.Stdout)}
	if err := render.Hierarchy(&buf, lines, format, renderOpts); err != nil {
		return err
	}

	if opts.output == "" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(opts.output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("Hierarchy of %s", StyleHighlight.Render(key.Component))
	printStats(len(lines), tree.Len(), string(mode))
	printFile(opts.output)
	return nil
}

func formatList(formats []render.Format) string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// isTerminal reports whether f is a character device.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
