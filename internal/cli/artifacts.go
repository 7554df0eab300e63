package cli

import (
	"context"
	stderrors "errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fusiongraph/pkg/errors"
	"github.com/matzehuels/fusiongraph/pkg/mfg"
	"github.com/matzehuels/fusiongraph/pkg/render"
)

// defaultJobTimeout bounds waiting for thumbnails, exports and properties.
const defaultJobTimeout = 5 * time.Minute

// downloadFunc is mfg.Client.DownloadThumbnail or mfg.Client.DownloadSTEP.
type downloadFunc func(*mfg.Client, context.Context, mfg.LookupKey, string) (*mfg.Download, error)

// thumbnailCommand creates the thumbnail command.
func (c *CLI) thumbnailCommand() *cobra.Command {
	return c.downloadCommand(downloadSpec{
		use:      "thumbnail",
		short:    "Download the thumbnail image of a design",
		what:     "thumbnail",
		waiting:  "Waiting for thumbnail...",
		fallback: mfg.DefaultThumbnailPath,
		download: (*mfg.Client).DownloadThumbnail,
	})
}

// stepCommand creates the step command.
func (c *CLI) stepCommand() *cobra.Command {
	return c.downloadCommand(downloadSpec{
		use:      "step",
		short:    "Export the geometry of a design as a STEP file",
		what:     "STEP file",
		waiting:  "Generating STEP file...",
		fallback: mfg.DefaultSTEPPath,
		download: (*mfg.Client).DownloadSTEP,
	})
}

type downloadSpec struct {
	use, short, what, waiting, fallback string
	download                            downloadFunc
}

func (c *CLI) downloadCommand(art downloadSpec) *cobra.Command {
	var (
		output  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   art.use,
		Short: art.short,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			prog := newProgress(c.Logger)
			spinner := newSpinnerWithContext(ctx, art.waiting)
			spinner.Start()
			d, err := art.download(client, ctx, key, output)
			if err != nil {
				spinner.StopWithError("Failed to download " + art.what)
				return timeoutError(err, art.what, timeout)
			}
			spinner.Stop()
			prog.done("Downloaded " + art.what)

			printSuccess("Saved %s of %s", art.what, StyleHighlight.Render(key.Component))
			printFile(StyleLink.Render(d.URL()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", art.fallback, "output file")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultJobTimeout, "maximum time to wait for generation")
	return cmd
}

// propertiesCommand creates the properties command.
func (c *CLI) propertiesCommand() *cobra.Command {
	var (
		format  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "properties",
		Short: "Print the physical properties of a design",
		Long: `Print area, volume, mass, density and bounding box of the tip version of a
design. Properties are computed on demand; the command waits until they are
available.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format, render.PropertyFormats)
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

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			spinner := newSpinnerWithContext(ctx, "Computing physical properties...")
			spinner.Start()
			props, err := client.PhysicalProperties(ctx, key, c.refresh)
			if err != nil {
				spinner.StopWithError("Failed to read physical properties")
				return timeoutError(err, "physical properties", timeout)
			}
			spinner.Stop()

			return render.Properties(os.Stdout, props, f)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(render.FormatText), "output format: "+formatList(render.PropertyFormats))
	cmd.Flags().DurationVar(&timeout, "timeout", defaultJobTimeout, "maximum time to wait for computation")
	completeFormats(cmd, render.PropertyFormats)
	return cmd
}

// timeoutError reports an expired --timeout as TIMEOUT.
func timeoutError(err error, what string, d time.Duration) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(errors.ErrCodeTimeout, err, "%s not ready after %s", what, d)
	}
	return err
}
