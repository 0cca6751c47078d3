package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depmerge/pkg/diagnostics"
	"github.com/matzehuels/depmerge/pkg/errors"
	"github.com/matzehuels/depmerge/pkg/pipeline"
)

// mergeOpts holds flags for the merge command.
type mergeOpts struct {
	manifest         string
	libraries        string
	toolchainHome    string
	toolchainVersion string
	output           string
	formats          string
	noCache          bool
	refresh          bool
	detailed         bool
	save             string
}

// mergeCommand creates the merge command.
func (c *CLI) mergeCommand() *cobra.Command {
	opts := mergeOpts{}

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge the external manifest with the compiler's library view",
		Long: `Merge reads the manifest written by the external build tool and the library
descriptors the compiler resolved, and writes the reconciled dependency graph.

A missing or unreadable manifest counts as absent. Malformed manifest lines are
logged and void the whole external view.`,
		Example: `  depmerge merge --manifest build/deps.txt --libraries libs.toml
  depmerge merge --libraries libs.yaml --format text,svg -o out/deps
  depmerge merge --libraries libs.toml --save myproject`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMerge(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.manifest, "manifest", "", "manifest written by the external build tool")
	cmd.Flags().StringVar(&opts.libraries, "libraries", "", "library descriptor file (.toml, .yaml)")
	cmd.Flags().StringVar(&opts.toolchainHome, "toolchain-home", "", "toolchain installation directory (default: from config)")
	cmd.Flags().StringVar(&opts.toolchainVersion, "toolchain-version", "", "toolchain version (default: from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", pipeline.FormatText, "output format(s): text, json, dot, svg, pdf, png (comma-separated)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the merge cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show dependee versions in node labels (dot, svg)")
	cmd.Flags().StringVar(&opts.save, "save", "", "save the merged graph under this project key")
	_ = cmd.MarkFlagRequired("libraries")

	return cmd
}

// runMerge executes the merge pipeline, writes its artifacts to the output
// file or w, and saves the graph when requested.
func (c *CLI) runMerge(ctx context.Context, w io.Writer, opts mergeOpts) error {
	formats := parseFormats(opts.formats)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}
	if opts.output == "" {
		if len(formats) > 1 {
			return errors.New(errors.ErrCodeInvalidInput, "multiple formats require --output")
		}
		if formats[0] == pipeline.FormatPDF || formats[0] == pipeline.FormatPNG {
			return errors.New(errors.ErrCodeInvalidInput, "format %s requires --output", formats[0])
		}
	}

	if opts.save != "" {
		if err := errors.ValidateProjectKey(opts.save); err != nil {
			return err
		}
	}

	tc := c.cfg.ToolchainSpec()
	if opts.toolchainHome != "" {
		tc.Home = opts.toolchainHome
	}
	if opts.toolchainVersion != "" {
		tc.Version = opts.toolchainVersion
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, pipeline.Options{
		ManifestPath:  opts.manifest,
		LibrariesPath: opts.libraries,
		Toolchain:     tc,
		Formats:       formats,
		Detailed:      opts.detailed,
		Refresh:       opts.refresh,
		Logger:        c.Logger,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Merged %d dependencies", result.Stats.NodeCount))

	if opts.output == "" {
		if _, err := w.Write(result.Artifacts[formats[0]]); err != nil {
			return err
		}
	} else {
		for _, format := range formats {
			path := outputPath(opts.output, format, len(formats) > 1)
			if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
			}
			printFile(path)
		}
		printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheHit)
		printReportSummary(result.Report)
	}

	if opts.save == "" {
		return nil
	}
	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close(ctx)
	rec, err := st.Save(ctx, opts.save, result.Graph)
	if err != nil {
		return err
	}
	c.Logger.Info("saved merged graph", "project", opts.save, "record", rec.ID)
	if opts.output != "" {
		printSuccess("Saved %s", opts.save)
		printDetail("Record: %s", rec.ID)
	}
	return nil
}

// printReportSummary prints a one-line warning per problem class in r.
func printReportSummary(r diagnostics.Report) {
	if n := len(r.Conflicts); n > 0 {
		printWarning("%d version conflicts (%d upgraded, %d downgraded, %d incomparable)", n,
			r.Count(diagnostics.KindUpgraded), r.Count(diagnostics.KindDowngraded), r.Count(diagnostics.KindIncomparable))
		printNextStep("Details", "depmerge diagnose")
	}
	if n := len(r.Violations); n > 0 {
		printWarning("%d selected versions match no request", n)
	}
	if n := len(r.Cycles); n > 0 {
		printWarning("%d dependency cycles", n)
	}
}
