package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depmerge/pkg/errors"
	depio "github.com/matzehuels/depmerge/pkg/io"
	"github.com/matzehuels/depmerge/pkg/resolved"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var asJSON, noCache bool

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Decode a manifest and print its dependencies",
		Long: `Inspect decodes a manifest in the text format and prints one block per
dependency: its selected version, every dependee request and its artifacts.
Malformed lines are listed instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), cmd.OutOrStdout(), args[0], asJSON, noCache)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the decoded graph as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the decode cache")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, w io.Writer, path string, asJSON, noCache bool) error {
	data, err := readInput(path)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := runner.Inspect(ctx, data)
	if err != nil {
		return err
	}
	if !res.Valid() {
		for _, m := range res.Malformed {
			printError("%s", m)
		}
		return errors.New(errors.ErrCodeInvalidManifest, "%s: %d malformed lines", path, len(res.Malformed))
	}

	if asJSON {
		return depio.WriteJSON(res.Graph, w)
	}
	writeGraph(w, res.Graph)
	printStats(res.Graph.Len(), res.Graph.EdgeCount(), res.CacheHit)
	return nil
}

// writeGraph prints g in a human-readable listing.
func writeGraph(w io.Writer, g *resolved.Graph) {
	for _, d := range g.Dependencies() {
		version := d.SelectedVersion
		if version == "" {
			version = StyleDim.Render("unknown")
		}
		fmt.Fprintf(w, "%s %s\n", StyleTitle.Render(d.ID.String()), StyleNumber.Render(version))
		for by, v := range d.Requests() {
			if v == "" {
				v = "-"
			}
			fmt.Fprintf(w, "  %s %s %s\n", StyleDim.Render("requested by"), by, StyleValue.Render(v))
		}
		for _, p := range d.ArtifactPaths() {
			fmt.Fprintf(w, "  %s %s\n", StyleDim.Render(iconArrow), p)
		}
	}
}

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check that a manifest decodes without malformed lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args[0])
			if err != nil {
				return err
			}
			deps, err := resolved.DecodeStrict(data)
			if err != nil {
				return err
			}
			printSuccess("%s is valid", args[0])
			printDetail("%d dependencies", len(deps))
			return nil
		},
	}
}

// readInput reads path, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "%s does not exist", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return data, nil
}
