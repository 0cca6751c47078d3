package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depmerge/pkg/diagnostics"
	"github.com/matzehuels/depmerge/pkg/errors"
	"github.com/matzehuels/depmerge/pkg/resolved"
)

// diagnoseCommand creates the diagnose command.
func (c *CLI) diagnoseCommand() *cobra.Command {
	var asJSON, strict bool

	cmd := &cobra.Command{
		Use:   "diagnose FILE",
		Short: "Report version conflicts in a merged manifest",
		Long: `Diagnose compares every requested version in a merged manifest with the
selected version. Conflicts are classified as upgraded, downgraded or
incomparable (either side is not a semantic version). Nodes with an unknown
version, bundles and selected versions matching no request are listed too.`,
		Example: `  depmerge merge --libraries libs.toml -o deps.txt
  depmerge diagnose deps.txt
  depmerge diagnose deps.txt --strict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args[0])
			if err != nil {
				return err
			}
			deps, err := resolved.DecodeStrict(data)
			if err != nil {
				return err
			}
			report := diagnostics.Analyze(resolved.GraphOf(deps...))

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				writeReport(cmd.OutOrStdout(), report)
			}

			if strict && !report.Clean() {
				return errors.New(errors.ErrCodeInvalidManifest, "%d conflicts, %d violations, %d cycles",
					len(report.Conflicts), len(report.Violations), len(report.Cycles))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when conflicts, violations or cycles are found")

	return cmd
}

// writeReport prints r grouped by problem class.
func writeReport(w io.Writer, r diagnostics.Report) {
	if r.Clean() && len(r.Unknown) == 0 {
		fmt.Fprintln(w, StyleSuccess.Render(iconSuccess)+" no conflicts")
	}
	for _, kind := range []diagnostics.Kind{diagnostics.KindDowngraded, diagnostics.KindIncomparable, diagnostics.KindUpgraded} {
		if r.Count(kind) == 0 {
			continue
		}
		fmt.Fprintln(w, StyleTitle.Render(string(kind)))
		for _, c := range r.Conflicts {
			if c.Kind != kind {
				continue
			}
			fmt.Fprintf(w, "  %s %s %s %s %s\n",
				c.Dependency, StyleDim.Render("requested by"), c.Dependee,
				StyleWarning.Render(c.Requested), StyleDim.Render(iconArrow+" "+c.Selected))
		}
	}
	if len(r.Violations) > 0 {
		fmt.Fprintln(w, StyleTitle.Render("violations"))
		for _, v := range r.Violations {
			fmt.Fprintln(w, "  "+v)
		}
	}
	if len(r.Cycles) > 0 {
		fmt.Fprintln(w, StyleTitle.Render("cycles"))
		for _, e := range r.Cycles {
			fmt.Fprintf(w, "  %s %s %s\n", e.From, StyleDim.Render(iconArrow), e.To)
		}
	}
	printIDs(w, "unknown version", r.Unknown)
	printIDs(w, "bundles", r.Bundles)
}

func printIDs(w io.Writer, title string, ids []resolved.ID) {
	if len(ids) == 0 {
		return
	}
	fmt.Fprintln(w, StyleTitle.Render(title))
	for _, id := range ids {
		fmt.Fprintln(w, "  "+id.String())
	}
}
