package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/depmerge/pkg/errors"
)

// showCommand creates the show command.
func (c *CLI) showCommand() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show PROJECT",
		Short: "Print the latest saved graph of a project",
		Long: `Show prints the newest graph saved with "depmerge merge --save PROJECT" or
through the HTTP API. The store is MongoDB when store.mongo_uri is configured
and a local directory otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			rec, err := st.Latest(ctx, args[0])
			if err != nil {
				if errors.Is(err, errors.ErrCodeNotFound) {
					printNextStep("Save one with", "depmerge merge --save "+args[0])
				}
				return err
			}

			if raw {
				_, err := cmd.OutOrStdout().Write([]byte(rec.Text))
				return err
			}

			g, err := rec.Graph()
			if err != nil {
				return err
			}
			printKeyValue("Project", rec.Project)
			printKeyValue("Record", rec.ID)
			printKeyValue("Saved", rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			printNewline()
			writeGraph(cmd.OutOrStdout(), g)
			printStats(g.Len(), g.EdgeCount(), false)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the stored text format unchanged")

	return cmd
}
