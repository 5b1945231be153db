package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vidtools/autocut/internal/pipeline"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadPipeline(cmd)
			if err != nil {
				return err
			}
			_, store := pipeline.NewProcessor(cfg)
			state, err := store.GetQueueState(cmd.Context())
			if err != nil {
				return err
			}
			if len(state.Queue) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "queue is empty")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKIND\tSTATUS\tCREATED\tERROR")
			for _, it := range state.Queue {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					it.ID,
					it.Action.Kind,
					it.Status,
					it.CreatedAt.Format("2006-01-02 15:04"),
					it.Error,
				)
			}
			return w.Flush()
		},
	}
}
