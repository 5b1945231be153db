package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vidtools/autocut/internal/pipeline"
)

func newProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run every ready queue item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadPipeline(cmd)
			if err != nil {
				return err
			}
			watch, _ := cmd.Flags().GetBool("watch")
			debounce, _ := cmd.Flags().GetDuration("debounce")

			proc, _ := pipeline.NewProcessor(cfg)

			if !watch {
				return proc.ProcessReady(cmd.Context())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			err = proc.Watch(ctx, cfg.QueuePath, debounce)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().Bool("watch", false, "Keep running, reprocessing on queue changes")
	cmd.Flags().Duration("debounce", 500*time.Millisecond, "Delay between a queue change and reprocessing")
	return cmd
}
