package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vidtools/autocut/internal/pipeline"
)

func newEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <input.mp4>",
		Short: "Auto-edit one recording without going through the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadPipeline(cmd)
			if err != nil {
				return err
			}

			out, _ := cmd.Flags().GetString("out")
			subs, _ := cmd.Flags().GetBool("subtitles")
			keep, _ := cmd.Flags().GetBool("keep-maybe-bad")

			absIn, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Hour)
			defer cancel()

			_, err = pipeline.RunEdit(ctx, cfg, pipeline.EditInput{
				InputPath:    absIn,
				OutputPath:   out,
				Subtitles:    subs,
				KeepMaybeBad: keep,
			})
			return err
		},
	}

	cmd.Flags().String("out", "", "Output path (default: <input>-edited.mp4)")
	cmd.Flags().Bool("subtitles", false, "Generate an SRT file next to the output")
	cmd.Flags().Bool("keep-maybe-bad", false, "Keep clips that are only near a bad-take marker")
	return cmd
}
