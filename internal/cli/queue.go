package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vidtools/autocut/internal/orchestrator"
	"github.com/vidtools/autocut/internal/pipeline"
	"github.com/vidtools/autocut/internal/queue"
)

func newQueueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Enqueue and manage jobs",
	}
	cmd.AddCommand(
		newQueueVideoCmd(),
		newQueueConcatCmd(),
		newQueueRetryCmd(),
		newQueueInputCmd(),
	)
	return cmd
}

func newQueueVideoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "video <input.mp4>",
		Short: "Enqueue an auto-edit, optionally with the full article workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadPipeline(cmd)
			if err != nil {
				return err
			}

			out, _ := cmd.Flags().GetString("out")
			subs, _ := cmd.Flags().GetBool("subtitles")
			keep, _ := cmd.Flags().GetBool("keep-maybe-bad")
			article, _ := cmd.Flags().GetBool("generate-article")
			title, _ := cmd.Flags().GetString("title")

			absIn, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if out == "" {
				base := filepath.Base(absIn)
				ext := filepath.Ext(base)
				out = base[:len(base)-len(ext)] + "-edited" + ext
			}

			in := orchestrator.ArticleWorkflowInput{
				InputPath:    absIn,
				OutputPath:   out,
				ArticleDir:   cfg.ArticleDir,
				Title:        title,
				Subtitles:    subs,
				KeepMaybeBad: keep,
			}

			var items []queue.Item
			if article {
				if title == "" {
					return errors.New("--title is required with --generate-article")
				}
				items = orchestrator.NewArticleWorkflow(in)
			} else {
				items = []queue.Item{orchestrator.NewVideoItem(in)}
			}

			_, store := pipeline.NewProcessor(cfg)
			if err := store.WriteToQueue(cmd.Context(), items...); err != nil {
				return err
			}
			for _, it := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "queued %s %s\n", it.Action.Kind, it.ID)
			}
			return nil
		},
	}

	cmd.Flags().String("out", "", "Output path (default: <input>-edited.mp4)")
	cmd.Flags().Bool("subtitles", false, "Generate an SRT file next to the output")
	cmd.Flags().Bool("keep-maybe-bad", false, "Keep clips that are only near a bad-take marker")
	cmd.Flags().Bool("generate-article", false, "Also enqueue transcript analysis and article generation")
	cmd.Flags().String("title", "", "Article title (with --generate-article)")
	return cmd
}

func newQueueConcatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "concat <output.mp4> <input.mp4>...",
		Short: "Enqueue a concatenation of finished videos",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadPipeline(cmd)
			if err != nil {
				return err
			}

			inputs := make([]string, 0, len(args)-1)
			for _, a := range args[1:] {
				abs, err := filepath.Abs(a)
				if err != nil {
					return err
				}
				inputs = append(inputs, abs)
			}

			it := orchestrator.NewConcatItem(inputs, args[0])
			_, store := pipeline.NewProcessor(cfg)
			if err := store.WriteToQueue(cmd.Context(), it); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queued %s %s\n", it.Action.Kind, it.ID)
			return nil
		},
	}
}

func newQueueRetryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retry <item-id>",
		Short: "Requeue a failed item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadPipeline(cmd)
			if err != nil {
				return err
			}
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid item id %q: %w", args[0], err)
			}
			proc, _ := pipeline.NewProcessor(cfg)
			return proc.Retry(cmd.Context(), id)
		},
	}
}

func newQueueInputCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "input <item-id>",
		Short: "Supply the code or links a waiting item needs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadPipeline(cmd)
			if err != nil {
				return err
			}
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid item id %q: %w", args[0], err)
			}

			codeFile, _ := cmd.Flags().GetString("file")
			links, _ := cmd.Flags().GetStringArray("link")

			var input orchestrator.UserInput
			switch {
			case codeFile != "" && len(links) > 0:
				return errors.New("pass either --file or --link, not both")
			case codeFile != "":
				b, err := os.ReadFile(codeFile)
				if err != nil {
					return fmt.Errorf("read code file: %w", err)
				}
				input.Code = string(b)
			case len(links) > 0:
				input.Links = links
			default:
				return errors.New("pass --file for a code request or --link for a links request")
			}

			proc, _ := pipeline.NewProcessor(cfg)
			return proc.ProvideInput(cmd.Context(), id, input)
		},
	}

	cmd.Flags().String("file", "", "File whose contents answer a code request")
	cmd.Flags().StringArray("link", nil, "Link answering a links request (repeatable)")
	return cmd
}
