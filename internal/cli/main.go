// Package cli is the autocut command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vidtools/autocut/internal/config"
	"github.com/vidtools/autocut/internal/logging"
	"github.com/vidtools/autocut/internal/pipeline"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "autocut",
		Short:        "Silence-aware auto editing for screen recordings",
		SilenceUsage: true,
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.PersistentFlags().String("config", "autocut.yaml", "Config file path")
	root.PersistentFlags().BoolP("verbose", "v", false, "Debug logging")

	root.AddCommand(
		newEditCmd(),
		newQueueCmd(),
		newProcessCmd(),
		newListCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadPipeline resolves the persistent flags into a runnable pipeline config.
func loadPipeline(cmd *cobra.Command) (pipeline.Config, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	file, err := config.Load(cfgPath)
	if err != nil {
		return pipeline.Config{}, err
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && file.OpenAI.APIKey == "" {
		file.OpenAI.APIKey = key
	}

	cfg := pipeline.FromFile(file, logging.New(verbose))
	if err := cfg.Validate(); err != nil {
		return pipeline.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
