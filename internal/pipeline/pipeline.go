// Package pipeline wires adapters into the editing use case and the queue
// processor.
package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"

	"github.com/vidtools/autocut/internal/config"
	"github.com/vidtools/autocut/internal/orchestrator"
	"github.com/vidtools/autocut/internal/ports"
	"github.com/vidtools/autocut/internal/ports/adapters/ffmpeg"
	"github.com/vidtools/autocut/internal/ports/adapters/openai"
	"github.com/vidtools/autocut/internal/queue"
	"github.com/vidtools/autocut/internal/usecase"
)

type Config struct {
	QueuePath  string
	ArticleDir string

	FFmpegPath  string
	FFprobePath string

	OpenAIAPIKey    string
	OpenAIChatModel string
	OpenAIBaseURL   string

	Edit usecase.Options

	Log zerolog.Logger
}

// FromFile lifts the on-disk configuration into a runnable Config.
func FromFile(f config.File, log zerolog.Logger) Config {
	return Config{
		QueuePath:       f.QueuePath,
		ArticleDir:      f.ArticleDir,
		FFmpegPath:      f.FFmpegPath,
		FFprobePath:     f.FFprobePath,
		OpenAIAPIKey:    f.OpenAI.APIKey,
		OpenAIChatModel: f.OpenAI.ChatModel,
		OpenAIBaseURL:   f.OpenAI.BaseURL,
		Edit: usecase.Options{
			SilenceThresholdDb:  f.Edit.SilenceThresholdDb,
			MinSilenceSeconds:   f.Edit.MinSilenceSeconds,
			StartPaddingSeconds: f.Edit.StartPaddingSeconds,
			ExtractWorkers:      f.Edit.ExtractWorkers,
			TranscribeWorkers:   f.Edit.TranscribeWorkers,
		},
		Log: log,
	}
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.FFmpegPath, validation.Required),
		validation.Field(&c.FFprobePath, validation.Required),
		validation.Field(&c.QueuePath, validation.Required),
		validation.Field(&c.OpenAIBaseURL, validation.By(validateBaseURL)),
	)
}

// validateBaseURL rejects anything but a bare https origin. The API key rides
// on every request to this host, so a plain-http or decorated URL is always a
// mistake.
func validateBaseURL(v interface{}) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme != "https" {
		return fmt.Errorf("https is required")
	}
	if u.User != nil {
		return fmt.Errorf("userinfo is not allowed")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("query and fragment are not allowed")
	}
	return nil
}

// NewEditor builds the editing use case from the configured adapters. The
// transcriber stays nil without an API key, so subtitle-free edits never need
// one.
func NewEditor(cfg Config) *usecase.Editor {
	video := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath, cfg.Log)
	var transcriber ports.Transcriber
	if cfg.OpenAIAPIKey != "" {
		transcriber = openai.New(cfg.OpenAIAPIKey, cfg.OpenAIChatModel, cfg.OpenAIBaseURL)
	}
	return usecase.NewEditor(video, transcriber, cfg.Log, cfg.Edit)
}

// NewProcessor builds the queue store and its processor.
func NewProcessor(cfg Config) (*orchestrator.Processor, *queue.Store) {
	store := queue.NewStore(cfg.QueuePath, cfg.Log)
	writer := openai.New(cfg.OpenAIAPIKey, cfg.OpenAIChatModel, cfg.OpenAIBaseURL)
	return orchestrator.NewProcessor(store, NewEditor(cfg), writer, cfg.Log), store
}

// EditInput is one direct, queue-less edit run.
type EditInput struct {
	InputPath    string
	OutputPath   string
	Subtitles    bool
	KeepMaybeBad bool
}

// RunEdit validates the configuration and runs a single auto-edit to
// completion.
func RunEdit(ctx context.Context, cfg Config, in EditInput) (usecase.Result, error) {
	if err := cfg.Validate(); err != nil {
		return usecase.Result{}, fmt.Errorf("config: %w", err)
	}
	if in.InputPath == "" {
		return usecase.Result{}, fmt.Errorf("input is empty")
	}
	if _, err := os.Stat(in.InputPath); err != nil {
		return usecase.Result{}, fmt.Errorf("stat input: %w", err)
	}
	if in.OutputPath == "" {
		base := filepath.Base(in.InputPath)
		ext := filepath.Ext(base)
		in.OutputPath = base[:len(base)-len(ext)] + "-edited" + ext
	}

	res, err := NewEditor(cfg).AutoEdit(ctx, usecase.AutoEditInput{
		InputPath:    in.InputPath,
		OutputPath:   in.OutputPath,
		Subtitles:    in.Subtitles,
		KeepMaybeBad: in.KeepMaybeBad,
	})
	if err != nil {
		return usecase.Result{}, err
	}
	cfg.Log.Info().
		Str("output", res.OutputPath).
		Int("clips", res.ClipCount).
		Msg("edit finished")
	return res, nil
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.Transcriber = (*openai.Adapter)(nil)
var _ ports.ArticleWriter = (*openai.Adapter)(nil)
