// Package config loads the tool's YAML configuration with environment
// variable expansion. Missing file means defaults; CLI flags override loaded
// values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// File is the on-disk configuration shape.
type File struct {
	FFmpegPath  string `yaml:"ffmpeg"`
	FFprobePath string `yaml:"ffprobe"`

	QueuePath  string `yaml:"queue_path"`
	ArticleDir string `yaml:"article_dir"`

	OpenAI OpenAI `yaml:"openai"`
	Edit   Edit   `yaml:"edit"`
}

type OpenAI struct {
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	ChatModel string `yaml:"chat_model"`
}

// Edit tunes the silence analysis. Zero values defer to the pipeline
// defaults.
type Edit struct {
	SilenceThresholdDb  float64 `yaml:"silence_threshold_db"`
	MinSilenceSeconds   float64 `yaml:"min_silence_seconds"`
	StartPaddingSeconds float64 `yaml:"start_padding_seconds"`
	ExtractWorkers      int     `yaml:"extract_workers"`
	TranscribeWorkers   int     `yaml:"transcribe_workers"`
}

// Default returns the configuration used when no file exists.
func Default() File {
	return File{
		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",
		QueuePath:   filepath.Join(userHome(), ".autocut", "queue.json"),
		ArticleDir:  "articles",
		OpenAI: OpenAI{
			BaseURL: "https://api.openai.com",
		},
	}
}

func userHome() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return "."
}

// Load reads the file at path, expanding ${VAR} references from the
// environment before parsing. A missing file is not an error: defaults are
// returned, so first runs need no setup.
func Load(path string) (File, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return File{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return File{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return File{}, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func (f File) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.FFmpegPath, validation.Required),
		validation.Field(&f.FFprobePath, validation.Required),
		validation.Field(&f.QueuePath, validation.Required),
		validation.Field(&f.Edit),
	)
}

func (e Edit) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.MinSilenceSeconds, validation.Min(0.0)),
		validation.Field(&e.StartPaddingSeconds, validation.Min(0.0)),
		validation.Field(&e.ExtractWorkers, validation.Min(0)),
		validation.Field(&e.TranscribeWorkers, validation.Min(0)),
	)
}
