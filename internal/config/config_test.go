package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "ffmpeg", cfg.FFmpegPath)
	assert.Equal(t, "ffprobe", cfg.FFprobePath)
	assert.NotEmpty(t, cfg.QueuePath)
	assert.Equal(t, "https://api.openai.com", cfg.OpenAI.BaseURL)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("AUTOCUT_TEST_KEY", "sk-test-123")

	path := filepath.Join(t.TempDir(), "autocut.yaml")
	doc := "queue_path: /tmp/q.json\nopenai:\n  api_key: ${AUTOCUT_TEST_KEY}\n  chat_model: gpt-4o-mini\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-test-123", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.ChatModel)
	assert.Equal(t, "/tmp/q.json", cfg.QueuePath)
	// Unset keys keep their defaults.
	assert.Equal(t, "ffmpeg", cfg.FFmpegPath)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autocut.yaml")
	doc := "queue_path: /tmp/q.json\nedit:\n  extract_workers: -3\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ExtractWorkers")
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autocut.yaml")
	require.NoError(t, os.WriteFile(path, []byte("queue_path: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
