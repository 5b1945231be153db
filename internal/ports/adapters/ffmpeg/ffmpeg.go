// Package ffmpeg shells out to ffmpeg/ffprobe for silence detection, chapter
// extraction, fps probing, clip extraction and concatenation.
package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vidtools/autocut/internal/types"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
	log     zerolog.Logger
}

func New(ffmpegPath, ffprobePath string, log zerolog.Logger) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath, log: log}
}

// DetectSilence runs the silencedetect filter over the input's audio and
// returns the combined output text. silencedetect logs to stderr, so the
// whole combined stream goes back to the caller for parsing.
func (a *Adapter) DetectSilence(ctx context.Context, input string, thresholdDb, minSilenceSeconds float64) (string, error) {
	a.log.Debug().
		Str("input", input).
		Float64("threshold_db", thresholdDb).
		Float64("min_silence_sec", minSilenceSeconds).
		Msg("detecting silence")

	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-hide_banner",
		"-i", input,
		"-af", fmt.Sprintf("silencedetect=noise=%.2fdB:d=%.3f", thresholdDb, minSilenceSeconds),
		"-f", "null",
		"-",
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg silencedetect: %w\n%s", err, string(b))
	}
	return string(b), nil
}

// Chapters reads container chapter metadata via ffprobe's JSON output.
func (a *Adapter) Chapters(ctx context.Context, input string) ([]types.Chapter, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_chapters",
		input,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffprobe chapters: %w\n%s", err, string(b))
	}
	return parseChapters(b)
}

func parseChapters(raw []byte) ([]types.Chapter, error) {
	var doc struct {
		Chapters []struct {
			Start int64 `json:"start"`
			Tags  struct {
				Title string `json:"title"`
			} `json:"tags"`
		} `json:"chapters"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse chapters json: %w", err)
	}
	out := make([]types.Chapter, 0, len(doc.Chapters))
	for _, c := range doc.Chapters {
		out = append(out, types.Chapter{StartMs: c.Start, Title: c.Tags.Title})
	}
	return out, nil
}

// ProbeFPS returns the frame rate of the first video stream.
func (a *Adapter) ProbeFPS(ctx context.Context, input string) (float64, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=r_frame_rate",
		"-of", "default=noprint_wrappers=1:nokey=1",
		input,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe fps: %w\n%s", err, string(b))
	}
	fps, err := parseFrameRate(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, err
	}
	return fps, nil
}

// parseFrameRate handles ffprobe's rational form ("30000/1001") as well as a
// plain number.
func parseFrameRate(s string) (float64, error) {
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("parse frame rate %q: %w", s, err)
		}
		d, err := strconv.ParseFloat(den, 64)
		if err != nil || d == 0 {
			return 0, fmt.Errorf("parse frame rate %q: bad denominator", s)
		}
		return n / d, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse frame rate %q: %w", s, err)
	}
	return v, nil
}

// ExtractClip cuts [start, start+duration) out of the source, re-encoding so
// cut points are frame accurate rather than snapped to keyframes.
func (a *Adapter) ExtractClip(ctx context.Context, input, output string, startSeconds, durationSeconds float64) error {
	a.log.Debug().
		Str("output", filepath.Base(output)).
		Float64("start", startSeconds).
		Float64("duration", durationSeconds).
		Msg("extracting clip")

	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-ss", formatSeconds(startSeconds),
		"-i", input,
		"-t", formatSeconds(durationSeconds),
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "18",
		"-c:a", "aac",
		"-b:a", "192k",
		output,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg extract clip: %w\n%s", err, string(b))
	}
	return nil
}

// Concat joins the inputs with the concat demuxer. The list file is written
// in the order given; correctness of the final video depends on it.
func (a *Adapter) Concat(ctx context.Context, inputs []string, output string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("concat: no input files")
	}

	listFile, err := writeConcatList(inputs)
	if err != nil {
		return err
	}
	defer os.Remove(listFile)

	a.log.Debug().Int("inputs", len(inputs)).Str("output", output).Msg("concatenating")

	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		output,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg concat: %w\n%s", err, string(b))
	}
	return nil
}

func writeConcatList(inputs []string) (string, error) {
	f, err := os.CreateTemp("", "autocut-concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("create concat list: %w", err)
	}
	defer f.Close()

	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			os.Remove(f.Name())
			return "", err
		}
		if _, err := fmt.Fprintf(f, "file '%s'\n", abs); err != nil {
			os.Remove(f.Name())
			return "", fmt.Errorf("write concat list: %w", err)
		}
	}
	return f.Name(), nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
