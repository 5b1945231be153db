package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/vidtools/autocut/internal/domain/clipplan"
	"github.com/vidtools/autocut/internal/domain/silence"
	"github.com/vidtools/autocut/internal/types"
)

const silenceFixture = "[silencedetect @ 0x1] silence_start: 0\n" +
	"[silencedetect @ 0x1] silence_end: 1.0 | silence_duration: 1.0\n" +
	"[silencedetect @ 0x1] silence_start: 4.0\n" +
	"[silencedetect @ 0x1] silence_end: 5.0 | silence_duration: 1.0\n" +
	"[silencedetect @ 0x1] silence_start: 9.0\n" +
	"[silencedetect @ 0x1] silence_end: 10.0 | silence_duration: 1.0\n"

type fakeVideoTool struct {
	mu            sync.Mutex
	fps           float64
	silenceOutput string
	chapters      []types.Chapter
	extractErr    error

	extracted    []string // output paths, in call order
	concatInputs []string
}

func (f *fakeVideoTool) DetectSilence(ctx context.Context, input string, thresholdDb, minSilence float64) (string, error) {
	return f.silenceOutput, nil
}

func (f *fakeVideoTool) Chapters(ctx context.Context, input string) ([]types.Chapter, error) {
	return f.chapters, nil
}

func (f *fakeVideoTool) ProbeFPS(ctx context.Context, input string) (float64, error) {
	if f.fps == 0 {
		return 30, nil
	}
	return f.fps, nil
}

func (f *fakeVideoTool) ExtractClip(ctx context.Context, input, output string, start, duration float64) error {
	if f.extractErr != nil {
		return f.extractErr
	}
	if err := os.WriteFile(output, []byte("clip"), 0o644); err != nil {
		return err
	}
	f.mu.Lock()
	f.extracted = append(f.extracted, output)
	f.mu.Unlock()
	return nil
}

func (f *fakeVideoTool) Concat(ctx context.Context, inputs []string, output string) error {
	f.mu.Lock()
	f.concatInputs = append([]string(nil), inputs...)
	f.mu.Unlock()
	return os.WriteFile(output, []byte("final"), 0o644)
}

type fakeTranscriber struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, mediaPath string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, mediaPath)
	f.mu.Unlock()
	return "text of " + filepath.Base(mediaPath), nil
}

func TestAutoEdit_RendersClipsInOrder(t *testing.T) {
	tool := &fakeVideoTool{silenceOutput: silenceFixture}
	e := NewEditor(tool, nil, zerolog.Nop(), Options{})

	out := filepath.Join(t.TempDir(), "out.mp4")
	res, err := e.AutoEdit(context.Background(), AutoEditInput{
		InputPath:  "in.mp4",
		OutputPath: out,
	})
	if err != nil {
		t.Fatalf("auto edit: %v", err)
	}
	if res.ClipCount != 2 {
		t.Fatalf("expected 2 clips, got %d", res.ClipCount)
	}
	if len(tool.concatInputs) != 2 {
		t.Fatalf("concat inputs: got %d", len(tool.concatInputs))
	}
	// Concat list must follow chronological clip order regardless of
	// extraction completion order.
	for i, p := range tool.concatInputs {
		want := fmt.Sprintf("clip-%03d.mp4", i)
		if filepath.Base(p) != want {
			t.Fatalf("concat input %d: got %s, want %s", i, filepath.Base(p), want)
		}
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("output not written: %v", err)
	}
}

func TestAutoEdit_BadTakeDropped(t *testing.T) {
	tool := &fakeVideoTool{
		silenceOutput: silenceFixture,
		// First speaking clip spans frames [27,129) at 30fps (0.1s start
		// padding, 0.3s end padding); a marker inside drops it.
		chapters: []types.Chapter{{StartMs: 2000, Title: "Bad Take"}},
	}
	e := NewEditor(tool, nil, zerolog.Nop(), Options{})

	res, err := e.AutoEdit(context.Background(), AutoEditInput{
		InputPath:  "in.mp4",
		OutputPath: filepath.Join(t.TempDir(), "out.mp4"),
	})
	if err != nil {
		t.Fatalf("auto edit: %v", err)
	}
	if res.ClipCount != 1 {
		t.Fatalf("expected 1 clip after dropping the bad take, got %d", res.ClipCount)
	}
}

func TestAutoEdit_NoSpeechFails(t *testing.T) {
	tool := &fakeVideoTool{silenceOutput: "no silences here\n"}
	e := NewEditor(tool, nil, zerolog.Nop(), Options{})

	_, err := e.AutoEdit(context.Background(), AutoEditInput{
		InputPath:  "in.mp4",
		OutputPath: filepath.Join(t.TempDir(), "out.mp4"),
	})
	if !errors.Is(err, silence.ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech, got %v", err)
	}
}

func TestAutoEdit_AllClipsBadFails(t *testing.T) {
	tool := &fakeVideoTool{
		silenceOutput: silenceFixture,
		chapters: []types.Chapter{
			{StartMs: 2000, Title: "Bad Take"},
			{StartMs: 7000, Title: "Bad Take"},
		},
	}
	e := NewEditor(tool, nil, zerolog.Nop(), Options{})

	_, err := e.AutoEdit(context.Background(), AutoEditInput{
		InputPath:  "in.mp4",
		OutputPath: filepath.Join(t.TempDir(), "out.mp4"),
	})
	if !errors.Is(err, clipplan.ErrNoGoodClips) {
		t.Fatalf("expected ErrNoGoodClips, got %v", err)
	}
}

func TestAutoEdit_CleansTempDirOnFailure(t *testing.T) {
	tool := &fakeVideoTool{
		silenceOutput: silenceFixture,
		extractErr:    errors.New("boom"),
	}
	e := NewEditor(tool, nil, zerolog.Nop(), Options{})

	before := tempDirs(t)
	_, err := e.AutoEdit(context.Background(), AutoEditInput{
		InputPath:  "in.mp4",
		OutputPath: filepath.Join(t.TempDir(), "out.mp4"),
	})
	if err == nil {
		t.Fatalf("expected extraction failure")
	}
	if len(tool.concatInputs) != 0 {
		t.Fatalf("concat must not run after extraction failure")
	}
	after := tempDirs(t)
	if len(after) > len(before) {
		t.Fatalf("temp dirs leaked: before %d, after %d", len(before), len(after))
	}
}

func tempDirs(t *testing.T) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(os.TempDir(), "autocut-*"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	return matches
}

func TestFromClips_SubtitlesFollowClipOrder(t *testing.T) {
	tool := &fakeVideoTool{}
	tr := &fakeTranscriber{}
	e := NewEditor(tool, tr, zerolog.Nop(), Options{})

	out := filepath.Join(t.TempDir(), "out.mp4")
	res, err := e.FromClips(context.Background(), FromClipsInput{
		InputPath:  "in.mp4",
		OutputPath: out,
		Clips: []types.ClipPlanEntry{
			{Start: 1, Duration: 2.5},
			{Start: 10, Duration: 3},
		},
		Subtitles: true,
	})
	if err != nil {
		t.Fatalf("from clips: %v", err)
	}
	if res.SubtitlesPath != out+".srt" {
		t.Fatalf("subtitles path: %q", res.SubtitlesPath)
	}

	b, err := os.ReadFile(res.SubtitlesPath)
	if err != nil {
		t.Fatalf("read srt: %v", err)
	}
	srt := string(b)
	first := strings.Index(srt, "text of clip-000.mp4")
	second := strings.Index(srt, "text of clip-001.mp4")
	if first < 0 || second < 0 || second < first {
		t.Fatalf("cue order wrong:\n%s", srt)
	}
	if !strings.Contains(srt, "00:00:02,500 --> 00:00:05,500") {
		t.Fatalf("second cue should start at the first clip's duration:\n%s", srt)
	}
	if res.Transcript == "" {
		t.Fatalf("transcript should be captured alongside subtitles")
	}
}

func TestFromClips_EmptyPlanRejected(t *testing.T) {
	e := NewEditor(&fakeVideoTool{}, nil, zerolog.Nop(), Options{})
	_, err := e.FromClips(context.Background(), FromClipsInput{InputPath: "in.mp4", OutputPath: "out.mp4"})
	if err == nil {
		t.Fatalf("expected error for empty clip list")
	}
}

func TestTranscribeWithoutTranscriberFails(t *testing.T) {
	tool := &fakeVideoTool{silenceOutput: silenceFixture}
	e := NewEditor(tool, nil, zerolog.Nop(), Options{})

	_, err := e.AutoEdit(context.Background(), AutoEditInput{
		InputPath:  "in.mp4",
		OutputPath: filepath.Join(t.TempDir(), "out.mp4"),
		Transcribe: true,
	})
	if err == nil || !strings.Contains(err.Error(), "no transcriber") {
		t.Fatalf("expected missing-transcriber error, got %v", err)
	}
}
