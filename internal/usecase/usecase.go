// Package usecase composes the domain steps into the auto-edit pipelines.
package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vidtools/autocut/internal/domain/clipplan"
	"github.com/vidtools/autocut/internal/domain/silence"
	"github.com/vidtools/autocut/internal/domain/subtitles"
	"github.com/vidtools/autocut/internal/domain/takes"
	"github.com/vidtools/autocut/internal/ports"
	"github.com/vidtools/autocut/internal/types"
)

const (
	DefaultSilenceThresholdDb  = -30.0
	DefaultMinSilenceSeconds   = 1.0
	DefaultStartPaddingSeconds = 0.1

	// Clip extraction is CPU/GPU-bound in ffmpeg; running too many at once
	// hurts overall throughput.
	DefaultExtractWorkers = 6

	// Transcription is mostly network wait, so it gets a wider limit.
	DefaultTranscribeWorkers = 20
)

// Options tune the pipeline. Zero values fall back to the defaults above.
// The end padding is not an option: the clip plan's final-entry adjustment
// is coupled to clipplan.EndPaddingSeconds.
type Options struct {
	SilenceThresholdDb  float64
	MinSilenceSeconds   float64
	StartPaddingSeconds float64
	ExtractWorkers      int
	TranscribeWorkers   int
}

func (o *Options) applyDefaults() {
	if o.SilenceThresholdDb == 0 {
		o.SilenceThresholdDb = DefaultSilenceThresholdDb
	}
	if o.MinSilenceSeconds == 0 {
		o.MinSilenceSeconds = DefaultMinSilenceSeconds
	}
	if o.StartPaddingSeconds == 0 {
		o.StartPaddingSeconds = DefaultStartPaddingSeconds
	}
	if o.ExtractWorkers <= 0 {
		o.ExtractWorkers = DefaultExtractWorkers
	}
	if o.TranscribeWorkers <= 0 {
		o.TranscribeWorkers = DefaultTranscribeWorkers
	}
}

// Editor runs the auto-edit pipelines. One Editor is safe for concurrent
// use; all per-invocation state lives on the stack and in per-run temp dirs.
type Editor struct {
	video       ports.VideoTool
	transcriber ports.Transcriber
	log         zerolog.Logger
	opts        Options
}

func NewEditor(video ports.VideoTool, transcriber ports.Transcriber, log zerolog.Logger, opts Options) *Editor {
	opts.applyDefaults()
	return &Editor{video: video, transcriber: transcriber, log: log, opts: opts}
}

type AutoEditInput struct {
	InputPath    string
	OutputPath   string
	KeepMaybeBad bool
	Subtitles    bool
	Transcribe   bool
}

type FromClipsInput struct {
	InputPath  string
	OutputPath string
	Clips      []types.ClipPlanEntry
	Subtitles  bool
	Transcribe bool
}

type Result struct {
	OutputPath    string
	ClipCount     int
	Transcript    string
	SubtitlesPath string
}

// AutoEdit runs the full pipeline: probe, detect silence, classify takes,
// plan cuts, extract, concatenate.
func (e *Editor) AutoEdit(ctx context.Context, in AutoEditInput) (Result, error) {
	fps, err := e.video.ProbeFPS(ctx, in.InputPath)
	if err != nil {
		return Result{}, err
	}
	e.log.Info().Str("input", in.InputPath).Float64("fps", fps).Msg("starting auto edit")

	raw, err := e.video.DetectSilence(ctx, in.InputPath, e.opts.SilenceThresholdDb, e.opts.MinSilenceSeconds)
	if err != nil {
		return Result{}, err
	}
	intervals := silence.Parse(raw)
	clips, err := silence.SpeakingClips(intervals, fps, silence.Padding{
		Start: e.opts.StartPaddingSeconds,
		End:   clipplan.EndPaddingSeconds,
	})
	if err != nil {
		return Result{}, err
	}

	chapters, err := e.video.Chapters(ctx, in.InputPath)
	if err != nil {
		return Result{}, err
	}
	markers := takes.MarkersFromChapters(chapters, fps)
	e.log.Info().
		Int("speaking_clips", len(clips)).
		Int("bad_take_markers", len(markers)).
		Msg("silence analysis done")

	plan, err := clipplan.Build(clips, markers, fps, clipplan.Options{KeepMaybeBad: in.KeepMaybeBad})
	if err != nil {
		return Result{}, err
	}

	return e.renderPlan(ctx, in.InputPath, in.OutputPath, plan, in.Subtitles, in.Transcribe)
}

// FromClips renders a video from an explicit cut list, skipping detection.
func (e *Editor) FromClips(ctx context.Context, in FromClipsInput) (Result, error) {
	if len(in.Clips) == 0 {
		return Result{}, fmt.Errorf("from clips: empty clip list")
	}
	return e.renderPlan(ctx, in.InputPath, in.OutputPath, in.Clips, in.Subtitles, in.Transcribe)
}

// Concat joins already-rendered videos in the given order.
func (e *Editor) Concat(ctx context.Context, inputs []string, output string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("concat: no inputs")
	}
	return e.video.Concat(ctx, inputs, output)
}

// renderPlan extracts every plan entry into a per-run temp dir and
// concatenates the pieces. Extraction runs in parallel; the concat list is
// written in chronological clip order, so correctness never depends on
// extraction completion order. The temp dir is removed on success and
// failure alike.
func (e *Editor) renderPlan(ctx context.Context, input, output string, plan []types.ClipPlanEntry, subs, transcribe bool) (res Result, err error) {
	tmpDir, err := os.MkdirTemp("", "autocut-"+time.Now().UTC().Format("20060102-150405")+"-*")
	if err != nil {
		return Result{}, fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			// Cleanup failure must never mask the pipeline error.
			e.log.Warn().Err(rmErr).Str("dir", tmpDir).Msg("temp dir cleanup failed")
		}
	}()

	names := make([]string, len(plan))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.ExtractWorkers)
	for i, entry := range plan {
		names[i] = filepath.Join(tmpDir, fmt.Sprintf("clip-%03d.mp4", i))
		name, entry := names[i], entry
		g.Go(func() error {
			return e.video.ExtractClip(gctx, input, name, entry.Start, entry.Duration)
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("extract clips: %w", err)
	}

	if err := e.video.Concat(ctx, names, output); err != nil {
		return Result{}, err
	}
	e.log.Info().Str("output", output).Int("clips", len(plan)).Msg("video rendered")

	res = Result{OutputPath: output, ClipCount: len(plan)}

	if subs || transcribe {
		texts, err := e.transcribeClips(ctx, names)
		if err != nil {
			return Result{}, err
		}
		res.Transcript = joinTranscripts(texts)
		if subs {
			srtPath := output + ".srt"
			doc := subtitles.RenderSRT(cuesFromPlan(plan, texts))
			if err := os.WriteFile(srtPath, []byte(doc), 0o644); err != nil {
				return Result{}, fmt.Errorf("write subtitles: %w", err)
			}
			res.SubtitlesPath = srtPath
		}
	}
	return res, nil
}

// transcribeClips fans the per-clip transcription out with its own, wider
// limit. Results are keyed by clip index, never by completion order.
func (e *Editor) transcribeClips(ctx context.Context, clipPaths []string) ([]string, error) {
	if e.transcriber == nil {
		return nil, fmt.Errorf("transcription requested but no transcriber configured")
	}
	texts := make([]string, len(clipPaths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.TranscribeWorkers)
	for i, p := range clipPaths {
		i, p := i, p
		g.Go(func() error {
			text, err := e.transcriber.Transcribe(gctx, p)
			if err != nil {
				return fmt.Errorf("transcribe %s: %w", filepath.Base(p), err)
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return texts, nil
}

// cuesFromPlan positions each clip's text on the final video's timeline by
// accumulating plan durations.
func cuesFromPlan(plan []types.ClipPlanEntry, texts []string) []subtitles.Cue {
	cues := make([]subtitles.Cue, 0, len(plan))
	offset := 0.0
	for i, entry := range plan {
		cues = append(cues, subtitles.Cue{
			Start: offset,
			End:   offset + entry.Duration,
			Text:  texts[i],
		})
		offset += entry.Duration
	}
	return cues
}

func joinTranscripts(texts []string) string {
	out := ""
	for _, t := range texts {
		if t == "" {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += t
	}
	return out
}
