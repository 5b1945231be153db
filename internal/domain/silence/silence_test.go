package silence

import (
	"errors"
	"testing"

	"github.com/vidtools/autocut/internal/types"
)

func TestParse_PairsStartAndEnd(t *testing.T) {
	raw := "[silencedetect @ 0x7f8] silence_start: 0\n" +
		"[silencedetect @ 0x7f8] silence_end: 1.0 | silence_duration: 1.0\n" +
		"frame= 1200 fps=240 q=-0.0 size=N/A\n" +
		"[silencedetect @ 0x7f8] silence_start: 4.0\n" +
		"[silencedetect @ 0x7f8] silence_end: 5.0 | silence_duration: 1.0\n"

	got := Parse(raw)
	want := []types.SilenceInterval{
		{SilenceEnd: 1.0, Duration: 1.0},
		{SilenceEnd: 5.0, Duration: 1.0},
	}
	if len(got) != len(want) {
		t.Fatalf("intervals: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("interval %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParse_DropsUnmatchedStartAtEOF(t *testing.T) {
	raw := "silence_start: 0\n" +
		"silence_end: 1.5 | silence_duration: 1.5\n" +
		"silence_start: 9.0\n" // tool output truncated mid-pair

	got := Parse(raw)
	if len(got) != 1 {
		t.Fatalf("expected 1 interval, got %d", len(got))
	}
	if got[0].SilenceEnd != 1.5 {
		t.Fatalf("silence end: got %v, want 1.5", got[0].SilenceEnd)
	}
}

func TestParse_IgnoresEndWithoutStart(t *testing.T) {
	raw := "silence_end: 3.0 | silence_duration: 1.0\n"
	if got := Parse(raw); len(got) != 0 {
		t.Fatalf("expected no intervals, got %d", len(got))
	}
}

func TestParse_Empty(t *testing.T) {
	if got := Parse(""); len(got) != 0 {
		t.Fatalf("expected no intervals, got %d", len(got))
	}
}

func TestSpeakingClips_TwoSilencesOneClip(t *testing.T) {
	intervals := []types.SilenceInterval{
		{SilenceEnd: 1.0, Duration: 1.0},
		{SilenceEnd: 5.0, Duration: 1.0},
	}
	clips, err := SpeakingClips(intervals, 30, Padding{})
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if len(clips) != 1 {
		t.Fatalf("expected 1 clip, got %d", len(clips))
	}
	c := clips[0]
	if c.StartFrame != 30 || c.EndFrame != 120 {
		t.Fatalf("frames: got [%d,%d), want [30,120)", c.StartFrame, c.EndFrame)
	}
	if c.DurationInFrames != 90 {
		t.Fatalf("duration: got %d frames, want 90", c.DurationInFrames)
	}
}

func TestSpeakingClips_PaddingWidensClip(t *testing.T) {
	intervals := []types.SilenceInterval{
		{SilenceEnd: 2.0, Duration: 1.0},
		{SilenceEnd: 6.0, Duration: 1.0},
	}
	clips, err := SpeakingClips(intervals, 30, Padding{Start: 0.5, End: 0.3})
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	c := clips[0]
	// floor(2*30)-floor(0.5*30)=45, ceil(5*30)+floor(0.3*30)=159
	if c.StartFrame != 45 || c.EndFrame != 159 {
		t.Fatalf("frames: got [%d,%d), want [45,159)", c.StartFrame, c.EndFrame)
	}
}

func TestSpeakingClips_DropsZeroLength(t *testing.T) {
	// Second silence starts exactly where the first one ends: zero-length
	// candidate must be filtered, and the remaining clip still emitted.
	intervals := []types.SilenceInterval{
		{SilenceEnd: 1.0, Duration: 1.0},
		{SilenceEnd: 2.0, Duration: 1.0},
		{SilenceEnd: 6.0, Duration: 1.0},
	}
	clips, err := SpeakingClips(intervals, 30, Padding{})
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if len(clips) != 1 {
		t.Fatalf("expected 1 clip, got %d", len(clips))
	}
	if clips[0].StartFrame != 60 {
		t.Fatalf("start frame: got %d, want 60", clips[0].StartFrame)
	}
}

func TestSpeakingClips_NoSpeechIsError(t *testing.T) {
	intervals := []types.SilenceInterval{
		{SilenceEnd: 1.0, Duration: 1.0},
		{SilenceEnd: 2.0, Duration: 1.0},
	}
	_, err := SpeakingClips(intervals, 30, Padding{})
	if !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech, got %v", err)
	}

	if _, err := SpeakingClips(nil, 30, Padding{}); !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech for empty input, got %v", err)
	}
}

func TestSpeakingClips_AlwaysPositiveLength(t *testing.T) {
	cases := []struct {
		name string
		fps  float64
		pad  Padding
	}{
		{name: "24fps no pad", fps: 24},
		{name: "30fps padded", fps: 30, pad: Padding{Start: 0.2, End: 0.3}},
		{name: "60fps padded", fps: 60, pad: Padding{Start: 0.05, End: 0.05}},
	}
	intervals := []types.SilenceInterval{
		{SilenceEnd: 0.5, Duration: 0.5},
		{SilenceEnd: 1.51, Duration: 1.0},
		{SilenceEnd: 3.0, Duration: 1.45},
		{SilenceEnd: 10.2, Duration: 2.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clips, err := SpeakingClips(intervals, tc.fps, tc.pad)
			if err != nil {
				t.Fatalf("derive: %v", err)
			}
			for i, c := range clips {
				if c.StartFrame >= c.EndFrame {
					t.Fatalf("clip %d: start %d >= end %d", i, c.StartFrame, c.EndFrame)
				}
				if c.DurationInFrames != c.EndFrame-c.StartFrame {
					t.Fatalf("clip %d: duration %d != end-start %d", i, c.DurationInFrames, c.EndFrame-c.StartFrame)
				}
			}
		})
	}
}
