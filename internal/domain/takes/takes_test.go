package takes

import (
	"testing"

	"github.com/vidtools/autocut/internal/types"
)

func clip(start, end int) types.SpeakingClip {
	return types.SpeakingClip{
		StartFrame:       start,
		EndFrame:         end,
		DurationInFrames: end - start,
	}
}

func TestClassify_MarkerInsideClip(t *testing.T) {
	c := clip(100, 200)
	clips := []types.SpeakingClip{c}
	markers := []types.BadTakeMarker{{Frame: 150}}

	got := Classify(c, markers, 0, clips, 30)
	if got != types.TakeDefinitelyBad {
		t.Fatalf("got %v, want definitely-bad", got)
	}
}

func TestClassify_MarkerOnBoundaries(t *testing.T) {
	c := clip(100, 200)
	clips := []types.SpeakingClip{c}
	for _, frame := range []int{100, 200} {
		got := Classify(c, []types.BadTakeMarker{{Frame: frame}}, 0, clips, 30)
		if got != types.TakeDefinitelyBad {
			t.Fatalf("marker at %d: got %v, want definitely-bad", frame, got)
		}
	}
}

func TestClassify_MarkerJustPastEnd(t *testing.T) {
	// fps=30: definitely-bad padding is floor(0.5*30)=15 frames.
	c := clip(100, 200)
	clips := []types.SpeakingClip{c, clip(400, 500)}

	cases := []struct {
		frame int
		want  types.TakeQuality
	}{
		{frame: 201, want: types.TakeDefinitelyBad},
		{frame: 215, want: types.TakeDefinitelyBad}, // inclusive edge
		{frame: 216, want: types.TakeMaybeBad},      // within max distance (60)
		{frame: 260, want: types.TakeMaybeBad},      // inclusive edge of 200+60
		{frame: 261, want: types.TakeGood},
	}
	for _, tc := range cases {
		got := Classify(c, []types.BadTakeMarker{{Frame: tc.frame}}, 0, clips, 30)
		if got != tc.want {
			t.Fatalf("marker at %d: got %v, want %v", tc.frame, got, tc.want)
		}
	}
}

func TestClassify_MarkerInNextClipBlamesNextOnly(t *testing.T) {
	first := clip(100, 200)
	second := clip(210, 300)
	clips := []types.SpeakingClip{first, second}
	markers := []types.BadTakeMarker{{Frame: 250}}

	// 250 is within first's max distance (260) but not strictly before the
	// next clip's start, so the first clip stays good.
	if got := Classify(first, markers, 0, clips, 30); got != types.TakeGood {
		t.Fatalf("first clip: got %v, want good", got)
	}
	if got := Classify(second, markers, 1, clips, 30); got != types.TakeDefinitelyBad {
		t.Fatalf("second clip: got %v, want definitely-bad", got)
	}
}

func TestClassify_LastClipGapMarker(t *testing.T) {
	first := clip(100, 200)
	last := clip(300, 400)
	clips := []types.SpeakingClip{first, last}

	// Marker in the trailing gap of the last clip, past definitely-bad
	// padding (415) but within max distance (460).
	got := Classify(last, []types.BadTakeMarker{{Frame: 430}}, 1, clips, 30)
	if got != types.TakeMaybeBad {
		t.Fatalf("got %v, want maybe-bad", got)
	}
}

func TestClassify_NoMarkers(t *testing.T) {
	c := clip(100, 200)
	if got := Classify(c, nil, 0, []types.SpeakingClip{c}, 30); got != types.TakeGood {
		t.Fatalf("got %v, want good", got)
	}
}

func TestClassify_DefinitelyBadWinsOverMaybeBad(t *testing.T) {
	// One marker inside the clip, one in the gap: rule 1 wins regardless of
	// marker order.
	c := clip(100, 200)
	clips := []types.SpeakingClip{c}
	markers := []types.BadTakeMarker{{Frame: 230}, {Frame: 150}}
	if got := Classify(c, markers, 0, clips, 30); got != types.TakeDefinitelyBad {
		t.Fatalf("got %v, want definitely-bad", got)
	}
}

func TestClassify_SeverityNeverIncreasesWithDistance(t *testing.T) {
	c := clip(100, 200)
	clips := []types.SpeakingClip{c}

	prev := types.TakeDefinitelyBad
	for frame := 200; frame <= 300; frame++ {
		got := Classify(c, []types.BadTakeMarker{{Frame: frame}}, 0, clips, 30)
		if got > prev {
			t.Fatalf("severity increased moving marker from %d to %d: %v -> %v", frame-1, frame, prev, got)
		}
		prev = got
	}
	if prev != types.TakeGood {
		t.Fatalf("marker far past clip should be good, got %v", prev)
	}
}

func TestMarkersFromChapters(t *testing.T) {
	chapters := []types.Chapter{
		{StartMs: 0, Title: "Intro"},
		{StartMs: 5000, Title: "Bad Take"},
		{StartMs: 10500, Title: "Bad Take"},
		{StartMs: 12000, Title: "Outro"},
	}
	got := MarkersFromChapters(chapters, 30)
	if len(got) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(got))
	}
	if got[0].Frame != 150 {
		t.Fatalf("marker 0: got frame %d, want 150", got[0].Frame)
	}
	if got[1].Frame != 315 {
		t.Fatalf("marker 1: got frame %d, want 315", got[1].Frame)
	}
}
