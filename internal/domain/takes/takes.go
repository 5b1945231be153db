// Package takes classifies speaking clips against bad-take markers.
//
// A marker is a manual flag the presenter triggers right after misspeaking,
// so it usually lands either inside the bad take or in the silence gap that
// follows it (human reaction latency). Classification catches both without
// blaming unrelated, distant clips.
package takes

import (
	"math"

	"github.com/vidtools/autocut/internal/types"
)

const (
	// DefinitelyBadPaddingSeconds extends the "marker belongs to this clip"
	// window past the clip end.
	DefinitelyBadPaddingSeconds = 0.5

	// MaxBadTakeDistanceSeconds is how far past a clip a marker may land and
	// still cast suspicion on it.
	MaxBadTakeDistanceSeconds = 2.0

	// BadTakeChapterTitle is the chapter title the presenter's flag action
	// writes into the source container.
	BadTakeChapterTitle = "Bad Take"
)

// Classify rates one clip against every marker. Rules in precedence order:
//
//  1. marker inside [start, end]                          -> definitely bad
//  2. marker in (end, end+definitelyBadPadding]           -> definitely bad
//  3. last clip: marker in (start, end+maxDistance]       -> maybe bad
//  4. otherwise: marker strictly before the next clip's
//     start and within end+maxDistance                    -> maybe bad
func Classify(clip types.SpeakingClip, markers []types.BadTakeMarker, index int, clips []types.SpeakingClip, fps float64) types.TakeQuality {
	definitelyBadPad := int(math.Floor(DefinitelyBadPaddingSeconds * fps))
	maxDistance := int(math.Floor(MaxBadTakeDistanceSeconds * fps))

	for _, m := range markers {
		if m.Frame >= clip.StartFrame && m.Frame <= clip.EndFrame {
			return types.TakeDefinitelyBad
		}
		if m.Frame > clip.EndFrame && m.Frame <= clip.EndFrame+definitelyBadPad {
			return types.TakeDefinitelyBad
		}
	}

	last := index == len(clips)-1
	for _, m := range markers {
		if m.Frame <= clip.StartFrame || m.Frame > clip.EndFrame+maxDistance {
			continue
		}
		if last {
			return types.TakeMaybeBad
		}
		if m.Frame < clips[index+1].StartFrame {
			return types.TakeMaybeBad
		}
	}
	return types.TakeGood
}

// MarkersFromChapters maps "Bad Take" chapters to frame-indexed markers.
// Read once per video; other chapter titles are ignored.
func MarkersFromChapters(chapters []types.Chapter, fps float64) []types.BadTakeMarker {
	var out []types.BadTakeMarker
	for _, c := range chapters {
		if c.Title != BadTakeChapterTitle {
			continue
		}
		out = append(out, types.BadTakeMarker{
			Frame: int(math.Floor(float64(c.StartMs) / 1000.0 * fps)),
		})
	}
	return out
}
