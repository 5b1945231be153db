// Package clipplan turns classified speaking clips into the ordered cut list
// that extraction and concatenation consume.
package clipplan

import (
	"errors"
	"math"

	"github.com/vidtools/autocut/internal/domain/takes"
	"github.com/vidtools/autocut/internal/types"
)

const (
	// EndPaddingSeconds is the per-clip end padding already applied during
	// speaking-clip derivation.
	EndPaddingSeconds = 0.3

	// FinalEndPaddingSeconds is the padding the very last cut needs so the
	// trailing audio is not clipped off.
	FinalEndPaddingSeconds = 0.8
)

// ErrNoGoodClips is returned when filtering removes every clip. An empty
// plan would silently produce an empty video, so this is fatal.
var ErrNoGoodClips = errors.New("no good clips remain after filtering bad takes")

// Options control the filtering policy.
type Options struct {
	// KeepMaybeBad keeps clips whose marker landed in the following silence
	// gap instead of dropping them. Default is the strict drop policy.
	KeepMaybeBad bool
}

// Build classifies every clip, keeps the acceptable ones and computes each
// cut's start and duration. Only the last kept clip gets its duration
// adjusted by FinalEndPaddingSeconds - EndPaddingSeconds.
func Build(clips []types.SpeakingClip, markers []types.BadTakeMarker, fps float64, opts Options) ([]types.ClipPlanEntry, error) {
	var kept []types.SpeakingClip
	for i, c := range clips {
		switch takes.Classify(c, markers, i, clips, fps) {
		case types.TakeGood:
			kept = append(kept, c)
		case types.TakeMaybeBad:
			if opts.KeepMaybeBad {
				kept = append(kept, c)
			}
		}
	}
	if len(kept) == 0 {
		return nil, ErrNoGoodClips
	}

	out := make([]types.ClipPlanEntry, 0, len(kept))
	for _, c := range kept {
		out = append(out, types.ClipPlanEntry{
			Start:    c.StartTime,
			Duration: round2(float64(c.DurationInFrames) / fps),
		})
	}
	last := &out[len(out)-1]
	last.Duration = round2(last.Duration + FinalEndPaddingSeconds - EndPaddingSeconds)
	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
