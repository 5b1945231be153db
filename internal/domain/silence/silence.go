// Package silence parses silence-detector output and derives the speaking
// intervals in between.
package silence

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/vidtools/autocut/internal/types"
)

// ErrNoSpeech is returned when no speaking interval survives derivation.
// "No speech detected" is fatal; "speech detected but too short" is not.
var ErrNoSpeech = errors.New("could not find start and end times of any speaking interval")

// Parse scans the combined silence-detector output line by line. A
// "silence_start" token opens a pending interval and the next "silence_end"
// token closes it. Incomplete pairs at the stream boundary are dropped:
// partial tool output at EOF is expected, never an error.
func Parse(raw string) []types.SilenceInterval {
	var out []types.SilenceInterval
	open := false
	for _, line := range strings.Split(raw, "\n") {
		switch {
		case strings.Contains(line, "silence_start:"):
			open = true
		case open && strings.Contains(line, "silence_end:"):
			end, okEnd := floatAfter(line, "silence_end:")
			dur, okDur := floatAfter(line, "silence_duration:")
			if !okEnd || !okDur {
				continue
			}
			out = append(out, types.SilenceInterval{SilenceEnd: end, Duration: dur})
			open = false
		}
	}
	return out
}

// floatAfter extracts the first numeric field following token on the line.
func floatAfter(line, token string) (float64, bool) {
	i := strings.Index(line, token)
	if i < 0 {
		return 0, false
	}
	fields := strings.Fields(line[i+len(token):])
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Padding widens each speaking interval, in seconds on either side.
type Padding struct {
	Start float64
	End   float64
}

// SpeakingClips derives the talking segments between adjacent silences.
// Each pair of consecutive intervals (current, next) yields the candidate
// span [current.SilenceEnd, next.SilenceEnd - next.Duration], quantized with
// floor on the start frame and ceil on the end frame, then widened by the
// padding converted to frames. Zero-length clips are dropped, not emitted.
func SpeakingClips(intervals []types.SilenceInterval, fps float64, pad Padding) ([]types.SpeakingClip, error) {
	startPadFrames := int(math.Floor(pad.Start * fps))
	endPadFrames := int(math.Floor(pad.End * fps))

	var out []types.SpeakingClip
	for i := 0; i+1 < len(intervals); i++ {
		cur, next := intervals[i], intervals[i+1]
		start := cur.SilenceEnd
		end := next.SilenceEnd - next.Duration

		startFrame := int(math.Floor(start*fps)) - startPadFrames
		endFrame := int(math.Ceil(end*fps)) + endPadFrames
		if startFrame < 0 {
			startFrame = 0
		}
		if endFrame <= startFrame {
			continue
		}

		out = append(out, types.SpeakingClip{
			StartFrame:       startFrame,
			EndFrame:         endFrame,
			StartTime:        float64(startFrame) / fps,
			EndTime:          float64(endFrame) / fps,
			SilenceEnd:       cur.SilenceEnd,
			DurationInFrames: endFrame - startFrame,
		})
	}
	if len(out) == 0 {
		return nil, ErrNoSpeech
	}
	return out, nil
}
