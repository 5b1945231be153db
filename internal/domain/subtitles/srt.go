// Package subtitles renders SRT documents for finished videos.
package subtitles

import (
	"fmt"
	"math"
	"strings"
)

// Cue is one subtitle entry on the final video's timeline.
type Cue struct {
	Start float64 // seconds
	End   float64 // seconds
	Text  string
}

// RenderSRT produces a complete SRT document. Cues with empty text are
// skipped; numbering stays contiguous.
func RenderSRT(cues []Cue) string {
	var sb strings.Builder
	n := 0
	for _, c := range cues {
		text := strings.TrimSpace(c.Text)
		if text == "" {
			continue
		}
		n++
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n", n, timestamp(c.Start), timestamp(c.End), text)
	}
	return sb.String()
}

// timestamp formats seconds as the SRT "HH:MM:SS,mmm" form.
func timestamp(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	ms := int(math.Round(sec * 1000))
	h := ms / 3600000
	ms -= h * 3600000
	m := ms / 60000
	ms -= m * 60000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
