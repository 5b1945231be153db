package types

// SilenceInterval is one span of below-threshold audio as reported by the
// silence-detection pass. Intervals arrive ordered by detection time; the
// start of the span is implied by SilenceEnd - Duration.
type SilenceInterval struct {
	SilenceEnd float64 // seconds, where the silence ends
	Duration   float64 // seconds, how long the silence lasted
}

// SpeakingClip is the complement of silence: a padded, frame-quantized
// candidate segment of actual talking between two consecutive silences.
type SpeakingClip struct {
	StartFrame       int
	EndFrame         int
	StartTime        float64 // seconds
	EndTime          float64 // seconds
	SilenceEnd       float64 // seconds, end of the silence preceding the clip
	DurationInFrames int
}

// BadTakeMarker is an in-video chapter marker the presenter drops right
// after misspeaking, converted to a frame number.
type BadTakeMarker struct {
	Frame int
}

// TakeQuality is computed per SpeakingClip relative to the bad-take markers.
// Constant order matters: severity is non-decreasing.
type TakeQuality int

const (
	TakeGood TakeQuality = iota
	TakeMaybeBad
	TakeDefinitelyBad
)

func (q TakeQuality) String() string {
	switch q {
	case TakeGood:
		return "good"
	case TakeMaybeBad:
		return "maybe-bad"
	case TakeDefinitelyBad:
		return "definitely-bad"
	default:
		return "unknown"
	}
}

// ClipPlanEntry is one cut in the final, ordered extraction plan.
type ClipPlanEntry struct {
	Start    float64 `json:"startTime"` // seconds into the source video
	Duration float64 `json:"duration"`  // seconds
}

// Chapter is one chapter entry from the source container metadata.
type Chapter struct {
	StartMs int64
	Title   string
}
