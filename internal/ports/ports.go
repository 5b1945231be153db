package ports

import (
	"context"

	"github.com/vidtools/autocut/internal/types"
)

// VideoTool covers every external media-tool invocation the pipeline needs.
// Implementations shell out to ffmpeg/ffprobe; the pipeline only sees text
// and numbers.
type VideoTool interface {
	// DetectSilence runs a silence-detection pass and returns the tool's
	// combined stdout+stderr text for the interval parser.
	DetectSilence(ctx context.Context, input string, thresholdDb, minSilenceSeconds float64) (string, error)

	// Chapters reads the chapter metadata embedded in the source container.
	Chapters(ctx context.Context, input string) ([]types.Chapter, error)

	// ProbeFPS returns the source's frames-per-second value, the anchor for
	// all time/frame conversions.
	ProbeFPS(ctx context.Context, input string) (float64, error)

	// ExtractClip cuts one clip out of the source.
	ExtractClip(ctx context.Context, input, output string, startSeconds, durationSeconds float64) error

	// Concat joins the inputs into output, in the listed order.
	Concat(ctx context.Context, inputs []string, output string) error
}

// Transcriber turns finished media into transcript text.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath string) (string, error)
}

// ArticleWriter generates written content from a video transcript.
type ArticleWriter interface {
	// ExtractLinkRequests lists the resources mentioned in the transcript
	// that the article will need links for.
	ExtractLinkRequests(ctx context.Context, transcript string) ([]string, error)

	// WriteArticle produces the article body.
	WriteArticle(ctx context.Context, req ArticleRequest) (string, error)
}

// ArticleRequest carries everything the article generator consumes.
type ArticleRequest struct {
	Transcript string
	Code       string
	Links      []string
	Title      string
}
