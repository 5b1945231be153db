// Package queue holds the persisted job queue: item model, action payloads
// and the JSON-document store.
package queue

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vidtools/autocut/internal/types"
)

// Status is the lifecycle state of a queue item.
type Status string

const (
	StatusReadyToRun        Status = "ready-to-run"
	StatusRequiresUserInput Status = "requires-user-input"
	StatusRunning           Status = "running"
	StatusCompleted         Status = "completed"
	StatusFailed            Status = "failed"
)

// Allowed transitions. failed → ready-to-run happens only on explicit manual
// retry; there are no automatic retries.
var validTransitions = map[Status]map[Status]bool{
	StatusReadyToRun:        {StatusRunning: true},
	StatusRequiresUserInput: {StatusReadyToRun: true},
	StatusRunning:           {StatusCompleted: true, StatusFailed: true},
	StatusFailed:            {StatusReadyToRun: true},
}

// ValidateTransition reports whether from → to is a legal status change.
func ValidateTransition(from, to Status) error {
	allowed, ok := validTransitions[from]
	if !ok {
		return fmt.Errorf("no transitions out of status %q", from)
	}
	if !allowed[to] {
		return fmt.Errorf("invalid status transition %q -> %q", from, to)
	}
	return nil
}

// ActionKind discriminates the Action union.
type ActionKind string

const (
	KindCreateAutoEditedVideo ActionKind = "create-auto-edited-video"
	KindCreateVideoFromClips  ActionKind = "create-video-from-clips"
	KindConcatenateVideos     ActionKind = "concatenate-videos"
	KindAnalyzeTranscript     ActionKind = "analyze-transcript-for-links"
	KindCodeRequest           ActionKind = "code-request"
	KindLinksRequest          ActionKind = "links-request"
	KindGenerateArticle       ActionKind = "generate-article-from-transcript"
)

// Action is a closed sum: Kind names the variant and exactly one payload
// pointer is set. Validate enforces the shape after decoding.
type Action struct {
	Kind ActionKind `json:"kind"`

	CreateAutoEditedVideo *CreateAutoEditedVideo `json:"createAutoEditedVideo,omitempty"`
	CreateVideoFromClips  *CreateVideoFromClips  `json:"createVideoFromClips,omitempty"`
	ConcatenateVideos     *ConcatenateVideos     `json:"concatenateVideos,omitempty"`
	AnalyzeTranscript     *AnalyzeTranscript     `json:"analyzeTranscriptForLinks,omitempty"`
	CodeRequest           *CodeRequest           `json:"codeRequest,omitempty"`
	LinksRequest          *LinksRequest          `json:"linksRequest,omitempty"`
	GenerateArticle       *GenerateArticle       `json:"generateArticleFromTranscript,omitempty"`
}

// Validate checks that exactly one payload is present and that it matches
// the declared kind.
func (a Action) Validate() error {
	var set []ActionKind
	if a.CreateAutoEditedVideo != nil {
		set = append(set, KindCreateAutoEditedVideo)
	}
	if a.CreateVideoFromClips != nil {
		set = append(set, KindCreateVideoFromClips)
	}
	if a.ConcatenateVideos != nil {
		set = append(set, KindConcatenateVideos)
	}
	if a.AnalyzeTranscript != nil {
		set = append(set, KindAnalyzeTranscript)
	}
	if a.CodeRequest != nil {
		set = append(set, KindCodeRequest)
	}
	if a.LinksRequest != nil {
		set = append(set, KindLinksRequest)
	}
	if a.GenerateArticle != nil {
		set = append(set, KindGenerateArticle)
	}
	if len(set) != 1 {
		return fmt.Errorf("action %q: expected exactly one payload, found %d", a.Kind, len(set))
	}
	if set[0] != a.Kind {
		return fmt.Errorf("action kind %q does not match payload %q", a.Kind, set[0])
	}
	return nil
}

// VideoArtifacts is the temporary data a finished video step leaves behind
// for dependent steps.
type VideoArtifacts struct {
	OutputPath string `json:"outputPath"`
	Transcript string `json:"transcript,omitempty"`
}

type CreateAutoEditedVideo struct {
	InputPath    string `json:"inputPath"`
	OutputPath   string `json:"outputPath"`
	Subtitles    bool   `json:"subtitles,omitempty"`
	KeepMaybeBad bool   `json:"keepMaybeBad,omitempty"`
	// Transcribe makes the step transcribe the finished video so dependent
	// steps can read the transcript from TemporaryData.
	Transcribe    bool            `json:"transcribe,omitempty"`
	TemporaryData *VideoArtifacts `json:"temporaryData,omitempty"`
}

type CreateVideoFromClips struct {
	InputPath     string                `json:"inputPath"`
	Clips         []types.ClipPlanEntry `json:"clips"`
	OutputPath    string                `json:"outputPath"`
	Subtitles     bool                  `json:"subtitles,omitempty"`
	Transcribe    bool                  `json:"transcribe,omitempty"`
	TemporaryData *VideoArtifacts       `json:"temporaryData,omitempty"`
}

type ConcatenateVideos struct {
	InputPaths []string `json:"inputPaths"`
	OutputPath string   `json:"outputPath"`
}

type AnalyzeTranscript struct {
	// VideoItemID is the dependency whose transcript gets analyzed.
	VideoItemID uuid.UUID `json:"videoItemId"`
	// LinksRequestID is the links-request item whose payload this step
	// populates once analysis completes.
	LinksRequestID uuid.UUID `json:"linksRequestId"`
}

type CodeRequest struct {
	// Code is supplied by the operator before the item becomes runnable.
	Code string `json:"code,omitempty"`
}

type LinksRequest struct {
	// Requests is filled in by the analyze step; empty until then.
	Requests []string `json:"requests,omitempty"`
	// Links is supplied by the operator, one per request.
	Links []string `json:"links,omitempty"`
}

type GenerateArticle struct {
	VideoItemID uuid.UUID `json:"videoItemId"`
	CodeItemID  uuid.UUID `json:"codeItemId"`
	LinksItemID uuid.UUID `json:"linksItemId"`
	Title       string    `json:"title,omitempty"`
	OutputDir   string    `json:"outputDir"`
	ArticlePath string    `json:"articlePath,omitempty"`
}

// Item is one unit of deferred, possibly dependent, work.
type Item struct {
	ID           uuid.UUID   `json:"id"`
	CreatedAt    time.Time   `json:"createdAt"`
	Status       Status      `json:"status"`
	Action       Action      `json:"action"`
	Dependencies []uuid.UUID `json:"dependencies,omitempty"`
	Error        string      `json:"error,omitempty"`
}

// NewItem builds an item with a fresh id. IDs are never reused.
func NewItem(status Status, action Action, deps ...uuid.UUID) Item {
	return Item{
		ID:           uuid.New(),
		CreatedAt:    time.Now().UTC(),
		Status:       status,
		Action:       action,
		Dependencies: deps,
	}
}

// Transition moves the item to a new status, enforcing the state machine.
func (i *Item) Transition(to Status) error {
	if err := ValidateTransition(i.Status, to); err != nil {
		return fmt.Errorf("item %s: %w", i.ID, err)
	}
	i.Status = to
	return nil
}
