// Package orchestrator advances the persisted job queue: it selects items
// whose dependencies are satisfied, runs the matching action and writes the
// outcome back to the store.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vidtools/autocut/internal/ports"
	"github.com/vidtools/autocut/internal/queue"
	"github.com/vidtools/autocut/internal/usecase"
)

var (
	ErrDependencyNotFound     = errors.New("dependency item not found")
	ErrDependencyNotCompleted = errors.New("dependency item not completed")
)

// VideoEditor is the slice of the editing pipeline the processor drives.
type VideoEditor interface {
	AutoEdit(ctx context.Context, in usecase.AutoEditInput) (usecase.Result, error)
	FromClips(ctx context.Context, in usecase.FromClipsInput) (usecase.Result, error)
	Concat(ctx context.Context, inputs []string, output string) error
}

type Processor struct {
	store  *queue.Store
	editor VideoEditor
	writer ports.ArticleWriter
	log    zerolog.Logger
}

func NewProcessor(store *queue.Store, editor VideoEditor, writer ports.ArticleWriter, log zerolog.Logger) *Processor {
	return &Processor{store: store, editor: editor, writer: writer, log: log}
}

// ProcessReady runs every ready item, in append order, repeating the scan
// until a pass makes no progress so that items unblocked by a completion in
// the same call also run. Item failures are recorded on the item, not
// returned; only store-level failures abort the loop.
func (p *Processor) ProcessReady(ctx context.Context) error {
	for {
		state, err := p.store.GetQueueState(ctx)
		if err != nil {
			return err
		}

		processed := 0
		for _, it := range state.Queue {
			if !isReady(it, state) {
				continue
			}
			if err := p.processItem(ctx, it); err != nil {
				return err
			}
			processed++
		}
		if processed == 0 {
			return nil
		}
	}
}

// isReady reports whether the item can run: ready-to-run status and every
// dependency completed. An item with unmet dependencies must never start.
func isReady(it queue.Item, state queue.State) bool {
	if it.Status != queue.StatusReadyToRun {
		return false
	}
	for _, dep := range it.Dependencies {
		d, ok := state.Find(dep)
		if !ok || d.Status != queue.StatusCompleted {
			return false
		}
	}
	return true
}

func (p *Processor) processItem(ctx context.Context, it queue.Item) error {
	if err := it.Transition(queue.StatusRunning); err != nil {
		return err
	}
	if err := p.store.UpdateQueueItem(ctx, it); err != nil {
		return err
	}
	p.log.Info().Str("item", it.ID.String()).Str("kind", string(it.Action.Kind)).Msg("processing queue item")

	state, err := p.store.GetQueueState(ctx)
	if err != nil {
		return err
	}

	followUp, runErr := p.run(ctx, &it, state)
	if runErr != nil {
		p.log.Error().Err(runErr).Str("item", it.ID.String()).Msg("queue item failed")
		it.Error = runErr.Error()
		if err := it.Transition(queue.StatusFailed); err != nil {
			return err
		}
		return p.store.UpdateQueueItem(ctx, it)
	}

	it.Error = ""
	if err := it.Transition(queue.StatusCompleted); err != nil {
		return err
	}
	// The item update and any dependent-item updates land in one
	// read-modify-write cycle.
	return p.store.Update(ctx, func(s *queue.State) error {
		replaced := false
		for i := range s.Queue {
			if s.Queue[i].ID == it.ID {
				s.Queue[i] = it
				replaced = true
				break
			}
		}
		if !replaced {
			return fmt.Errorf("complete item %s: %w", it.ID, queue.ErrItemNotFound)
		}
		if followUp != nil {
			return followUp(s)
		}
		return nil
	})
}

// run executes one item's action. It may mutate the item's payload (to
// record temporary data) and may return a follow-up mutation applied to the
// queue in the same write as the completion, e.g. filling a dependent
// links-request.
func (p *Processor) run(ctx context.Context, it *queue.Item, state queue.State) (func(*queue.State) error, error) {
	a := it.Action
	switch a.Kind {
	case queue.KindCreateAutoEditedVideo:
		pl := a.CreateAutoEditedVideo
		res, err := p.editor.AutoEdit(ctx, usecase.AutoEditInput{
			InputPath:    pl.InputPath,
			OutputPath:   pl.OutputPath,
			KeepMaybeBad: pl.KeepMaybeBad,
			Subtitles:    pl.Subtitles,
			Transcribe:   pl.Transcribe,
		})
		if err != nil {
			return nil, err
		}
		pl.TemporaryData = &queue.VideoArtifacts{OutputPath: res.OutputPath, Transcript: res.Transcript}
		return nil, nil

	case queue.KindCreateVideoFromClips:
		pl := a.CreateVideoFromClips
		res, err := p.editor.FromClips(ctx, usecase.FromClipsInput{
			InputPath:  pl.InputPath,
			OutputPath: pl.OutputPath,
			Clips:      pl.Clips,
			Subtitles:  pl.Subtitles,
			Transcribe: pl.Transcribe,
		})
		if err != nil {
			return nil, err
		}
		pl.TemporaryData = &queue.VideoArtifacts{OutputPath: res.OutputPath, Transcript: res.Transcript}
		return nil, nil

	case queue.KindConcatenateVideos:
		pl := a.ConcatenateVideos
		return nil, p.editor.Concat(ctx, pl.InputPaths, pl.OutputPath)

	case queue.KindAnalyzeTranscript:
		return p.runAnalyzeTranscript(ctx, a.AnalyzeTranscript, state)

	case queue.KindCodeRequest:
		if a.CodeRequest.Code == "" {
			return nil, errors.New("code request ran without code being supplied")
		}
		return nil, nil

	case queue.KindLinksRequest:
		// Links were supplied by the operator before the item became
		// runnable; completing just makes them visible to dependents.
		return nil, nil

	case queue.KindGenerateArticle:
		return nil, p.runGenerateArticle(ctx, a.GenerateArticle, state)

	default:
		return nil, fmt.Errorf("unknown action kind %q", a.Kind)
	}
}

func (p *Processor) runAnalyzeTranscript(ctx context.Context, pl *queue.AnalyzeTranscript, state queue.State) (func(*queue.State) error, error) {
	dep, err := completedDependency(state, pl.VideoItemID)
	if err != nil {
		return nil, err
	}
	transcript, err := videoTranscript(dep)
	if err != nil {
		return nil, err
	}
	requests, err := p.writer.ExtractLinkRequests(ctx, transcript)
	if err != nil {
		return nil, err
	}
	linksID := pl.LinksRequestID
	return func(s *queue.State) error {
		for i := range s.Queue {
			if s.Queue[i].ID != linksID {
				continue
			}
			lr := s.Queue[i].Action.LinksRequest
			if lr == nil {
				return fmt.Errorf("item %s is not a links request", linksID)
			}
			lr.Requests = requests
			return nil
		}
		return fmt.Errorf("fill links request %s: %w", linksID, queue.ErrItemNotFound)
	}, nil
}

func (p *Processor) runGenerateArticle(ctx context.Context, pl *queue.GenerateArticle, state queue.State) error {
	video, err := completedDependency(state, pl.VideoItemID)
	if err != nil {
		return err
	}
	code, err := completedDependency(state, pl.CodeItemID)
	if err != nil {
		return err
	}
	links, err := completedDependency(state, pl.LinksItemID)
	if err != nil {
		return err
	}
	transcript, err := videoTranscript(video)
	if err != nil {
		return err
	}
	if code.Action.CodeRequest == nil || links.Action.LinksRequest == nil {
		return errors.New("article dependencies have unexpected action kinds")
	}

	article, err := p.writer.WriteArticle(ctx, ports.ArticleRequest{
		Transcript: transcript,
		Code:       code.Action.CodeRequest.Code,
		Links:      links.Action.LinksRequest.Links,
		Title:      pl.Title,
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(pl.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create article dir: %w", err)
	}
	name := articleFileName(pl.Title)
	path := filepath.Join(pl.OutputDir, name)
	if err := os.WriteFile(path, []byte(article), 0o644); err != nil {
		return fmt.Errorf("write article: %w", err)
	}
	pl.ArticlePath = path
	return nil
}

func articleFileName(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, slug)
	slug = strings.Trim(strings.Join(strings.FieldsFunc(slug, func(r rune) bool { return r == '-' }), "-"), "-")
	if slug == "" {
		slug = "article"
	}
	return slug + ".md"
}

func completedDependency(state queue.State, id uuid.UUID) (queue.Item, error) {
	it, ok := state.Find(id)
	if !ok {
		return queue.Item{}, fmt.Errorf("%w: %s", ErrDependencyNotFound, id)
	}
	if it.Status != queue.StatusCompleted {
		return queue.Item{}, fmt.Errorf("%w: %s is %s", ErrDependencyNotCompleted, id, it.Status)
	}
	return it, nil
}

// videoTranscript reads the transcript a completed video step left in its
// temporary data.
func videoTranscript(it queue.Item) (string, error) {
	var data *queue.VideoArtifacts
	switch it.Action.Kind {
	case queue.KindCreateAutoEditedVideo:
		data = it.Action.CreateAutoEditedVideo.TemporaryData
	case queue.KindCreateVideoFromClips:
		data = it.Action.CreateVideoFromClips.TemporaryData
	default:
		return "", fmt.Errorf("item %s (%s) does not produce a transcript", it.ID, it.Action.Kind)
	}
	if data == nil || data.Transcript == "" {
		return "", fmt.Errorf("item %s completed without a transcript", it.ID)
	}
	return data.Transcript, nil
}

// Retry requeues a failed item and clears its recorded error. Only failed
// items can be retried; nothing requeues automatically.
func (p *Processor) Retry(ctx context.Context, id uuid.UUID) error {
	return p.store.Update(ctx, func(s *queue.State) error {
		for i := range s.Queue {
			if s.Queue[i].ID != id {
				continue
			}
			if s.Queue[i].Status != queue.StatusFailed {
				return fmt.Errorf("retry item %s: status is %q, not %q", id, s.Queue[i].Status, queue.StatusFailed)
			}
			if err := s.Queue[i].Transition(queue.StatusReadyToRun); err != nil {
				return err
			}
			s.Queue[i].Error = ""
			return nil
		}
		return fmt.Errorf("retry item %s: %w", id, queue.ErrItemNotFound)
	})
}

// UserInput carries what the operator supplies to unblock a
// requires-user-input item.
type UserInput struct {
	Code  string
	Links []string
}

// ProvideInput fills the payload field the item was waiting for and moves it
// to ready-to-run.
func (p *Processor) ProvideInput(ctx context.Context, id uuid.UUID, input UserInput) error {
	return p.store.Update(ctx, func(s *queue.State) error {
		for i := range s.Queue {
			if s.Queue[i].ID != id {
				continue
			}
			it := &s.Queue[i]
			if it.Status != queue.StatusRequiresUserInput {
				return fmt.Errorf("item %s: status is %q, not %q", id, it.Status, queue.StatusRequiresUserInput)
			}
			switch it.Action.Kind {
			case queue.KindCodeRequest:
				if input.Code == "" {
					return fmt.Errorf("item %s: code is required", id)
				}
				it.Action.CodeRequest.Code = input.Code
			case queue.KindLinksRequest:
				if len(input.Links) == 0 {
					return fmt.Errorf("item %s: at least one link is required", id)
				}
				it.Action.LinksRequest.Links = input.Links
			default:
				return fmt.Errorf("item %s (%s) does not take user input", id, it.Action.Kind)
			}
			return it.Transition(queue.StatusReadyToRun)
		}
		return fmt.Errorf("provide input for %s: %w", id, queue.ErrItemNotFound)
	})
}
