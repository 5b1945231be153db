package orchestrator

import (
	"github.com/vidtools/autocut/internal/queue"
)

// ArticleWorkflowInput describes one recording that should end up as both a
// finished video and a written article.
type ArticleWorkflowInput struct {
	InputPath    string
	OutputPath   string
	ArticleDir   string
	Title        string
	Subtitles    bool
	KeepMaybeBad bool
}

// NewArticleWorkflow builds the item DAG for the full production flow:
//
//	create video ─┬─> analyze transcript ──> links request ─┐
//	              │                                         ├─> article
//	              └────────────── code request ─────────────┘
//
// Items needing a human start as requires-user-input; the rest start
// ready-to-run and are gated purely by their dependencies. Order matters:
// every dependency precedes its dependents in the returned batch.
func NewArticleWorkflow(in ArticleWorkflowInput) []queue.Item {
	video := queue.NewItem(queue.StatusReadyToRun, queue.Action{
		Kind: queue.KindCreateAutoEditedVideo,
		CreateAutoEditedVideo: &queue.CreateAutoEditedVideo{
			InputPath:    in.InputPath,
			OutputPath:   in.OutputPath,
			Subtitles:    in.Subtitles,
			KeepMaybeBad: in.KeepMaybeBad,
			Transcribe:   true,
		},
	})

	code := queue.NewItem(queue.StatusRequiresUserInput, queue.Action{
		Kind:        queue.KindCodeRequest,
		CodeRequest: &queue.CodeRequest{},
	})

	// The links request is a placeholder until the analyze step fills in
	// what links are actually needed.
	links := queue.NewItem(queue.StatusRequiresUserInput, queue.Action{
		Kind:         queue.KindLinksRequest,
		LinksRequest: &queue.LinksRequest{},
	})

	analyze := queue.NewItem(queue.StatusReadyToRun, queue.Action{
		Kind: queue.KindAnalyzeTranscript,
		AnalyzeTranscript: &queue.AnalyzeTranscript{
			VideoItemID:    video.ID,
			LinksRequestID: links.ID,
		},
	}, video.ID)

	article := queue.NewItem(queue.StatusReadyToRun, queue.Action{
		Kind: queue.KindGenerateArticle,
		GenerateArticle: &queue.GenerateArticle{
			VideoItemID: video.ID,
			CodeItemID:  code.ID,
			LinksItemID: links.ID,
			Title:       in.Title,
			OutputDir:   in.ArticleDir,
		},
	}, video.ID, code.ID, links.ID)

	return []queue.Item{video, code, links, analyze, article}
}

// NewVideoItem enqueues a standalone auto-edit without the article steps.
func NewVideoItem(in ArticleWorkflowInput) queue.Item {
	return queue.NewItem(queue.StatusReadyToRun, queue.Action{
		Kind: queue.KindCreateAutoEditedVideo,
		CreateAutoEditedVideo: &queue.CreateAutoEditedVideo{
			InputPath:    in.InputPath,
			OutputPath:   in.OutputPath,
			Subtitles:    in.Subtitles,
			KeepMaybeBad: in.KeepMaybeBad,
		},
	})
}

// NewConcatItem enqueues a plain concatenation of already-rendered videos.
func NewConcatItem(inputs []string, output string) queue.Item {
	return queue.NewItem(queue.StatusReadyToRun, queue.Action{
		Kind: queue.KindConcatenateVideos,
		ConcatenateVideos: &queue.ConcatenateVideos{
			InputPaths: inputs,
			OutputPath: output,
		},
	})
}
