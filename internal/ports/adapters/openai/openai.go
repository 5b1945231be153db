// Package openai talks to an OpenAI-compatible API for audio transcription
// and article generation.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vidtools/autocut/internal/ports"
)

const (
	defaultBaseURL            = "https://api.openai.com"
	defaultTranscriptionModel = "whisper-1"
	defaultChatModel          = "gpt-4o"
)

type Adapter struct {
	key       string
	baseURL   string
	chatModel string
	client    *http.Client
}

func New(apiKey, chatModel, baseURL string) *Adapter {
	if chatModel == "" {
		chatModel = defaultChatModel
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Adapter{
		key:       apiKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		chatModel: chatModel,
		client:    &http.Client{Timeout: 5 * time.Minute},
	}
}

// Transcribe uploads the media file to the transcription endpoint and
// returns the plain transcript text.
func (a *Adapter) Transcribe(ctx context.Context, mediaPath string) (string, error) {
	f, err := os.Open(mediaPath)
	if err != nil {
		return "", fmt.Errorf("open media: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(mediaPath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("read media: %w", err)
	}
	if err := mw.WriteField("model", defaultTranscriptionModel); err != nil {
		return "", err
	}
	if err := mw.WriteField("response_format", "text"); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/audio/transcriptions", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+a.key)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription API status %d: %s", resp.StatusCode, truncate(string(b), 512))
	}
	return strings.TrimSpace(string(b)), nil
}

// ExtractLinkRequests asks the chat model which resources mentioned in the
// transcript need links, one per line.
func (a *Adapter) ExtractLinkRequests(ctx context.Context, transcript string) ([]string, error) {
	prompt := "List every tool, library, article or site mentioned in this screen-recording transcript " +
		"that a written version should link to. Reply with one item per line and nothing else.\n\n" +
		transcript
	out, err := a.chat(ctx, prompt)
	if err != nil {
		return nil, err
	}
	var requests []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-* "))
		if line != "" {
			requests = append(requests, line)
		}
	}
	return requests, nil
}

// WriteArticle produces a written version of the video.
func (a *Adapter) WriteArticle(ctx context.Context, req ports.ArticleRequest) (string, error) {
	var sb strings.Builder
	sb.WriteString("Write a technical article based on this screen-recording transcript.\n")
	if req.Title != "" {
		fmt.Fprintf(&sb, "Title: %s\n", req.Title)
	}
	if req.Code != "" {
		sb.WriteString("\nThe code shown on screen:\n```\n" + req.Code + "\n```\n")
	}
	if len(req.Links) > 0 {
		sb.WriteString("\nLink these resources where relevant:\n")
		for _, l := range req.Links {
			sb.WriteString("- " + l + "\n")
		}
	}
	sb.WriteString("\nTranscript:\n" + req.Transcript)
	return a.chat(ctx, sb.String())
}

func (a *Adapter) chat(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model": a.chatModel,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+a.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	rb, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat API status %d: %s", resp.StatusCode, truncate(string(rb), 512))
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(rb, &out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat response has no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var (
	_ ports.Transcriber   = (*Adapter)(nil)
	_ ports.ArticleWriter = (*Adapter)(nil)
)
