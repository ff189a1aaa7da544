// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docqa answers free-form questions against a local corpus of
// reference documents by prompting a Generative AI model with the
// question and the document text. See docs/ARCHITECTURE § Document Q&A.
package docqa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/insight-engine/internal/httputil"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// claudeAPIURL is the Claude API endpoint. Package-level var for test
// substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

const (
	// maxContextBytes caps the total document text included in one prompt.
	maxContextBytes = 100_000

	maxAnswerTokens = 1024
	requestTimeout  = 15 * time.Second

	// noAnswerSentinel is what the model is instructed to reply when the
	// documents do not cover the question. Callers render their own
	// not-found message for an empty answer.
	noAnswerSentinel = "NO_ANSWER"
)

// qaPromptTmpl instructs the model to answer only from the supplied
// documents and to emit the sentinel when they are silent.
var qaPromptTmpl = template.Must(template.New("docqa").Parse(`You are a document question-answering assistant for a healthcare analytics team. Answer the question using ONLY the reference documents below.

Rules:
- Base every statement on the documents. Do not use outside knowledge.
- Answer concisely in Markdown.
- If the documents do not contain the answer, reply with exactly ` + noAnswerSentinel + ` and nothing else.

Reference documents:
{{range .Docs}}
=== {{.Name}} ===
{{.Text}}
{{end}}
Question: {{.Question}}
`))

// Answer is the result of one document query.
type Answer struct {
	// Text is the model's answer in Markdown. Empty when the documents
	// did not cover the question.
	Text string

	// Sources lists the document file names supplied as context.
	Sources []string
}

// Service answers questions by prompting the Claude API with documents
// read from a local directory.
type Service struct {
	cfg    types.DocQAConfig
	client *http.Client
	log    *zap.SugaredLogger
}

// New builds a Service from configuration. The logger must not be nil.
func New(cfg types.DocQAConfig, log *zap.SugaredLogger) *Service {
	return &Service{
		cfg:    cfg,
		client: &http.Client{Timeout: requestTimeout},
		log:    log,
	}
}

type document struct {
	Name string
	Text string
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Query answers a question from the reference documents. When docIDs is
// non-empty only the named files are used; otherwise every Markdown and
// text file in the configured directory is loaded. An Answer with empty
// Text and a nil error means the documents do not cover the question.
func (s *Service) Query(ctx context.Context, question string, docIDs []string) (Answer, error) {
	docs, err := s.loadDocs(docIDs)
	if err != nil {
		return Answer{}, err
	}
	if len(docs) == 0 {
		s.log.Debugw("no reference documents available", "dir", s.cfg.DocsDir)
		return Answer{}, nil
	}

	prompt, err := renderPrompt(question, docs)
	if err != nil {
		return Answer{}, fmt.Errorf("rendering prompt: %w", err)
	}

	text, err := s.ask(ctx, prompt)
	if err != nil {
		return Answer{}, err
	}

	sources := make([]string, len(docs))
	for i, d := range docs {
		sources[i] = d.Name
	}

	text = strings.TrimSpace(text)
	if text == noAnswerSentinel {
		return Answer{Sources: sources}, nil
	}
	return Answer{Text: text, Sources: sources}, nil
}

// loadDocs reads the reference documents, truncating the combined text
// at maxContextBytes. Files are loaded in name order so prompts are
// deterministic.
func (s *Service) loadDocs(docIDs []string) ([]document, error) {
	entries, err := os.ReadDir(s.cfg.DocsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading docs directory %s: %w", s.cfg.DocsDir, err)
	}

	wanted := map[string]bool{}
	for _, id := range docIDs {
		wanted[id] = true
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".md" && ext != ".txt" {
			continue
		}
		if len(wanted) > 0 && !wanted[entry.Name()] {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var docs []document
	budget := maxContextBytes
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.cfg.DocsDir, name))
		if err != nil {
			return nil, fmt.Errorf("reading document %s: %w", name, err)
		}
		if len(data) > budget {
			data = data[:budget]
		}
		budget -= len(data)
		docs = append(docs, document{Name: name, Text: string(data)})
		if budget <= 0 {
			s.log.Warnw("document context truncated", "dir", s.cfg.DocsDir, "limit", maxContextBytes)
			break
		}
	}
	return docs, nil
}

// ask sends the prompt to the Claude API, retrying on HTTP 429.
func (s *Service) ask(ctx context.Context, prompt string) (string, error) {
	reqBody := claudeRequest{
		Model:     s.cfg.Model,
		MaxTokens: maxAnswerTokens,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.cfg.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := httputil.DoWithRetry(ctx, s.client, req, s.cfg.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in Claude API response")
}

func renderPrompt(question string, docs []document) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Question string
		Docs     []document
	}{Question: question, Docs: docs}
	if err := qaPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
