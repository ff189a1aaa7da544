// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chat

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/insight-engine/internal/docqa"
)

// DocQuerier answers free-form questions against the reference document
// corpus.
type DocQuerier interface {
	Query(ctx context.Context, question string, docIDs []string) (docqa.Answer, error)
}

// "what does the report say about dosing", "summarize the guidelines document"
var docsPattern = regexp.MustCompile(`(?i)` +
	`(?:document|pdf|report|guideline)s?.*(?:say|says|state|mention|describe)` +
	`|(?:what|summarize|explain|according).*(?:document|pdf|report|guideline)s?\b`)

type docQAHandler struct {
	docs DocQuerier
}

func (h *docQAHandler) Match(message string) (Params, bool) {
	if !docsPattern.MatchString(message) {
		return Params{}, false
	}
	return Params{Message: message}, true
}

func (h *docQAHandler) Handle(ctx context.Context, p Params) (Response, error) {
	answer, err := h.docs.Query(ctx, p.Message, nil)
	if err != nil {
		return Response{}, err
	}
	if answer.Text == "" {
		return Text("I couldn't find anything relevant in the reference documents."), nil
	}
	msg := answer.Text
	if len(answer.Sources) > 0 {
		msg += fmt.Sprintf("\n\n*Sources: %s*", strings.Join(answer.Sources, ", "))
	}
	return Text(msg), nil
}
