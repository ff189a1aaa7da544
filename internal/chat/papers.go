// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chat

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/insight-engine/internal/reconcile"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// "Find papers by Kahraman E", "publications by Nakamura H",
// "author Smith papers"
var papersPattern = regexp.MustCompile(`(?i)` +
	`(?:find|search|show|get|list|what).*(?:papers?|publications?).*(?:by|for|from|author)\s+(.+?)(?:\?|$)` +
	`|(?:papers?|publications?).*(?:by|from)\s+(.+?)(?:\?|$)` +
	`|(?:author|surgeon)\s+(.+?).*(?:papers?|publications?)`)

// Verbs the author capture tends to swallow.
var authorNoisePattern = regexp.MustCompile(`(?i)\b(publish|published|write|wrote|author)\b`)

// papersHandler drives the publication reconciliation workflow. The
// first contact is a natural-language author search; the follow-up
// steps arrive as action tokens the previous reply embedded.
type papersHandler struct {
	papers *reconcile.Reconciler
}

func (h *papersHandler) Match(message string) (Params, bool) {
	if author, ok := tokenArg(message, papersFetchToken); ok {
		return Params{Action: reconcile.ActionFetchExternal, Name: author}, true
	}
	if author, ok := tokenArg(message, papersUpdateToken); ok {
		return Params{Action: reconcile.ActionUpdateInternal, Name: author}, true
	}

	m := papersPattern.FindStringSubmatch(message)
	if m == nil {
		return Params{}, false
	}
	author := cleanCapture(firstGroup(m))
	author = strings.TrimSpace(authorNoisePattern.ReplaceAllString(author, ""))
	if author == "" {
		return Params{}, false
	}
	return Params{Action: reconcile.ActionSearch, Name: author}, true
}

func (h *papersHandler) Handle(ctx context.Context, p Params) (Response, error) {
	switch p.Action {
	case reconcile.ActionFetchExternal:
		return h.fetchExternal(ctx, p.Name)
	case reconcile.ActionUpdateInternal:
		return h.updateInternal(ctx, p.Name)
	default:
		return h.search(ctx, p.Name)
	}
}

func (h *papersHandler) search(ctx context.Context, author string) (Response, error) {
	papers, err := h.papers.Search(ctx, author)
	if err != nil {
		return Response{}, err
	}

	if len(papers) == 0 {
		return Text(fmt.Sprintf(
			"I couldn't find any publications for author **%s** in our internal records.\n\n"+
				"[Fetch external data for %s](%s%s)",
			author, author, papersFetchToken, author)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Publications by %s** (%d found):\n", author, len(papers))
	for i, paper := range papers {
		renderPaper(&sb, i+1, paper)
	}

	return Multi(
		sb.String(),
		fmt.Sprintf("[Fetch external data for %s](%s%s)", author, papersFetchToken, author),
	), nil
}

func (h *papersHandler) fetchExternal(ctx context.Context, author string) (Response, error) {
	result, err := h.papers.FetchExternal(ctx, author)
	if err != nil {
		return Response{}, err
	}

	if len(result.External) == 0 {
		return Text(fmt.Sprintf(
			"No external publications found for author **%s**. The internal records are all we have.",
			author)), nil
	}

	if len(result.Internal) == 0 {
		var sb strings.Builder
		fmt.Fprintf(&sb, "**External publications for %s** (%d found, none held internally):\n",
			author, len(result.External))
		for i, paper := range result.External {
			renderPaper(&sb, i+1, paper)
		}
		fmt.Fprintf(&sb, "\n[Import all into internal records](%s%s)", papersUpdateToken, author)
		return Text(sb.String()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Comparison with external records for %s:**\n", author)
	for _, cmp := range result.Comparisons {
		fmt.Fprintf(&sb, "\n**%s**\n", cmp.External.Title)
		if !cmp.Matched() {
			sb.WriteString("   - missing from internal records\n")
			continue
		}
		if len(cmp.Diffs) == 0 {
			sb.WriteString("   - in sync\n")
			continue
		}
		for _, d := range cmp.Diffs {
			switch d.Status {
			case reconcile.StatusMissing:
				fmt.Fprintf(&sb, "   - **%s** missing internally (external: %q)\n", d.Field, d.External)
			case reconcile.StatusDifferent:
				fmt.Fprintf(&sb, "   - **%s** differs (internal: %q, external: %q)\n", d.Field, d.Internal, d.External)
			}
		}
	}

	if !result.HasDifferences() {
		sb.WriteString("\nInternal records are fully in sync with the external set.")
		return Text(sb.String()), nil
	}

	return Multi(
		sb.String(),
		fmt.Sprintf("[Update internal records for %s](%s%s)", author, papersUpdateToken, author),
	), nil
}

func (h *papersHandler) updateInternal(ctx context.Context, author string) (Response, error) {
	result, err := h.papers.UpdateInternal(ctx, author)
	if err != nil {
		return Response{}, err
	}

	switch {
	case result.Inserted > 0:
		return Text(fmt.Sprintf(
			"Imported %d external publication(s) for **%s** into the internal records.",
			result.Inserted, author)), nil
	case result.Updated > 0:
		return Text(fmt.Sprintf(
			"Updated %d internal publication(s) for **%s** with external data.",
			result.Updated, author)), nil
	default:
		return Text(fmt.Sprintf(
			"Nothing to update for **%s**; internal records already match the external set.",
			author)), nil
	}
}

func renderPaper(sb *strings.Builder, n int, paper types.Paper) {
	fmt.Fprintf(sb, "\n%d. **%s**\n", n, paper.Title)
	fmt.Fprintf(sb, "   - **Author:** %s\n", paper.AuthorName)
	if paper.Journal != "" {
		fmt.Fprintf(sb, "   - **Journal:** %s\n", paper.Journal)
	}
	if paper.Affiliation != "" {
		fmt.Fprintf(sb, "   - **Affiliation:** %s\n", paper.Affiliation)
	}
	if paper.Website != "" {
		fmt.Fprintf(sb, "   - **Link:** [Affiliation Website](%s)\n", paper.Website)
	}
}
