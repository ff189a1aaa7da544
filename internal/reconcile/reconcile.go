// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reconcile keeps the internal publication set in sync with the
// external reference set. The workflow is a three-step action machine
// driven per request (search, fetch external, update internal); no state
// lives between requests. Records are linked across sets by exact title
// within an author search.
// See docs/ARCHITECTURE § Record Reconciliation.
package reconcile

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// Action selects a workflow step.
type Action string

const (
	ActionSearch         Action = "search"
	ActionFetchExternal  Action = "fetch-external"
	ActionUpdateInternal Action = "update-internal"
)

// PaperStore is the store surface the reconciler needs.
type PaperStore interface {
	SearchInternalByAuthor(ctx context.Context, author string) ([]types.Paper, error)
	SearchExternalByAuthor(ctx context.Context, author string) ([]types.Paper, error)
	UpdateInternalPaper(ctx context.Context, id int64, p types.Paper) error
	InsertInternalPaper(ctx context.Context, p types.Paper) (int64, error)
}

// Reconciler runs the reconciliation workflow against the store.
type Reconciler struct {
	Papers PaperStore
	Log    *zap.SugaredLogger
}

// Search queries the internal set by author.
func (r *Reconciler) Search(ctx context.Context, author string) ([]types.Paper, error) {
	return r.Papers.SearchInternalByAuthor(ctx, author)
}

// FetchResult is the outcome of a fetch-external step.
type FetchResult struct {
	Internal []types.Paper
	External []types.Paper
	// Comparisons holds one entry per external record, in external
	// order. Empty when either set is empty.
	Comparisons []RecordComparison
}

// HasDifferences reports whether any comparison needs a merge.
func (f *FetchResult) HasDifferences() bool {
	for i := range f.Comparisons {
		if f.Comparisons[i].HasDifferences() {
			return true
		}
	}
	return false
}

// FetchExternal queries both sets by author and diffs each external
// record against the internal record with the same title.
func (r *Reconciler) FetchExternal(ctx context.Context, author string) (*FetchResult, error) {
	internal, external, err := r.fetchBoth(ctx, author)
	if err != nil {
		return nil, err
	}

	result := &FetchResult{Internal: internal, External: external}
	if len(external) == 0 || len(internal) == 0 {
		return result, nil
	}

	byTitle := indexByTitle(internal)
	for _, ext := range external {
		cmp := RecordComparison{External: ext}
		if match, ok := byTitle[titleKey(ext.Title)]; ok {
			cmp.Internal = match
			cmp.Diffs = Compare(*match, ext)
		}
		result.Comparisons = append(result.Comparisons, cmp)
	}
	return result, nil
}

// UpdateResult is the outcome of an update-internal step.
type UpdateResult struct {
	Inserted int
	Updated  int
}

// UpdateInternal merges external data into the internal set. With no
// internal records, every external record is inserted as-is. Otherwise
// each external record with a matching internal title has its differing
// non-empty fields copied over; internal-only values are never erased.
func (r *Reconciler) UpdateInternal(ctx context.Context, author string) (*UpdateResult, error) {
	internal, external, err := r.fetchBoth(ctx, author)
	if err != nil {
		return nil, err
	}

	result := &UpdateResult{}

	if len(internal) == 0 {
		for _, ext := range external {
			ext.ID = 0
			if _, err := r.Papers.InsertInternalPaper(ctx, ext); err != nil {
				return nil, err
			}
			result.Inserted++
		}
		r.Log.Infow("imported external records", "author", author, "inserted", result.Inserted)
		return result, nil
	}

	byTitle := indexByTitle(internal)
	for _, ext := range external {
		match, ok := byTitle[titleKey(ext.Title)]
		if !ok {
			continue
		}
		diffs := Compare(*match, ext)
		if len(diffs) == 0 {
			continue
		}

		var patch types.Paper
		for _, d := range diffs {
			switch d.Field {
			case "journal":
				patch.Journal = d.External
			case "author_name":
				patch.AuthorName = d.External
			case "affiliation":
				patch.Affiliation = d.External
			case "website":
				patch.Website = d.External
			case "address":
				patch.Address = d.External
			case "email":
				patch.Email = d.External
			}
		}
		if err := r.Papers.UpdateInternalPaper(ctx, match.ID, patch); err != nil {
			return nil, err
		}
		result.Updated++
	}

	r.Log.Infow("merged external records", "author", author, "updated", result.Updated)
	return result, nil
}

func (r *Reconciler) fetchBoth(ctx context.Context, author string) (internal, external []types.Paper, err error) {
	internal, err = r.Papers.SearchInternalByAuthor(ctx, author)
	if err != nil {
		return nil, nil, err
	}
	external, err = r.Papers.SearchExternalByAuthor(ctx, author)
	if err != nil {
		return nil, nil, err
	}
	return internal, external, nil
}

func indexByTitle(papers []types.Paper) map[string]*types.Paper {
	byTitle := make(map[string]*types.Paper, len(papers))
	for i := range papers {
		byTitle[titleKey(papers[i].Title)] = &papers[i]
	}
	return byTitle
}

// titleKey normalizes a title for exact-match linkage. Only surrounding
// whitespace is forgiven; titles that differ in wording stay unmatched.
func titleKey(title string) string {
	return strings.TrimSpace(title)
}
