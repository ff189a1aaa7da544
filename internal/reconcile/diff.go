// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reconcile

import (
	"strings"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// FieldStatus classifies one field difference.
type FieldStatus string

const (
	// StatusMissing means the internal record has no value where the
	// external record has one.
	StatusMissing FieldStatus = "missing"
	// StatusDifferent means both records carry a value and they differ.
	StatusDifferent FieldStatus = "different"
)

// FieldDiff is one field-level difference between a matched pair of
// records.
type FieldDiff struct {
	Field    string
	Internal string
	External string
	Status   FieldStatus
}

// compareFields is the fixed set of fields a comparison inspects, in
// render order.
var compareFields = []string{
	"title", "journal", "author_name", "affiliation", "website", "address", "email",
}

func fieldValue(p types.Paper, field string) string {
	switch field {
	case "title":
		return p.Title
	case "journal":
		return p.Journal
	case "author_name":
		return p.AuthorName
	case "affiliation":
		return p.Affiliation
	case "website":
		return p.Website
	case "address":
		return p.Address
	case "email":
		return p.Email
	}
	return ""
}

// Compare diffs an internal record against its external counterpart.
// A field is "missing" when internal is empty and external is not, and
// "different" when both are non-empty and unequal. External fields with
// no value never produce a diff: the external set cannot erase internal
// data. Values are compared after trimming surrounding whitespace.
func Compare(internal, external types.Paper) []FieldDiff {
	var diffs []FieldDiff
	for _, field := range compareFields {
		iv := strings.TrimSpace(fieldValue(internal, field))
		ev := strings.TrimSpace(fieldValue(external, field))

		switch {
		case iv == "" && ev != "":
			diffs = append(diffs, FieldDiff{Field: field, Internal: iv, External: ev, Status: StatusMissing})
		case iv != ev && ev != "":
			diffs = append(diffs, FieldDiff{Field: field, Internal: iv, External: ev, Status: StatusDifferent})
		}
	}
	return diffs
}

// RecordComparison pairs one external record with its internal match,
// if any, and the field diffs between them.
type RecordComparison struct {
	External types.Paper
	// Internal is nil when no internal record shares the external
	// record's title.
	Internal *types.Paper
	Diffs    []FieldDiff
}

// Matched reports whether an internal counterpart exists.
func (c *RecordComparison) Matched() bool {
	return c.Internal != nil
}

// HasDifferences reports whether the pair needs a merge. An unmatched
// external record always counts as a difference.
func (c *RecordComparison) HasDifferences() bool {
	return !c.Matched() || len(c.Diffs) > 0
}
