// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/insight-engine/internal/store"
	"github.com/pdiddy/insight-engine/pkg/types"
)

func newReconciler(t *testing.T) (*Reconciler, *store.Store) {
	t.Helper()
	s, err := store.New(types.StoreConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return &Reconciler{Papers: s, Log: zap.NewNop().Sugar()}, s
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		internal types.Paper
		external types.Paper
		want     []FieldDiff
	}{
		{
			name:     "identical records produce no diff",
			internal: types.Paper{Title: "X", Journal: "JCO", Email: "a@b.com"},
			external: types.Paper{Title: "X", Journal: "JCO", Email: "a@b.com"},
			want:     nil,
		},
		{
			name:     "empty internal field is missing",
			internal: types.Paper{Title: "X", Email: ""},
			external: types.Paper{Title: "X", Email: "a@b.com"},
			want: []FieldDiff{
				{Field: "email", Internal: "", External: "a@b.com", Status: StatusMissing},
			},
		},
		{
			name:     "conflicting values are different",
			internal: types.Paper{Title: "X", Journal: "JCO"},
			external: types.Paper{Title: "X", Journal: "Nature Medicine"},
			want: []FieldDiff{
				{Field: "journal", Internal: "JCO", External: "Nature Medicine", Status: StatusDifferent},
			},
		},
		{
			name:     "empty external value never diffs",
			internal: types.Paper{Title: "X", Affiliation: "Mayo Clinic"},
			external: types.Paper{Title: "X", Affiliation: ""},
			want:     nil,
		},
		{
			name:     "whitespace-only differences are ignored",
			internal: types.Paper{Title: "X", Journal: " JCO "},
			external: types.Paper{Title: "X", Journal: "JCO"},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.internal, tt.external))
		})
	}
}

func TestFetchExternalDiffsMatchedTitles(t *testing.T) {
	r, s := newReconciler(t)
	ctx := context.Background()

	_, err := s.InsertInternalPaper(ctx, types.Paper{
		Title: "Outcomes in Gene Therapy", AuthorName: "Dr. Chen", Email: "",
	})
	require.NoError(t, err)
	_, err = s.InsertExternalPaper(ctx, types.Paper{
		Title: "Outcomes in Gene Therapy", AuthorName: "Dr. Chen", Email: "chen@example.org",
	})
	require.NoError(t, err)
	_, err = s.InsertExternalPaper(ctx, types.Paper{
		Title: "An Unrelated Study", AuthorName: "Dr. Chen",
	})
	require.NoError(t, err)

	got, err := r.FetchExternal(ctx, "Chen")
	require.NoError(t, err)
	require.Len(t, got.Comparisons, 2)
	assert.True(t, got.HasDifferences())

	// External order is title-sorted: "An Unrelated Study" first.
	unmatched := got.Comparisons[0]
	assert.False(t, unmatched.Matched())
	assert.True(t, unmatched.HasDifferences())

	matched := got.Comparisons[1]
	require.True(t, matched.Matched())
	require.Len(t, matched.Diffs, 1)
	assert.Equal(t, "email", matched.Diffs[0].Field)
	assert.Equal(t, StatusMissing, matched.Diffs[0].Status)
}

func TestFetchExternalEmptySets(t *testing.T) {
	r, s := newReconciler(t)
	ctx := context.Background()

	t.Run("nothing external", func(t *testing.T) {
		got, err := r.FetchExternal(ctx, "Nobody")
		require.NoError(t, err)
		assert.Empty(t, got.External)
		assert.Empty(t, got.Comparisons)
	})

	_, err := s.InsertExternalPaper(ctx, types.Paper{Title: "X", AuthorName: "Dr. Solo"})
	require.NoError(t, err)

	t.Run("empty internal skips comparison", func(t *testing.T) {
		got, err := r.FetchExternal(ctx, "Solo")
		require.NoError(t, err)
		assert.Empty(t, got.Internal)
		assert.Len(t, got.External, 1)
		assert.Empty(t, got.Comparisons)
	})
}

func TestUpdateInternalImportsWhenEmpty(t *testing.T) {
	r, s := newReconciler(t)
	ctx := context.Background()

	_, err := s.InsertExternalPaper(ctx, types.Paper{
		Title: "X", AuthorName: "Dr. Solo", Journal: "JCO",
	})
	require.NoError(t, err)

	got, err := r.UpdateInternal(ctx, "Solo")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Inserted)
	assert.Equal(t, 0, got.Updated)

	// A subsequent search now finds the record internally.
	papers, err := r.Search(ctx, "Solo")
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, "X", papers[0].Title)
	assert.Equal(t, "JCO", papers[0].Journal)
}

func TestUpdateInternalMergesDifferingFields(t *testing.T) {
	r, s := newReconciler(t)
	ctx := context.Background()

	id, err := s.InsertInternalPaper(ctx, types.Paper{
		Title: "X", AuthorName: "Dr. Chen", Journal: "JCO", Email: "",
	})
	require.NoError(t, err)
	_, err = s.InsertExternalPaper(ctx, types.Paper{
		Title: "X", AuthorName: "Dr. Chen", Email: "a@b.com",
	})
	require.NoError(t, err)

	got, err := r.UpdateInternal(ctx, "Chen")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Inserted)
	assert.Equal(t, 1, got.Updated)

	papers, err := r.Search(ctx, "Chen")
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, "a@b.com", papers[0].Email)
	// Internal-only values survive the merge.
	assert.Equal(t, "JCO", papers[0].Journal)
	assert.EqualValues(t, id, papers[0].ID)
}

func TestUpdateInternalNoMatchingTitles(t *testing.T) {
	r, s := newReconciler(t)
	ctx := context.Background()

	_, err := s.InsertInternalPaper(ctx, types.Paper{Title: "X", AuthorName: "Dr. Chen"})
	require.NoError(t, err)
	_, err = s.InsertExternalPaper(ctx, types.Paper{Title: "Y", AuthorName: "Dr. Chen"})
	require.NoError(t, err)

	got, err := r.UpdateInternal(ctx, "Chen")
	require.NoError(t, err)
	assert.Zero(t, got.Inserted)
	assert.Zero(t, got.Updated)
}
