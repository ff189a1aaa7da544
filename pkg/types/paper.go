// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Paper is a surgeon publication record. Two parallel sets share this
// schema: the internal set (mutable, authoritative) and the external
// reference set (read-only). Records are matched across sets by exact
// title within an author-filtered window; see internal/reconcile.
type Paper struct {
	// ID is the store row id. Zero for records not yet persisted; it is
	// never copied between sets.
	ID int64 `json:"id,omitempty" yaml:"-"`

	Title       string `json:"title" yaml:"title"`
	Journal     string `json:"journal" yaml:"journal"`
	AuthorName  string `json:"author_name" yaml:"author_name"`
	Affiliation string `json:"affiliation" yaml:"affiliation"`
	Website     string `json:"website,omitempty" yaml:"website,omitempty"`
	Address     string `json:"address,omitempty" yaml:"address,omitempty"`
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`

	CreatedAt time.Time `json:"created_at,omitzero" yaml:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitzero" yaml:"updated_at,omitempty"`
}
