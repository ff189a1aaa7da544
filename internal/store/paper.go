// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pdiddy/insight-engine/pkg/types"
)

const paperColumns = `id, title, journal, author_name, affiliation,
	website, address, email, created_at, updated_at`

// maxPaperResults caps author searches on either publication set.
const maxPaperResults = 20

// SearchInternalByAuthor returns internal publication records whose
// author name contains the query, case-insensitively.
func (s *Store) SearchInternalByAuthor(ctx context.Context, author string) ([]types.Paper, error) {
	return s.searchByAuthor(ctx, "papers_internal", author)
}

// SearchExternalByAuthor returns external reference records whose
// author name contains the query, case-insensitively.
func (s *Store) SearchExternalByAuthor(ctx context.Context, author string) ([]types.Paper, error) {
	return s.searchByAuthor(ctx, "papers_external", author)
}

func (s *Store) searchByAuthor(ctx context.Context, table, author string) ([]types.Paper, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+paperColumns+` FROM `+table+`
		 WHERE author_name LIKE '%' || ? || '%' COLLATE NOCASE
		 ORDER BY title ASC LIMIT ?`, author, maxPaperResults)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}
	defer rows.Close()

	var papers []types.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", table, err)
		}
		papers = append(papers, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s rows: %w", table, err)
	}
	return papers, nil
}

// UpdateInternalPaper overwrites the given fields of an internal
// record. Empty fields are left untouched; the title never changes.
func (s *Store) UpdateInternalPaper(ctx context.Context, id int64, p types.Paper) error {
	now := timeNow().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		`UPDATE papers_internal SET
			journal = CASE WHEN ? != '' THEN ? ELSE journal END,
			author_name = CASE WHEN ? != '' THEN ? ELSE author_name END,
			affiliation = CASE WHEN ? != '' THEN ? ELSE affiliation END,
			website = CASE WHEN ? != '' THEN ? ELSE website END,
			address = CASE WHEN ? != '' THEN ? ELSE address END,
			email = CASE WHEN ? != '' THEN ? ELSE email END,
			updated_at = ?
		 WHERE id = ?`,
		p.Journal, p.Journal,
		p.AuthorName, p.AuthorName,
		p.Affiliation, p.Affiliation,
		p.Website, p.Website,
		p.Address, p.Address,
		p.Email, p.Email,
		now, id)
	if err != nil {
		return fmt.Errorf("updating internal paper: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating internal paper: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("internal paper %d: %w", id, ErrNotFound)
	}
	return nil
}

// InsertInternalPaper adds a new internal record and returns its id.
func (s *Store) InsertInternalPaper(ctx context.Context, p types.Paper) (int64, error) {
	return s.insertPaper(ctx, "papers_internal", p)
}

// InsertExternalPaper adds a new external reference record and returns
// its id.
func (s *Store) InsertExternalPaper(ctx context.Context, p types.Paper) (int64, error) {
	return s.insertPaper(ctx, "papers_external", p)
}

func (s *Store) insertPaper(ctx context.Context, table string, p types.Paper) (int64, error) {
	now := timeNow().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO `+table+` (title, journal, author_name, affiliation,
			website, address, email, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Title, p.Journal, p.AuthorName, p.Affiliation,
		p.Website, p.Address, p.Email, now, now)
	if err != nil {
		return 0, fmt.Errorf("inserting into %s: %w", table, err)
	}
	return res.LastInsertId()
}

func scanPaper(rows *sql.Rows) (*types.Paper, error) {
	var p types.Paper
	var journal, author, affiliation, website, address, email sql.NullString
	var createdAt, updatedAt string

	err := rows.Scan(&p.ID, &p.Title, &journal, &author, &affiliation,
		&website, &address, &email, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	p.Journal = journal.String
	p.AuthorName = author.String
	p.Affiliation = affiliation.String
	p.Website = website.String
	p.Address = address.String
	p.Email = email.String
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}
