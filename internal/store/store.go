// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the analytics data behind the chat engine:
// provider organizations, the two surgeon publication sets, the patient
// cohort, and outcomes-based contract templates.
// See docs/ARCHITECTURE § Analytics Store.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// Store manages the analytics SQLite database.
type Store struct {
	db *sql.DB
}

// New opens or creates the analytics database at cfg.Path and creates
// the schema if it does not exist. Pass ":memory:" for an ephemeral
// database.
func New(cfg types.StoreConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = "insight.db"
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" {
		// Each pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orgs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			state TEXT,
			region TEXT,
			treated_patients INTEGER NOT NULL DEFAULT 0,
			ghost_patients INTEGER NOT NULL DEFAULT 0,
			address TEXT,
			city TEXT,
			zip_code TEXT,
			address_last_updated TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orgs_ghost ON orgs(ghost_patients)`,
		`CREATE TABLE IF NOT EXISTS papers_internal (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			journal TEXT,
			author_name TEXT,
			affiliation TEXT,
			website TEXT,
			address TEXT,
			email TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_internal_author ON papers_internal(author_name)`,
		`CREATE TABLE IF NOT EXISTS papers_external (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			journal TEXT,
			author_name TEXT,
			affiliation TEXT,
			website TEXT,
			address TEXT,
			email TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_external_author ON papers_external(author_name)`,
		`CREATE TABLE IF NOT EXISTS patients (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			org_name TEXT,
			state TEXT,
			region TEXT,
			sex TEXT,
			age_years INTEGER NOT NULL DEFAULT 0,
			prior_lines INTEGER NOT NULL DEFAULT 0,
			payer_type TEXT,
			therapy_date TEXT,
			survived_12m INTEGER NOT NULL DEFAULT 0,
			toxicity INTEGER NOT NULL DEFAULT 0,
			retreated INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS contract_templates (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			outcome TEXT NOT NULL,
			rebate_pct REAL NOT NULL,
			time_window_months INTEGER NOT NULL DEFAULT 0,
			description TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	return nil
}
