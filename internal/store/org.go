// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// timeNow is overridden in tests.
var timeNow = time.Now

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("not found")

const orgColumns = `id, name, state, region, treated_patients, ghost_patients,
	address, city, zip_code, address_last_updated, created_at, updated_at`

// TopOrgsByGhostPatients returns the limit organizations with the most
// ghost patients, highest first. Ties break by name for a stable order.
func (s *Store) TopOrgsByGhostPatients(ctx context.Context, limit int) ([]types.Organization, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orgColumns+` FROM orgs
		 ORDER BY ghost_patients DESC, name ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying top orgs: %w", err)
	}
	defer rows.Close()

	return scanOrgs(rows)
}

// FindOrgByName looks up an organization by name, preferring an exact
// case-insensitive match and falling back to a substring match. Returns
// ErrNotFound when nothing matches.
func (s *Store) FindOrgByName(ctx context.Context, name string) (*types.Organization, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orgColumns+` FROM orgs WHERE name = ? COLLATE NOCASE`, name)
	org, err := scanOrg(row)
	if err == nil {
		return org, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("querying org %q: %w", name, err)
	}

	row = s.db.QueryRowContext(ctx,
		`SELECT `+orgColumns+` FROM orgs
		 WHERE name LIKE '%' || ? || '%' COLLATE NOCASE
		 ORDER BY length(name) ASC LIMIT 1`, name)
	org, err = scanOrg(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("org %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying org %q: %w", name, err)
	}
	return org, nil
}

// UpdateOrgAddress writes the resolved address fields for the named
// organization and stamps address_last_updated. Empty fields are left
// untouched so a partial result never erases known data.
func (s *Store) UpdateOrgAddress(ctx context.Context, id int64, fields types.AddressFields) error {
	now := timeNow().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		`UPDATE orgs SET
			address = CASE WHEN ? != '' THEN ? ELSE address END,
			city = CASE WHEN ? != '' THEN ? ELSE city END,
			state = CASE WHEN ? != '' THEN ? ELSE state END,
			zip_code = CASE WHEN ? != '' THEN ? ELSE zip_code END,
			address_last_updated = ?,
			updated_at = ?
		 WHERE id = ?`,
		fields.Address, fields.Address,
		fields.City, fields.City,
		fields.State, fields.State,
		fields.ZipCode, fields.ZipCode,
		now, now, id)
	if err != nil {
		return fmt.Errorf("updating org address: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating org address: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("org %d: %w", id, ErrNotFound)
	}
	return nil
}

// InsertOrg adds a new organization and returns its id.
func (s *Store) InsertOrg(ctx context.Context, org types.Organization) (int64, error) {
	now := timeNow().UTC().Format(time.RFC3339)
	lastUpdated := ""
	if !org.AddressLastUpdated.IsZero() {
		lastUpdated = org.AddressLastUpdated.UTC().Format(time.RFC3339)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO orgs (name, state, region, treated_patients, ghost_patients,
			address, city, zip_code, address_last_updated, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		org.Name, org.State, org.Region, org.TreatedPatients, org.GhostPatients,
		org.Address, org.City, org.ZipCode, lastUpdated, now, now)
	if err != nil {
		return 0, fmt.Errorf("inserting org %q: %w", org.Name, err)
	}
	return res.LastInsertId()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrg(row rowScanner) (*types.Organization, error) {
	var org types.Organization
	var state, region, address, city, zip, lastUpdated sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&org.ID, &org.Name, &state, &region,
		&org.TreatedPatients, &org.GhostPatients,
		&address, &city, &zip, &lastUpdated, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	org.State = state.String
	org.Region = region.String
	org.Address = address.String
	org.City = city.String
	org.ZipCode = zip.String
	org.AddressLastUpdated = parseTime(lastUpdated.String)
	org.CreatedAt = parseTime(createdAt)
	org.UpdatedAt = parseTime(updatedAt)
	return &org, nil
}

func scanOrgs(rows *sql.Rows) ([]types.Organization, error) {
	var orgs []types.Organization
	for rows.Next() {
		org, err := scanOrg(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning org row: %w", err)
		}
		orgs = append(orgs, *org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating org rows: %w", err)
	}
	return orgs, nil
}

// parseTime parses an RFC3339 timestamp, returning the zero time for
// empty or malformed input.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
