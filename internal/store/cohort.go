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

// PatientStats aggregates the whole cohort: totals, demographics,
// outcome counts, and the payer/region/age distributions.
func (s *Store) PatientStats(ctx context.Context) (types.PatientStats, error) {
	var stats types.PatientStats
	var avgAge, avgPrior sql.NullFloat64

	err := s.db.QueryRowContext(ctx,
		`SELECT count(*), avg(age_years), avg(prior_lines),
			coalesce(sum(CASE WHEN sex = 'M' THEN 1 ELSE 0 END), 0),
			coalesce(sum(survived_12m), 0),
			coalesce(sum(toxicity), 0),
			coalesce(sum(retreated), 0)
		 FROM patients`,
	).Scan(&stats.Total, &avgAge, &avgPrior, &stats.MaleCount,
		&stats.Survived12m, &stats.Toxicity, &stats.Retreated)
	if err != nil {
		return types.PatientStats{}, fmt.Errorf("querying patient stats: %w", err)
	}

	stats.AverageAge = avgAge.Float64
	stats.AvgPriorLines = avgPrior.Float64
	if stats.Total > 0 {
		stats.SurvivalRate = float64(stats.Survived12m) / float64(stats.Total) * 100
	}
	if stats.Total == 0 {
		return stats, nil
	}

	if stats.PayerDist, err = s.countBy(ctx, "payer_type"); err != nil {
		return types.PatientStats{}, err
	}
	if stats.RegionDist, err = s.countBy(ctx, "region"); err != nil {
		return types.PatientStats{}, err
	}
	if stats.AgeBuckets, err = s.ageBuckets(ctx); err != nil {
		return types.PatientStats{}, err
	}
	return stats, nil
}

// countBy groups patients on a column, skipping empty values.
func (s *Store) countBy(ctx context.Context, column string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+column+`, count(*) FROM patients
		 WHERE `+column+` IS NOT NULL AND `+column+` != ''
		 GROUP BY `+column)
	if err != nil {
		return nil, fmt.Errorf("grouping patients by %s: %w", column, err)
	}
	defer rows.Close()

	dist := map[string]int{}
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scanning %s group: %w", column, err)
		}
		dist[key] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s groups: %w", column, err)
	}
	return dist, nil
}

// ageBuckets counts patients per decade bracket. Patients under 50 fall
// outside every bracket, matching the reporting ranges.
func (s *Store) ageBuckets(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT CASE
			WHEN age_years >= 80 THEN '80+'
			WHEN age_years >= 70 THEN '70-79'
			WHEN age_years >= 60 THEN '60-69'
			WHEN age_years >= 50 THEN '50-59'
			ELSE ''
		 END AS bucket, count(*)
		 FROM patients GROUP BY bucket`)
	if err != nil {
		return nil, fmt.Errorf("bucketing patient ages: %w", err)
	}
	defer rows.Close()

	buckets := map[string]int{}
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scanning age bucket: %w", err)
		}
		if key != "" {
			buckets[key] = n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating age buckets: %w", err)
	}
	return buckets, nil
}

// CountPatients returns the cohort size.
func (s *Store) CountPatients(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM patients`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting patients: %w", err)
	}
	return n, nil
}

// CountPatientsWithOutcome returns how many patients hit the named
// outcome. For 12-month survival that is patients who survived; for
// toxicity and retreatment, patients with the flag set.
func (s *Store) CountPatientsWithOutcome(ctx context.Context, outcome string) (int, error) {
	var column string
	switch outcome {
	case types.OutcomeSurvival12m:
		column = "survived_12m"
	case types.OutcomeToxicity:
		column = "toxicity"
	case types.OutcomeRetreatment:
		column = "retreated"
	default:
		return 0, fmt.Errorf("unknown outcome %q", outcome)
	}

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM patients WHERE `+column+` = 1`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting %s patients: %w", outcome, err)
	}
	return n, nil
}

// InsertPatient adds a cohort member and returns its id.
func (s *Store) InsertPatient(ctx context.Context, p types.Patient) (int64, error) {
	therapyDate := ""
	if !p.TherapyDate.IsZero() {
		therapyDate = p.TherapyDate.UTC().Format(time.RFC3339)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO patients (org_name, state, region, sex, age_years,
			prior_lines, payer_type, therapy_date,
			survived_12m, toxicity, retreated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.OrgName, p.State, p.Region, p.Sex, p.AgeYears,
		p.PriorLines, p.PayerType, therapyDate,
		boolToInt(p.Survived12m), boolToInt(p.Toxicity), boolToInt(p.Retreated))
	if err != nil {
		return 0, fmt.Errorf("inserting patient: %w", err)
	}
	return res.LastInsertId()
}

// Templates returns all contract templates ordered by id.
func (s *Store) Templates(ctx context.Context) ([]types.ContractTemplate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, outcome, rebate_pct, time_window_months, coalesce(description, '')
		 FROM contract_templates ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	var templates []types.ContractTemplate
	for rows.Next() {
		var t types.ContractTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.Outcome, &t.RebatePct, &t.TimeWindowMonths, &t.Description); err != nil {
			return nil, fmt.Errorf("scanning template row: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating template rows: %w", err)
	}
	return templates, nil
}

// TemplateByID returns one contract template, or ErrNotFound.
func (s *Store) TemplateByID(ctx context.Context, id int64) (*types.ContractTemplate, error) {
	var t types.ContractTemplate
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, outcome, rebate_pct, time_window_months, coalesce(description, '')
		 FROM contract_templates WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &t.Outcome, &t.RebatePct, &t.TimeWindowMonths, &t.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("template %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying template %d: %w", id, err)
	}
	return &t, nil
}

// TemplateByOutcome returns the first template covering the named
// outcome, or ErrNotFound.
func (s *Store) TemplateByOutcome(ctx context.Context, outcome string) (*types.ContractTemplate, error) {
	var t types.ContractTemplate
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, outcome, rebate_pct, time_window_months, coalesce(description, '')
		 FROM contract_templates WHERE outcome = ? ORDER BY id ASC LIMIT 1`, outcome,
	).Scan(&t.ID, &t.Name, &t.Outcome, &t.RebatePct, &t.TimeWindowMonths, &t.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("template for outcome %q: %w", outcome, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying template for outcome %q: %w", outcome, err)
	}
	return &t, nil
}

// InsertTemplate adds a contract template and returns its id.
func (s *Store) InsertTemplate(ctx context.Context, t types.ContractTemplate) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO contract_templates (name, outcome, rebate_pct, time_window_months, description)
		 VALUES (?, ?, ?, ?, ?)`,
		t.Name, t.Outcome, t.RebatePct, t.TimeWindowMonths, t.Description)
	if err != nil {
		return 0, fmt.Errorf("inserting template %q: %w", t.Name, err)
	}
	return res.LastInsertId()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
