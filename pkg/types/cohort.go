// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Outcome identifiers for patient cohort queries. These are the only
// outcomes the store tracks; free-text outcome phrases are normalized
// to one of these before querying.
const (
	OutcomeSurvival12m = "12-month-survival"
	OutcomeToxicity    = "toxicity"
	OutcomeRetreatment = "retreatment"
)

// Patient is a de-identified cohort member.
type Patient struct {
	ID          int64     `json:"id,omitempty" yaml:"-"`
	OrgName     string    `json:"org_name" yaml:"org_name"`
	State       string    `json:"state" yaml:"state"`
	Region      string    `json:"region,omitempty" yaml:"region,omitempty"`
	Sex         string    `json:"sex,omitempty" yaml:"sex,omitempty"`
	AgeYears    int       `json:"age_years" yaml:"age_years"`
	PriorLines  int       `json:"prior_lines,omitempty" yaml:"prior_lines,omitempty"`
	PayerType   string    `json:"payer_type,omitempty" yaml:"payer_type,omitempty"`
	TherapyDate time.Time `json:"therapy_date" yaml:"therapy_date"`

	// Outcome flags recorded at follow-up.
	Survived12m bool `json:"survived_12m" yaml:"survived_12m"`
	Toxicity    bool `json:"toxicity" yaml:"toxicity"`
	Retreated   bool `json:"retreated" yaml:"retreated"`
}

// PatientStats is an aggregate view of the whole cohort.
type PatientStats struct {
	Total         int     `json:"total"`
	AverageAge    float64 `json:"average_age"`
	MaleCount     int     `json:"male_count"`
	AvgPriorLines float64 `json:"avg_prior_lines"`
	Survived12m   int     `json:"survived_12m"`
	Toxicity      int     `json:"toxicity"`
	Retreated     int     `json:"retreated"`
	SurvivalRate  float64 `json:"survival_rate"`

	// Distributions keyed by payer type, region, and age range
	// (50-59, 60-69, 70-79, 80+).
	PayerDist  map[string]int `json:"payer_dist,omitempty"`
	RegionDist map[string]int `json:"region_dist,omitempty"`
	AgeBuckets map[string]int `json:"age_buckets,omitempty"`
}

// MalePercent returns the male share of the cohort, 0 when empty.
func (s PatientStats) MalePercent() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.MaleCount) / float64(s.Total) * 100
}

// ContractTemplate is an outcomes-based contract offered for therapy
// purchases. The rebate applies per patient whose named outcome fails
// within the time window.
type ContractTemplate struct {
	ID               int64   `json:"id" yaml:"id"`
	Name             string  `json:"name" yaml:"name"`
	Outcome          string  `json:"outcome" yaml:"outcome"`
	RebatePct        float64 `json:"rebate_pct" yaml:"rebate_pct"`
	TimeWindowMonths int     `json:"time_window_months" yaml:"time_window_months"`
	Description      string  `json:"description,omitempty" yaml:"description,omitempty"`
}

// Simulation is the rebate exposure of one contract template applied to
// the current cohort at a given per-course therapy price.
type Simulation struct {
	Template      ContractTemplate `json:"template"`
	TotalPatients int              `json:"total_patients"`
	FailureCount  int              `json:"failure_count"`
	FailureRate   float64          `json:"failure_rate"`
	TherapyPrice  float64          `json:"therapy_price"`
	TotalRebate   float64          `json:"total_rebate"`
	LowRebate     float64          `json:"low_rebate"`
	HighRebate    float64          `json:"high_rebate"`
	AvgRebate     float64          `json:"avg_rebate_per_patient"`
}
