// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chat

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/insight-engine/internal/store"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// TemplateReader is the store surface the contract handlers need.
type TemplateReader interface {
	Templates(ctx context.Context) ([]types.ContractTemplate, error)
	TemplateByOutcome(ctx context.Context, outcome string) (*types.ContractTemplate, error)
}

// CohortReader is the store surface the cohort handlers need.
type CohortReader interface {
	PatientStats(ctx context.Context) (types.PatientStats, error)
	CountPatients(ctx context.Context) (int, error)
	CountPatientsWithOutcome(ctx context.Context, outcome string) (int, error)
}

// defaultTherapyPrice is the per-course price a simulation assumes when
// the message names none.
const defaultTherapyPrice = 150000.0

// "simulate 12-month-survival contract", "expected rebate for toxicity"
var simulationPattern = regexp.MustCompile(`(?i)(?:simulate|rebate|expected|calculate).*(?:12-month|survival|toxicity|retreatment)`)

// "show contract templates", "list all contracts"
var templatesPattern = regexp.MustCompile(`(?i)(?:show|list|what|get).*(?:contract|template)s?`)

type simulationHandler struct {
	templates TemplateReader
	cohort    CohortReader
}

func (h *simulationHandler) Match(message string) (Params, bool) {
	if !simulationPattern.MatchString(message) {
		return Params{}, false
	}
	lower := strings.ToLower(message)
	outcome := types.OutcomeSurvival12m
	switch {
	case strings.Contains(lower, "12-month") || strings.Contains(lower, "survival"):
		outcome = types.OutcomeSurvival12m
	case strings.Contains(lower, "toxicity"):
		outcome = types.OutcomeToxicity
	case strings.Contains(lower, "retreatment"):
		outcome = types.OutcomeRetreatment
	}
	return Params{Outcome: outcome}, true
}

func (h *simulationHandler) Handle(ctx context.Context, p Params) (Response, error) {
	template, err := h.templates.TemplateByOutcome(ctx, p.Outcome)
	if errors.Is(err, store.ErrNotFound) {
		return Text(fmt.Sprintf("No contract template covers the %s outcome.", p.Outcome)), nil
	}
	if err != nil {
		return Response{}, err
	}

	sim, err := h.simulate(ctx, *template, defaultTherapyPrice)
	if err != nil {
		return Response{}, err
	}
	if sim == nil {
		return Text("Unable to simulate the contract: no patient data is available."), nil
	}
	return Text(renderSimulation(*sim)), nil
}

// simulate computes rebate exposure: every patient whose outcome fails
// within the window earns the rebate percentage of the therapy price.
// Returns nil when the cohort is empty.
func (h *simulationHandler) simulate(ctx context.Context, template types.ContractTemplate, price float64) (*types.Simulation, error) {
	total, err := h.cohort.CountPatients(ctx)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, nil
	}

	hit, err := h.cohort.CountPatientsWithOutcome(ctx, template.Outcome)
	if err != nil {
		return nil, err
	}

	// For survival the tracked flag counts successes; for toxicity and
	// retreatment it counts failures directly.
	failures := hit
	if template.Outcome == types.OutcomeSurvival12m {
		failures = total - hit
	}

	rebatePerPatient := price * template.RebatePct / 100
	totalRebate := float64(failures) * rebatePerPatient

	return &types.Simulation{
		Template:      template,
		TotalPatients: total,
		FailureCount:  failures,
		FailureRate:   float64(failures) / float64(total) * 100,
		TherapyPrice:  price,
		TotalRebate:   totalRebate,
		LowRebate:     totalRebate * 0.8,
		HighRebate:    totalRebate * 1.2,
		AvgRebate:     totalRebate / float64(total),
	}, nil
}

func renderSimulation(sim types.Simulation) string {
	successes := sim.TotalPatients - sim.FailureCount
	var sb strings.Builder
	fmt.Fprintf(&sb, "**Contract Simulation: %s**\n", sim.Template.Name)
	fmt.Fprintf(&sb, "\n**Outcome Type:** %s", sim.Template.Outcome)
	fmt.Fprintf(&sb, "\n**Patient Cohort:** %d patients\n", sim.TotalPatients)
	sb.WriteString("\n**Outcome Results:**")
	fmt.Fprintf(&sb, "\n- Failures: %d patients (%.1f%%)", sim.FailureCount, sim.FailureRate)
	fmt.Fprintf(&sb, "\n- Successes: %d patients (%.1f%%)\n", successes, 100-sim.FailureRate)
	sb.WriteString("\n**Financial Exposure:**")
	fmt.Fprintf(&sb, "\n- Expected rebate: $%.2f", sim.TotalRebate)
	fmt.Fprintf(&sb, "\n- Low estimate (-20%%): $%.2f", sim.LowRebate)
	fmt.Fprintf(&sb, "\n- High estimate (+20%%): $%.2f", sim.HighRebate)
	fmt.Fprintf(&sb, "\n- Average per patient: $%.2f", sim.AvgRebate)
	return sb.String()
}

type templatesHandler struct {
	templates TemplateReader
}

func (h *templatesHandler) Match(message string) (Params, bool) {
	if !templatesPattern.MatchString(message) {
		return Params{}, false
	}
	return Params{}, true
}

func (h *templatesHandler) Handle(ctx context.Context, p Params) (Response, error) {
	templates, err := h.templates.Templates(ctx)
	if err != nil {
		return Response{}, err
	}
	if len(templates) == 0 {
		return Text("No contract templates found."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Here are the available contract templates (%d total):\n", len(templates))
	for i, t := range templates {
		fmt.Fprintf(&sb, "\n%d. **%s**\n", i+1, t.Name)
		fmt.Fprintf(&sb, "   - Outcome: %s\n", t.Outcome)
		fmt.Fprintf(&sb, "   - Default rebate: %.0f%%\n", t.RebatePct)
		fmt.Fprintf(&sb, "   - Time window: %d months", t.TimeWindowMonths)
		if i < len(templates)-1 {
			sb.WriteString("\n")
		}
	}
	return Text(sb.String()), nil
}
