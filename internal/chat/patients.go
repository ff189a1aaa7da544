// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chat

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// "how many patients had toxicity", "retreatment rate"
var outcomesPattern = regexp.MustCompile(`(?i)` +
	`(?:toxicity|retreatment|event|outcome).*(?:patient|rate|count)` +
	`|(?:how many|what percent).*(?:toxicity|retreatment|event)`)

// "patient statistics", "what's the average patient age",
// "payer distribution"
var statsPattern = regexp.MustCompile(`(?i)` +
	`(?:patient|cohort|demographic).*(?:stat|age|payer|distribution|info)` +
	`|(?:average|avg).*(?:age|patient)` +
	`|payer.*distribution`)

type outcomesHandler struct {
	cohort CohortReader
}

func (h *outcomesHandler) Match(message string) (Params, bool) {
	if !outcomesPattern.MatchString(message) {
		return Params{}, false
	}
	return Params{}, true
}

func (h *outcomesHandler) Handle(ctx context.Context, p Params) (Response, error) {
	stats, err := h.cohort.PatientStats(ctx)
	if err != nil {
		return Response{}, err
	}
	if stats.Total == 0 {
		return Text("No patient data available."), nil
	}

	pct := func(n int) float64 { return float64(n) / float64(stats.Total) * 100 }
	events := stats.Total - stats.Survived12m

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Patient Outcome Statistics** (%d total patients)\n", stats.Total)
	sb.WriteString("\n**Clinical Outcomes:**")
	fmt.Fprintf(&sb, "\n- **Toxicity Events:** %d patients (%.1f%%)", stats.Toxicity, pct(stats.Toxicity))
	fmt.Fprintf(&sb, "\n- **12-Month Events:** %d patients (%.1f%%)", events, pct(events))
	fmt.Fprintf(&sb, "\n- **Retreatment:** %d patients (%.1f%%)", stats.Retreated, pct(stats.Retreated))
	return Text(sb.String()), nil
}

type statsHandler struct {
	cohort CohortReader
}

func (h *statsHandler) Match(message string) (Params, bool) {
	if !statsPattern.MatchString(message) {
		return Params{}, false
	}
	return Params{}, true
}

func (h *statsHandler) Handle(ctx context.Context, p Params) (Response, error) {
	stats, err := h.cohort.PatientStats(ctx)
	if err != nil {
		return Response{}, err
	}
	if stats.Total == 0 {
		return Text("No patient data available."), nil
	}

	pct := func(n int) float64 { return float64(n) / float64(stats.Total) * 100 }

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Patient Cohort Statistics** (%d total patients)\n", stats.Total)
	sb.WriteString("\n**Demographics:**")
	fmt.Fprintf(&sb, "\n- Average age: %.0f years", stats.AverageAge)
	fmt.Fprintf(&sb, "\n- Gender: %.0f%% Male, %.0f%% Female", stats.MalePercent(), 100-stats.MalePercent())
	fmt.Fprintf(&sb, "\n- Average prior treatment lines: %.1f", stats.AvgPriorLines)
	fmt.Fprintf(&sb, "\n- 12-month survival rate: %.1f%%\n", stats.SurvivalRate)

	renderDist(&sb, "Payer Distribution", stats.PayerDist, pct)
	renderDist(&sb, "Regional Distribution", stats.RegionDist, pct)

	if len(stats.AgeBuckets) > 0 {
		sb.WriteString("\n**Age Distribution:**")
		for _, bucket := range []string{"50-59", "60-69", "70-79", "80+"} {
			n := stats.AgeBuckets[bucket]
			fmt.Fprintf(&sb, "\n- %s: %d patients (%.1f%%)", bucket, n, pct(n))
		}
	}
	return Text(strings.TrimRight(sb.String(), "\n")), nil
}

// renderDist prints one distribution section, largest group first.
func renderDist(sb *strings.Builder, title string, dist map[string]int, pct func(int) float64) {
	if len(dist) == 0 {
		return
	}
	keys := make([]string, 0, len(dist))
	for k := range dist {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if dist[keys[i]] != dist[keys[j]] {
			return dist[keys[i]] > dist[keys[j]]
		}
		return keys[i] < keys[j]
	})

	fmt.Fprintf(sb, "\n**%s:**", title)
	for _, k := range keys {
		fmt.Fprintf(sb, "\n- %s: %d patients (%.1f%%)", k, dist[k], pct(dist[k]))
	}
	sb.WriteString("\n")
}
