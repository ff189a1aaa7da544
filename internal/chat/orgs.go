// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chat

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/insight-engine/internal/resolve"
	"github.com/pdiddy/insight-engine/internal/store"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// OrgReader is the store surface the ranking handler needs.
type OrgReader interface {
	TopOrgsByGhostPatients(ctx context.Context, limit int) ([]types.Organization, error)
}

// AddressResolver runs the address resolution workflow.
type AddressResolver interface {
	ResolveAddress(ctx context.Context, name string) (*resolve.Result, error)
}

// WebsiteSearcher finds an organization's official site.
type WebsiteSearcher interface {
	LookupWebsite(ctx context.Context, name, state string) (string, error)
}

// "top 5 HCOs with highest ghost patients", "top orgs by ghost patients"
var topOrgsPattern = regexp.MustCompile(`(?i)top\s+(\d+)?\s*(?:hcos?|orgs?|organizations?).*(?:ghost|patients?)`)

type topOrgsHandler struct {
	orgs OrgReader
	cfg  types.ChatConfig
}

func (h *topOrgsHandler) Match(message string) (Params, bool) {
	m := topOrgsPattern.FindStringSubmatch(message)
	if m == nil {
		return Params{}, false
	}
	requested := 0
	if m[1] != "" {
		requested, _ = strconv.Atoi(m[1])
	}
	return Params{Limit: clampLimit(requested, h.cfg.DefaultLimit, h.cfg.MaxLimit)}, true
}

func (h *topOrgsHandler) Handle(ctx context.Context, p Params) (Response, error) {
	orgs, err := h.orgs.TopOrgsByGhostPatients(ctx, p.Limit)
	if err != nil {
		return Response{}, err
	}
	if len(orgs) == 0 {
		return Text("No organization data found."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Here are the top %d organizations with the highest ghost patients:\n", len(orgs))
	for i, org := range orgs {
		state := org.State
		if state == "" {
			state = "??"
		}
		fmt.Fprintf(&sb, "\n%d. **%s** (%s) - %d ghost patients (%.1f%% leakage rate)",
			i+1, clickableOrg(org.Name), state, org.GhostPatients, org.LeakageRate())
	}
	return Text(sb.String()), nil
}

// "What is the address of X?", "Where is X located?", "Find address for X"
var addressPattern = regexp.MustCompile(`(?i)` +
	`(?:what\s+is\s+the\s+)?(?:address|location)(?:\s+of|\s+for)?\s+(.+?)(?:\?|$)` +
	`|(?:where\s+is)\s+(.+?)\s+(?:located|address)(?:\?|$)` +
	`|(?:find|get|show)\s+(?:the\s+)?address\s+(?:of|for)\s+(.+?)(?:\?|$)`)

type addressHandler struct {
	resolver AddressResolver
	websites WebsiteSearcher
	log      *zap.SugaredLogger
}

func (h *addressHandler) Match(message string) (Params, bool) {
	if name, ok := tokenArg(message, lookupAddressToken); ok {
		return Params{Name: name}, true
	}
	m := addressPattern.FindStringSubmatch(message)
	if m == nil {
		return Params{}, false
	}
	name := cleanCapture(firstGroup(m))
	if name == "" {
		return Params{}, false
	}
	return Params{Name: name}, true
}

func (h *addressHandler) Handle(ctx context.Context, p Params) (Response, error) {
	result, err := h.resolver.ResolveAddress(ctx, p.Name)
	if errors.Is(err, store.ErrNotFound) {
		return Text(fmt.Sprintf(
			"I couldn't find an organization named **%s** in our records. "+
				"Please check the name and try again, or ask me to show you the top organizations.",
			p.Name)), nil
	}
	if err != nil {
		return Response{}, err
	}

	website := h.lookupWebsite(ctx, result.Org)
	return Text(h.render(result, website)), nil
}

func (h *addressHandler) lookupWebsite(ctx context.Context, org types.Organization) string {
	if h.websites == nil {
		return ""
	}
	website, err := h.websites.LookupWebsite(ctx, org.Name, org.State)
	if err != nil {
		h.log.Warnw("website lookup failed", "org", org.Name, "error", err)
		return ""
	}
	return website
}

func (h *addressHandler) render(result *resolve.Result, website string) string {
	org := result.Org

	if !org.HasAddress() {
		msg := fmt.Sprintf(
			"I couldn't find address information for **%s**. "+
				"The address may not be publicly available or the name might need verification.",
			org.Name)
		if website != "" {
			msg += fmt.Sprintf("\n\n🌐 **Website:** %s", website)
		}
		return msg
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Address for %s:**\n", org.Name)
	if org.Address != "" {
		fmt.Fprintf(&sb, "\n📍 %s", org.Address)
	}
	var parts []string
	for _, part := range []string{org.City, org.State, org.ZipCode} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) > 0 {
		fmt.Fprintf(&sb, "\n   %s", strings.Join(parts, ", "))
	}
	if website != "" {
		fmt.Fprintf(&sb, "\n\n🌐 **Website:** %s", website)
	}

	switch result.Source {
	case resolve.SourceRegistry, resolve.SourceWebSearch:
		sb.WriteString("\n\n*Address found via provider lookup and cached for future queries.*")
	default:
		sb.WriteString("\n\n*Address retrieved from database.*")
	}
	return sb.String()
}
