// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve keeps organization addresses current. A lookup serves
// from the store while the stored address is fresh, then falls through
// a provider chain: the structured registry first, web search second.
// Successful lookups are written back to the store.
// See docs/ARCHITECTURE § Address Resolution.
package resolve

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// addressMaxAge is how long a stored address stays fresh. An address
// exactly this old is stale and triggers a provider lookup.
const addressMaxAge = 90 * 24 * time.Hour

// Source identifies where a resolved address came from.
type Source string

const (
	SourceCache     Source = "cache"
	SourceRegistry  Source = "registry"
	SourceWebSearch Source = "websearch"
	SourceNone      Source = "none"
)

// OrgStore is the store surface the resolver needs.
type OrgStore interface {
	FindOrgByName(ctx context.Context, name string) (*types.Organization, error)
	UpdateOrgAddress(ctx context.Context, id int64, fields types.AddressFields) error
}

// AddressRegistry is a structured address provider.
type AddressRegistry interface {
	Lookup(ctx context.Context, name, state string) (*types.AddressFields, error)
}

// AddressSearcher is a web search address provider.
type AddressSearcher interface {
	LookupAddress(ctx context.Context, name, state string) (*types.AddressFields, error)
}

// Resolver resolves organization addresses through the provider chain.
// Providers are tried once each, never retried; a provider error is
// logged and the chain moves on.
type Resolver struct {
	Orgs     OrgStore
	Registry AddressRegistry
	Search   AddressSearcher
	Log      *zap.SugaredLogger

	// Now is the clock, overridable in tests. Nil means time.Now.
	Now func() time.Time
}

// Result is the outcome of one resolution.
type Result struct {
	Org    types.Organization
	Fields types.AddressFields
	Source Source
}

// Resolved reports whether any source produced an address.
func (r *Result) Resolved() bool {
	return r.Source != SourceNone
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// ResolveAddress looks up the named organization's address. A stored
// address younger than addressMaxAge is returned as-is. Otherwise the
// provider chain runs and a usable result is written back, refreshing
// the stored timestamp. When every provider comes up empty the stored
// record is returned unchanged with Source set to SourceNone.
func (r *Resolver) ResolveAddress(ctx context.Context, name string) (*Result, error) {
	org, err := r.Orgs.FindOrgByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if r.isFresh(org) {
		r.Log.Debugw("address served from store", "org", org.Name)
		return &Result{
			Org: *org,
			Fields: types.AddressFields{
				Address: org.Address,
				City:    org.City,
				State:   org.State,
				ZipCode: org.ZipCode,
			},
			Source: SourceCache,
		}, nil
	}

	if r.Registry != nil {
		fields, err := r.Registry.Lookup(ctx, org.Name, org.State)
		if err != nil {
			r.Log.Warnw("registry lookup failed", "org", org.Name, "error", err)
		} else if fields != nil {
			return r.writeBack(ctx, org, *fields, SourceRegistry)
		}
	}

	if r.Search != nil {
		fields, err := r.Search.LookupAddress(ctx, org.Name, org.State)
		if err != nil {
			r.Log.Warnw("web search lookup failed", "org", org.Name, "error", err)
		} else if fields != nil {
			return r.writeBack(ctx, org, *fields, SourceWebSearch)
		}
	}

	r.Log.Infow("no provider produced an address", "org", org.Name)
	return &Result{Org: *org, Source: SourceNone}, nil
}

// isFresh reports whether the stored address can be served without a
// provider lookup. An organization with no address on file, or one
// never stamped, is never fresh.
func (r *Resolver) isFresh(org *types.Organization) bool {
	if !org.HasAddress() || org.AddressLastUpdated.IsZero() {
		return false
	}
	return r.now().Sub(org.AddressLastUpdated) < addressMaxAge
}

func (r *Resolver) writeBack(ctx context.Context, org *types.Organization, fields types.AddressFields, source Source) (*Result, error) {
	if err := r.Orgs.UpdateOrgAddress(ctx, org.ID, fields); err != nil {
		return nil, err
	}
	r.Log.Infow("address resolved", "org", org.Name, "source", source, "city", fields.City, "state", fields.State)

	updated := *org
	if fields.Address != "" {
		updated.Address = fields.Address
	}
	if fields.City != "" {
		updated.City = fields.City
	}
	if fields.State != "" {
		updated.State = fields.State
	}
	if fields.ZipCode != "" {
		updated.ZipCode = fields.ZipCode
	}
	updated.AddressLastUpdated = r.now()

	return &Result{Org: updated, Fields: fields, Source: source}, nil
}
