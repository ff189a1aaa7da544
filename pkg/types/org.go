// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for insight-engine.
// See docs/ARCHITECTURE § Data Structures.
package types

import "time"

// Organization is a healthcare organization (HCO) tracked by the analytics
// store. Address fields are optional and filled in lazily by the address
// resolution workflow; AddressLastUpdated records when that last happened
// (zero means never).
type Organization struct {
	// ID is the store-assigned row identifier.
	ID int64 `json:"id" yaml:"-"`

	// Name is the organization display name.
	Name string `json:"name" yaml:"name"`

	// State is the 2-character US state code.
	State string `json:"state" yaml:"state"`

	// Region is the geographic region (West, South, Northeast, Midwest).
	Region string `json:"region" yaml:"region"`

	// TreatedPatients counts patients treated at this organization.
	TreatedPatients int `json:"treated_patients" yaml:"treated_patients"`

	// GhostPatients counts eligible but untreated patients.
	GhostPatients int `json:"ghost_patients" yaml:"ghost_patients"`

	Address string `json:"address,omitempty" yaml:"address,omitempty"`
	City    string `json:"city,omitempty" yaml:"city,omitempty"`
	ZipCode string `json:"zip_code,omitempty" yaml:"zip_code,omitempty"`

	AddressLastUpdated time.Time `json:"address_last_updated,omitzero" yaml:"address_last_updated,omitempty"`

	CreatedAt time.Time `json:"created_at,omitzero" yaml:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitzero" yaml:"updated_at,omitempty"`
}

// LeakageRate returns the percentage of eligible patients not treated:
// ghost / (ghost + treated) × 100. Zero when the organization has no
// patients at all.
func (o Organization) LeakageRate() float64 {
	total := o.GhostPatients + o.TreatedPatients
	if total == 0 {
		return 0
	}
	return float64(o.GhostPatients) / float64(total) * 100
}

// HasAddress reports whether any locating field is populated. A bare city
// counts: the resolution workflow accepts partial addresses.
func (o Organization) HasAddress() bool {
	return o.Address != "" || o.City != ""
}

// AddressFields is a partial address as produced by a lookup provider.
// Empty fields are left untouched on write-back.
type AddressFields struct {
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zip_code,omitempty"`
}

// Complete reports whether the fields meet the minimum bar for persisting:
// at least city and state present.
func (a AddressFields) Complete() bool {
	return a.City != "" && a.State != ""
}
