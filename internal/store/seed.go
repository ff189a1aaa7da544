// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// SeedFile is the YAML layout accepted by Seed.
type SeedFile struct {
	Orgs           []types.Organization     `yaml:"orgs"`
	InternalPapers []types.Paper            `yaml:"internal_papers"`
	ExternalPapers []types.Paper            `yaml:"external_papers"`
	Patients       []types.Patient          `yaml:"patients"`
	Templates      []types.ContractTemplate `yaml:"contract_templates"`
}

// Seed loads fixture data from a YAML file into the store, reporting
// per-section counts to w. Existing rows are kept; duplicate unique
// names fail the load.
func (s *Store) Seed(ctx context.Context, path string, w io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parsing seed file %s: %w", path, err)
	}

	for _, org := range seed.Orgs {
		if _, err := s.InsertOrg(ctx, org); err != nil {
			return err
		}
	}
	for _, p := range seed.InternalPapers {
		if _, err := s.InsertInternalPaper(ctx, p); err != nil {
			return err
		}
	}
	for _, p := range seed.ExternalPapers {
		if _, err := s.InsertExternalPaper(ctx, p); err != nil {
			return err
		}
	}
	for _, patient := range seed.Patients {
		if _, err := s.InsertPatient(ctx, patient); err != nil {
			return err
		}
	}
	for _, t := range seed.Templates {
		if _, err := s.InsertTemplate(ctx, t); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "seeded: %d orgs, %d internal papers, %d external papers, %d patients, %d templates\n",
		len(seed.Orgs), len(seed.InternalPapers), len(seed.ExternalPapers),
		len(seed.Patients), len(seed.Templates))
	return nil
}
