// Package seed loads agreement type reference data from YAML.
package seed

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/unicoop/convenios-backend/internal/convenios/domain"
	"github.com/unicoop/convenios-backend/internal/platform/textnorm"
)

type file struct {
	Types []entry `yaml:"agreement_types"`
}

type entry struct {
	Name        string          `yaml:"name"`
	Slug        string          `yaml:"slug"`
	Description string          `yaml:"description"`
	Template    domain.Template `yaml:"template"`
}

// Upserter is satisfied by *repository.TypeRepository.
type Upserter interface {
	Upsert(ctx context.Context, t *domain.AgreementType) error
}

// Parse decodes a seed document. Missing slugs are derived from the name.
func Parse(data []byte) ([]domain.AgreementType, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	seen := make(map[string]bool, len(f.Types))
	out := make([]domain.AgreementType, 0, len(f.Types))
	for i, e := range f.Types {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("agreement type %d: name is required", i)
		}
		slug := e.Slug
		if slug == "" {
			slug = textnorm.Slugify(name)
		}
		if seen[slug] {
			return nil, fmt.Errorf("agreement type %q: duplicate slug %q", name, slug)
		}
		seen[slug] = true

		out = append(out, domain.AgreementType{
			Name:        name,
			Slug:        slug,
			Description: strings.TrimSpace(e.Description),
			Template:    e.Template,
		})
	}
	return out, nil
}

// LoadFile reads and parses the seed file at path
func LoadFile(path string) ([]domain.AgreementType, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Apply upserts every type and returns how many were written.
func Apply(ctx context.Context, repo Upserter, types []domain.AgreementType) (int, error) {
	for i := range types {
		if err := repo.Upsert(ctx, &types[i]); err != nil {
			return i, fmt.Errorf("upsert %s: %w", types[i].Slug, err)
		}
	}
	return len(types), nil
}
