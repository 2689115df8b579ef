package filtering

import (
	"context"
	"errors"
	"strings"

	"github.com/spigell/job-ranker/internal/postings"
)

type companiesFilter struct {
	toggle
	companies map[string]struct{}
}

// NewCompanies creates a filter that removes postings by companies configured in the config.
func NewCompanies(companies []string) Filter {
	set := make(map[string]struct{}, len(companies))
	for _, company := range companies {
		set[normalizeCompany(company)] = struct{}{}
	}
	return &companiesFilter{companies: set}
}

func (f *companiesFilter) Name() string { return "companies" }

func (f *companiesFilter) Validate(*Config) error {
	if _, ok := f.companies[""]; ok {
		return errors.New("empty company name in the exclude list")
	}
	return nil
}

func (f *companiesFilter) Apply(_ context.Context, _ Deps, v *postings.Postings) (*postings.Postings, Step, error) {
	initial := v.Len()
	if len(f.companies) == 0 {
		return v, Step{Initial: initial, Dropped: 0, Left: v.Len()}, nil
	}

	excluded := v.Remove(func(p *postings.Posting) bool {
		_, ok := f.companies[normalizeCompany(p.Company)]
		return ok
	})

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

func normalizeCompany(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
