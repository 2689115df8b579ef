package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/job-ranker/internal/postings"
)

type dedupFilter struct {
	toggle
}

// NewDedup creates a filter that drops postings with an already seen URL.
func NewDedup() Filter {
	return &dedupFilter{}
}

func (f *dedupFilter) Name() string { return "dedup" }

func (f *dedupFilter) Validate(*Config) error { return nil }

func (f *dedupFilter) Apply(_ context.Context, deps Deps, v *postings.Postings) (*postings.Postings, Step, error) {
	initial := v.Len()
	dropped := v.Dedup()
	if len(dropped) > 0 && deps.Logger != nil {
		deps.Logger.Debug("dropping duplicated postings", zap.Strings("urls", dropped))
	}

	return v, Step{Initial: initial, Dropped: initial - v.Len(), Left: v.Len()}, nil
}
