package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-ranker/internal/postings"
)

type skillsFilter struct {
	toggle
}

// NewSkills creates a filter that keeps only postings mentioning at least one
// of the resume skills in the title or description.
func NewSkills() Filter {
	return &skillsFilter{}
}

func (f *skillsFilter) Name() string { return "skills" }

func (f *skillsFilter) Validate(*Config) error { return nil }

func (f *skillsFilter) Apply(_ context.Context, deps Deps, v *postings.Postings) (*postings.Postings, Step, error) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	initial := v.Len()
	if deps.Resume == nil || len(deps.Resume.Skills) == 0 {
		log.Info("resume has no known skills, keeping all postings")
		return v, Step{Initial: initial, Left: initial}, nil
	}

	skills := make([]string, 0, len(deps.Resume.Skills))
	for _, skill := range deps.Resume.Skills {
		skills = append(skills, strings.ToLower(skill))
	}

	excluded := v.Remove(func(p *postings.Posting) bool {
		text := strings.ToLower(p.Title + " " + p.Description)
		for _, skill := range skills {
			if strings.Contains(text, skill) {
				return false
			}
		}
		return true
	})
	if len(excluded) > 0 {
		log.Debug("excluding postings without resume skills", zap.Strings("urls", excluded))
	}

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

func (f *skillsFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
