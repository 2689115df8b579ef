package resume

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

var (
	experienceRe = regexp.MustCompile(`(\d+)\s+years?`)
	calendarRe   = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
)

// Extractor turns resume text into Features. It is built once and can be
// shared between goroutines: Extract does not modify it.
type Extractor struct {
	skills    []string
	tiers     []EducationTier
	sentences *sentenceSplitter
	logger    *zap.Logger
}

type Option func(*Extractor)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithSkills replaces the skill vocabulary. Terms are lowercased and blanks
// are dropped.
func WithSkills(skills []string) Option {
	return func(e *Extractor) {
		e.skills = normalizeTerms(skills)
	}
}

// WithEducationTiers replaces the education keyword table.
func WithEducationTiers(tiers []EducationTier) Option {
	return func(e *Extractor) {
		e.tiers = make([]EducationTier, 0, len(tiers))
		for _, tier := range tiers {
			keyword := strings.ToLower(strings.TrimSpace(tier.Keyword))
			if keyword == "" {
				continue
			}
			e.tiers = append(e.tiers, EducationTier{Keyword: keyword, Score: tier.Score})
		}
	}
}

func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		skills:    DefaultSkills(),
		tiers:     DefaultEducationTiers(),
		sentences: newSentenceSplitter(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract never fails: text without any signal yields zero values.
func (e *Extractor) Extract(text string) *Features {
	lower := strings.ToLower(text)

	features := &Features{
		Skills:   e.detectSkills(lower),
		FullText: text,
	}

	features.Education, features.EducationLevelScore = e.detectEducation(text)

	var mentions int
	features.ExperienceYears, mentions = experienceYears(lower)
	if mentions > 0 {
		features.Experience = append(features.Experience,
			fmt.Sprintf("Years of experience mentioned: %d", features.ExperienceYears))
	}

	features.YearsMentioned = calendarYears(text)
	if len(features.YearsMentioned) > 0 {
		features.Experience = append(features.Experience,
			fmt.Sprintf("Years mentioned: %s", strings.Join(features.YearsMentioned, ", ")))
	}

	e.logger.Debug("resume features extracted",
		zap.Strings("skills", features.Skills),
		zap.Int("education_level_score", features.EducationLevelScore),
		zap.Int("experience_years", features.ExperienceYears),
		zap.Int("education_mentions", len(features.Education)),
		zap.Int("text_length", len(text)),
	)

	return features
}

func (e *Extractor) detectSkills(lower string) []string {
	found := make([]string, 0)
	for _, skill := range e.skills {
		if strings.Contains(lower, skill) {
			found = append(found, skill)
		}
	}
	sort.Strings(found)
	return found
}

func (e *Extractor) detectEducation(text string) ([]string, int) {
	var mentions []string
	level := TierNone

	for _, sentence := range e.sentences.Split(text) {
		lower := strings.ToLower(sentence)

		mentioned := strings.Contains(lower, universityKeyword)
		for _, tier := range e.tiers {
			if !strings.Contains(lower, tier.Keyword) {
				continue
			}
			mentioned = true
			if tier.Score > level {
				level = tier.Score
			}
		}

		if mentioned {
			mentions = append(mentions, sentence)
		}
	}

	return mentions, level
}

// experienceYears returns the largest "N years" value and how many such
// phrases the text has.
func experienceYears(lower string) (int, int) {
	years := 0
	matches := experienceRe.FindAllStringSubmatch(lower, -1)
	for _, match := range matches {
		n, err := strconv.Atoi(match[1])
		if err != nil {
			// does not fit into int, not a realistic experience value
			continue
		}
		if n > years {
			years = n
		}
	}
	return years, len(matches)
}

func calendarYears(text string) []string {
	matches := calendarRe.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	years := make([]string, 0, len(matches))
	for _, year := range matches {
		if _, ok := seen[year]; ok {
			continue
		}
		seen[year] = struct{}{}
		years = append(years, year)
	}
	sort.Strings(years)
	return years
}

func normalizeTerms(terms []string) []string {
	result := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		result = append(result, term)
	}
	return result
}
