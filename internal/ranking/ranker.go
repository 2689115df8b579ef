package ranking

import (
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-ranker/internal/logger"
	"github.com/spigell/job-ranker/internal/postings"
	"github.com/spigell/job-ranker/internal/resume"
)

const (
	textWeight  = 0.5
	skillWeight = 0.3

	educationBonus     = 10.0
	minEducationLevel  = resume.TierBachelor
	experienceBonus    = 10.0
	minExperienceYears = 2

	maxScore = 100.0

	highlyEligibleScore     = 75.0
	moderatelyEligibleScore = 50.0
)

// Ranker scores postings against resume features. It keeps no state between
// calls and is safe for concurrent use.
type Ranker struct {
	logger *zap.Logger
}

func New(log *zap.Logger) *Ranker {
	return &Ranker{logger: logger.WithFields(log, zap.String("component", "ranker"))}
}

// Rank returns annotated copies of jobs ordered by match score, highest
// first. Postings with equal scores keep their input order. The input
// postings are not modified; nil entries are skipped.
func (r *Ranker) Rank(features *resume.Features, jobs []*postings.Posting) []*postings.Posting {
	if features == nil {
		features = &resume.Features{}
	}

	ranked := make([]*postings.Posting, 0, len(jobs))
	for _, job := range jobs {
		if job == nil {
			continue
		}
		scored := *job
		ranked = append(ranked, &scored)
	}

	if len(ranked) == 0 {
		return ranked
	}

	corpus := make([]string, 0, len(ranked)+1)
	corpus = append(corpus, features.FullText)
	for _, job := range ranked {
		corpus = append(corpus, job.Description)
	}

	vectors := Vectorize(corpus)
	if vectors.Degenerate() {
		r.logger.Debug("empty vocabulary, every posting gets a zero score",
			zap.Int("postings", len(ranked)),
		)
		for _, job := range ranked {
			job.MatchScore = 0
			job.Eligibility = postings.InsufficientData
			job.Breakdown = &postings.Breakdown{}
		}
		return ranked
	}

	resumeVector := vectors.Vectors[0]
	for i, job := range ranked {
		breakdown := breakdownFor(features, job.Description, Cosine(resumeVector, vectors.Vectors[i+1]))

		job.Breakdown = breakdown
		job.MatchScore = composite(breakdown)
		job.Eligibility = EligibilityFor(job.MatchScore)

		r.logger.Debug("posting scored",
			zap.String(logger.FieldURL, job.URL),
			zap.Float64("text_score", breakdown.TextScore),
			zap.Float64("skill_score", breakdown.SkillScore),
			zap.Float64("match_score", job.MatchScore),
		)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MatchScore > ranked[j].MatchScore
	})

	return ranked
}

// EligibilityFor maps a match score to its eligibility bucket.
func EligibilityFor(score float64) postings.Eligibility {
	switch {
	case score >= highlyEligibleScore:
		return postings.HighlyEligible
	case score >= moderatelyEligibleScore:
		return postings.ModeratelyEligible
	case score > 0:
		return postings.LowEligibility
	default:
		return postings.InsufficientData
	}
}

func breakdownFor(features *resume.Features, description string, similarity float64) *postings.Breakdown {
	breakdown := &postings.Breakdown{
		TextScore: similarity * 100,
	}

	// Only the skills detected in the resume are looked up in the description.
	if len(features.Skills) > 0 {
		lower := strings.ToLower(description)
		for _, skill := range features.Skills {
			if strings.Contains(lower, skill) {
				breakdown.MatchedSkills = append(breakdown.MatchedSkills, skill)
			}
		}
		breakdown.SkillScore = float64(len(breakdown.MatchedSkills)) / float64(len(features.Skills)) * 100
	}

	if features.EducationLevelScore >= minEducationLevel {
		breakdown.EducationBonus = educationBonus
	}
	if features.ExperienceYears >= minExperienceYears {
		breakdown.ExperienceBonus = experienceBonus
	}

	return breakdown
}

func composite(b *postings.Breakdown) float64 {
	score := textWeight*b.TextScore + skillWeight*b.SkillScore + b.EducationBonus + b.ExperienceBonus
	score = math.Min(score, maxScore)
	return math.Round(score*100) / 100
}
