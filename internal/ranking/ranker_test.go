package ranking

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/job-ranker/internal/postings"
	"github.com/spigell/job-ranker/internal/resume"
)

const scenarioResume = "Experienced python developer, 3 years, bachelor degree in computer science, skilled in sql and machine learning."

func scenarioJobs() []*postings.Posting {
	return []*postings.Posting{
		{Title: "Python Developer", URL: "https://jobs/1", Description: "Looking for a python developer with sql and machine learning skills"},
		{Title: "Mystery", URL: "https://jobs/2", Description: ""},
	}
}

func TestRankScenario(t *testing.T) {
	features := resume.NewExtractor().Extract(scenarioResume)
	require.Equal(t, []string{"machine learning", "python", "sql"}, features.Skills)

	ranked := New(zap.NewNop()).Rank(features, scenarioJobs())
	require.Len(t, ranked, 2)

	first, second := ranked[0], ranked[1]
	assert.Equal(t, "https://jobs/1", first.URL)
	assert.InDelta(t, 70.79, first.MatchScore, 1e-9)
	assert.Equal(t, postings.ModeratelyEligible, first.Eligibility)
	assert.InDelta(t, 41.573135635, first.Breakdown.TextScore, 1e-6)
	assert.InDelta(t, 100, first.Breakdown.SkillScore, 1e-9)
	assert.Equal(t, []string{"machine learning", "python", "sql"}, first.Breakdown.MatchedSkills)

	assert.Equal(t, "https://jobs/2", second.URL)
	assert.Equal(t, 0.0, second.Breakdown.TextScore)
	assert.Equal(t, 0.0, second.Breakdown.SkillScore)
	assert.Equal(t, 20.0, second.MatchScore)
	assert.Equal(t, postings.LowEligibility, second.Eligibility)
	assert.LessOrEqual(t, second.MatchScore, first.MatchScore)
}

func TestRankDoesNotModifyInput(t *testing.T) {
	jobs := scenarioJobs()
	features := resume.NewExtractor().Extract(scenarioResume)

	ranked := New(nil).Rank(features, jobs)

	assert.Equal(t, 0.0, jobs[0].MatchScore)
	assert.Empty(t, jobs[0].Eligibility)
	assert.NotSame(t, jobs[0], ranked[0])
}

func TestRankIsDeterministic(t *testing.T) {
	features := resume.NewExtractor().Extract(scenarioResume + " Also java, react and data analysis.")
	jobs := []*postings.Posting{
		{URL: "a", Description: "java developer for enterprise systems"},
		{URL: "b", Description: "react frontend with javascript"},
		{URL: "c", Description: "data analysis with python and sql"},
		{URL: "d", Description: "python python python"},
		{URL: "e", Description: "java developer for enterprise systems"},
	}

	ranker := New(nil)
	first := ranker.Rank(features, jobs)
	for i := 0; i < 20; i++ {
		again := ranker.Rank(features, jobs)
		require.Len(t, again, len(first))
		for j := range first {
			assert.Equal(t, first[j].URL, again[j].URL)
			assert.Equal(t, first[j].MatchScore, again[j].MatchScore)
		}
	}
}

func TestRankScoreBounds(t *testing.T) {
	text := "python java c++ machine learning data analysis nlp sql javascript flask django react. PhD. 30 years."
	features := resume.NewExtractor().Extract(text)
	jobs := []*postings.Posting{
		{URL: "same", Description: text},
		{URL: "none", Description: "gardening"},
		{URL: "empty"},
	}

	for _, job := range New(nil).Rank(features, jobs) {
		assert.GreaterOrEqual(t, job.MatchScore, 0.0)
		assert.LessOrEqual(t, job.MatchScore, 100.0)
	}

	ranked := New(nil).Rank(features, jobs)
	assert.Equal(t, "same", ranked[0].URL)
	assert.Equal(t, 100.0, ranked[0].MatchScore, "capped")
	assert.Equal(t, postings.HighlyEligible, ranked[0].Eligibility)
}

func TestRankEmptyJobList(t *testing.T) {
	ranked := New(nil).Rank(resume.NewExtractor().Extract(scenarioResume), nil)
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)

	ranked = New(nil).Rank(nil, []*postings.Posting{nil})
	assert.Empty(t, ranked)
}

func TestRankDegenerateCorpus(t *testing.T) {
	jobs := []*postings.Posting{
		{URL: "a"},
		{URL: "b", Description: ""},
		{URL: "c", Description: "   "},
	}

	tests := []struct {
		name     string
		features *resume.Features
	}{
		{name: "empty resume", features: resume.NewExtractor().Extract("")},
		{name: "nil resume", features: nil},
		{name: "stop words only", features: resume.NewExtractor().Extract("the and of a")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranked := New(nil).Rank(tt.features, jobs)
			require.Len(t, ranked, 3)
			for i, job := range ranked {
				assert.Equal(t, jobs[i].URL, job.URL, "original order is kept")
				assert.Equal(t, 0.0, job.MatchScore)
				assert.Equal(t, postings.InsufficientData, job.Eligibility)
			}
		})
	}
}

func TestRankDegenerateCorpusIgnoresBonuses(t *testing.T) {
	// bonuses alone do not rescue an empty vocabulary
	features := &resume.Features{EducationLevelScore: 4, ExperienceYears: 10}
	ranked := New(nil).Rank(features, []*postings.Posting{{URL: "a"}, {URL: "b"}})

	for _, job := range ranked {
		assert.Equal(t, 0.0, job.MatchScore)
		assert.Equal(t, postings.InsufficientData, job.Eligibility)
	}
}

func TestRankStableForEqualScores(t *testing.T) {
	features := resume.NewExtractor().Extract("python developer")
	var jobs []*postings.Posting
	for i := 0; i < 12; i++ {
		jobs = append(jobs, &postings.Posting{URL: fmt.Sprintf("job-%02d", i), Description: "unrelated text"})
	}
	jobs = append(jobs, &postings.Posting{URL: "winner", Description: "python developer"})

	ranked := New(nil).Rank(features, jobs)

	require.Len(t, ranked, 13)
	assert.Equal(t, "winner", ranked[0].URL)
	for i := 1; i < len(ranked); i++ {
		assert.Equal(t, fmt.Sprintf("job-%02d", i-1), ranked[i].URL)
	}
}

func TestRankToleratesDuplicates(t *testing.T) {
	features := resume.NewExtractor().Extract(scenarioResume)
	job := &postings.Posting{URL: "dup", Description: "python and sql"}

	ranked := New(nil).Rank(features, []*postings.Posting{job, job})

	require.Len(t, ranked, 2)
	assert.Equal(t, ranked[0].MatchScore, ranked[1].MatchScore)
	assert.Greater(t, ranked[0].MatchScore, 0.0)
}

func TestRankWithoutResumeSkills(t *testing.T) {
	features := resume.NewExtractor().Extract("Gardener who loves roses and tulips")
	ranked := New(nil).Rank(features, []*postings.Posting{{URL: "a", Description: "roses gardener wanted"}})

	require.Len(t, ranked, 1)
	assert.Equal(t, 0.0, ranked[0].Breakdown.SkillScore)
	assert.Empty(t, ranked[0].Breakdown.MatchedSkills)
	assert.Greater(t, ranked[0].Breakdown.TextScore, 0.0)
}

func TestRankBonuses(t *testing.T) {
	jobs := []*postings.Posting{{URL: "a", Description: "gardening"}}

	tests := []struct {
		name   string
		text   string
		expect float64
	}{
		{name: "no bonus", text: "python. associate degree. 1 year", expect: 0},
		{name: "education bonus", text: "python. bachelor degree. 1 year", expect: 10},
		{name: "experience bonus", text: "python. 2 years", expect: 10},
		{name: "both bonuses", text: "python. master degree. 7 years", expect: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranked := New(nil).Rank(resume.NewExtractor().Extract(tt.text), jobs)
			require.Len(t, ranked, 1)
			assert.Equal(t, tt.expect, ranked[0].MatchScore)
		})
	}
}

func TestEligibilityFor(t *testing.T) {
	tests := []struct {
		score float64
		want  postings.Eligibility
	}{
		{score: 100, want: postings.HighlyEligible},
		{score: 75.00, want: postings.HighlyEligible},
		{score: 74.99, want: postings.ModeratelyEligible},
		{score: 50.00, want: postings.ModeratelyEligible},
		{score: 49.99, want: postings.LowEligibility},
		{score: 0.01, want: postings.LowEligibility},
		{score: 0.00, want: postings.InsufficientData},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.2f", tt.score), func(t *testing.T) {
			assert.Equal(t, tt.want, EligibilityFor(tt.score))
		})
	}
}

func TestCompositeRounding(t *testing.T) {
	score := composite(&postings.Breakdown{TextScore: 33.333333, SkillScore: 66.666666})
	assert.Equal(t, 36.67, score)

	score = composite(&postings.Breakdown{TextScore: 100, SkillScore: 100, EducationBonus: 10, ExperienceBonus: 10})
	assert.Equal(t, 100.0, score)
}

func TestRankEligibilityBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		features *resume.Features
		job      string
		score    float64
		want     postings.Eligibility
	}{
		{
			// "c" is too short to be a token, so both texts reduce to "python".
			name:     "highly eligible at 75",
			features: &resume.Features{FullText: "c++ python", Skills: []string{"c++", "python"}, EducationLevelScore: resume.TierBachelor},
			job:      "python",
			score:    75,
			want:     postings.HighlyEligible,
		},
		{
			name:     "moderately eligible at 50",
			features: &resume.Features{FullText: "c++", Skills: []string{"c++"}, EducationLevelScore: resume.TierMaster, ExperienceYears: 3},
			job:      "c++ developer",
			score:    50,
			want:     postings.ModeratelyEligible,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranked := New(nil).Rank(tt.features, []*postings.Posting{{URL: "a", Description: tt.job}})
			require.Len(t, ranked, 1)
			assert.Equal(t, tt.score, ranked[0].MatchScore)
			assert.Equal(t, tt.want, ranked[0].Eligibility)
		})
	}
}

func TestEligibilityUsesRoundedScore(t *testing.T) {
	// 0.5*49.9921875 + 30 + 20 = 74.99609375
	score := composite(&postings.Breakdown{TextScore: 49.9921875, SkillScore: 100, EducationBonus: 10, ExperienceBonus: 10})
	assert.Equal(t, 75.0, score)
	assert.Equal(t, postings.HighlyEligible, EligibilityFor(score))
}
