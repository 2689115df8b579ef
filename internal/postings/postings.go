package postings

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Eligibility is a coarse human-readable bucket derived from the match score.
type Eligibility string

const (
	HighlyEligible     Eligibility = "Highly Eligible"
	ModeratelyEligible Eligibility = "Moderately Eligible"
	LowEligibility     Eligibility = "Low Eligibility"
	InsufficientData   Eligibility = "Insufficient data"
)

type Postings struct {
	Items []*Posting `json:"items"`
}

// Posting is a single job posting. The first block of fields is filled by the
// source (scraper or postings file), the rest is added by ranking and the cli.
type Posting struct {
	Platform    string `json:"platform,omitempty" mapstructure:"platform"`
	Title       string `json:"title" mapstructure:"title"`
	Company     string `json:"company" mapstructure:"company"`
	Location    string `json:"location" mapstructure:"location"`
	Description string `json:"description" mapstructure:"description"`
	URL         string `json:"url" mapstructure:"url"`
	// Snippet is the description as markdown, shown to the user only.
	Snippet     string `json:"snippet,omitempty" mapstructure:"-"`

	MatchScore  float64       `json:"match_score" mapstructure:"-"`
	Eligibility Eligibility   `json:"eligibility,omitempty" mapstructure:"-"`
	Breakdown   *Breakdown    `json:"breakdown,omitempty" mapstructure:"-"`
	Bookmarked  bool          `json:"bookmarked,omitempty" mapstructure:"-"`
	AI          *AIAssessment `json:"ai,omitempty" mapstructure:"-"`
}

// Breakdown keeps the individual terms the match score was composed of.
type Breakdown struct {
	TextScore       float64  `json:"text_score"`
	SkillScore      float64  `json:"skill_score"`
	EducationBonus  float64  `json:"education_bonus"`
	ExperienceBonus float64  `json:"experience_bonus"`
	MatchedSkills   []string `json:"matched_skills,omitempty"`
}

type AIAssessment struct {
	Fit     bool    `json:"fit"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason,omitempty"`
	Message string  `json:"message,omitempty"`
	Raw     string  `json:"raw,omitempty"`
	Error   string  `json:"error,omitempty"`
}

func (v *Postings) Len() int {
	if v == nil {
		return 0
	}
	return len(v.Items)
}

func (v *Postings) URLs() []string {
	urls := make([]string, 0, len(v.Items))
	for _, posting := range v.Items {
		urls = append(urls, posting.URL)
	}
	return urls
}

// Dedup removes postings with an already seen URL. The first occurrence wins
// and the order of the kept postings is preserved. It returns the dropped URLs.
func (v *Postings) Dedup() []string {
	var dropped []string
	seen := make(map[string]struct{}, len(v.Items))
	kept := v.Items[:0]
	for _, posting := range v.Items {
		if posting == nil {
			continue
		}
		if _, ok := seen[posting.URL]; ok {
			dropped = append(dropped, posting.URL)
			continue
		}
		seen[posting.URL] = struct{}{}
		kept = append(kept, posting)
	}
	v.Items = kept
	return dropped
}

// Exclude removes postings with the given urls and returns the removed urls.
// Unlike the removal helpers of a plain slice it keeps the order.
func (v *Postings) Exclude(urls []string) []string {
	return v.Remove(func(p *Posting) bool {
		return containsString(urls, p.URL)
	})
}

// Remove drops every posting the predicate matches and returns their urls.
func (v *Postings) Remove(match func(*Posting) bool) []string {
	var removed []string
	kept := v.Items[:0]
	for _, posting := range v.Items {
		if posting == nil {
			continue
		}
		if match(posting) {
			removed = append(removed, posting.URL)
			continue
		}
		kept = append(kept, posting)
	}
	v.Items = kept
	return removed
}

func (v *Postings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportByPlatform groups postings by the platform they were collected from.
func (v *Postings) ReportByPlatform() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, posting := range v.Items {
		key := posting.Platform
		if key == "" {
			key = "unknown"
		}

		entry := map[string]string{
			"title":       posting.Title,
			"company":     posting.Company,
			"url":         posting.URL,
			"location":    posting.Location,
			"score":       strconv.FormatFloat(posting.MatchScore, 'f', 2, 64),
			"eligibility": string(posting.Eligibility),
		}
		if posting.Snippet != "" {
			entry["snippet"] = posting.Snippet
		}
		if posting.Bookmarked {
			entry["bookmarked"] = "true"
		}

		if posting.AI != nil {
			if posting.AI.Error != "" {
				entry["ai_error"] = posting.AI.Error
			} else {
				entry["ai_fit"] = strconv.FormatBool(posting.AI.Fit)
				entry["ai_score"] = strconv.FormatFloat(posting.AI.Score, 'f', -1, 64)
				if posting.AI.Reason != "" {
					entry["ai_reason"] = posting.AI.Reason
				}
				if posting.AI.Message != "" {
					entry["ai_message"] = posting.AI.Message
				}
			}
		}

		report[key] = append(report[key], entry)
	}
	return report
}

// Label is a one-line description used in interactive selections.
func (p *Posting) Label() string {
	company := p.Company
	if company == "" {
		company = "-"
	}
	return fmt.Sprintf("%6.2f %s / %s / %s", p.MatchScore, strings.TrimSpace(p.Title), company, p.URL)
}

func containsString(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
