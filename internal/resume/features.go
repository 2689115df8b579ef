package resume

// Features is what the ranker knows about a resume.
type Features struct {
	// Skills holds the vocabulary terms found in the text, sorted.
	Skills []string `json:"skills"`
	// Education holds the sentences mentioning an education keyword.
	Education           []string `json:"education,omitempty"`
	EducationLevelScore int      `json:"education_level_score"`
	ExperienceYears     int      `json:"experience_years"`
	Experience          []string `json:"experience,omitempty"`
	// YearsMentioned lists calendar years (1900-2099) found in the text.
	// Informational only, ranking ignores it.
	YearsMentioned []string `json:"years_mentioned,omitempty"`
	FullText       string   `json:"full_text"`
}

// EducationTier maps an education keyword to its level.
type EducationTier struct {
	Keyword string
	Score   int
}

const (
	TierNone      = 0
	TierAssociate = 1
	TierBachelor  = 2
	TierMaster    = 3
	TierDoctorate = 4
)

// universityKeyword marks a sentence as an education mention without
// contributing a tier on its own.
const universityKeyword = "university"

var defaultSkills = []string{
	"python",
	"java",
	"c++",
	"machine learning",
	"data analysis",
	"nlp",
	"sql",
	"javascript",
	"flask",
	"django",
	"react",
}

var defaultEducationTiers = []EducationTier{
	{Keyword: "phd", Score: TierDoctorate},
	{Keyword: "doctorate", Score: TierDoctorate},
	{Keyword: "master", Score: TierMaster},
	{Keyword: "bachelor", Score: TierBachelor},
	{Keyword: "associate", Score: TierAssociate},
}

// DefaultSkills returns a copy of the built-in skill vocabulary.
func DefaultSkills() []string {
	return append([]string(nil), defaultSkills...)
}

// DefaultEducationTiers returns a copy of the built-in education table.
func DefaultEducationTiers() []EducationTier {
	return append([]EducationTier(nil), defaultEducationTiers...)
}
