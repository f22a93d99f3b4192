package skillgap

type Priority string

const (
	PriorityRequired  Priority = "required"
	PriorityPreferred Priority = "preferred"
)

func (p Priority) Valid() bool {
	return p == PriorityRequired || p == PriorityPreferred
}

type Requirement struct {
	Skill    string   `json:"skill"`
	Weight   float64  `json:"weight"`
	Priority Priority `json:"priority"`
}

type Role struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Category     string        `json:"category"`
	Description  string        `json:"description,omitempty"`
	Requirements []Requirement `json:"requirements"`
}

type Resource struct {
	Skill string `json:"skill"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

type MissingSkill struct {
	Skill     string     `json:"skill"`
	Weight    float64    `json:"weight"`
	Priority  Priority   `json:"priority"`
	Resources []Resource `json:"resources"`
}

type TaskKind string

const (
	TaskIntroduction TaskKind = "introduction"
	TaskPractice     TaskKind = "practice"
)

type LearningTask struct {
	Day         int      `json:"day"`
	Skill       string   `json:"skill"`
	Kind        TaskKind `json:"kind"`
	Description string   `json:"description"`
	Completed   bool     `json:"completed"`
}

// ScoreInput carries everything a single scoring call needs. MarketData may
// be nil, in which case the static fallback table is used.
type ScoreInput struct {
	UserSkills       []string
	RoleRequirements []Requirement
	JDText           string
	JDTitle          string
	Dictionary       *Dictionary
	ResumeProvided   bool
	ResumeText       string
	RoleCategory     string
	MarketData       *MarketData
	Experiences      []string
	Coursework       []string
}

type ScoreResult struct {
	Overall        int            `json:"overall"`
	Readiness      int            `json:"readiness"`
	Alignment      int            `json:"alignment"`
	ATS            int            `json:"ats"`
	Impact         int            `json:"impact"`
	Polish         int            `json:"polish"`
	Potential      int            `json:"potential"`
	Strengths      []string       `json:"strengths"`
	Improvements   []string       `json:"improvements"`
	MissingSkills  []MissingSkill `json:"missingSkills"`
	Meta           Meta           `json:"meta"`
	MarketAnalysis MarketAnalysis `json:"marketAnalysis"`
}

type Meta struct {
	RequiredTotal    int            `json:"requiredTotal"`
	RequiredMatched  int            `json:"requiredMatched"`
	PreferredTotal   int            `json:"preferredTotal"`
	PreferredMatched int            `json:"preferredMatched"`
	MatchedSkills    []string       `json:"matchedSkills"`
	JDSkills         []string       `json:"jdSkills"`
	UnlistedSkills   []string       `json:"unlistedSkills"`
	InsufficientText []string       `json:"insufficientText"`
	Percentiles      map[string]int `json:"percentiles"`
	Ranking          string         `json:"ranking"`
	Confidence       int            `json:"confidence"`
}

type MarketAnalysis struct {
	UsedFallback        bool                  `json:"usedFallback"`
	HighDemandMatched   []string              `json:"highDemandMatched"`
	HighDemandMissing   []string              `json:"highDemandMissing"`
	EmergingMatched     []string              `json:"emergingMatched"`
	EmergingMissing     []string              `json:"emergingMissing"`
	PartialCombinations []CombinationCoverage `json:"partialCombinations"`
	PrioritizedGaps     []PrioritizedGap      `json:"prioritizedGaps"`
	Explanations        []Explanation         `json:"explanations"`
	LearningPath        string                `json:"learningPath"`
}

type CombinationCoverage struct {
	Anchor  string   `json:"anchor"`
	Have    []string `json:"have"`
	Missing []string `json:"missing"`
}

type PrioritizedGap struct {
	Skill          string   `json:"skill"`
	Weight         float64  `json:"weight"`
	Priority       Priority `json:"priority"`
	MarketDemand   int      `json:"marketDemand"`
	MarketPriority float64  `json:"marketPriority"`
}

type Explanation struct {
	Skill        string   `json:"skill"`
	Reason       string   `json:"reason"`
	MarketDemand int      `json:"marketDemand"`
	Priority     Priority `json:"priority"`
}
