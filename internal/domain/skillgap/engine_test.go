package skillgap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mlInput() ScoreInput {
	reqs := []Requirement{
		{Skill: "python", Weight: 2, Priority: PriorityRequired},
		{Skill: "machine learning basics", Weight: 2, Priority: PriorityRequired},
	}
	roles := []Role{{ID: "ml-intern", Title: "ML Intern", Category: "AI/ML", Requirements: reqs}}
	return ScoreInput{
		UserSkills:       []string{"python", "html", "css", "git"},
		RoleRequirements: reqs,
		Dictionary:       BuildDictionary(roles, nil),
		RoleCategory:     "AI/ML",
	}
}

func TestComputeScores_MLScenario(t *testing.T) {
	res, err := ComputeScores(mlInput())
	require.NoError(t, err)

	assert.Equal(t, 50, res.Alignment)
	assert.Equal(t, 25, res.Readiness)
	assert.Equal(t, 43, res.Potential)
	assert.Equal(t, 27, res.Overall)
	require.Len(t, res.MissingSkills, 1)
	assert.Equal(t, "machine learning basics", res.MissingSkills[0].Skill)
	assert.Equal(t, PriorityRequired, res.MissingSkills[0].Priority)
	assert.Equal(t, 1, res.Meta.RequiredMatched)
	assert.Equal(t, 2, res.Meta.RequiredTotal)
	assert.Equal(t, []string{"python"}, res.Meta.MatchedSkills)
	assert.Equal(t, []string{"css", "git", "html"}, res.Meta.UnlistedSkills)

	assert.True(t, res.MarketAnalysis.UsedFallback)
	assert.Equal(t, []string{"python"}, res.MarketAnalysis.HighDemandMatched)
	assert.True(t, strings.HasPrefix(res.MarketAnalysis.LearningPath, "Build on your Python foundation"))
	require.Len(t, res.MarketAnalysis.Explanations, 1)
	assert.Equal(t, "machine learning basics", res.MarketAnalysis.Explanations[0].Skill)

	assert.Contains(t, res.Strengths, "Solid foundation in core required skills")
	assert.Contains(t, res.Strengths, "Version control experience - highly valued by employers")
	assert.Contains(t, res.Improvements, "Focus on learning the most essential required skills first")
	assert.Contains(t, res.Improvements, "Upload a resume to unlock formatting and keyword feedback")
}

func TestComputeScores_NoRequirements(t *testing.T) {
	in := mlInput()
	in.RoleRequirements = nil

	res, err := ComputeScores(in)
	require.ErrorIs(t, err, ErrNoRequirements)
	assert.Equal(t, ScoreResult{}, res)
}

func TestComputeScores_EmptyDictionary(t *testing.T) {
	in := mlInput()
	in.Dictionary = nil

	_, err := ComputeScores(in)
	require.ErrorIs(t, err, ErrEmptyDictionary)

	in.Dictionary = BuildDictionary(nil, nil)
	_, err = ComputeScores(in)
	require.ErrorIs(t, err, ErrEmptyDictionary)
}

func TestComputeScores_MalformedRequirement(t *testing.T) {
	cases := map[string]Requirement{
		"missing skill":    {Skill: " ", Weight: 1, Priority: PriorityRequired},
		"zero weight":      {Skill: "sql", Weight: 0, Priority: PriorityRequired},
		"negative weight":  {Skill: "sql", Weight: -1, Priority: PriorityPreferred},
		"unknown priority": {Skill: "sql", Weight: 1, Priority: "optional"},
	}
	for name, bad := range cases {
		t.Run(name, func(t *testing.T) {
			in := mlInput()
			in.RoleRequirements = append(in.RoleRequirements, bad)

			res, err := ComputeScores(in)
			require.ErrorIs(t, err, ErrMalformedRequirement)
			assert.Equal(t, ScoreResult{}, res)
		})
	}
}

func TestComputeScores_NilMarketUsesFallback(t *testing.T) {
	in := mlInput()
	in.MarketData = nil

	res, err := ComputeScores(in)
	require.NoError(t, err)
	assert.True(t, res.MarketAnalysis.UsedFallback)

	in.MarketData = AnalyzeMarket(map[string]int{"python": 40, "sql": 10})
	res, err = ComputeScores(in)
	require.NoError(t, err)
	assert.False(t, res.MarketAnalysis.UsedFallback)
}

func richInput() ScoreInput {
	reqs := []Requirement{
		{Skill: "Python", Weight: 3, Priority: PriorityRequired},
		{Skill: "SQL", Weight: 2, Priority: PriorityRequired},
		{Skill: "Pandas", Weight: 2, Priority: PriorityRequired},
		{Skill: "Tableau", Weight: 1, Priority: PriorityPreferred},
		{Skill: "Excel", Weight: 1, Priority: PriorityPreferred},
	}
	roles := []Role{{ID: "da", Title: "Data Analyst Intern", Category: "Data", Requirements: reqs}}
	resume := "Jane Doe\njane@example.com\n\nExperience\nBuilt dashboards in Tableau that reduced reporting time by 30%.\n" +
		"Developed Python scripts to automate data cleaning for 12 clients.\n\nEducation\nBSc Statistics\n\nSkills\nPython, SQL, Excel"
	return ScoreInput{
		UserSkills:       []string{"python", "Excel"},
		RoleRequirements: reqs,
		JDTitle:          "Data Analyst Intern",
		JDText:           "We are looking for an intern comfortable with Python, SQL and Tableau to analyze sales data.",
		Dictionary:       BuildDictionary(roles, nil),
		ResumeProvided:   true,
		ResumeText:       resume,
		RoleCategory:     "Data",
		Experiences:      []string{"Led a team of 4 students and improved survey response rates by 20%."},
		Coursework:       []string{"Statistics"},
	}
}

func TestComputeScores_ScoresInRange(t *testing.T) {
	for _, in := range []ScoreInput{mlInput(), richInput()} {
		res, err := ComputeScores(in)
		require.NoError(t, err)
		for name, v := range map[string]int{
			"overall": res.Overall, "readiness": res.Readiness, "alignment": res.Alignment,
			"ats": res.ATS, "impact": res.Impact, "polish": res.Polish, "potential": res.Potential,
		} {
			assert.GreaterOrEqual(t, v, 0, name)
			assert.LessOrEqual(t, v, 100, name)
		}
		assert.GreaterOrEqual(t, res.Meta.Confidence, 70)
		assert.LessOrEqual(t, res.Meta.Confidence, 95)
		assert.Len(t, res.Meta.Percentiles, 7)
		assert.NotEmpty(t, res.Meta.Ranking)
		assert.NotNil(t, res.Strengths)
		assert.NotNil(t, res.Improvements)
	}
}

func TestComputeScores_ResumeSignals(t *testing.T) {
	res, err := ComputeScores(richInput())
	require.NoError(t, err)

	assert.Greater(t, res.ATS, 0)
	assert.Greater(t, res.Impact, 0)
	assert.Greater(t, res.Polish, 0)
	assert.Empty(t, res.Meta.InsufficientText)
	assert.Equal(t, []string{"python", "sql", "tableau"}, res.Meta.JDSkills)
	assert.NotContains(t, res.Improvements, "Upload a resume to unlock formatting and keyword feedback")
	assert.True(t, strings.HasPrefix(res.MarketAnalysis.LearningPath, "Specialize your Python skills"))
}

func TestComputeScores_InsufficientText(t *testing.T) {
	res, err := ComputeScores(mlInput())
	require.NoError(t, err)

	assert.Equal(t, 0, res.ATS)
	assert.Equal(t, 0, res.Impact)
	assert.Equal(t, 0, res.Polish)
	assert.Equal(t, []string{"ats", "impact"}, res.Meta.InsufficientText)

	in := mlInput()
	in.ResumeProvided = true
	in.ResumeText = "too short"
	res, err = ComputeScores(in)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Polish)
	assert.Contains(t, res.Meta.InsufficientText, "polish")
}

func TestComputeScores_ATSKeywordMatch(t *testing.T) {
	in := richInput()
	in.UserSkills = []string{"python", "sql", "tableau"}

	res, err := ComputeScores(in)
	require.NoError(t, err)
	assert.Equal(t, 100, res.ATS)
}

func TestComputeScores_Deterministic(t *testing.T) {
	first, err := ComputeScores(richInput())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := ComputeScores(richInput())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestComputeScores_AddingRequiredSkillNeverLowersScores(t *testing.T) {
	base := richInput()
	before, err := ComputeScores(base)
	require.NoError(t, err)

	base.UserSkills = append(base.UserSkills, "sql")
	after, err := ComputeScores(base)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, after.Alignment, before.Alignment)
	assert.GreaterOrEqual(t, after.Readiness, before.Readiness)
	assert.Len(t, after.MissingSkills, len(before.MissingSkills)-1)
}

func TestComputeScores_MissingSkillOrder(t *testing.T) {
	reqs := []Requirement{
		{Skill: "a", Weight: 3, Priority: PriorityPreferred},
		{Skill: "b", Weight: 1, Priority: PriorityRequired},
		{Skill: "c", Weight: 2, Priority: PriorityRequired},
		{Skill: "d", Weight: 2, Priority: PriorityRequired},
		{Skill: "e", Weight: 1, Priority: PriorityRequired},
	}
	in := ScoreInput{
		UserSkills:       []string{"E"},
		RoleRequirements: reqs,
		Dictionary:       BuildDictionary([]Role{{Requirements: reqs}}, nil),
	}

	res, err := ComputeScores(in)
	require.NoError(t, err)

	got := make([]string, 0, len(res.MissingSkills))
	for _, m := range res.MissingSkills {
		got = append(got, m.Skill)
	}
	assert.Equal(t, []string{"c", "d", "b", "a"}, got)
}

func TestRankingLabel(t *testing.T) {
	assert.Equal(t, RankingExcellent, rankingLabel(85))
	assert.Equal(t, RankingAboveAverage, rankingLabel(75))
	assert.Equal(t, RankingAverage, rankingLabel(55))
	assert.Equal(t, RankingBelowAverage, rankingLabel(54))
}

func TestPercentiles(t *testing.T) {
	p := percentiles(ScoreResult{Overall: 90, Readiness: 34, Alignment: 60, ATS: 0, Impact: 70, Polish: 92, Potential: 50})
	assert.Equal(t, 90, p["overall"])
	assert.Equal(t, 10, p["readiness"])
	assert.Equal(t, 50, p["alignment"])
	assert.Equal(t, 10, p["ats"])
	assert.Equal(t, 75, p["impact"])
	assert.Equal(t, 90, p["polish"])
	assert.Equal(t, 25, p["potential"])
}

// sampleMarket ranks python, sql and java as high demand, git, excel and html
// as medium, and kubernetes as emerging.
func sampleMarket() *MarketData {
	return AnalyzeMarket(map[string]int{
		"python": 1000, "sql": 900, "java": 800,
		"git": 500, "excel": 400, "html": 300,
		"css": 200, "tableau": 100, "docker": 50, "kubernetes": 10,
	})
}

func TestComputeScores_PotentialAndOverall(t *testing.T) {
	req := func(skill string, w float64, p Priority) Requirement {
		return Requirement{Skill: skill, Weight: w, Priority: p}
	}

	tests := []struct {
		name      string
		reqs      []Requirement
		user      []string
		alignment int
		readiness int
		potential int
		overall   int
	}{
		{
			// No preferred requirements: the overall matched share stands in.
			name: "required only",
			reqs: []Requirement{
				req("python", 3, PriorityRequired), req("sql", 2, PriorityRequired),
				req("git", 1, PriorityRequired), req("excel", 2, PriorityRequired),
			},
			user:      []string{"python", "git"},
			alignment: 50, readiness: 25, potential: 43, overall: 27,
		},
		{
			name: "preferred share with high and emerging boost",
			reqs: []Requirement{
				req("python", 2, PriorityRequired), req("sql", 1, PriorityPreferred),
				req("kubernetes", 1, PriorityPreferred), req("java", 2, PriorityPreferred),
			},
			user:      []string{"python", "kubernetes"},
			alignment: 50, readiness: 50, potential: 34, overall: 33,
		},
		{
			name: "boost capped",
			reqs: []Requirement{
				req("python", 1, PriorityPreferred), req("sql", 1, PriorityPreferred),
				req("java", 1, PriorityPreferred), req("kubernetes", 1, PriorityPreferred),
				req("git", 1, PriorityRequired),
			},
			user:      []string{"python", "sql", "java", "kubernetes"},
			alignment: 80, readiness: 70, potential: 100, overall: 55,
		},
		{
			name: "medium demand earns no boost",
			reqs: []Requirement{
				req("git", 1, PriorityPreferred), req("html", 1, PriorityPreferred),
				req("excel", 1, PriorityPreferred),
			},
			user:      []string{"git"},
			alignment: 33, readiness: 33, potential: 23, overall: 22,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roles := []Role{{ID: "r", Title: "Role", Category: "Engineering", Requirements: tt.reqs}}
			res, err := ComputeScores(ScoreInput{
				UserSkills:       tt.user,
				RoleRequirements: tt.reqs,
				Dictionary:       BuildDictionary(roles, nil),
				MarketData:       sampleMarket(),
			})
			require.NoError(t, err)

			assert.Equal(t, 0, res.ATS)
			assert.Equal(t, 0, res.Impact)
			assert.Equal(t, 0, res.Polish)
			assert.Equal(t, tt.alignment, res.Alignment)
			assert.Equal(t, tt.readiness, res.Readiness)
			assert.Equal(t, tt.potential, res.Potential)
			assert.Equal(t, tt.overall, res.Overall)
		})
	}
}
