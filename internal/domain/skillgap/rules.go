package skillgap

import (
	"fmt"
	"strings"
	"unicode"
)

type scoreFacts struct {
	result         ScoreResult
	meta           Meta
	userSet        map[string]struct{}
	resumeProvided bool
	market         *MarketData
	missing        []MissingSkill
	roleCategory   string
	analysis       MarketAnalysis
}

func (f scoreFacts) has(skill string) bool {
	_, ok := f.userSet[skill]
	return ok
}

// rule is one (condition, message) pair. Rules are evaluated in table order.
type rule struct {
	when func(f scoreFacts) bool
	text func(f scoreFacts) string
}

func static(s string) func(scoreFacts) string {
	return func(scoreFacts) string { return s }
}

func evaluate(rules []rule, f scoreFacts) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		if r.when(f) {
			out = append(out, r.text(f))
		}
	}
	return out
}

var strengthRules = []rule{
	{
		when: func(f scoreFacts) bool {
			return f.meta.RequiredTotal > 0 && 2*f.meta.RequiredMatched >= f.meta.RequiredTotal
		},
		text: static("Solid foundation in core required skills"),
	},
	{
		when: func(f scoreFacts) bool {
			return f.meta.RequiredMatched > 0 && 2*f.meta.RequiredMatched < f.meta.RequiredTotal
		},
		text: static("Good starting point with some required skills"),
	},
	{
		when: func(f scoreFacts) bool { return f.meta.PreferredMatched == 1 },
		text: static("1 bonus skill that makes you stand out"),
	},
	{
		when: func(f scoreFacts) bool { return f.meta.PreferredMatched > 1 },
		text: func(f scoreFacts) string {
			return fmt.Sprintf("%d bonus skills that make you stand out", f.meta.PreferredMatched)
		},
	},
	{
		when: func(f scoreFacts) bool { return f.result.Alignment >= 40 },
		text: static("Skills align well with this opportunity"),
	},
	{
		when: func(f scoreFacts) bool { return f.has("python") || f.has("javascript") },
		text: static("Strong programming foundation with versatile languages"),
	},
	{
		when: func(f scoreFacts) bool { return f.has("git") },
		text: static("Version control experience - highly valued by employers"),
	},
	{
		when: func(f scoreFacts) bool { return len(f.analysis.HighDemandMatched) > 0 },
		text: func(f scoreFacts) string {
			return "High-demand skills in your profile: " + strings.Join(firstN(f.analysis.HighDemandMatched, 3), ", ")
		},
	},
	{
		when: func(f scoreFacts) bool { return len(f.analysis.EmergingMatched) > 0 },
		text: static("Early exposure to emerging technologies"),
	},
	{
		when: func(f scoreFacts) bool { return f.result.ATS >= 70 },
		text: static("Your skills closely match the job description keywords"),
	},
	{
		when: func(f scoreFacts) bool { return f.result.Impact >= 60 },
		text: static("Experience descriptions show clear, measurable impact"),
	},
}

var improvementRules = []rule{
	{
		when: func(f scoreFacts) bool { return f.result.Readiness < 50 },
		text: static("Focus on learning the most essential required skills first"),
	},
	{
		when: func(f scoreFacts) bool { return f.result.Readiness >= 50 && f.result.Readiness < 70 },
		text: static("Strengthen proficiency in remaining required skills"),
	},
	{
		when: func(f scoreFacts) bool { return f.result.Alignment < 40 },
		text: static("Study the job description and learn key technologies mentioned"),
	},
	{
		when: func(f scoreFacts) bool { return f.result.Alignment >= 40 && f.result.Alignment < 70 },
		text: static("Continue building skills that match job requirements"),
	},
	{
		when: func(f scoreFacts) bool { return f.resumeProvided && f.result.ATS < 60 },
		text: static("Optimize resume with relevant keywords and clear formatting"),
	},
	{
		when: func(f scoreFacts) bool { return f.result.Impact < 30 },
		text: static("Add personal projects or coursework examples to demonstrate skills"),
	},
	{
		when: func(f scoreFacts) bool { return f.result.Impact >= 30 && f.result.Impact < 60 },
		text: static(`Quantify your project achievements (e.g., "built app with 5 features")`),
	},
	{
		when: func(f scoreFacts) bool { return !f.resumeProvided },
		text: static("Upload a resume to unlock formatting and keyword feedback"),
	},
	{
		when: func(f scoreFacts) bool { return f.resumeProvided && f.result.Polish < 60 },
		text: static("Tidy resume formatting with clear sections, spacing and contact details"),
	},
	{
		when: func(f scoreFacts) bool { return len(requiredMissing(f.missing)) > 0 },
		text: func(f scoreFacts) string {
			return "Close required gaps first: " + strings.Join(firstN(requiredMissing(f.missing), 3), ", ")
		},
	},
}

func requiredMissing(ms []MissingSkill) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		if m.Priority == PriorityRequired {
			out = append(out, m.Skill)
		}
	}
	return out
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

const maxExplanations = 5

func buildMarketAnalysis(f scoreFacts) MarketAnalysis {
	m := f.market
	out := MarketAnalysis{
		UsedFallback:        m.UsedFallback,
		HighDemandMatched:   []string{},
		HighDemandMissing:   []string{},
		EmergingMatched:     []string{},
		EmergingMissing:     []string{},
		PartialCombinations: []CombinationCoverage{},
		Explanations:        []Explanation{},
	}

	for _, s := range f.meta.MatchedSkills {
		switch m.Category(s) {
		case DemandHigh:
			out.HighDemandMatched = append(out.HighDemandMatched, s)
		case DemandEmerging:
			out.EmergingMatched = append(out.EmergingMatched, s)
		}
	}
	for _, ms := range f.missing {
		switch m.Category(ms.Skill) {
		case DemandHigh:
			out.HighDemandMissing = append(out.HighDemandMissing, ms.Skill)
		case DemandEmerging:
			out.EmergingMissing = append(out.EmergingMissing, ms.Skill)
		}
	}

	for _, g := range m.Combinations {
		cov := CombinationCoverage{Anchor: g.Anchor, Have: []string{}, Missing: []string{}}
		for _, s := range g.Members {
			if f.has(s) {
				cov.Have = append(cov.Have, s)
			} else {
				cov.Missing = append(cov.Missing, s)
			}
		}
		if len(cov.Have) > 0 && len(cov.Missing) > 0 {
			out.PartialCombinations = append(out.PartialCombinations, cov)
		}
	}

	out.PrioritizedGaps = m.PrioritizeGaps(f.missing)
	for i, g := range out.PrioritizedGaps {
		if i >= maxExplanations {
			break
		}
		out.Explanations = append(out.Explanations, Explanation{
			Skill:        g.Skill,
			Reason:       explain(g, f),
			MarketDemand: g.MarketDemand,
			Priority:     g.Priority,
		})
	}

	out.LearningPath = learningPath(f)
	return out
}

type explanationRule struct {
	when func(g PrioritizedGap, f scoreFacts) bool
	text func(g PrioritizedGap, f scoreFacts) string
}

var explanationRules = []explanationRule{
	{
		when: func(g PrioritizedGap, f scoreFacts) bool { return f.market.IsEmerging(g.Skill) },
		text: func(g PrioritizedGap, f scoreFacts) string {
			return fmt.Sprintf("%s is an emerging technology with growing demand. Learning it early sets your profile apart.", g.Skill)
		},
	},
	{
		when: func(g PrioritizedGap, f scoreFacts) bool {
			return g.Priority == PriorityRequired && complementaryOwned(g.Skill, f) != ""
		},
		text: func(g PrioritizedGap, f scoreFacts) string {
			return fmt.Sprintf("%s is required for this role and appears in %d+ job postings. Your existing %s experience provides a good foundation for learning it.",
				g.Skill, g.MarketDemand, complementaryOwned(g.Skill, f))
		},
	},
	{
		when: func(g PrioritizedGap, f scoreFacts) bool {
			return g.Priority == PriorityRequired && g.MarketDemand >= 10000
		},
		text: func(g PrioritizedGap, f scoreFacts) string {
			return fmt.Sprintf("%s is required for this role and is one of the most requested skills, with %d+ job mentions.", g.Skill, g.MarketDemand)
		},
	},
	{
		when: func(g PrioritizedGap, f scoreFacts) bool { return g.Priority == PriorityRequired },
		text: func(g PrioritizedGap, f scoreFacts) string {
			return fmt.Sprintf("%s is a required skill for this position, appearing in %d+ job listings in the %s field.",
				g.Skill, g.MarketDemand, categoryLabel(f.roleCategory))
		},
	},
	{
		when: func(PrioritizedGap, scoreFacts) bool { return true },
		text: func(g PrioritizedGap, f scoreFacts) string {
			return fmt.Sprintf("%s enhances your profile for %d+ opportunities in %s. It is not always required but improves your competitiveness.",
				g.Skill, g.MarketDemand, categoryLabel(f.roleCategory))
		},
	},
}

func explain(g PrioritizedGap, f scoreFacts) string {
	for _, r := range explanationRules {
		if r.when(g, f) {
			return r.text(g, f)
		}
	}
	return ""
}

// complementaryOwned returns the first skill the user already has from the
// combination group anchored on skill.
func complementaryOwned(skill string, f scoreFacts) string {
	for _, cr := range combinationRules {
		if cr.anchor != skill {
			continue
		}
		for _, m := range cr.members {
			if f.has(m) {
				return m
			}
		}
	}
	return ""
}

func categoryLabel(category string) string {
	c := strings.TrimSpace(category)
	if c == "" {
		return "target"
	}
	return c
}

type pathRule struct {
	category []string
	when     func(f scoreFacts) bool
	text     string
}

var learningPathRules = []pathRule{
	{category: []string{"ai", "ml"}, when: func(f scoreFacts) bool { return f.has("python") },
		text: "Build on your Python foundation: learn statistics and pandas for data manipulation, then move on to machine learning algorithms and libraries like scikit-learn."},
	{category: []string{"ai", "ml"}, when: func(f scoreFacts) bool { return f.has("excel") || f.has("statistics") },
		text: "Transition from analysis to programming: start with Python fundamentals, then add data libraries (pandas, numpy) to complement your analytical background."},
	{category: []string{"ai", "ml"},
		text: "Start with fundamentals: learn Python first, then statistics, followed by data manipulation (pandas/numpy), and finally machine learning concepts."},
	{category: []string{"data"}, when: func(f scoreFacts) bool { return f.has("python") },
		text: "Specialize your Python skills: focus on data libraries (pandas for manipulation, matplotlib for visualization) and SQL for database access."},
	{category: []string{"data"}, when: func(f scoreFacts) bool { return f.has("excel") },
		text: "Expand beyond spreadsheets: learn SQL for database queries, then Python with pandas for more powerful data manipulation and automation."},
	{category: []string{"data"},
		text: "Build data fundamentals: start with SQL for data extraction, learn Excel or Python for analysis, then advance to visualization tools."},
	{category: []string{"frontend"}, when: func(f scoreFacts) bool { return f.has("html") && f.has("css") },
		text: "Complete the web trinity: add JavaScript for interactivity, then learn React for component-based development."},
	{category: []string{"frontend"},
		text: "Master web fundamentals: start with HTML for structure, CSS for styling, JavaScript for behavior, then frameworks like React."},
}

func learningPath(f scoreFacts) string {
	tokens := map[string]struct{}{}
	for _, t := range strings.FieldsFunc(strings.ToLower(f.roleCategory), func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		tokens[t] = struct{}{}
	}
	for _, r := range learningPathRules {
		if !anyToken(tokens, r.category) {
			continue
		}
		if r.when == nil || r.when(f) {
			return r.text
		}
	}
	critical := len(requiredMissing(f.missing))
	return fmt.Sprintf("Focus on the %d required skills first, then add preferred skills to strengthen your profile for %s roles.",
		critical, strings.ToLower(categoryLabel(f.roleCategory)))
}

func anyToken(tokens map[string]struct{}, want []string) bool {
	for _, w := range want {
		if _, ok := tokens[w]; ok {
			return true
		}
	}
	return false
}
