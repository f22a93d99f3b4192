package skillgap

import "unicode/utf8"

type benchmark struct {
	p25, p50, p75, p90 int
}

var benchmarks = map[string]benchmark{
	"overall":   {45, 65, 80, 90},
	"ats":       {40, 60, 75, 85},
	"alignment": {35, 55, 75, 88},
	"impact":    {30, 50, 70, 85},
	"polish":    {45, 65, 80, 92},
	"potential": {50, 70, 85, 95},
}

func (b benchmark) percentile(score int) int {
	switch {
	case score >= b.p90:
		return 90
	case score >= b.p75:
		return 75
	case score >= b.p50:
		return 50
	case score >= b.p25:
		return 25
	}
	return 10
}

// percentiles places each score against a fixed peer benchmark. Readiness is
// measured against the alignment band.
func percentiles(r ScoreResult) map[string]int {
	return map[string]int{
		"overall":   benchmarks["overall"].percentile(r.Overall),
		"readiness": benchmarks["alignment"].percentile(r.Readiness),
		"alignment": benchmarks["alignment"].percentile(r.Alignment),
		"ats":       benchmarks["ats"].percentile(r.ATS),
		"impact":    benchmarks["impact"].percentile(r.Impact),
		"polish":    benchmarks["polish"].percentile(r.Polish),
		"potential": benchmarks["potential"].percentile(r.Potential),
	}
}

const (
	RankingExcellent    = "Excellent"
	RankingAboveAverage = "Above Average"
	RankingAverage      = "Average"
	RankingBelowAverage = "Below Average"
)

func rankingLabel(overall int) string {
	switch {
	case overall >= 85:
		return RankingExcellent
	case overall >= 75:
		return RankingAboveAverage
	case overall >= 55:
		return RankingAverage
	}
	return RankingBelowAverage
}

// confidenceLevel grows with the amount of evidence behind a score.
func confidenceLevel(in ScoreInput, uniqueSkills int) int {
	c := 70
	if in.ResumeProvided && utf8.RuneCountInString(in.ResumeText) > 500 {
		c += 15
	}
	if uniqueSkills >= 5 {
		c += 10
	}
	if len(in.Coursework) >= 3 {
		c += 5
	}
	if len(in.Experiences) >= 2 {
		c += 5
	}
	if utf8.RuneCountInString(in.JDText) > 1000 {
		c += 5
	}
	return min(c, 95)
}
