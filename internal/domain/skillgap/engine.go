package skillgap

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// ReadinessRequiredPenalty scales how much unmatched required weight
	// pulls Readiness below Alignment.
	ReadinessRequiredPenalty = 0.5

	ATSCoverageWeight = 0.7
	ATSKeywordWeight  = 0.3

	ImpactTargetDensity = 0.08
	MinImpactWords      = 5

	MinJobTextLength = 20
	MinResumeLength  = 100

	PotentialPreferredShare = 70.0
	PotentialMarketBoost    = 8.0
	PotentialMarketBoostCap = 30.0
)

// Overall weights. They sum to 1.
const (
	OverallReadinessWeight = 0.30
	OverallAlignmentWeight = 0.30
	OverallATSWeight       = 0.12
	OverallImpactWeight    = 0.10
	OverallPolishWeight    = 0.08
	OverallPotentialWeight = 0.10
)

// ComputeScores scores a user's skills against a role. It never returns a
// partial result: dictionary and requirement problems abort the call.
func ComputeScores(in ScoreInput) (ScoreResult, error) {
	if in.Dictionary.Empty() {
		return ScoreResult{}, ErrEmptyDictionary
	}
	if len(in.RoleRequirements) == 0 {
		return ScoreResult{}, ErrNoRequirements
	}
	if err := validateRequirements(in.RoleRequirements); err != nil {
		return ScoreResult{}, err
	}

	market := in.MarketData
	if market == nil {
		market = AnalyzeMarket(nil)
	}

	userSet := map[string]struct{}{}
	unlisted := map[string]struct{}{}
	for _, raw := range in.UserSkills {
		n := Normalize(raw, in.Dictionary)
		if n.Key == "" {
			continue
		}
		userSet[n.Key] = struct{}{}
		if !n.Listed {
			unlisted[n.Key] = struct{}{}
		}
	}

	var (
		totalWeight, matchedWeight        float64
		unmatchedRequiredWeight           float64
		preferredWeight, matchedPreferred float64
		meta                              Meta
		missing                           []MissingSkill
		matchedKeys                       []string
		matchedSeen                       = map[string]struct{}{}
	)

	for _, req := range in.RoleRequirements {
		key := Normalize(req.Skill, in.Dictionary).Key
		_, matched := userSet[key]
		totalWeight += req.Weight

		switch req.Priority {
		case PriorityRequired:
			meta.RequiredTotal++
		case PriorityPreferred:
			meta.PreferredTotal++
			preferredWeight += req.Weight
		}

		if matched {
			matchedWeight += req.Weight
			if req.Priority == PriorityRequired {
				meta.RequiredMatched++
			} else {
				meta.PreferredMatched++
				matchedPreferred += req.Weight
			}
			if _, dup := matchedSeen[key]; !dup {
				matchedSeen[key] = struct{}{}
				matchedKeys = append(matchedKeys, key)
			}
			continue
		}

		if req.Priority == PriorityRequired {
			unmatchedRequiredWeight += req.Weight
		}
		missing = append(missing, MissingSkill{
			Skill:    key,
			Weight:   req.Weight,
			Priority: req.Priority,
		})
	}

	sortMissing(missing)

	res := ScoreResult{}
	res.Alignment = percent(matchedWeight / totalWeight)
	res.Readiness = percent((matchedWeight - ReadinessRequiredPenalty*unmatchedRequiredWeight) / totalWeight)

	jdText := strings.TrimSpace(in.JDTitle + " " + in.JDText)
	jdSkills := ExtractSkills(jdText, in.Dictionary)
	ats, err := atsScore(userSet, jdSkills, jdText)
	if err != nil {
		meta.InsufficientText = append(meta.InsufficientText, "ats")
	}
	res.ATS = ats

	impactText := strings.Join(in.Experiences, "\n")
	if in.ResumeProvided {
		impactText += "\n" + in.ResumeText
	}
	impact, err := impactScore(impactText)
	if err != nil {
		meta.InsufficientText = append(meta.InsufficientText, "impact")
	}
	res.Impact = impact

	if in.ResumeProvided {
		polish, err := polishScore(in.ResumeText)
		if err != nil {
			meta.InsufficientText = append(meta.InsufficientText, "polish")
		}
		res.Polish = polish
	}

	preferredFraction := matchedWeight / totalWeight
	if preferredWeight > 0 {
		preferredFraction = matchedPreferred / preferredWeight
	}
	boost := 0.0
	for _, k := range matchedKeys {
		switch market.Category(k) {
		case DemandHigh, DemandEmerging:
			boost += PotentialMarketBoost
		}
	}
	boost = math.Min(boost, PotentialMarketBoostCap)
	res.Potential = clampInt(int(math.Round(PotentialPreferredShare*preferredFraction+boost)), 0, 100)

	overall := OverallReadinessWeight*float64(res.Readiness) +
		OverallAlignmentWeight*float64(res.Alignment) +
		OverallATSWeight*float64(res.ATS) +
		OverallImpactWeight*float64(res.Impact) +
		OverallPolishWeight*float64(res.Polish) +
		OverallPotentialWeight*float64(res.Potential)
	res.Overall = clampInt(int(math.Round(overall)), 0, 100)

	if missing == nil {
		missing = []MissingSkill{}
	}
	res.MissingSkills = missing

	meta.MatchedSkills = nonNil(matchedKeys)
	meta.JDSkills = jdSkills
	meta.UnlistedSkills = sortedKeys(unlisted)
	meta.InsufficientText = nonNil(meta.InsufficientText)
	meta.Percentiles = percentiles(res)
	meta.Ranking = rankingLabel(res.Overall)
	meta.Confidence = confidenceLevel(in, len(userSet))
	res.Meta = meta

	facts := scoreFacts{
		result:         res,
		meta:           meta,
		userSet:        userSet,
		resumeProvided: in.ResumeProvided,
		market:         market,
		missing:        missing,
		roleCategory:   in.RoleCategory,
	}
	res.MarketAnalysis = buildMarketAnalysis(facts)
	facts.analysis = res.MarketAnalysis
	res.Strengths = evaluate(strengthRules, facts)
	res.Improvements = evaluate(improvementRules, facts)

	return res, nil
}

func validateRequirements(reqs []Requirement) error {
	for i, r := range reqs {
		switch {
		case CanonicalKey(r.Skill) == "":
			return fmt.Errorf("%w: requirement %d: missing skill", ErrMalformedRequirement, i)
		case math.IsNaN(r.Weight) || math.IsInf(r.Weight, 0) || r.Weight <= 0:
			return fmt.Errorf("%w: requirement %d (%s): weight must be positive", ErrMalformedRequirement, i, r.Skill)
		case !r.Priority.Valid():
			return fmt.Errorf("%w: requirement %d (%s): unknown priority %q", ErrMalformedRequirement, i, r.Skill, r.Priority)
		}
	}
	return nil
}

// sortMissing orders required before preferred, then by weight, keeping the
// original order for ties.
func sortMissing(ms []MissingSkill) {
	sort.SliceStable(ms, func(i, j int) bool {
		ri := ms[i].Priority == PriorityRequired
		rj := ms[j].Priority == PriorityRequired
		if ri != rj {
			return ri
		}
		return ms[i].Weight > ms[j].Weight
	})
}

func atsScore(userSet map[string]struct{}, jdSkills []string, jdText string) (int, error) {
	if utf8.RuneCountInString(jdText) < MinJobTextLength {
		return 0, ErrInsufficientText
	}

	jdTokens := keywordTokens(jdText)
	userTokens := map[string]struct{}{}
	for k := range userSet {
		for t := range keywordTokens(k) {
			userTokens[t] = struct{}{}
		}
	}

	overlap := 0.0
	if len(userTokens) > 0 {
		hits := 0
		for t := range userTokens {
			if _, ok := jdTokens[t]; ok {
				hits++
			}
		}
		overlap = float64(hits) / float64(len(userTokens))
	}

	if len(jdSkills) == 0 {
		return percent(overlap), nil
	}
	covered := 0
	for _, s := range jdSkills {
		if _, ok := userSet[s]; ok {
			covered++
		}
	}
	coverage := float64(covered) / float64(len(jdSkills))
	return percent(ATSCoverageWeight*coverage + ATSKeywordWeight*overlap), nil
}

var keywordStopWords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "you": true,
	"are": true, "have": true, "will": true, "this": true, "that": true,
	"from": true, "our": true, "your": true, "their": true, "they": true,
	"work": true, "team": true, "role": true, "job": true, "join": true,
	"about": true, "which": true, "what": true, "who": true, "how": true,
	"can": true, "not": true, "but": true, "all": true, "also": true,
	"more": true, "than": true, "into": true, "has": true, "its": true,
	"of": true, "in": true, "to": true, "or": true, "an": true, "on": true,
	"as": true, "at": true, "by": true, "be": true, "is": true, "we": true,
}

// keywordTokens lower-cases text and splits it into keywords, keeping "+",
// "#" and "." inside words so c++, c# and node.js survive.
func keywordTokens(text string) map[string]struct{} {
	kw := map[string]struct{}{}
	var word strings.Builder
	flush := func() {
		w := strings.TrimRight(word.String(), ".")
		word.Reset()
		if utf8.RuneCountInString(w) >= 2 && !keywordStopWords[w] {
			kw[w] = struct{}{}
		}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return kw
}

var actionVerbs = map[string]bool{
	"developed": true, "built": true, "led": true, "managed": true, "designed": true,
	"implemented": true, "created": true, "analyzed": true, "optimized": true,
	"collaborated": true, "launched": true, "deployed": true, "automated": true,
	"delivered": true, "organized": true, "coordinated": true, "mentored": true,
	"researched": true, "tested": true, "migrated": true, "architected": true,
	"engineered": true, "programmed": true, "maintained": true, "presented": true,
}

var outcomeWords = map[string]bool{
	"improved": true, "increased": true, "reduced": true, "saved": true, "grew": true,
	"accelerated": true, "achieved": true, "won": true, "awarded": true, "decreased": true,
	"boosted": true, "cut": true, "doubled": true, "tripled": true, "exceeded": true,
}

var quantifiedRe = regexp.MustCompile(`\d+(?:\.\d+)?\s?(?:%|x\b)|\$\s?\d+|\b\d+\+?\s(?:users|customers|projects|features|students|clients)\b`)

func impactScore(text string) (int, error) {
	lower := strings.ToLower(text)
	words := strings.Fields(lower)
	if len(words) < MinImpactWords {
		return 0, ErrInsufficientText
	}

	signals := 0
	for _, w := range words {
		w = strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) })
		if actionVerbs[w] || outcomeWords[w] {
			signals++
		}
	}
	signals += 2 * len(quantifiedRe.FindAllString(lower, -1))

	density := float64(signals) / float64(len(words))
	return percent(math.Min(1, density/ImpactTargetDensity)), nil
}

var (
	typoRe     = regexp.MustCompile(`(?i)\b(teh|recieve|seperate|occured|definately|managment|acheive)\b`)
	informalRe = regexp.MustCompile(`(?i)\b(awesome|cool|stuff|things|lots of|gonna|wanna)\b`)
	emailRe    = regexp.MustCompile(`[\w._%+-]+@[\w.-]+\.[A-Za-z]{2,}`)
	sectionRe  = regexp.MustCompile(`(?i)\b(experience|education|skills|projects)\b`)
)

func polishScore(resume string) (int, error) {
	trimmed := strings.TrimSpace(resume)
	n := utf8.RuneCountInString(trimmed)
	if n < MinResumeLength {
		return 0, ErrInsufficientText
	}

	score := 0
	normalized := strings.ReplaceAll(trimmed, "\r\n", "\n")
	score += pick(strings.Contains(normalized, "\n\n"), 20, 10)
	score += pick(n > 500 && n < 3000, 20, 10)
	score += pick(!typoRe.MatchString(trimmed), 15, 5)
	score += pick(!informalRe.MatchString(trimmed), 15, 5)
	score += pick(emailRe.MatchString(trimmed), 15, 0)
	score += pick(sectionRe.MatchString(trimmed), 15, 0)
	return clampInt(score, 0, 100), nil
}

func pick(cond bool, yes, no int) int {
	if cond {
		return yes
	}
	return no
}

func percent(frac float64) int {
	if math.IsNaN(frac) {
		return 0
	}
	return clampInt(int(math.Round(100*frac)), 0, 100)
}

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
