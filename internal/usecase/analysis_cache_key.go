package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

const (
	analysisKeyPrefix  = "analysis:result:"
	analysisLockPrefix = "analysis:lock:"
)

type analysisCacheKeyInput struct {
	RoleID     string   `json:"role_id"`
	Skills     []string `json:"skills"`
	Coursework []string `json:"coursework"`
	JDTitle    string   `json:"jd_title"`
	JDText     string   `json:"jd_text"`
	Resume     string   `json:"resume"`
	Experience []string `json:"experience"`
}

func normalizeKeyValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	s = strings.Join(strings.Fields(s), " ")
	return s
}

func normalizeKeyList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = normalizeKeyValue(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// AnalysisCacheKey identifies a scoring run by everything that feeds it. Skill
// order and casing do not change the key; text whitespace does not either.
func AnalysisCacheKey(roleID string, skills, coursework, experiences []string, jdTitle, jdText, resume string) string {
	in := analysisCacheKeyInput{
		RoleID:     strings.TrimSpace(roleID),
		Skills:     normalizeKeyList(skills),
		Coursework: normalizeKeyList(coursework),
		Experience: normalizeKeyList(experiences),
		JDTitle:    normalizeKeyValue(jdTitle),
		JDText:     normalizeKeyValue(jdText),
		Resume:     normalizeKeyValue(resume),
	}

	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return analysisKeyPrefix + hex.EncodeToString(sum[:])
}

func AnalysisLockKey(resultKey string) string {
	resultKey = strings.TrimSpace(resultKey)
	return analysisLockPrefix + strings.TrimPrefix(resultKey, analysisKeyPrefix)
}
