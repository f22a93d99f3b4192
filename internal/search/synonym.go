package search

// Synonyms maps a normalized role query onto other phrasings that appear in
// role titles, categories or requirement skills.
var Synonyms = map[string][]string{
	"frontend":         {"front end", "web", "ui"},
	"backend":          {"back end", "server", "api"},
	"fullstack":        {"full stack", "web"},
	"data":             {"data analyst", "data science", "analytics"},
	"ml":               {"machine learning", "ai"},
	"ai":               {"machine learning", "ml"},
	"devops":           {"cloud", "infrastructure", "sre"},
	"ux":               {"design", "user research"},
	"machine learning": {"ml", "ai"},
	"mobile":           {"android", "ios"},
	"security":         {"cybersecurity", "infosec"},
}

func GetSynonyms(query string) []string {
	if query == "" {
		return []string{}
	}
	if v, ok := Synonyms[query]; ok {
		out := make([]string, 0, len(v))
		out = append(out, v...)
		return out
	}
	return []string{}
}
