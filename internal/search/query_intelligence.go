package search

import (
	"strings"
	"unicode"
)

const maxVariants = 10

type QueryContext struct {
	Original   string
	Normalized string
	Variants   []string
}

// NormalizeQuery lower-cases input, keeps letters, digits and single spaces.
// "C++" and "C#" keep their symbols so language queries survive.
func NormalizeQuery(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	input = strings.ToLower(input)

	b := strings.Builder{}
	b.Grow(len(input))
	lastWasSpace := false

	for _, r := range input {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '+' || r == '#' {
			b.WriteRune(r)
			lastWasSpace = false
			continue
		}
		if unicode.IsSpace(r) {
			if b.Len() == 0 || lastWasSpace {
				continue
			}
			b.WriteByte(' ')
			lastWasSpace = true
			continue
		}
	}

	out := strings.TrimSpace(b.String())
	out = strings.Join(strings.Fields(out), " ")
	return out
}

func ExpandQuery(normalized string) []string {
	normalized = strings.TrimSpace(normalized)
	if normalized == "" {
		return []string{}
	}

	out := make([]string, 0, maxVariants)
	seen := make(map[string]struct{}, maxVariants)
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	add(normalized)

	for _, syn := range GetSynonyms(normalized) {
		add(syn)
	}

	words := strings.Fields(normalized)

	// compact spelling of a spaced key: fullstack -> full stack
	if len(words) == 1 {
		single := words[0]
		for k, syns := range Synonyms {
			if !strings.Contains(k, " ") {
				continue
			}
			kNoSpace := strings.ReplaceAll(k, " ", "")
			if kNoSpace != single {
				continue
			}
			add(k)
			for _, syn := range syns {
				add(syn)
			}
			break
		}
	}

	// replace only a leading phrase that has synonyms: "ml intern" -> "machine learning intern"
	tryPrefix := func(phrase string, rest []string) {
		phrase = strings.TrimSpace(phrase)
		if phrase == "" {
			return
		}
		syns := GetSynonyms(phrase)
		if len(syns) == 0 {
			return
		}
		restStr := strings.Join(rest, " ")
		for _, syn := range syns {
			if restStr == "" {
				add(syn)
				continue
			}
			add(strings.TrimSpace(syn + " " + restStr))
		}
	}

	if len(words) >= 1 {
		tryPrefix(words[0], words[1:])
	}
	if len(words) >= 2 {
		tryPrefix(words[0]+" "+words[1], words[2:])
	}

	// machinelearning intern -> machine learning intern -> (ml|ai) intern
	if len(words) >= 1 && !strings.Contains(words[0], " ") {
		first := words[0]
		rest := words[1:]
		for k, syns := range Synonyms {
			if !strings.Contains(k, " ") {
				continue
			}
			kNoSpace := strings.ReplaceAll(k, " ", "")
			if kNoSpace != first {
				continue
			}
			base := k
			if len(rest) > 0 {
				base = strings.TrimSpace(base + " " + strings.Join(rest, " "))
			}
			add(base)
			restStr := strings.Join(rest, " ")
			for _, syn := range syns {
				if restStr == "" {
					add(syn)
					continue
				}
				add(strings.TrimSpace(syn + " " + restStr))
			}
			break
		}
	}

	if len(out) > maxVariants {
		out = out[:maxVariants]
	}
	return out
}

func ProcessQuery(input string) QueryContext {
	ctx := QueryContext{Original: input}
	ctx.Normalized = NormalizeQuery(input)
	if ctx.Normalized == "" {
		ctx.Variants = []string{}
		return ctx
	}
	ctx.Variants = ExpandQuery(ctx.Normalized)
	return ctx
}
