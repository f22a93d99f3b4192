package skillgap

import (
	"iter"
	"sort"
	"strings"
	"unicode/utf8"
)

type Normalized struct {
	Key    string
	Listed bool
}

// Normalize maps a raw skill to its canonical key. Skills the dictionary does
// not know keep their literal key and are reported as unlisted.
func Normalize(raw string, dict *Dictionary) Normalized {
	key := CanonicalKey(raw)
	if key == "" || dict == nil {
		return Normalized{Key: key}
	}
	if _, ok := dict.entries[key]; ok {
		return Normalized{Key: key, Listed: true}
	}
	if target, ok := dict.aliasIndex[key]; ok {
		return Normalized{Key: target, Listed: true}
	}
	return Normalized{Key: key}
}

// Extract yields the canonical keys of every dictionary skill mentioned in
// text, de-duplicated, in order of first occurrence. Longer phrases win over
// shorter ones starting at the same position.
func (d *Dictionary) Extract(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if d == nil || d.matcher == nil {
			return
		}
		norm := CanonicalKey(text)
		seen := map[string]struct{}{}
		i := 0
		for i < len(norm) {
			if i > 0 && isWordByte(norm[i-1]) {
				i++
				continue
			}
			key, end, ok := d.matcher.matchAt(norm, i)
			if !ok {
				i++
				continue
			}
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				if !yield(key) {
					return
				}
			}
			i = end
		}
	}
}

func ExtractSkills(text string, dict *Dictionary) []string {
	out := make([]string, 0)
	if dict == nil {
		return out
	}
	for k := range dict.Extract(text) {
		out = append(out, k)
	}
	return out
}

// ExpandUserSkills combines profile skills, coursework and skills found in
// the resume into one ordered skill list.
func ExpandUserSkills(profileSkills, coursework []string, resumeText string, dict *Dictionary) []string {
	out := make([]string, 0, len(profileSkills)+len(coursework))
	out = append(out, profileSkills...)
	out = append(out, coursework...)
	if strings.TrimSpace(resumeText) != "" {
		out = append(out, ExtractSkills(resumeText, dict)...)
	}
	return out
}

type phrase struct {
	text string
	key  string
}

type phraseMatcher struct {
	byFirst map[byte][]phrase
}

func newPhraseMatcher(d *Dictionary) *phraseMatcher {
	m := &phraseMatcher{byFirst: map[byte][]phrase{}}
	add := func(text, key string) {
		if text == "" {
			return
		}
		m.byFirst[text[0]] = append(m.byFirst[text[0]], phrase{text: text, key: key})
	}
	for _, key := range d.order {
		e := d.entries[key]
		add(key, key)
		for a := range e.Aliases {
			ak := CanonicalKey(a)
			if ak == key {
				continue
			}
			if _, skip := normalizeOnlyAliases[ak]; skip {
				continue
			}
			add(ak, key)
		}
	}
	for b := range m.byFirst {
		list := m.byFirst[b]
		sort.SliceStable(list, func(i, j int) bool {
			if len(list[i].text) != len(list[j].text) {
				return len(list[i].text) > len(list[j].text)
			}
			return list[i].text < list[j].text
		})
		// drop duplicate texts; the first registration keeps the key
		uniq := list[:0]
		var last string
		for idx, p := range list {
			if idx > 0 && p.text == last {
				continue
			}
			uniq = append(uniq, p)
			last = p.text
		}
		m.byFirst[b] = uniq
	}
	return m
}

func (m *phraseMatcher) matchAt(text string, i int) (string, int, bool) {
	for _, p := range m.byFirst[text[i]] {
		end := i + len(p.text)
		if end > len(text) {
			continue
		}
		if text[i:end] != p.text {
			continue
		}
		if end < len(text) && isWordByte(text[end]) && isWordByte(text[end-1]) {
			continue
		}
		return p.key, end, true
	}
	return "", 0, false
}

// isWordByte reports whether b can be part of a skill token. Bytes of
// multi-byte runes count as word bytes.
func isWordByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '+' || b == '#' || b == '_':
		return true
	case b >= utf8.RuneSelf:
		return true
	}
	return false
}
