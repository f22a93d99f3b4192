package skillgap

import (
	"sort"
	"strings"
)

// CanonicalKey trims, lower-cases and collapses internal whitespace.
func CanonicalKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

type Entry struct {
	Key           string
	CanonicalForm string
	Aliases       map[string]struct{}
	SourceCount   int
}

// AliasList returns the entry aliases in sorted order.
func (e Entry) AliasList() []string {
	out := make([]string, 0, len(e.Aliases))
	for a := range e.Aliases {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Dictionary is the canonical skill vocabulary. It is read-only once
// BuildDictionary returns.
type Dictionary struct {
	entries map[string]*Entry
	order   []string
	// alias key -> entry key, for shorthand forms whose key differs from the entry key
	aliasIndex map[string]string
	matcher    *phraseMatcher
}

type buildOptions struct {
	aliases map[string]string
}

type Option func(*buildOptions)

// WithAliases registers shorthand aliases (alias -> target skill). An alias
// is kept only when its target is in the vocabulary and the alias is not an
// entry of its own.
func WithAliases(aliases map[string]string) Option {
	return func(o *buildOptions) {
		o.aliases = aliases
	}
}

func BuildDictionary(roles []Role, resources []Resource, opts ...Option) *Dictionary {
	var o buildOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	d := &Dictionary{
		entries:    map[string]*Entry{},
		aliasIndex: map[string]string{},
	}

	for _, r := range roles {
		for _, req := range r.Requirements {
			d.add(req.Skill)
		}
	}
	for _, res := range resources {
		d.add(res.Skill)
	}

	if len(d.entries) > 0 && len(o.aliases) > 0 {
		keys := make([]string, 0, len(o.aliases))
		for k := range o.aliases {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, alias := range keys {
			d.addAlias(alias, o.aliases[alias])
		}
	}

	d.matcher = newPhraseMatcher(d)
	return d
}

func (d *Dictionary) add(raw string) {
	key := CanonicalKey(raw)
	if key == "" {
		return
	}
	original := strings.TrimSpace(raw)
	if e, ok := d.entries[key]; ok {
		e.SourceCount++
		if original != e.CanonicalForm {
			e.Aliases[original] = struct{}{}
		}
		return
	}
	d.entries[key] = &Entry{
		Key:           key,
		CanonicalForm: original,
		Aliases:       map[string]struct{}{},
		SourceCount:   1,
	}
	d.order = append(d.order, key)
}

func (d *Dictionary) addAlias(alias, target string) {
	aliasKey := CanonicalKey(alias)
	targetKey := CanonicalKey(target)
	if aliasKey == "" || aliasKey == targetKey {
		return
	}
	e, ok := d.entries[targetKey]
	if !ok {
		return
	}
	if _, isEntry := d.entries[aliasKey]; isEntry {
		return
	}
	if _, taken := d.aliasIndex[aliasKey]; taken {
		return
	}
	d.aliasIndex[aliasKey] = targetKey
	e.Aliases[strings.TrimSpace(alias)] = struct{}{}
}

func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

func (d *Dictionary) Empty() bool {
	return d.Len() == 0
}

func (d *Dictionary) Lookup(key string) (Entry, bool) {
	if d == nil {
		return Entry{}, false
	}
	e, ok := d.entries[CanonicalKey(key)]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Keys returns entry keys in first-seen order.
func (d *Dictionary) Keys() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// CommonAliases maps shorthand spellings to the skill they usually stand for.
var CommonAliases = map[string]string{
	"js":                  "javascript",
	"es6":                 "javascript",
	"ts":                  "typescript",
	"py":                  "python",
	"golang":              "go",
	"k8s":                 "kubernetes",
	"ml":                  "machine learning",
	"ai":                  "artificial intelligence",
	"nodejs":              "node.js",
	"node":                "node.js",
	"reactjs":             "react",
	"react.js":            "react",
	"vuejs":               "vue",
	"postgres":            "postgresql",
	"mongo":               "mongodb",
	"sklearn":             "scikit-learn",
	"tf":                  "tensorflow",
	"ci cd":               "ci/cd",
	"cicd":                "ci/cd",
	"rest":                "rest apis",
	"rest api":            "rest apis",
	"oop":                 "object-oriented programming",
	"dsa":                 "data structures",
	"ms excel":            "excel",
	"powerbi":             "power bi",
	"cpp":                 "c++",
	"csharp":              "c#",
	"amazon web services": "aws",
}

// normalizeOnlyAliases are ordinary English words. They resolve when a user
// lists them as a skill but are never matched in free text.
var normalizeOnlyAliases = map[string]struct{}{
	"node": {},
	"rest": {},
}
