package skillgap

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

const emergingWindow = 20

// FallbackCounts is used whenever no market dataset can be loaded.
var FallbackCounts = map[string]int{
	"python":           22016,
	"sql":              18322,
	"java":             12482,
	"javascript":       9661,
	"excel":            12221,
	"aws":              8853,
	"git":              6420,
	"docker":           5832,
	"react":            6900,
	"node.js":          5800,
	"typescript":       4500,
	"html":             11000,
	"css":              10000,
	"linux":            5000,
	"mathematics":      4000,
	"statistics":       3500,
	"pandas":           3000,
	"numpy":            2500,
	"scikit-learn":     2000,
	"c++":              5000,
	"ros":              1500,
	"embedded systems": 2000,
	"unity":            3000,
	"c#":               4000,
	"machine learning": 6000,
	"tableau":          3000,
	"power bi":         2500,
}

// EmergingAllowList is a curated list of technologies treated as emerging
// when they also sit in the low-count tail of the dataset. It is a heuristic,
// not a trend measurement.
var EmergingAllowList = []string{
	"kubernetes", "terraform", "graphql", "microservices", "pytorch",
	"spark", "kafka", "prometheus", "grafana",
}

type combinationRule struct {
	anchor   string
	triggers []string
	members  []string
}

var combinationRules = []combinationRule{
	{anchor: "python", triggers: []string{"python"}, members: []string{"pandas", "numpy", "scikit-learn", "sql", "git"}},
	{anchor: "javascript", triggers: []string{"javascript"}, members: []string{"react", "node.js", "typescript", "html", "css", "git"}},
	{anchor: "java", triggers: []string{"java"}, members: []string{"spring", "maven", "git", "sql", "docker"}},
	{anchor: "machine learning", triggers: []string{"machine learning", "python"}, members: []string{"python", "pandas", "scikit-learn", "tensorflow", "jupyter notebooks"}},
	{anchor: "data analysis", triggers: []string{"data analysis", "python"}, members: []string{"python", "sql", "pandas", "excel", "tableau"}},
	{anchor: "backend", triggers: []string{"python", "javascript"}, members: []string{"python", "sql", "rest apis", "docker", "git"}},
	{anchor: "frontend", triggers: []string{"javascript", "html"}, members: []string{"javascript", "react", "html", "css", "git"}},
	{anchor: "devops", triggers: []string{"docker", "kubernetes"}, members: []string{"docker", "kubernetes", "aws", "linux", "git", "ci/cd"}},
	{anchor: "cloud", triggers: []string{"aws", "azure"}, members: []string{"aws", "docker", "kubernetes", "terraform", "linux"}},
}

type DemandCategory string

const (
	DemandHigh     DemandCategory = "high-demand"
	DemandMedium   DemandCategory = "medium-demand"
	DemandLow      DemandCategory = "low-demand"
	DemandEmerging DemandCategory = "emerging"
)

type CombinationGroup struct {
	Anchor  string   `json:"anchor"`
	Members []string `json:"members"`
}

type MarketData struct {
	Counts       map[string]int      `json:"counts"`
	Emerging     map[string]struct{} `json:"-"`
	Combinations []CombinationGroup  `json:"combinations"`
	UsedFallback bool                `json:"usedFallback"`

	highThreshold   int
	mediumThreshold int
}

// ParseMarketCSV reads "<skill>,<count>" rows after a header row. Rows with an
// empty skill or an unusable count are skipped and duplicate skills are summed.
func ParseMarketCSV(r io.Reader) (map[string]int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	out := map[string]int{}
	header := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				header = false
				continue
			}
			return nil, err
		}
		if header {
			header = false
			continue
		}
		if len(rec) < 2 {
			continue
		}
		key := CanonicalKey(rec[0])
		if key == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil || n < 0 {
			continue
		}
		out[key] += n
	}
	return out, nil
}

// AnalyzeMarket derives emerging skills, demand thresholds and combination
// groups. Nil or empty counts are replaced by FallbackCounts.
func AnalyzeMarket(counts map[string]int) *MarketData {
	md := &MarketData{Counts: map[string]int{}, Emerging: map[string]struct{}{}}
	src := counts
	if len(src) == 0 {
		src = FallbackCounts
		md.UsedFallback = true
	}
	for k, v := range src {
		key := CanonicalKey(k)
		if key == "" || v < 0 {
			continue
		}
		md.Counts[key] += v
	}

	type kv struct {
		key   string
		count int
	}
	asc := make([]kv, 0, len(md.Counts))
	for k, v := range md.Counts {
		asc = append(asc, kv{key: k, count: v})
	}
	sort.Slice(asc, func(i, j int) bool {
		if asc[i].count != asc[j].count {
			return asc[i].count < asc[j].count
		}
		return asc[i].key < asc[j].key
	})

	allow := map[string]struct{}{}
	for _, s := range EmergingAllowList {
		allow[s] = struct{}{}
	}
	for i := 0; i < len(asc) && i < emergingWindow; i++ {
		if _, ok := allow[asc[i].key]; ok {
			md.Emerging[asc[i].key] = struct{}{}
		}
	}

	if n := len(asc); n > 0 {
		desc := make([]int, n)
		for i := range asc {
			desc[n-1-i] = asc[i].count
		}
		md.highThreshold = desc[int(math.Floor(float64(n)*0.2))]
		md.mediumThreshold = desc[int(math.Floor(float64(n)*0.5))]
	}

	for _, rule := range combinationRules {
		triggered := false
		for _, t := range rule.triggers {
			if _, ok := md.Counts[t]; ok {
				triggered = true
				break
			}
		}
		if !triggered {
			continue
		}
		members := make([]string, 0, len(rule.members))
		for _, m := range rule.members {
			if _, ok := md.Counts[m]; ok {
				members = append(members, m)
			}
		}
		if len(members) == 0 {
			continue
		}
		md.Combinations = append(md.Combinations, CombinationGroup{Anchor: rule.anchor, Members: members})
	}

	return md
}

func (m *MarketData) Demand(skill string) int {
	if m == nil {
		return 0
	}
	return m.Counts[CanonicalKey(skill)]
}

func (m *MarketData) IsEmerging(skill string) bool {
	if m == nil {
		return false
	}
	_, ok := m.Emerging[CanonicalKey(skill)]
	return ok
}

func (m *MarketData) Category(skill string) DemandCategory {
	if m == nil {
		return DemandLow
	}
	if m.IsEmerging(skill) {
		return DemandEmerging
	}
	d := m.Demand(skill)
	if d <= 0 {
		return DemandLow
	}
	if d >= m.highThreshold {
		return DemandHigh
	}
	if d >= m.mediumThreshold {
		return DemandMedium
	}
	return DemandLow
}

// EmergingList returns the emerging skills in sorted order.
func (m *MarketData) EmergingList() []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.Emerging))
	for k := range m.Emerging {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// TopSkills returns up to n skills ordered by count, highest first.
func (m *MarketData) TopSkills(n int) []SkillCount {
	if m == nil {
		return nil
	}
	out := make([]SkillCount, 0, len(m.Counts))
	for k, v := range m.Counts {
		out = append(out, SkillCount{Skill: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Skill < out[j].Skill
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// PrioritizeGaps ranks missing skills by priority and then by
// weight * ln(1 + demand).
func (m *MarketData) PrioritizeGaps(missing []MissingSkill) []PrioritizedGap {
	out := make([]PrioritizedGap, 0, len(missing))
	for _, ms := range missing {
		demand := m.Demand(ms.Skill)
		out = append(out, PrioritizedGap{
			Skill:          ms.Skill,
			Weight:         ms.Weight,
			Priority:       ms.Priority,
			MarketDemand:   demand,
			MarketPriority: ms.Weight * math.Log1p(float64(demand)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri := out[i].Priority == PriorityRequired
		rj := out[j].Priority == PriorityRequired
		if ri != rj {
			return ri
		}
		return out[i].MarketPriority > out[j].MarketPriority
	})
	return out
}
