package skillgap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoles(skills ...string) []Role {
	reqs := make([]Requirement, 0, len(skills))
	for _, s := range skills {
		reqs = append(reqs, Requirement{Skill: s, Weight: 1, Priority: PriorityRequired})
	}
	return []Role{{ID: "r1", Title: "Test Role", Category: "Engineering", Requirements: reqs}}
}

func TestCanonicalKey(t *testing.T) {
	assert.Equal(t, "python", CanonicalKey("  Python  "))
	assert.Equal(t, "machine learning", CanonicalKey("Machine\t  Learning"))
	assert.Equal(t, "", CanonicalKey("   "))
	assert.Equal(t, CanonicalKey("node.js"), CanonicalKey(CanonicalKey("Node.JS")))
}

func TestBuildDictionary_MergesCaseVariants(t *testing.T) {
	dict := BuildDictionary(
		testRoles("Python", " python ", "Machine  Learning"),
		[]Resource{{Skill: "SQL", Title: "SQLBolt", URL: "https://sqlbolt.com", Type: "interactive"}},
	)

	require.Equal(t, 3, dict.Len())
	assert.Equal(t, []string{"python", "machine learning", "sql"}, dict.Keys())

	e, ok := dict.Lookup("PYTHON")
	require.True(t, ok)
	assert.Equal(t, "Python", e.CanonicalForm)
	assert.Equal(t, 2, e.SourceCount)
	assert.Equal(t, []string{"python"}, e.AliasList())

	e, ok = dict.Lookup("sql")
	require.True(t, ok)
	assert.Equal(t, 1, e.SourceCount)
	assert.Empty(t, e.AliasList())
}

func TestBuildDictionary_Empty(t *testing.T) {
	assert.True(t, BuildDictionary(nil, nil).Empty())
	assert.True(t, BuildDictionary(testRoles("  "), nil).Empty())

	var nilDict *Dictionary
	assert.True(t, nilDict.Empty())
	assert.Nil(t, nilDict.Keys())
	_, ok := nilDict.Lookup("python")
	assert.False(t, ok)
}

func TestBuildDictionary_Aliases(t *testing.T) {
	dict := BuildDictionary(testRoles("JavaScript", "ML"), nil, WithAliases(map[string]string{
		"js":  "javascript",
		"k8s": "kubernetes",
		"ml":  "machine learning",
	}))

	assert.Equal(t, Normalized{Key: "javascript", Listed: true}, Normalize("JS", dict))
	// target not in vocabulary
	assert.Equal(t, Normalized{Key: "k8s"}, Normalize("k8s", dict))
	// alias that is already an entry keeps its own key
	assert.Equal(t, Normalized{Key: "ml", Listed: true}, Normalize("ml", dict))

	e, _ := dict.Lookup("javascript")
	assert.Contains(t, e.AliasList(), "js")
}
