package skillgap

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missingN(n int) []MissingSkill {
	out := make([]MissingSkill, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, MissingSkill{Skill: fmt.Sprintf("skill-%d", i), Weight: 1, Priority: PriorityRequired})
	}
	return out
}

func TestBuildLearningPlan_TwoTasksPerSkill(t *testing.T) {
	plan := BuildLearningPlan(missingN(3))

	require.Len(t, plan, 6)
	for i, task := range plan {
		assert.Equal(t, i+1, task.Day)
		assert.Equal(t, fmt.Sprintf("skill-%d", i/2), task.Skill)
		assert.False(t, task.Completed)
	}
	assert.Equal(t, TaskIntroduction, plan[0].Kind)
	assert.Equal(t, TaskPractice, plan[1].Kind)
	assert.Equal(t, "Introduction to skill-0", plan[0].Description)
	assert.Equal(t, "Practice exercises for skill-0", plan[1].Description)
}

func TestBuildLearningPlan_CappedAtTwoWeeks(t *testing.T) {
	plan := BuildLearningPlan(missingN(10))

	require.Len(t, plan, MaxPlanTasks)
	assert.Equal(t, 14, plan[len(plan)-1].Day)
	assert.Equal(t, "skill-6", plan[len(plan)-1].Skill)
	assert.Equal(t, TaskPractice, plan[len(plan)-1].Kind)
}

func TestBuildLearningPlan_Empty(t *testing.T) {
	plan := BuildLearningPlan(nil)
	assert.NotNil(t, plan)
	assert.Empty(t, plan)

	plan = BuildLearningPlan([]MissingSkill{{Skill: "  "}, {Skill: "Go", Priority: PriorityRequired}})
	require.Len(t, plan, 2)
	assert.Equal(t, "go", plan[0].Skill)
	assert.Equal(t, 1, plan[0].Day)
}

func TestBuildLearningPlan_CitesResources(t *testing.T) {
	plan := BuildLearningPlan([]MissingSkill{
		{Skill: "SQL", Weight: 2, Priority: PriorityRequired, Resources: []Resource{
			{Skill: "sql", Title: "SQLBolt", URL: "https://sqlbolt.com"},
			{Skill: "sql", Title: "Mode SQL Tutorial", URL: "https://mode.com/sql-tutorial"},
		}},
		{Skill: "git", Weight: 1, Priority: PriorityPreferred, Resources: []Resource{
			{Skill: "git", Title: "Pro Git", URL: "https://git-scm.com/book"},
		}},
	})

	require.Len(t, plan, 4)
	assert.Equal(t, "Introduction to sql: SQLBolt", plan[0].Description)
	assert.Equal(t, "Practice sql with Mode SQL Tutorial", plan[1].Description)
	assert.Equal(t, "Introduction to git: Pro Git", plan[2].Description)
	assert.Equal(t, "Practice git with Pro Git", plan[3].Description)
}
