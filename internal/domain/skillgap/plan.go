package skillgap

import (
	"fmt"
	"strings"
)

// MaxPlanTasks caps the plan at two weeks.
const MaxPlanTasks = 14

// BuildLearningPlan turns missing skills into a day-by-day plan: each skill
// gets an introduction day followed by a practice day, in the given order.
// Days are numbered from 1 with no gaps and the plan stops at MaxPlanTasks.
func BuildLearningPlan(missing []MissingSkill) []LearningTask {
	tasks := make([]LearningTask, 0, min(2*len(missing), MaxPlanTasks))
	for _, ms := range missing {
		skill := CanonicalKey(ms.Skill)
		if skill == "" {
			continue
		}
		for _, kind := range []TaskKind{TaskIntroduction, TaskPractice} {
			if len(tasks) >= MaxPlanTasks {
				return tasks
			}
			tasks = append(tasks, LearningTask{
				Day:         len(tasks) + 1,
				Skill:       skill,
				Kind:        kind,
				Description: taskDescription(skill, kind, ms.Resources),
			})
		}
	}
	return tasks
}

// taskDescription cites the first resource on the introduction day and the
// second, or else the first, on the practice day.
func taskDescription(skill string, kind TaskKind, resources []Resource) string {
	titles := make([]string, 0, 2)
	for _, r := range resources {
		if t := strings.TrimSpace(r.Title); t != "" {
			titles = append(titles, t)
		}
		if len(titles) == 2 {
			break
		}
	}

	if kind == TaskIntroduction {
		if len(titles) > 0 {
			return fmt.Sprintf("Introduction to %s: %s", skill, titles[0])
		}
		return fmt.Sprintf("Introduction to %s", skill)
	}
	switch len(titles) {
	case 0:
		return fmt.Sprintf("Practice exercises for %s", skill)
	case 1:
		return fmt.Sprintf("Practice %s with %s", skill, titles[0])
	default:
		return fmt.Sprintf("Practice %s with %s", skill, titles[1])
	}
}
