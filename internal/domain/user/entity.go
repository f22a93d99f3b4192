package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile holds what a student tells us about themselves. Skills, coursework
// and resume text all feed the user skill set during analysis.
type Profile struct {
	UserID      uuid.UUID
	IsStudent   bool
	Year        string
	Major       string
	Skills      []string
	Coursework  []string
	Experiences []string
	ResumeText  string
	ResumeKey   string
	UpdatedAt   time.Time
}

func (p Profile) HasResume() bool {
	return len(p.ResumeText) > 0
}
