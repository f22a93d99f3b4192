package dto

import (
	"time"

	"github.com/google/uuid"

	"skill-gap/internal/domain/user"
)

type ProfileRequest struct {
	IsStudent   bool     `json:"is_student"`
	Year        string   `json:"year" validate:"max=32"`
	Major       string   `json:"major" validate:"max=120"`
	Skills      []string `json:"skills" validate:"max=100,dive,max=80"`
	Coursework  []string `json:"coursework" validate:"max=100,dive,max=120"`
	Experiences []string `json:"experiences" validate:"max=100,dive,max=2000"`
}

type ProfileResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	IsStudent   bool      `json:"is_student"`
	Year        string    `json:"year"`
	Major       string    `json:"major"`
	Skills      []string  `json:"skills"`
	Coursework  []string  `json:"coursework"`
	Experiences []string  `json:"experiences"`
	HasResume   bool      `json:"has_resume"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ResumeResponse struct {
	Profile         ProfileResponse `json:"profile"`
	Characters      int             `json:"characters"`
	SuggestedSkills []string        `json:"suggested_skills"`
	Archived        bool            `json:"archived"`
}

func NewProfileResponse(p user.Profile) ProfileResponse {
	return ProfileResponse{
		UserID:      p.UserID,
		IsStudent:   p.IsStudent,
		Year:        p.Year,
		Major:       p.Major,
		Skills:      nonNilStrings(p.Skills),
		Coursework:  nonNilStrings(p.Coursework),
		Experiences: nonNilStrings(p.Experiences),
		HasResume:   p.HasResume(),
		UpdatedAt:   p.UpdatedAt,
	}
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
