package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"

	"skill-gap/internal/domain/skillgap"
	"skill-gap/internal/domain/user"
	"skill-gap/internal/infrastructure/objectstore"
	"skill-gap/internal/infrastructure/resumetext"
	"skill-gap/internal/repository"
)

const maxProfileItems = 100

type ProfileInput struct {
	IsStudent   bool
	Year        string
	Major       string
	Skills      []string
	Coursework  []string
	Experiences []string
}

type ResumeUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ResumeResult struct {
	Profile         user.Profile
	Text            string
	SuggestedSkills []string
	Archived        bool
}

type ProfileUsecase interface {
	Get(ctx context.Context, userID uuid.UUID) (user.Profile, error)
	Upsert(ctx context.Context, userID uuid.UUID, in ProfileInput) (user.Profile, error)
	UploadResume(ctx context.Context, userID uuid.UUID, up ResumeUpload) (ResumeResult, error)
}

type Profile struct {
	store   repository.Store
	objects objectstore.Store
	log     *log.Logger
}

// NewProfileUsecase accepts a nil objects store; uploads are then parsed but
// not archived.
func NewProfileUsecase(store repository.Store, objects objectstore.Store, logger *log.Logger) *Profile {
	if logger == nil {
		logger = log.Default()
	}
	return &Profile{store: store, objects: objects, log: logger}
}

func (u *Profile) Get(ctx context.Context, userID uuid.UUID) (user.Profile, error) {
	if userID == uuid.Nil {
		return user.Profile{}, ErrUnauthorized
	}
	p, err := u.current(ctx, userID)
	if err != nil {
		return user.Profile{}, ErrInternal
	}
	return p, nil
}

func (u *Profile) current(ctx context.Context, userID uuid.UUID) (user.Profile, error) {
	p, err := u.store.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return emptyProfile(userID), nil
		}
		return user.Profile{}, err
	}
	return p, nil
}

func (u *Profile) Upsert(ctx context.Context, userID uuid.UUID, in ProfileInput) (user.Profile, error) {
	if userID == uuid.Nil {
		return user.Profile{}, ErrUnauthorized
	}
	if len(in.Skills) > maxProfileItems || len(in.Coursework) > maxProfileItems || len(in.Experiences) > maxProfileItems {
		return user.Profile{}, ErrInvalidInput
	}

	p, err := u.current(ctx, userID)
	if err != nil {
		return user.Profile{}, ErrInternal
	}
	p.IsStudent = in.IsStudent
	p.Year = strings.TrimSpace(in.Year)
	p.Major = strings.TrimSpace(in.Major)
	p.Skills = cleanList(in.Skills)
	p.Coursework = cleanList(in.Coursework)
	p.Experiences = cleanList(in.Experiences)

	saved, err := u.store.UpsertProfile(ctx, p)
	if err != nil {
		u.log.Printf("[Profile] upsert failed | user_id=%s err=%v", userID, err)
		return user.Profile{}, ErrInternal
	}
	return saved, nil
}

// UploadResume extracts text from the file, stores it on the profile and
// suggests dictionary skills found in it that the profile does not list yet.
func (u *Profile) UploadResume(ctx context.Context, userID uuid.UUID, up ResumeUpload) (ResumeResult, error) {
	if userID == uuid.Nil {
		return ResumeResult{}, ErrUnauthorized
	}

	mime := resumetext.DetectMime(up.ContentType, up.Filename)
	text, err := resumetext.Extract(mime, up.Data)
	if err != nil {
		switch {
		case errors.Is(err, resumetext.ErrUnsupportedType):
			return ResumeResult{}, ErrResumeUnsupported
		case errors.Is(err, resumetext.ErrEmptyFile):
			return ResumeResult{}, ErrResumeEmpty
		case errors.Is(err, resumetext.ErrTooLarge):
			return ResumeResult{}, ErrResumeTooLarge
		default:
			u.log.Printf("[Profile] resume extraction failed | user_id=%s mime=%s err=%v", userID, mime, err)
			return ResumeResult{}, ErrResumeUnsupported
		}
	}
	if strings.TrimSpace(text) == "" {
		return ResumeResult{}, ErrResumeEmpty
	}

	p, err := u.current(ctx, userID)
	if err != nil {
		return ResumeResult{}, ErrInternal
	}

	out := ResumeResult{Text: text}
	if u.objects != nil {
		key := objectstore.ResumeKey(userID, mime)
		if err := u.objects.Put(ctx, key, mime, up.Data); err != nil {
			u.log.Printf("[Profile] resume archive failed | user_id=%s err=%v", userID, err)
		} else {
			p.ResumeKey = key
			out.Archived = true
		}
	}

	suggested, err := u.suggest(ctx, text, p.Skills)
	if err != nil {
		u.log.Printf("[Profile] skill suggestion skipped | user_id=%s err=%v", userID, err)
	}
	out.SuggestedSkills = suggested

	p.ResumeText = text
	saved, err := u.store.UpsertProfile(ctx, p)
	if err != nil {
		u.log.Printf("[Profile] resume save failed | user_id=%s err=%v", userID, err)
		return ResumeResult{}, ErrInternal
	}
	out.Profile = saved
	u.log.Printf("[Profile] resume stored | user_id=%s mime=%s chars=%d suggested=%d archived=%t",
		userID, mime, len(text), len(suggested), out.Archived)
	return out, nil
}

func (u *Profile) suggest(ctx context.Context, text string, have []string) ([]string, error) {
	roles, err := u.store.ListRoles(ctx)
	if err != nil {
		return []string{}, err
	}
	resources, err := u.store.GetResources(ctx)
	if err != nil {
		return []string{}, err
	}
	dict := skillgap.BuildDictionary(roles, resources, skillgap.WithAliases(skillgap.CommonAliases))

	known := make(map[string]struct{}, len(have))
	for _, s := range have {
		known[skillgap.Normalize(s, dict).Key] = struct{}{}
	}

	out := make([]string, 0)
	for _, key := range skillgap.ExtractSkills(text, dict) {
		if _, ok := known[key]; ok {
			continue
		}
		if e, ok := dict.Lookup(key); ok {
			out = append(out, e.CanonicalForm)
			continue
		}
		out = append(out, key)
	}
	return out, nil
}

func emptyProfile(userID uuid.UUID) user.Profile {
	return user.Profile{
		UserID:      userID,
		IsStudent:   true,
		Skills:      []string{},
		Coursework:  []string{},
		Experiences: []string{},
	}
}

// cleanList trims entries and drops blanks and case-insensitive duplicates,
// keeping the first spelling.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		k := skillgap.CanonicalKey(s)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}
