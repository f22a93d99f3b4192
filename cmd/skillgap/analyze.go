package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"skill-gap/internal/domain/skillgap"
	"skill-gap/internal/infrastructure/resumetext"
	"skill-gap/internal/usecase"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score the local profile against a role",
	Long:  "Updates the local profile from --skills/--coursework/--experience when given, scores it against --role and prints the result with its learning plan as JSON.",
	RunE:  runAnalyze,
}

var (
	analyzeRole        string
	analyzeSkills      []string
	analyzeCoursework  []string
	analyzeExperiences []string
	analyzeJDTitle     string
	analyzeJDFile      string
	analyzeResumeFile  string
	analyzeMarketCSV   string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeRole, "role", "r", "", "Role id from `skillgap roles` (required)")
	analyzeCmd.Flags().StringSliceVarP(&analyzeSkills, "skills", "s", nil, "Comma separated skills; replaces the stored list")
	analyzeCmd.Flags().StringSliceVar(&analyzeCoursework, "coursework", nil, "Comma separated courses; replaces the stored list")
	analyzeCmd.Flags().StringArrayVar(&analyzeExperiences, "experience", nil, "One experience bullet; repeat the flag for more")
	analyzeCmd.Flags().StringVar(&analyzeJDTitle, "jd-title", "", "Job description title")
	analyzeCmd.Flags().StringVar(&analyzeJDFile, "jd-file", "", "Path to a plain-text job description")
	analyzeCmd.Flags().StringVar(&analyzeResumeFile, "resume-file", "", "Path to a PDF, DOCX or text resume")
	analyzeCmd.Flags().StringVar(&analyzeMarketCSV, "market-csv", "", "Path to a skill,count CSV with market demand")

	if err := analyzeCmd.MarkFlagRequired("role"); err != nil {
		panic(fmt.Sprintf("failed to mark role flag as required: %v", err))
	}

	rootCmd.AddCommand(analyzeCmd)
}

type analyzeOutput struct {
	ID           string                  `json:"id"`
	RoleID       string                  `json:"roleId"`
	Result       skillgap.ScoreResult    `json:"result"`
	LearningPlan []skillgap.LearningTask `json:"learningPlan"`
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := newLogger()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if cmd.Flags().Changed("skills") || cmd.Flags().Changed("coursework") || cmd.Flags().Changed("experience") {
		profiles := usecase.NewProfileUsecase(store, nil, logger)
		current, err := profiles.Get(ctx, localUser)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		in := usecase.ProfileInput{
			IsStudent:   current.IsStudent,
			Year:        current.Year,
			Major:       current.Major,
			Skills:      current.Skills,
			Coursework:  current.Coursework,
			Experiences: current.Experiences,
		}
		if cmd.Flags().Changed("skills") {
			in.Skills = analyzeSkills
		}
		if cmd.Flags().Changed("coursework") {
			in.Coursework = analyzeCoursework
		}
		if cmd.Flags().Changed("experience") {
			in.Experiences = analyzeExperiences
		}
		if _, err := profiles.Upsert(ctx, localUser, in); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
	}

	jdText := ""
	if analyzeJDFile != "" {
		b, err := os.ReadFile(analyzeJDFile)
		if err != nil {
			return fmt.Errorf("read job description: %w", err)
		}
		jdText = string(b)
	}

	resume := ""
	if analyzeResumeFile != "" {
		resume, err = readResume(analyzeResumeFile)
		if err != nil {
			return err
		}
	}

	uc := usecase.NewAnalysisUsecase(store, marketLoader(analyzeMarketCSV), nil, logger)
	a, err := uc.Run(ctx, usecase.AnalysisInput{
		UserID:     localUser,
		RoleID:     analyzeRole,
		JDTitle:    analyzeJDTitle,
		JDText:     jdText,
		ResumeText: resume,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrRoleNotFound) {
			return fmt.Errorf("unknown role %q, see `skillgap roles`", analyzeRole)
		}
		return err
	}

	return printJSON(cmd.OutOrStdout(), analyzeOutput{
		ID:           a.ID.String(),
		RoleID:       a.RoleID,
		Result:       a.Result,
		LearningPlan: a.Plan,
	})
}

func readResume(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read resume: %w", err)
	}
	text, err := resumetext.Extract(resumetext.DetectMime("", path), data)
	if err != nil {
		return "", fmt.Errorf("extract resume %s: %w", path, err)
	}
	return strings.TrimSpace(text), nil
}
