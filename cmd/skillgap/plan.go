package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"skill-gap/internal/domain/skillgap"
	"skill-gap/internal/usecase"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the learning plan of an analysis",
	Long:  "Prints the learning plan of --id, or of the most recent analysis. --complete and --reopen toggle a day before printing.",
	RunE:  runPlan,
}

var (
	planID       string
	planComplete int
	planReopen   int
)

func init() {
	planCmd.Flags().StringVar(&planID, "id", "", "Analysis id (defaults to the latest)")
	planCmd.Flags().IntVar(&planComplete, "complete", 0, "Mark this day as completed")
	planCmd.Flags().IntVar(&planReopen, "reopen", 0, "Mark this day as not completed")
	planCmd.MarkFlagsMutuallyExclusive("complete", "reopen")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	uc := usecase.NewAnalysisUsecase(store, nil, nil, newLogger())

	var id uuid.UUID
	if planID != "" {
		id, err = uuid.Parse(planID)
		if err != nil {
			return fmt.Errorf("invalid --id: %w", err)
		}
	} else {
		latest, err := uc.List(ctx, localUser, 1)
		if err != nil {
			return err
		}
		if len(latest) == 0 {
			return errors.New("no analyses yet, run `skillgap analyze` first")
		}
		id = latest[0].ID
	}

	var plan []skillgap.LearningTask
	switch {
	case planComplete != 0:
		plan, err = uc.SetTaskCompleted(ctx, localUser, id, planComplete, true)
	case planReopen != 0:
		plan, err = uc.SetTaskCompleted(ctx, localUser, id, planReopen, false)
	default:
		got, gerr := uc.Get(ctx, localUser, id)
		plan, err = got.Plan, gerr
	}
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrAnalysisNotFound):
			return fmt.Errorf("analysis %s not found", id)
		case errors.Is(err, usecase.ErrTaskNotFound), errors.Is(err, usecase.ErrInvalidInput):
			return fmt.Errorf("no task for that day in analysis %s", id)
		}
		return err
	}
	return printJSON(cmd.OutOrStdout(), plan)
}
