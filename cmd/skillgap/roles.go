package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"skill-gap/internal/usecase"
)

var rolesCmd = &cobra.Command{
	Use:   "roles [query]",
	Short: "List catalog roles, optionally ranked by a search query",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRoles,
}

var rolesJSON bool

func init() {
	rolesCmd.Flags().BoolVar(&rolesJSON, "json", false, "Print roles with requirements as JSON")
	rootCmd.AddCommand(rolesCmd)
}

func runRoles(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	query := ""
	if len(args) == 1 {
		query = args[0]
	}
	roles, err := usecase.NewRoleUsecase(store).List(cmd.Context(), query)
	if err != nil {
		return err
	}

	if rolesJSON {
		return printJSON(cmd.OutOrStdout(), roles)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tSKILLS")
	for _, r := range roles {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", r.ID, r.Title, r.Category, len(r.Requirements))
	}
	return tw.Flush()
}
