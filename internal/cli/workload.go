package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/school-core/internal/server"
)

func newWorkloadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "workload",
		Short: "Print weekly periods per active teacher",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logr, db, err := openStore(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			app := server.NewApp(cfg, logr, db, nil)
			defer app.Close() //nolint:errcheck

			rows, err := app.Schedules.Workload(cmd.Context())
			if err != nil {
				return fmt.Errorf("query workload: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No active teachers.")
				return nil
			}

			fmt.Fprintf(out, "%-10s  %-32s  %s\n", "Teacher", "Name", "Periods")
			fmt.Fprintln(out, strings.Repeat("─", 52))
			for _, r := range rows {
				fmt.Fprintf(out, "%-10s  %-32s  %d\n", r.TeacherID, r.DisplayName, r.PeriodsPerWeek)
			}
			return nil
		},
	}
}
