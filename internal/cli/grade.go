package cli

import (
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/noah-isme/school-core/internal/grading"
)

func newGradeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "grade [score]",
		Short: "Print the grade label for a score",
		Long:  "Print the grade label for a score. Without a score the ungraded label is printed.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var score *float64
			if len(args) == 1 {
				v, err := strconv.ParseFloat(args[0], 64)
				if err != nil {
					return fmt.Errorf("score must be a number (got '%s')", args[0])
				}
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return fmt.Errorf("score must be a finite number (got '%s')", args[0])
				}
				score = &v
			}
			fmt.Fprintln(cmd.OutOrStdout(), grading.Classify(score))
			return nil
		},
	}
}
