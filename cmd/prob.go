package cmd

import (
	"fmt"

	"github.com/abhisek/bandwise/internal/irt"
	"github.com/abhisek/bandwise/internal/ui/theme"
	"github.com/spf13/cobra"
)

var probCmd = &cobra.Command{
	Use:   "prob",
	Short: "Print the response curve of a 3PL item",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _ := cmd.Flags().GetFloat64("a")
		b, _ := cmd.Flags().GetFloat64("b")
		c, _ := cmd.Flags().GetFloat64("c")
		step, _ := cmd.Flags().GetFloat64("step")
		if step <= 0 {
			return fmt.Errorf("--step must be positive")
		}
		item := irt.Item{ID: "cli", Difficulty: b, Discrimination: a, Guessing: c}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, theme.Title.Render(fmt.Sprintf("a=%.2f b=%.2f c=%.2f", a, b, c)))
		fmt.Fprintf(out, "%8s  %8s  %8s\n", "theta", "P", "info")
		for theta := irt.MinTheta; theta <= irt.MaxTheta+1e-9; theta += step {
			p, err := irt.ProbabilityCorrect(theta, item)
			if err != nil {
				return err
			}
			info, err := irt.Information(theta, item)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%+8.2f  %8.4f  %8.4f\n", theta, p, info)
		}
		return nil
	},
}

func init() {
	probCmd.Flags().Float64("a", 1.0, "Discrimination")
	probCmd.Flags().Float64("b", 0.0, "Difficulty")
	probCmd.Flags().Float64("c", 0.0, "Guessing")
	probCmd.Flags().Float64("step", 0.5, "Theta step")
}
