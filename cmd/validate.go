package cmd

import (
	"fmt"

	"github.com/abhisek/bandwise/internal/form"
	"github.com/abhisek/bandwise/internal/ui/theme"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate FORM.json...",
	Short: "Validate test form files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		failed := 0
		for _, path := range args {
			f, err := form.Load(path)
			if err != nil {
				failed++
				fmt.Fprintf(out, "%s %s: %v\n", theme.Incorrect.Render("FAIL"), path, err)
				continue
			}
			fmt.Fprintf(out, "%s %s (%s: %d items, %d stages)\n",
				theme.Correct.Render("ok"), path, f.ID, len(f.Items), len(f.Stages))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d forms invalid", failed, len(args))
		}
		return nil
	},
}
