package cmd

import (
	"fmt"
	"strconv"

	"github.com/abhisek/bandwise/internal/band"
	"github.com/abhisek/bandwise/internal/ui/theme"
	"github.com/spf13/cobra"
)

var bandCmd = &cobra.Command{
	Use:   "band THETA...",
	Short: "Convert ability estimates to reporting bands",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, a := range args {
			theta, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return fmt.Errorf("parse theta %q: %w", a, err)
			}
			fmt.Fprintln(out, theme.Field(fmt.Sprintf("theta %+.2f", theta), band.ConvertThetaToBand(theta).String()))
		}
		return nil
	},
}
