package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/bandwise/internal/band"
	"github.com/abhisek/bandwise/internal/form"
	"github.com/abhisek/bandwise/internal/irt"
	"github.com/abhisek/bandwise/internal/ui/theme"
	"github.com/spf13/cobra"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate ITEM=0|1...",
	Short: "Estimate ability from scored responses to form items",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("form")
		if path == "" {
			return fmt.Errorf("--form is required")
		}
		f, err := form.Load(path)
		if err != nil {
			return err
		}

		responses := make([]irt.Response, 0, len(args))
		for _, a := range args {
			id, val, ok := strings.Cut(a, "=")
			if !ok || (val != "0" && val != "1") {
				return fmt.Errorf("invalid response %q, want ITEM=0 or ITEM=1", a)
			}
			item, ok := f.Item(id)
			if !ok {
				return fmt.Errorf("unknown item %q", id)
			}
			responses = append(responses, irt.Response{Item: item, Correct: val == "1"})
		}

		est, err := irt.EstimateAbility(responses)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, theme.Field("theta", fmt.Sprintf("%+.3f", est.Theta)))
		fmt.Fprintln(out, theme.Field("se", fmt.Sprintf("%.3f", est.StandardError)))
		fmt.Fprintln(out, theme.Field("band", band.ConvertThetaToBand(est.Theta).String()))
		return nil
	},
}

func init() {
	estimateCmd.Flags().String("form", "", "Test form JSON file")
}
