package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/bandwise/internal/form"
	"github.com/abhisek/bandwise/internal/stage"
	"github.com/abhisek/bandwise/internal/ui/theme"
	"github.com/spf13/cobra"
)

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Route a stage score to the next block",
	Long: "Route a stage score to the next block. The pool comes from --form/--stage,\n" +
		"or from repeated --block ID=DIFFICULTY flags in pool order.",
	RunE: func(cmd *cobra.Command, args []string) error {
		score, _ := cmd.Flags().GetFloat64("score")
		maxScore, _ := cmd.Flags().GetFloat64("max")

		pool, err := routePool(cmd)
		if err != nil {
			return err
		}

		id, err := stage.RouteNextStage(score, maxScore, pool)
		if err != nil {
			return err
		}
		d, _ := stage.Decide(score, maxScore, pool)

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, theme.Field("pct", fmt.Sprintf("%.3f", d.Pct)))
		fmt.Fprintln(out, theme.Field("target", string(d.Target)))
		fmt.Fprintln(out, theme.Field("block", id))
		if d.Fallback {
			fmt.Fprintln(out, theme.Warning.Render("target tier missing from pool; fell back to first block"))
		}
		return nil
	},
}

func init() {
	routeCmd.Flags().Float64("score", 0, "Raw score on the completed stage")
	routeCmd.Flags().Float64("max", 0, "Maximum possible stage score")
	routeCmd.Flags().String("form", "", "Test form JSON file")
	routeCmd.Flags().Int("stage", 1, "Stage of --form whose pool to route into")
	routeCmd.Flags().StringArray("block", nil, "Pool block as ID=EASY|MEDIUM|HARD (repeatable)")
}

func routePool(cmd *cobra.Command) ([]stage.Block, error) {
	if path, _ := cmd.Flags().GetString("form"); path != "" {
		f, err := form.Load(path)
		if err != nil {
			return nil, err
		}
		idx, _ := cmd.Flags().GetInt("stage")
		if idx < 0 || idx >= len(f.Stages) {
			return nil, fmt.Errorf("form %s has no stage %d", f.ID, idx)
		}
		return f.Stages[idx].Pool(), nil
	}

	specs, _ := cmd.Flags().GetStringArray("block")
	pool := make([]stage.Block, 0, len(specs))
	for _, spec := range specs {
		id, diff, ok := strings.Cut(spec, "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid --block %q, want ID=DIFFICULTY", spec)
		}
		d := stage.Difficulty(strings.ToUpper(diff))
		if !d.Valid() {
			return nil, fmt.Errorf("invalid difficulty %q in --block %q", diff, spec)
		}
		pool = append(pool, stage.Block{ID: id, TargetDifficulty: d})
	}
	return pool, nil
}
