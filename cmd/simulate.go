package cmd

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/abhisek/bandwise/internal/assets"
	"github.com/abhisek/bandwise/internal/form"
	"github.com/abhisek/bandwise/internal/irt"
	"github.com/abhisek/bandwise/internal/session"
	"github.com/abhisek/bandwise/internal/store"
	"github.com/abhisek/bandwise/internal/ui/theme"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a simulated candidate through a test form",
	Long: "Run a simulated candidate of known ability through a test form. Responses are\n" +
		"drawn from the 3PL model with a seeded generator, so a run is reproducible.\n" +
		"Routing and score events are written to the audit database unless --no-audit.",
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().String("form", "", "Test form JSON file")
	simulateCmd.Flags().Float64("theta", 0, "True ability of the simulated candidate")
	simulateCmd.Flags().Uint64("seed", 1, "Random seed for response generation")
	simulateCmd.Flags().Bool("offline", false, "Disable asset prefetching")
	simulateCmd.Flags().Bool("no-audit", false, "Do not record audit events")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("form")
	if path == "" {
		return fmt.Errorf("--form is required")
	}
	theta, _ := cmd.Flags().GetFloat64("theta")
	seed, _ := cmd.Flags().GetUint64("seed")
	offline, _ := cmd.Flags().GetBool("offline")
	noAudit, _ := cmd.Flags().GetBool("no-audit")

	f, err := form.Load(path)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	deps := session.Deps{}
	cache := assets.NewMemoryCache()
	if !offline {
		cfg := assets.ConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			return err
		}
		deps.Fetcher = assets.NewHTTPFetcher(cfg)
		deps.Opener = assets.OpenMemoryCache(cache)
	}

	if !noAudit {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve db path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
		deps.Audit = st.AuditRepo()
	}

	sess, err := session.New(ctx, f, deps)
	if err != nil {
		return err
	}
	defer sess.Close(ctx)

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, theme.Title.Render(fmt.Sprintf("Session %s", sess.ID)))

	for {
		block := sess.CurrentBlock()
		correct := 0
		for _, id := range block.ItemIDs {
			ok, err := simulateResponse(rng, theta, f, id)
			if err != nil {
				return err
			}
			if ok {
				correct++
			}
			if _, err := sess.Answer(id, ok); err != nil {
				return err
			}
		}
		est := sess.Estimate()
		fmt.Fprintf(out, "%s %s %d/%d  theta %+.2f (se %.2f)\n",
			theme.Label.Render(fmt.Sprintf("stage %d", sess.Stage()+1)),
			theme.Value.Render(block.ID), correct, len(block.ItemIDs), est.Theta, est.StandardError)

		if !sess.HasNextStage() {
			break
		}
		d, err := sess.CompleteStage(ctx)
		if err != nil {
			return err
		}
		if d.Fallback {
			fmt.Fprintln(out, theme.Warning.Render(fmt.Sprintf("  no %s block in pool; fell back to %s", d.Target, d.BlockID)))
		}
	}

	res, err := sess.Finish(ctx)
	if err != nil {
		return err
	}
	renderResult(out, res, sess, offline)
	return nil
}

// simulateResponse draws a scored answer for a candidate of ability theta.
func simulateResponse(rng *rand.Rand, theta float64, f *form.Form, itemID string) (bool, error) {
	item, ok := f.Item(itemID)
	if !ok {
		return false, fmt.Errorf("unknown item %q", itemID)
	}
	p, err := irt.ProbabilityCorrect(theta, item)
	if err != nil {
		return false, err
	}
	return rng.Float64() < p, nil
}

func renderResult(w io.Writer, res session.Result, sess *session.Session, offline bool) {
	lines := []string{
		theme.Field("band", res.Band.String()),
		theme.Field("theta", fmt.Sprintf("%+.3f", res.Estimate.Theta)),
		theme.Field("se", fmt.Sprintf("%.3f", res.Estimate.StandardError)),
		theme.Field("items", fmt.Sprintf("%d/%d correct (%.0f%%)",
			res.Summary.TotalCorrect, res.Summary.TotalItems, 100*res.Summary.Accuracy)),
		theme.Field("path", strings.Join(res.Path, " > ")),
	}
	if !offline {
		st := sess.PrefetchStats()
		lines = append(lines, theme.Field("prefetch",
			fmt.Sprintf("%d fetched, %d hits, %d failed, %d discarded", st.Fetched, st.Hits, st.Failures, st.Discarded)))
	}
	fmt.Fprintln(w, theme.Card.Render(strings.Join(lines, "\n")))
}
