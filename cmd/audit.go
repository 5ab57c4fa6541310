package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/abhisek/bandwise/internal/store"
	"github.com/abhisek/bandwise/internal/ui/theme"
	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit [SESSION_ID]",
	Short: "Show routing anomalies or a session's audit trail",
	Long: "Without arguments, list fallback routing decisions across all sessions.\n" +
		"With a session id, show its routing decisions and final score.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve db path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		repo := st.AuditRepo()
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			limit, _ := cmd.Flags().GetInt("limit")
			events, err := repo.Anomalies(ctx, limit)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Fprintln(out, theme.Hint.Render("No routing anomalies recorded."))
				return nil
			}
			fmt.Fprintln(out, theme.Title.Render(fmt.Sprintf("%d routing anomalies", len(events))))
			for _, ev := range events {
				printRoutingEvent(out, ev, true)
			}
			return nil
		}

		sessionID := args[0]
		events, err := repo.RoutingEvents(ctx, sessionID)
		if err != nil {
			return err
		}
		score, err := repo.Score(ctx, sessionID)
		if err != nil {
			return err
		}
		if len(events) == 0 && score == nil {
			return fmt.Errorf("no audit events for session %s", sessionID)
		}

		fmt.Fprintln(out, theme.Title.Render("Session "+sessionID))
		for _, ev := range events {
			printRoutingEvent(out, ev, false)
		}
		if score != nil {
			fmt.Fprintln(out, theme.Card.Render(strings.Join([]string{
				theme.Field("band", fmt.Sprintf("%.1f", score.Band)),
				theme.Field("theta", fmt.Sprintf("%+.3f", score.Theta)),
				theme.Field("se", fmt.Sprintf("%.3f", score.StandardError)),
				theme.Field("path", strings.Join(score.Path, " > ")),
			}, "\n")))
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().Int("limit", 50, "Maximum anomalies to list (0 for all)")
}

func printRoutingEvent(w io.Writer, ev store.RoutingEvent, withSession bool) {
	prefix := ""
	if withSession {
		prefix = theme.Label.Render(ev.SessionID) + " "
	}
	line := fmt.Sprintf("%s%s stage %d  %.0f/%.0f (%.2f) -> %s %s",
		prefix,
		ev.Timestamp.Local().Format("2006-01-02 15:04:05"),
		ev.Stage, ev.Score, ev.MaxScore, ev.Pct, ev.Target, ev.BlockID)
	if ev.Fallback {
		line += " " + theme.Warning.Render("fallback")
	}
	fmt.Fprintln(w, line)
}
