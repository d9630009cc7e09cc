package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show recent lesson reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		reports, err := s.ReportRepo().Recent(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("query reports: %w", err)
		}
		if len(reports) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No lessons recorded yet.")
			return nil
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-19s  %-24s  %-36s  %s\n", "Finished", "Session", "Article", "Quiz")
		fmt.Fprintln(out, strings.Repeat("─", 92))
		var correct, total int
		for _, r := range reports {
			fmt.Fprintf(out, "%-19s  %-24s  %-36s  %d/%d\n",
				r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				truncate(r.SessionID, 24),
				truncate(r.ArticleTitle, 36),
				r.QuizCorrect, r.QuizTotal)
			correct += r.QuizCorrect
			total += r.QuizTotal
		}
		fmt.Fprintln(out, strings.Repeat("─", 92))
		if total > 0 {
			fmt.Fprintf(out, "%d lessons, %.0f%% of quiz questions correct\n",
				len(reports), 100*float64(correct)/float64(total))
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().IntP("limit", "n", 10, "Number of reports to show")
}

// contextWithTimeout derives a command context bounded by d when d > 0.
func contextWithTimeout(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
