package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/jarvis/internal/content"
)

var lessonCmd = &cobra.Command{
	Use:   "lesson",
	Short: "Work with lesson files",
}

var lessonCheckCmd = &cobra.Command{
	Use:   "check <file>...",
	Short: "Validate YAML lesson files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			l, err := content.LoadFile(path)
			if err != nil {
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "✗ %s\n  %v\n", path, err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %q, %d paragraphs, %d questions, %d words\n",
				path, l.Article.Title, len(l.Article.Paragraphs), len(l.Article.Quiz), len(l.Vocab))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d lesson files invalid", failed, len(args))
		}
		return nil
	},
}

func init() {
	lessonCmd.AddCommand(lessonCheckCmd)
}
