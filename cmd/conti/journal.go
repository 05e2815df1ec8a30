package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	journalLimit int
	journalPrune time.Duration
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Show the journal of confirmed deletions",
	Args:  cobra.NoArgs,
	RunE:  runJournal,
}

func init() {
	journalCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "Number of entries to show")
	journalCmd.Flags().DurationVar(&journalPrune, "prune", 0, "Drop entries older than this before listing")
}

func runJournal(cmd *cobra.Command, _ []string) error {
	a, err := newApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.close()

	repo, err := a.storage()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if journalPrune > 0 {
		n, err := repo.PruneDeletions(ctx, journalPrune)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "pruned %d entries\n", n)
	}

	entries, err := repo.ListDeletions(ctx, journalLimit)
	if err != nil {
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "Quando", "Lista", "Record", "Esito", "Errore")
	for _, e := range entries {
		t.Row(
			fmt.Sprint(e.ID),
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			e.List,
			e.Endpoint+"/"+e.RecordID,
			e.Status,
			e.Error,
		)
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	return nil
}
