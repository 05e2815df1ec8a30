package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"conti/internal/core"
	"conti/internal/services"
)

var (
	deleteSource string
	deleteYes    bool
	deleteRender string
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a record",
	Long: `Delete a record through DELETE <endpoint>/<id>. With --source the record is
also removed from the rendered list, which can be written back with --render.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().StringVar(&deleteSource, "source", "", "Page holding the record list")
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")
	deleteCmd.Flags().StringVar(&deleteRender, "render", "", "Write the updated page to this HTML file (needs --source)")
}

// promptConfirmer asks on the terminal.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func (p promptConfirmer) Confirm(_ context.Context, message string) bool {
	fmt.Fprintf(p.out, "%s [y/N] ", message)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "s", "si", "sì":
		return true
	}
	return false
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	id := args[0]
	out := cmd.OutOrStdout()

	deps := a.deps()
	deps.Notifier = services.NotifyFunc(func(msg string) { fmt.Fprintln(cmd.ErrOrStderr(), msg) })
	if !deleteYes {
		deps.Confirmer = promptConfirmer{in: bufio.NewReader(cmd.InOrStdin()), out: out}
	}

	if deleteSource == "" {
		return deleteDirect(ctx, a, deps, id, out)
	}

	list, doc, err := a.openList(ctx, deleteSource, deps)
	if err != nil {
		return err
	}
	target := findCard(list, id)
	if target == nil {
		return fmt.Errorf("record %s not found in %s", id, deleteSource)
	}
	if err := list.ConfirmAndDelete(ctx, target); err != nil {
		return err
	}
	fmt.Fprintf(out, "deleted %s (%s)\n", id, list.Status())

	if deleteRender != "" {
		f, err := os.Create(deleteRender)
		if err != nil {
			return fmt.Errorf("create %s: %w", deleteRender, err)
		}
		defer f.Close()
		return doc.Render(f)
	}
	return nil
}

func findCard(list *services.RecordList, id string) *core.Card {
	for _, c := range list.Cards() {
		if c.ID == id || c.DeleteID == id {
			return c
		}
	}
	return nil
}

// deleteDirect deletes a record that is not on any loaded page.
func deleteDirect(ctx context.Context, a *app, deps services.Deps, id string, out io.Writer) error {
	if err := services.DeleteRecord(ctx, deps, a.list.Name, a.list.RecordEndpoint, id); err != nil {
		return err
	}
	fmt.Fprintf(out, "deleted %s\n", id)
	return nil
}
