package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"conti/internal/charts"
	"conti/internal/cli"
	"conti/internal/core"
	applog "conti/internal/log"
	"conti/internal/markup"
	"conti/internal/storage"
	"conti/internal/tui"
	"conti/internal/watch"
)

var (
	browseNoWatch bool
	browseFresh   bool
)

var browseCmd = &cobra.Command{
	Use:   "browse <file|url>",
	Short: "Browse a record list interactively",
	Args:  cobra.ExactArgs(1),
	RunE:  runBrowse,
}

func init() {
	browseCmd.Flags().BoolVar(&browseNoWatch, "no-watch", false, "Do not reload when the source file changes")
	browseCmd.Flags().BoolVar(&browseFresh, "fresh", false, "Forget the saved view state and start from page 1")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	// the terminal belongs to the TUI; logs only go to CONTI_LOG_FILE
	a, err := newApp(io.Discard)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	board := tui.NewBoard()
	deps := a.deps()
	deps.Notifier = board

	list, _, err := a.openList(ctx, args[0], deps)
	if err != nil {
		return err
	}
	a.caches.StartCleanup(10 * time.Minute)

	var save func(context.Context, core.State) error
	if repo, err := a.storage(); err == nil {
		save = func(ctx context.Context, st core.State) error {
			return repo.SaveViewState(ctx, list.Name(), st)
		}
		restoreView(ctx, a.logger, repo, list.Restore, list.Name(), browseFresh)
	}

	source := a.source(args[0])
	opts := tui.Options{
		Title:     fmt.Sprintf("%s · %s", list.Name(), args[0]),
		Board:     board,
		Charts:    charts.NewRegistry(charts.ParseTheme(a.cfg.Theme), a.logger),
		Logger:    a.logger,
		SaveState: save,
		Reload: func(ctx context.Context) (*markup.Document, error) {
			return a.loadDocument(ctx, source)
		},
	}

	if !browseNoWatch && !cli.IsRemote(source) {
		changes := make(chan struct{}, 1)
		w, err := watch.NewFileWatcher(source, watch.DefaultDebounce, func(string) {
			select {
			case changes <- struct{}{}:
			default:
			}
		}, a.logger)
		if err == nil {
			err = w.Start(ctx)
		}
		if err != nil {
			a.logger.Warn("File watching disabled", applog.FieldError, err)
		} else {
			defer w.Stop()
			opts.Changes = changes
		}
	}

	stopPruner := a.startJournalPruner(ctx)
	defer stopPruner()

	p := tea.NewProgram(tui.New(ctx, list, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run browser: %w", err)
	}
	return nil
}

// viewStates is the part of the repository restoreView needs.
type viewStates interface {
	LoadViewState(ctx context.Context, list string) (storage.ViewState, error)
	ClearViewState(ctx context.Context, list string) error
}

// restoreView applies the saved state of list, or forgets it when fresh.
func restoreView(ctx context.Context, logger *applog.Logger, repo viewStates, restore func(core.State), name string, fresh bool) {
	if fresh {
		if err := repo.ClearViewState(ctx, name); err != nil {
			logger.Warn("Failed to clear view state",
				applog.NewFields().WithError(err).WithOperation(applog.OpRestore).WithList(name).ToSlice()...)
		}
		return
	}
	vs, err := repo.LoadViewState(ctx, name)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return
	case err != nil:
		logger.Warn("Failed to load view state",
			applog.NewFields().WithError(err).WithOperation(applog.OpRestore).WithList(name).ToSlice()...)
		return
	}
	restore(vs.CoreState())
	logger.Debug("View state restored", applog.FieldList, name, applog.FieldPage, vs.Page)
}
