package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"conti/internal/amqp"
	"conti/internal/api"
	"conti/internal/cache"
	"conti/internal/cli"
	"conti/internal/config"
	applog "conti/internal/log"
	"conti/internal/markup"
	"conti/internal/services"
	"conti/internal/storage"
	"conti/internal/worker"
)

// app holds what every command needs; optional collaborators are opened on
// demand and released by close.
type app struct {
	cfg    *config.Config
	logger *applog.Logger
	list   config.ListDefinition
	client *api.Client
	caches *cache.Manager

	repo      *storage.SQLiteRepository
	publisher *amqp.Client
	closers   []func() error
}

// openLogOutput is replaced in tests.
var openLogOutput = cli.OpenLogOutput

// newApp loads the environment and configuration. Logs go to logOut unless
// CONTI_LOG_FILE is set.
func newApp(logOut io.Writer) (_ *app, err error) {
	cli.LoadEnvFile()

	cfg := config.Load()
	out, closeLog, err := openLogOutput(cfg.LogFile, logOut)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = closeLog()
		}
	}()
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger := cli.SetupLogger(level, out)

	a := &app{logger: logger, closers: []func() error{closeLog}}
	if a.cfg, err = cli.LoadAndValidateConfig(logger); err != nil {
		return nil, err
	}

	lists, err := a.cfg.LoadLists()
	if err != nil {
		return nil, err
	}
	if a.list, err = config.FindList(lists, listName); err != nil {
		return nil, err
	}

	if a.client, err = api.NewClient(a.cfg.BaseURL, a.cfg.HTTPTimeout, logger); err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}
	a.closers = append(a.closers, func() error { a.client.CloseIdleConnections(); return nil })
	a.caches = cache.NewManager(logger)
	return a, nil
}

// storage opens the SQLite repository once.
func (a *app) storage() (*storage.SQLiteRepository, error) {
	if a.repo != nil {
		return a.repo, nil
	}
	repo, err := cli.InitSQLite(a.logger, a.cfg.SQLiteDBPath)
	if err != nil {
		return nil, err
	}
	a.repo = repo
	a.closers = append(a.closers, repo.Close)
	return repo, nil
}

// amqpClient connects to the broker when AMQP_URL is set; it returns nil
// otherwise.
func (a *app) amqpClient() *amqp.Client {
	if a.publisher != nil || a.cfg.AMQPURL == "" {
		return a.publisher
	}
	c, err := amqp.NewClient(a.cfg.AMQPURL, a.cfg.AMQPExchange, a.cfg.AMQPQueue, a.logger)
	if err != nil {
		a.logger.Warn("AMQP unavailable, deletion events disabled",
			applog.NewFields().WithError(err).WithErrorType(applog.ErrorTypeNetwork).ToSlice()...)
		return nil
	}
	a.publisher = c
	a.closers = append(a.closers, c.Close)
	return c
}

// deps wires the record list collaborators. The journal and publisher are
// optional: failures to open them only disable the feature.
func (a *app) deps() services.Deps {
	values := services.NewValueCache()
	a.caches.Register(values)

	deps := services.Deps{
		Deleter: a.client,
		Logger:  a.logger,
		Values:  values,
	}
	if repo, err := a.storage(); err == nil {
		deps.Journal = repo
	}
	if pub := a.amqpClient(); pub != nil {
		deps.Publisher = pub
	}
	return deps
}

// startJournalPruner runs journal upkeep for the lifetime of ctx. It is a no-op
// when retention is disabled or the database cannot be opened.
func (a *app) startJournalPruner(ctx context.Context) func() {
	if a.cfg.JournalRetention <= 0 {
		return func() {}
	}
	repo, err := a.storage()
	if err != nil {
		return func() {}
	}
	p := worker.NewJournalPruner(repo, worker.JournalPrunerConfig{
		Interval:  a.cfg.JournalPruneInterval,
		Retention: a.cfg.JournalRetention,
	}, a.logger)
	if err := p.Start(ctx); err != nil {
		a.logger.Warn("Journal pruner not started", applog.FieldError, err)
		return func() {}
	}
	return func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = p.Stop(stopCtx)
	}
}

func (a *app) listOptions() services.ListOptions {
	return services.ListOptions{
		Name: a.list.Name,
		Markup: markup.Options{
			Container:     a.list.Container,
			Header:        a.list.Header,
			SearchInputID: a.list.SearchInputID,
			PageInfoID:    a.list.PageInfoID,
		},
		PerPage:  a.list.PageSize,
		Endpoint: a.list.RecordEndpoint,
	}
}

// source resolves a page argument: URLs and relative paths starting with "/"
// go through the base URL, anything else is a file.
func (a *app) source(arg string) string {
	if cli.IsRemote(arg) {
		return arg
	}
	if _, err := os.Stat(arg); err != nil && a.cfg.BaseURL != "" {
		if u, rerr := a.cfg.ResolveURL(arg); rerr == nil {
			return u
		}
	}
	return arg
}

func (a *app) loadDocument(ctx context.Context, arg string) (*markup.Document, error) {
	return cli.LoadDocument(ctx, a.client, a.source(arg))
}

// openList loads a page and binds the configured list. An inert list is an
// error for the one-shot commands.
func (a *app) openList(ctx context.Context, arg string, deps services.Deps) (*services.RecordList, *markup.Document, error) {
	doc, err := a.loadDocument(ctx, arg)
	if err != nil {
		return nil, nil, err
	}
	list := services.NewRecordList(doc, a.listOptions(), deps)
	if list.Inert() {
		return nil, nil, list.Err()
	}
	return list, doc, nil
}

func (a *app) close() {
	a.caches.Stop()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Cleanup failed", applog.FieldError, err)
		}
	}
}
