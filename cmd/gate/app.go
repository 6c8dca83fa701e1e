package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/Lin-Jiong-HDU/gate/internal/ai"
	"github.com/Lin-Jiong-HDU/gate/internal/ai/anthropic"
	"github.com/Lin-Jiong-HDU/gate/internal/ai/openai"
	"github.com/Lin-Jiong-HDU/gate/internal/core"
	"github.com/Lin-Jiong-HDU/gate/internal/core/security"
	"github.com/Lin-Jiong-HDU/gate/internal/history"
	"github.com/Lin-Jiong-HDU/gate/internal/logging"
	"github.com/Lin-Jiong-HDU/gate/internal/render"
	"github.com/Lin-Jiong-HDU/gate/internal/storage"
)

// logFileName is created inside the working directory unless --debug.
const logFileName = ".gate.log"

// newProposer builds the oracle client for the configured provider.
var newProposer = func(cfg storage.AIConfig) (ai.Proposer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured: set ANTHROPIC_API_KEY (or OPENAI_API_KEY with provider openai) or ai.api_key in ~/.gate/config.yaml")
	}

	opts := ai.Options{
		Timeout:        time.Duration(cfg.Timeout) * time.Second,
		MaxTokens:      cfg.MaxTokens,
		IncludeHistory: cfg.IncludeHistory,
	}

	switch cfg.Provider {
	case "", "anthropic", "claude":
		return anthropic.NewClient(cfg.APIKey, cfg.Model, cfg.BaseURL, opts), nil
	case "openai":
		return openai.NewClient(cfg.APIKey, cfg.Model, cfg.BaseURL, opts), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

// app is the wired component graph for one invocation.
type app struct {
	cfg      *storage.Config
	workDir  string
	logger   *slog.Logger
	history  *history.History
	store    history.Store
	engine   *core.Engine
	renderer *render.Renderer
	closers  []io.Closer
}

// newApp loads the configuration and wires logging, security, operations,
// history and, when withOracle is set, the oracle client and engine.
func newApp(opts *options, confirmer security.Confirmer, stderr io.Writer, withOracle bool) (*app, error) {
	cfg, err := storage.LoadConfig(opts.configFile)
	if err != nil {
		return nil, err
	}

	workDir, err := filepath.Abs(opts.workingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}
	if info, err := os.Stat(workDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("working directory %s does not exist", opts.workingDir)
	}

	a := &app{cfg: cfg, workDir: workDir}

	logOpts := logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File}
	if opts.debug {
		logOpts.Level = "debug"
		logOpts.Console = stderr
		logOpts.File = ""
	} else if logOpts.File == "" {
		logOpts.File = filepath.Join(workDir, logFileName)
	}
	logger, logCloser, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}
	a.logger = logger
	a.closers = append(a.closers, logCloser)

	a.history = history.New(cfg.History.MaxItems, logger)
	if err := a.openHistory(opts.historyFile); err != nil {
		a.Close()
		return nil, err
	}

	a.renderer = render.New(render.Options{Markdown: isTerminal(os.Stdout)})

	if !withOracle {
		return a, nil
	}

	proposer, err := newProposer(cfg.AI)
	if err != nil {
		a.Close()
		return nil, err
	}

	sc, err := security.NewSecurityController(workDir, &cfg.Security, confirmer, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	policy := sc.Policy()
	sandbox := core.NewSandbox(sc.Paths())
	executor := core.NewExecutor(sc.Paths().Root(), sc.Commands(),
		time.Duration(policy.CommandTimeout)*time.Second, policy.MaxOutput, logger)
	router := core.NewRouter(sc, sandbox, executor, logger)

	a.engine = core.NewEngine(proposer, router, a.history, a.store, logger)
	a.engine.SetContextSize(cfg.History.ContextSize)

	logger.Info("gate ready",
		"working_dir", sc.Paths().Root(),
		"provider", cfg.AI.Provider,
		"history_backend", cfg.History.Backend,
		"persistent_history", a.store != nil)

	return a, nil
}

// openHistory opens the configured store and loads its entries. The flag
// overrides history.file; with neither set history stays in memory.
func (a *app) openHistory(flagFile string) error {
	file := flagFile
	if file == "" {
		file = a.cfg.History.File
	}
	if file == "" {
		return nil
	}

	store, err := history.Open(a.cfg.History.Backend, expandHome(file))
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	a.store = store
	a.closers = append(a.closers, store)

	if err := a.history.Load(store); err != nil {
		// A corrupt history must not block the tool
		a.logger.Warn("failed to load history, starting empty", "error", err)
	}
	return nil
}

// clearHistory empties the history and persists the empty state.
func (a *app) clearHistory() error {
	a.history.Clear()
	if a.store == nil {
		return nil
	}
	if err := a.history.Persist(a.store); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}

// Close releases the store and the log file, newest first.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
