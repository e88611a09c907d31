// Package cmd implements the CLI application to manage checkbook registers.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/checkbook"
	"github.com/etnz/checkbook/advisor"
	"github.com/etnz/checkbook/config"
	"github.com/etnz/checkbook/kv"
	"github.com/etnz/checkbook/logger"
	"github.com/etnz/checkbook/notify"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Commands returns every subcommand, by group.
func Commands() map[string][]subcommands.Command {
	return map[string][]subcommands.Command{
		"accounts": {
			&initCmd{},
			&accountsCmd{},
			&useCmd{},
			&openingCmd{},
		},
		"transactions": {
			&addCmd{},
			&editCmd{},
			&rmCmd{},
			&toggleCmd{},
			&registerCmd{},
			&suggestCmd{},
		},
		"bank": {
			&syncCmd{},
		},
		"setup": {
			&settingsCmd{},
			&serveCmd{},
		},
	}
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for group, cmds := range Commands() {
		for _, cmd := range cmds {
			c.Register(cmd, group)
		}
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var envFile = flag.String("env", "", "Path to a .env file. Defaults to .env in the current directory, if any.")
var dbPath = flag.String("db", "", "Path to the checkbook database, overrides the configuration. A .sqlite extension selects SQLite, anything else bbolt.")
var Verbose = flag.Bool("v", false, "Log at debug level.")

// Config loads the configuration, with the global flags applied.
func Config() (*config.Config, error) {
	cfg, err := config.Load(*envFile)
	if err != nil {
		return nil, err
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *Verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Logger returns the application logger, writing to stderr.
func Logger(cfg *config.Config) zerolog.Logger {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	return logger.New(level)
}

// backend is a kv backend that must be closed.
type backend interface {
	checkbook.Backend
	Close() error
}

// openBackend opens the database at path.
func openBackend(path string) (backend, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sqlite", ".sqlite3":
		return kv.OpenSQLite(path)
	default:
		return kv.OpenBolt(path)
	}
}

// app is everything a command needs.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	store   *checkbook.Store
	backend backend
}

// Close closes the database.
func (a *app) Close() error { return a.backend.Close() }

// openApp opens the store from the configuration. With advise, the store asks
// the Gemini advisor when the rules are not enough.
func openApp(ctx context.Context, advise bool) (*app, error) {
	cfg, err := Config()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log := Logger(cfg)

	var notifiers notify.Multi
	notifiers = append(notifiers, notify.Log{Logger: log})
	if cfg.Alerts.FCMToken != "" {
		push, err := notify.NewFirebasePush(ctx, cfg.Alerts.FCMToken, log)
		if err != nil {
			log.Warn().Err(err).Msg("push alerts disabled")
		} else {
			notifiers = append(notifiers, push)
		}
	}

	opts := []checkbook.Option{
		checkbook.WithLogger(log),
		checkbook.WithNotifier(notifiers),
		checkbook.WithSettings(cfg.Settings()),
		checkbook.WithMatchOptions(cfg.MatchOptions()),
	}
	if advise {
		gen, err := advisor.NewGemini(ctx, cfg.Advisor.Model)
		if err != nil {
			return nil, fmt.Errorf("cannot create the advisor: %w", err)
		}
		adv := advisor.New(gen, advisor.WithTimeout(cfg.Advisor.Timeout), advisor.WithLogger(log))
		opts = append(opts, checkbook.WithAdvisor(adv, cfg.Advisor.MinConfidence))
	}

	b, err := openBackend(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	s, err := checkbook.Open(b, opts...)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("cannot load %s: %w", cfg.DBPath, err)
	}
	return &app{cfg: cfg, log: log, store: s, backend: b}, nil
}

// accountID returns id, or the active account when id is empty.
func (a *app) accountID(id string) (string, error) {
	if id != "" {
		acc, err := a.store.Account(id)
		return acc.ID, err
	}
	acc, ok := a.store.ActiveAccount()
	if !ok {
		return "", fmt.Errorf("no active account, create one with 'init'")
	}
	return acc.ID, nil
}

// printMarkdown renders md for the terminal, or prints it as is when it cannot.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}

// visited returns the names of the flags set on the command line.
func visited(f *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	f.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return set
}

// fail prints err and returns the failure status.
func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return subcommands.ExitFailure
}
