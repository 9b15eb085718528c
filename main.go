package main

import (
	"bufio"
	"errors"
	"os"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/railbook/railbook/internal/api/rail"
	"github.com/railbook/railbook/internal/config"
	"github.com/railbook/railbook/internal/notify"
	"github.com/railbook/railbook/internal/render"
	"github.com/railbook/railbook/internal/session"
)

var CLI struct {
	Config   string `help:"Path to config file" default:"config.yaml" type:"path"`
	LogLevel string `help:"Log level override (debug, info, warn, error)"`

	Register RegisterCmd `cmd:"" help:"Create an account."`
	Login    LoginCmd    `cmd:"" help:"Log in and store the session."`
	Logout   LogoutCmd   `cmd:"" help:"Clear the stored session."`
	Whoami   WhoamiCmd   `cmd:"" help:"Show the current user."`
	Search   SearchCmd   `cmd:"" help:"Search trains for a route and date."`
	Book     BookCmd     `cmd:"" help:"Book a ticket interactively."`
	Bookings BookingsCmd `cmd:"" help:"Manage your bookings."`
	Trains   TrainsCmd   `cmd:"" help:"List or add trains."`
}

// App carries the shared dependencies into command Run methods. All
// interactive prompts read from the one stdin reader so buffered input
// is never split between readers.
type App struct {
	cfg      *config.Config
	logger   *logrus.Logger
	store    *session.Store
	api      *rail.Client
	notifier *notify.Notifier // nil when pushover keys are absent
	stdin    *bufio.Reader
}

func main() {
	kctx := kong.Parse(&CLI)

	// Setup structured logging with logfmt
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		logger.WithField("error", err).Fatal("failed to load config")
	}

	if CLI.LogLevel != "" {
		cfg.LogLevel = CLI.LogLevel
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithField("error", err).Fatal("invalid log level")
	}
	logger.SetLevel(level)

	sessionPath := cfg.SessionFile
	if sessionPath == "" {
		sessionPath, err = session.DefaultPath()
		if err != nil {
			logger.WithField("error", err).Fatal("failed to resolve session path")
		}
	}
	store := session.NewStore(sessionPath)

	app := &App{
		cfg:    cfg,
		logger: logger,
		store:  store,
		api:    rail.NewClient(cfg.API.BaseURL, store),
		stdin:  bufio.NewReader(os.Stdin),
	}
	if cfg.Notify.Enabled() {
		app.notifier = notify.NewNotifier(cfg.Notify.PushoverToken, cfg.Notify.PushoverUser, logger)
	}

	if err := kctx.Run(app); err != nil {
		if errors.Is(err, rail.ErrUnauthorized) {
			render.Notice("Session expired. Please run `railbook login` and try again.")
		} else {
			render.Notice("%s", err)
		}
		logger.WithField("error", err).Debug("command failed")
		os.Exit(1)
	}
}
