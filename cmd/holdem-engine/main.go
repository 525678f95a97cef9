package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdem-engine/internal/server"
	"github.com/lox/holdem-engine/internal/store"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command.
type Globals struct {
	Config    string `short:"c" default:"holdem.hcl" help:"Path to HCL configuration file"`
	LogLevel  string `short:"l" help:"Log level: debug, info, warn or error (overrides config)"`
	Store     string `help:"Store driver: memory, file or sqlite (overrides config)"`
	StorePath string `help:"Store directory or database file (overrides config)"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Serve    ServeCmd         `cmd:"" help:"Run the WebSocket server"`
	Create   CreateCmd        `cmd:"" help:"Create a table"`
	Join     JoinCmd          `cmd:"" help:"Join a table with a deposit"`
	Play     PlayCmd          `cmd:"" help:"Start the next hand"`
	Act      ActCmd           `cmd:"" help:"Take a betting action"`
	Withdraw WithdrawCmd      `cmd:"" help:"Leave a table and collect the balance"`
	Timeout  TimeoutCmd       `cmd:"" help:"Fold the player on turn after their time ran out"`
	Show     ShowCmd          `cmd:"" help:"Show a table or a player's view"`
	List     ListCmd          `cmd:"" help:"List stored tables"`
	Simulate SimulateCmd      `cmd:"" help:"Play seeded simulated tables against the engine"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("holdem-engine"),
		kong.Description("Deterministic Texas Hold'em engine and table host"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

// load reads the config file and applies command line overrides.
func (g *Globals) load() (*server.ServerConfig, error) {
	cfg, err := server.LoadServerConfig(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.Server.LogLevel = g.LogLevel
	}
	cfg.OverrideStore(g.Store, g.StorePath)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(level string) *log.Logger {
	logger := log.New(os.Stderr)
	switch strings.ToLower(level) {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}

// host bundles what every table command needs.
type host struct {
	cfg    *server.ServerConfig
	logger *log.Logger
	store  store.Store
	games  *server.GameService
}

func (g *Globals) open() (*host, error) {
	cfg, err := g.load()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg.Server.LogLevel)
	st, err := store.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}
	return &host{
		cfg:    cfg,
		logger: logger,
		store:  st,
		games:  server.NewGameService(st, logger, quartz.NewReal()),
	}, nil
}

func (h *host) Close() error {
	h.games.Close()
	return h.store.Close()
}

// requirePersistent stops one-shot commands from writing to a store that
// disappears when the process exits.
func (h *host) requirePersistent() error {
	if h.cfg.Store.Driver == store.DriverMemory {
		return fmt.Errorf("the memory store does not outlive this command; use --store=file or --store=sqlite")
	}
	return nil
}
