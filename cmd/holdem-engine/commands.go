package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/render"
	"github.com/lox/holdem-engine/internal/server"
	"github.com/lox/holdem-engine/internal/simulator"
)

// ServeCmd runs the WebSocket host.
type ServeCmd struct {
	Addr string `short:"a" help:"Server address to bind to (overrides config)"`
}

func (c *ServeCmd) Run(g *Globals) error {
	h, err := g.open()
	if err != nil {
		return err
	}
	defer h.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, t := range h.cfg.Tables {
		if err := h.games.EnsureTable(ctx, t.Name, t.Params()); err != nil {
			return fmt.Errorf("failed to create table %s: %w", t.Name, err)
		}
	}
	if err := h.games.Resume(ctx); err != nil {
		return fmt.Errorf("failed to resume tables: %w", err)
	}

	addr := h.cfg.GetServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}
	h.logger.Info("Starting holdem-engine",
		"addr", addr,
		"store", h.cfg.Store.Driver,
		"tables", len(h.cfg.Tables),
		"version", version)

	srv := server.NewServer(addr, h.logger, h.games)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		h.logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// CreateCmd creates a table.
type CreateCmd struct {
	ID          string `arg:"" optional:"" help:"Table id (a UUID is generated when omitted)"`
	Blind       uint64 `default:"2" help:"Big blind; the small blind is half"`
	MaxPlayers  uint64 `default:"6" help:"Seats at the table"`
	TimePerTurn uint64 `default:"30" help:"Seconds a player has to act"`
}

func (c *CreateCmd) Run(g *Globals) error {
	return withHost(g, func(ctx context.Context, h *host) error {
		id, err := h.games.CreateTable(ctx, c.ID, game.Params{
			Blind:       c.Blind,
			MaxPlayers:  c.MaxPlayers,
			TimePerTurn: c.TimePerTurn,
		})
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	})
}

// JoinCmd joins a table.
type JoinCmd struct {
	Table   string `arg:"" help:"Table id"`
	Address string `arg:"" help:"Player address"`
	Deposit uint64 `short:"d" required:"" help:"Chips to bring to the table"`
	Seed    string `help:"Hex-encoded 32-byte seed contribution (random when omitted)"`
}

func (c *JoinCmd) Run(g *Globals) error {
	seed, err := c.seed()
	if err != nil {
		return err
	}
	return withHost(g, func(ctx context.Context, h *host) error {
		seated, err := h.games.Join(ctx, c.Table, game.Address(c.Address), c.Deposit, seed)
		if err != nil {
			return err
		}
		if seated {
			fmt.Printf("%s seated at %s\n", c.Address, c.Table)
		} else {
			fmt.Printf("%s waiting on deck at %s\n", c.Address, c.Table)
		}
		return nil
	})
}

func (c *JoinCmd) seed() ([]byte, error) {
	if c.Seed == "" {
		seed := make([]byte, game.SeedSize)
		if _, err := rand.Read(seed); err != nil {
			return nil, fmt.Errorf("failed to generate seed: %w", err)
		}
		return seed, nil
	}
	seed, err := hex.DecodeString(c.Seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", game.ErrSeedInvalid, err)
	}
	return seed, nil
}

// PlayCmd starts the next hand.
type PlayCmd struct {
	Table  string `arg:"" help:"Table id"`
	Caller string `arg:"" help:"Seated player starting the hand"`
}

func (c *PlayCmd) Run(g *Globals) error {
	return withHost(g, func(ctx context.Context, h *host) error {
		v, err := h.games.PlayHand(ctx, c.Table, game.Address(c.Caller))
		if err != nil {
			return err
		}
		fmt.Println(render.New().Table(v))
		return nil
	})
}

// ActCmd takes a betting action.
type ActCmd struct {
	Table   string `arg:"" help:"Table id"`
	Address string `arg:"" help:"Player on turn"`
	Action  string `arg:"" enum:"check,match,call,raise,fold" help:"check, match (call), raise or fold"`
	Value   uint64 `arg:"" optional:"" help:"Total bet for a raise"`
}

func (c *ActCmd) Run(g *Globals) error {
	action, err := game.ParseAction(c.Action)
	if err != nil {
		return err
	}
	return withHost(g, func(ctx context.Context, h *host) error {
		v, err := h.games.TakeAction(ctx, c.Table, game.Address(c.Address), action, c.Value)
		if err != nil {
			return err
		}
		fmt.Println(render.New().Table(v))
		return nil
	})
}

// WithdrawCmd leaves a table.
type WithdrawCmd struct {
	Table   string `arg:"" help:"Table id"`
	Address string `arg:"" help:"Player address"`
}

func (c *WithdrawCmd) Run(g *Globals) error {
	return withHost(g, func(ctx context.Context, h *host) error {
		balance, err := h.games.Withdraw(ctx, c.Table, game.Address(c.Address))
		if err != nil {
			return err
		}
		fmt.Printf("%s withdrew %d\n", c.Address, balance)
		return nil
	})
}

// TimeoutCmd folds a player whose turn timer expired.
type TimeoutCmd struct {
	Table    string `arg:"" help:"Table id"`
	Expected string `arg:"" help:"Player expected to be on turn"`
}

func (c *TimeoutCmd) Run(g *Globals) error {
	return withHost(g, func(ctx context.Context, h *host) error {
		return h.games.Timeout(ctx, c.Table, game.Address(c.Expected))
	})
}

// ShowCmd prints a table or a player's view.
type ShowCmd struct {
	Table  string `arg:"" help:"Table id"`
	Player string `short:"p" help:"Show this player's private view"`
	JSON   bool   `help:"Print JSON instead of a rendered table"`
}

func (c *ShowCmd) Run(g *Globals) error {
	return withHost(g, func(ctx context.Context, h *host) error {
		var view any
		var text string
		if c.Player != "" {
			v, err := h.games.PlayerState(ctx, c.Table, game.Address(c.Player))
			if err != nil {
				return err
			}
			view, text = v, render.New().Player(v)
		} else {
			v, err := h.games.PublicState(ctx, c.Table)
			if err != nil {
				return err
			}
			view, text = v, render.New().Table(v)
		}
		if !c.JSON {
			fmt.Println(text)
			return nil
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	})
}

// ListCmd prints stored table ids.
type ListCmd struct{}

func (c *ListCmd) Run(g *Globals) error {
	return withHost(g, func(ctx context.Context, h *host) error {
		ids, err := h.games.ListTables(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	})
}

// SimulateCmd runs the simulator.
type SimulateCmd struct {
	Tables      int    `default:"4" help:"Tables to simulate"`
	Hands       int    `default:"1000" help:"Hands per table"`
	Players     int    `default:"6" help:"Players per table"`
	Blind       uint64 `default:"2" help:"Big blind"`
	Deposit     uint64 `default:"200" help:"Chips each player brings"`
	Seed        int64  `help:"Base seed (defaults to the current time)"`
	Strategy    string `default:"random" enum:"random,call,fold,chart" help:"Player strategy"`
	Concurrency int    `help:"Tables run in parallel (defaults to GOMAXPROCS)"`
	RoundTrip   bool   `help:"Encode and decode every snapshot"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Server.LogLevel)

	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("Starting simulation", "tables", c.Tables, "hands", c.Hands, "seed", seed, "strategy", c.Strategy)

	sim, err := simulator.New(simulator.Config{
		Tables:      c.Tables,
		Hands:       c.Hands,
		Players:     c.Players,
		Deposit:     c.Deposit,
		Blind:       c.Blind,
		Seed:        seed,
		Strategy:    c.Strategy,
		Concurrency: c.Concurrency,
		RoundTrip:   c.RoundTrip,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	res, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Println(render.New().Simulation(res))
	return nil
}

// withHost opens the configured persistent store for a one-shot command.
func withHost(g *Globals, fn func(context.Context, *host) error) error {
	h, err := g.open()
	if err != nil {
		return err
	}
	defer h.Close()
	if err := h.requirePersistent(); err != nil {
		return err
	}
	return fn(context.Background(), h)
}
