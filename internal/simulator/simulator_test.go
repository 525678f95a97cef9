package simulator

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/randutil"
	"github.com/lox/holdem-engine/poker"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.WarnLevel})
}

func TestNew(t *testing.T) {
	t.Parallel()

	sim, err := New(Config{Players: 4, Hands: 10, Seed: 12345, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if sim.config.Tables != 1 {
		t.Errorf("Expected 1 table by default, got %d", sim.config.Tables)
	}
	if sim.config.Blind != 2 {
		t.Errorf("Expected default blind 2, got %d", sim.config.Blind)
	}
	if sim.config.Deposit != 200 {
		t.Errorf("Expected default deposit 200, got %d", sim.config.Deposit)
	}
	if sim.config.Concurrency <= 0 {
		t.Errorf("Expected positive concurrency, got %d", sim.config.Concurrency)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		config Config
	}{
		{"one player", Config{Players: 1}},
		{"too many players", Config{Players: game.MaxPlayersLimit + 1}},
		{"unknown strategy", Config{Players: 3, Strategy: "telepathic"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := New(tt.config); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func run(t *testing.T, config Config) *Result {
	t.Helper()
	config.Logger = quietLogger()
	sim, err := New(config)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	res, err := sim.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	return res
}

func TestRunFoldStrategyNeverShowsDown(t *testing.T) {
	t.Parallel()

	res := run(t, Config{Tables: 2, Players: 3, Hands: 10, Seed: 7, Strategy: "fold"})
	if res.Hands != 20 {
		t.Errorf("Expected 20 hands, got %d", res.Hands)
	}
	if res.Pots.Streets[0] != 20 {
		t.Errorf("Expected every hand to end preflop, got %v", res.Pots.Streets)
	}
	// the big blind collects the small blind's half
	if res.Pots.Mean() != 1.5 {
		t.Errorf("Expected a 1.5bb pot every hand, got %f", res.Pots.Mean())
	}
	for _, table := range res.Tables {
		if table.Showdowns != 0 {
			t.Errorf("%s: expected no showdowns, got %d", table.GameID, table.Showdowns)
		}
		if table.Rejected != 0 {
			t.Errorf("%s: expected no rejected actions, got %d", table.GameID, table.Rejected)
		}
	}
}

func TestRunCallStrategyAlwaysShowsDown(t *testing.T) {
	t.Parallel()

	res := run(t, Config{Players: 4, Hands: 10, Seed: 99, Strategy: "call"})
	table := res.Tables[0]
	if table.Hands != 10 {
		t.Fatalf("Expected 10 hands, got %d", table.Hands)
	}
	if table.Showdowns != table.Hands {
		t.Errorf("Expected every hand to reach showdown, got %d of %d", table.Showdowns, table.Hands)
	}
	if res.Pots.ShowdownRate() != 1 {
		t.Errorf("Expected a showdown rate of 1, got %f", res.Pots.ShowdownRate())
	}
	if table.Deposited != 4*200 {
		t.Errorf("Expected 800 deposited, got %d", table.Deposited)
	}
}

func TestRunConservesChips(t *testing.T) {
	t.Parallel()

	for _, strategy := range Strategies() {
		t.Run(strategy, func(t *testing.T) {
			t.Parallel()
			res := run(t, Config{
				Tables:    4,
				Players:   6,
				Hands:     50,
				Deposit:   40,
				Seed:      2024,
				Strategy:  strategy,
				RoundTrip: true,
			})
			if len(res.Tables) != 4 {
				t.Fatalf("Expected 4 table results, got %d", len(res.Tables))
			}
			for _, table := range res.Tables {
				if table.Withdrawn > table.Deposited {
					t.Errorf("%s: withdrew %d of %d deposited", table.GameID, table.Withdrawn, table.Deposited)
				}
			}
		})
	}
}

func TestRunIsDeterministic(t *testing.T) {
	t.Parallel()

	config := Config{Tables: 3, Players: 5, Hands: 25, Deposit: 30, Seed: 42, Strategy: "random"}
	first := run(t, config)
	second := run(t, config)
	for i := range first.Tables {
		if first.Tables[i] != second.Tables[i] {
			t.Errorf("table %d differs between runs: %+v vs %+v", i, first.Tables[i], second.Tables[i])
		}
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	t.Parallel()

	sim, err := New(Config{Players: 3, Hands: 1000, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := sim.Run(ctx); err == nil {
		t.Error("Expected an error from a cancelled context")
	}
}

func TestChartStrategy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cards string
		want  []game.Action
	}{
		{"trash folds to a bet", "7c 2d", []game.Action{game.Fold}},
		{"weak hand calls", "5h 5d", []game.Action{game.Match}},
		{"premium hand raises or calls", "Ah Ad", []game.Action{game.Raise, game.Match}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := &game.GameState{
				Params: game.Params{Blind: 2, MaxPlayers: 2},
				MinBet: 2,
				Players: []game.Player{
					{Address: "a", Cards: poker.MustParseCards(tt.cards), Playing: true, Bet: 1, Balance: 50},
					{Address: "b", Playing: true, Bet: 2, Balance: 50},
				},
			}
			action, value := chartStrategy{}.Decide(randutil.New(1), s, 0)
			found := false
			for _, want := range tt.want {
				found = found || action == want
			}
			if !found {
				t.Errorf("Decide() = %s, want one of %v", action, tt.want)
			}
			if action == game.Raise && value != 5 {
				t.Errorf("Expected a minimum raise to 5, got %d", value)
			}
		})
	}
}

func TestSeedFromFillsSeed(t *testing.T) {
	t.Parallel()

	seed := seedFrom(randutil.New(3))
	if len(seed) != game.SeedSize {
		t.Fatalf("Expected %d bytes, got %d", game.SeedSize, len(seed))
	}
	zero := true
	for _, b := range seed {
		zero = zero && b == 0
	}
	if zero {
		t.Error("Expected a non-zero seed")
	}
}

func BenchmarkRun(b *testing.B) {
	sim, err := New(Config{Players: 6, Hands: 100, Seed: 1, Logger: quietLogger()})
	if err != nil {
		b.Fatal(err)
	}
	for b.Loop() {
		if _, err := sim.Run(context.Background()); err != nil {
			b.Fatal(err)
		}
	}
}
