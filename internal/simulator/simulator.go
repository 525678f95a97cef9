// Package simulator plays seeded games against the engine to exercise it at
// volume. Every table runs on its own goroutine; every state produced is
// audited and optionally round-tripped through the snapshot codec.
package simulator

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem-engine/internal/codec"
	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/randutil"
	"github.com/lox/holdem-engine/internal/statistics"
)

// maxActionsPerHand bounds a hand so a stuck betting loop fails loudly.
const maxActionsPerHand = 10_000

// Config holds configuration for running simulations
type Config struct {
	Tables      int
	Hands       int // per table
	Players     int
	Deposit     uint64
	Blind       uint64
	Seed        int64
	Strategy    string
	Concurrency int  // defaults to GOMAXPROCS
	RoundTrip   bool // encode and decode every snapshot
	Logger      *log.Logger
}

// TableResult summarises one simulated table.
type TableResult struct {
	GameID    string
	Hands     int
	Showdowns int
	Actions   int
	Rejected  int // actions the engine refused, replaced with a fold
	Deposited uint64
	Withdrawn uint64
}

// Result aggregates all tables.
type Result struct {
	Tables   []TableResult
	Hands    int
	Pots     *statistics.Statistics
	Duration time.Duration
}

// Simulator runs simulated tables
type Simulator struct {
	config   Config
	strategy Strategy
}

// New creates a new simulator with the given configuration
func New(config Config) (*Simulator, error) {
	if config.Tables <= 0 {
		config.Tables = 1
	}
	if config.Players < 2 || config.Players > game.MaxPlayersLimit {
		return nil, fmt.Errorf("players must be between 2 and %d, got %d", game.MaxPlayersLimit, config.Players)
	}
	if config.Blind == 0 {
		config.Blind = 2
	}
	if config.Deposit == 0 {
		config.Deposit = 100 * config.Blind
	}
	if config.Concurrency <= 0 {
		config.Concurrency = runtime.GOMAXPROCS(0)
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	strategy, err := NewStrategy(config.Strategy)
	if err != nil {
		return nil, err
	}
	return &Simulator{config: config, strategy: strategy}, nil
}

// Run plays every table and returns per-table results in table order.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	results := make([]TableResult, s.config.Tables)
	pots := make([]*statistics.Statistics, s.config.Tables)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)
	for i := range results {
		g.Go(func() error {
			r, stats, err := s.runTable(ctx, i)
			if err != nil {
				return fmt.Errorf("table %d: %w", i, err)
			}
			results[i], pots[i] = r, stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Tables: results, Pots: &statistics.Statistics{}, Duration: time.Since(start)}
	for i, r := range results {
		res.Hands += r.Hands
		res.Pots.Merge(pots[i])
	}
	return res, res.Pots.Validate()
}

func (s *Simulator) runTable(ctx context.Context, index int) (TableResult, *statistics.Statistics, error) {
	rng := randutil.New(s.config.Seed + int64(index))
	logger := s.config.Logger.With("table", index)

	state, err := game.Create(fmt.Sprintf("sim-%d", index), game.Params{
		Blind:       s.config.Blind,
		MaxPlayers:  uint64(s.config.Players),
		TimePerTurn: 30,
	})
	if err != nil {
		return TableResult{}, nil, err
	}
	res := TableResult{GameID: state.GameID}
	stats := &statistics.Statistics{}

	var addrs []game.Address
	for p := 0; p < s.config.Players; p++ {
		addr := game.Address(fmt.Sprintf("bot-%d", p))
		addrs = append(addrs, addr)
		if state, _, err = game.Join(state, addr, s.config.Deposit, seedFrom(rng)); err != nil {
			return res, nil, err
		}
	}

	for hand := 0; hand < s.config.Hands; hand++ {
		if err := ctx.Err(); err != nil {
			return res, nil, err
		}
		next, err := game.PlayHand(state, dealerCaller(state))
		if errors.Is(err, game.ErrNotEnoughPlayers) {
			logger.Debug("Table broke up", "hands", hand)
			break
		}
		if err != nil {
			return res, nil, fmt.Errorf("hand %d: %w", hand+1, err)
		}
		if state, err = s.check(next); err != nil {
			return res, nil, err
		}
		res.Hands++

		if err := s.playHand(rng, &state, &res); err != nil {
			return res, nil, fmt.Errorf("hand %d: %w", hand+1, err)
		}
		if last := state.LastResult; last != nil {
			if last.Showdown {
				res.Showdowns++
			}
			stats.Add(statistics.HandResult{
				Pot:      last.Share * uint64(len(last.Winners)),
				Blind:    state.Params.Blind,
				Winners:  len(last.Winners),
				Showdown: last.Showdown,
				Street:   statistics.StreetOf(len(state.Community)),
			})
		}
	}

	for _, addr := range addrs {
		next, balance, err := game.Withdraw(state, addr)
		if errors.Is(err, game.ErrNotAParticipant) {
			continue
		}
		if err != nil {
			return res, nil, err
		}
		state = next
		res.Withdrawn += balance
	}
	res.Deposited = state.Deposited
	// odd chips from split pots stay on the table
	if res.Withdrawn+state.Pot != res.Deposited {
		return res, nil, fmt.Errorf("withdrew %d plus pot %d, deposited %d", res.Withdrawn, state.Pot, res.Deposited)
	}

	logger.Debug("Table finished", "hands", res.Hands, "showdowns", res.Showdowns, "rejected", res.Rejected)
	return res, stats, nil
}

func (s *Simulator) playHand(rng *rand.Rand, state **game.GameState, res *TableResult) error {
	for actions := 0; (*state).Stage == game.StagePlay; actions++ {
		if actions >= maxActionsPerHand {
			return fmt.Errorf("no progress after %d actions", actions)
		}
		current, _ := (*state).CurrentPlayer()
		seat := (*state).SeatOf(current)
		action, value := s.strategy.Decide(rng, *state, seat)

		next, err := game.TakeAction(*state, current, action, value)
		if errors.Is(err, game.ErrInvalidAction) {
			res.Rejected++
			next, err = game.TakeAction(*state, current, game.Fold, 0)
		}
		if err != nil {
			return err
		}
		if *state, err = s.check(next); err != nil {
			return err
		}
		res.Actions++
	}
	return nil
}

// check audits a state and, when configured, swaps it for its decoded copy.
func (s *Simulator) check(state *game.GameState) (*game.GameState, error) {
	if err := state.Audit(); err != nil {
		return nil, err
	}
	if !s.config.RoundTrip {
		return state, nil
	}
	blob, err := codec.Encode(state)
	if err != nil {
		return nil, err
	}
	return codec.Decode(blob)
}

func seedFrom(rng *rand.Rand) []byte {
	seed := make([]byte, game.SeedSize)
	for i := 0; i < len(seed); i += 8 {
		binary.LittleEndian.PutUint64(seed[i:], rng.Uint64())
	}
	return seed
}

// dealerCaller picks a player who will still be seated once busted players
// are moved on deck.
func dealerCaller(s *game.GameState) game.Address {
	for _, p := range s.Players {
		if p.Balance > 0 {
			return p.Address
		}
	}
	for _, p := range s.OnDeck {
		if p.Balance > 0 {
			return p.Address
		}
	}
	return ""
}
