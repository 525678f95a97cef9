package simulator

import (
	"fmt"
	"math/rand/v2"

	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/poker"
)

// Strategy picks an action for the player on turn. It may return an action
// the engine rejects; the simulator folds in that case.
type Strategy interface {
	Decide(rng *rand.Rand, s *game.GameState, seat int) (game.Action, uint64)
}

// NewStrategy returns the named strategy: "random", "call", "fold" or "chart".
func NewStrategy(name string) (Strategy, error) {
	switch name {
	case "random", "rand", "":
		return randomStrategy{}, nil
	case "call":
		return callStrategy{}, nil
	case "fold":
		return foldStrategy{}, nil
	case "chart":
		return chartStrategy{}, nil
	}
	return nil, fmt.Errorf("unknown strategy %q", name)
}

// Strategies lists the accepted strategy names.
func Strategies() []string {
	return []string{"random", "call", "fold", "chart"}
}

// passive checks when it can and matches otherwise.
func passive(s *game.GameState, seat int) game.Action {
	if s.Players[seat].Bet == s.MinBet {
		return game.Check
	}
	return game.Match
}

// minRaise is the smallest legal raise target, or 0 if the player cannot
// afford it.
func minRaise(s *game.GameState, seat int) uint64 {
	p := s.Players[seat]
	target := max(2*s.MinBet+1, s.Params.Blind)
	if target-p.Bet > p.Balance {
		return 0
	}
	return target
}

type randomStrategy struct{}

func (randomStrategy) Decide(rng *rand.Rand, s *game.GameState, seat int) (game.Action, uint64) {
	switch n := rng.IntN(10); {
	case n < 1:
		return game.Fold, 0
	case n < 8:
		return passive(s, seat), 0
	default:
		if target := minRaise(s, seat); target > 0 {
			p := s.Players[seat]
			return game.Raise, min(target+rng.Uint64N(s.Params.Blind+1), p.Bet+p.Balance)
		}
		return passive(s, seat), 0
	}
}

type callStrategy struct{}

func (callStrategy) Decide(_ *rand.Rand, s *game.GameState, seat int) (game.Action, uint64) {
	return passive(s, seat), 0
}

type foldStrategy struct{}

func (foldStrategy) Decide(_ *rand.Rand, s *game.GameState, seat int) (game.Action, uint64) {
	if s.Players[seat].Bet == s.MinBet {
		return game.Check, 0
	}
	return game.Fold, 0
}

// chartStrategy plays by preflop hole-card class: raises premium hands,
// continues with playable ones and gives up on trash when facing a bet.
type chartStrategy struct{}

func (chartStrategy) Decide(rng *rand.Rand, s *game.GameState, seat int) (game.Action, uint64) {
	p := s.Players[seat]
	strength, err := poker.ClassifyHole(p.Cards)
	if err != nil {
		return passive(s, seat), 0
	}
	facing := p.Bet < s.MinBet

	switch {
	case strength >= poker.Strong:
		if target := minRaise(s, seat); target > 0 && rng.IntN(3) > 0 {
			return game.Raise, target
		}
		return passive(s, seat), 0
	case strength >= poker.Weak:
		return passive(s, seat), 0
	case facing && len(s.Community) == 0:
		return game.Fold, 0
	}
	return passive(s, seat), 0
}
