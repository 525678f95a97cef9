package game

import (
	"fmt"

	"github.com/lox/holdem-engine/poker"
)

// showdown ranks every seated hand, splits the pot evenly among the best and
// leaves the odd chips in the pot for the next hand.
func (s *GameState) showdown() error {
	var (
		best    poker.HandRank
		winners []int
	)
	for i, p := range s.Players {
		cards := make([]poker.Card, 0, len(p.Cards)+len(s.Community))
		cards = append(cards, p.Cards...)
		cards = append(cards, s.Community...)
		rank, err := poker.Evaluate7(cards)
		if err != nil {
			return fmt.Errorf("failed to evaluate hand for %s: %w", p.Address, err)
		}
		switch {
		case len(winners) == 0 || rank > best:
			best = rank
			winners = []int{i}
		case rank == best:
			winners = append(winners, i)
		}
	}

	share := s.Pot / uint64(len(winners))
	result := &HandResult{
		Hand:      s.HandNumber,
		Share:     share,
		Remainder: s.Pot % uint64(len(winners)),
		Showdown:  true,
	}
	for _, i := range winners {
		s.Players[i].Balance += share
		result.Winners = append(result.Winners, s.Players[i].Address)
	}
	first := s.Players[winners[0]]
	if desc, err := poker.Describe(append(append([]poker.Card(nil), first.Cards...), s.Community...)); err == nil {
		result.Describe = desc
	}

	s.Pot = result.Remainder
	s.LastResult = result
	s.endHand()
	return nil
}

// awardLastStanding pays the pot and all committed bets to the only seated
// player left.
func (s *GameState) awardLastStanding() {
	s.sweepBets()
	winner := &s.Players[0]
	winner.Balance += s.Pot
	s.LastResult = &HandResult{
		Hand:    s.HandNumber,
		Winners: []Address{winner.Address},
		Share:   s.Pot,
	}
	s.Pot = 0
	s.endHand()
}

func (s *GameState) endHand() {
	s.Stage = StageJoin
	s.MinBet = 0
	s.NextPlayer = 0
	s.LastAggressor = 0
}
