package game

import (
	"errors"
	"fmt"

	"github.com/lox/holdem-engine/poker"
)

// ChipsAccounted sums every chip the table still tracks plus what has been
// withdrawn. It equals Deposited in any valid state.
func (s *GameState) ChipsAccounted() uint64 {
	total := s.Pot + s.Withdrawn
	for _, p := range s.Players {
		total += p.Bet + p.Balance
	}
	for _, p := range s.OnDeck {
		total += p.Bet + p.Balance
	}
	return total
}

// Audit checks the structural invariants of a snapshot: chip conservation,
// unique addresses, seat limits, index ranges, the deck and the cards in
// play. A state that passes can be fed to any operation without panicking.
func (s *GameState) Audit() error {
	var errs []error

	if got := s.ChipsAccounted(); got != s.Deposited {
		errs = append(errs, fmt.Errorf("chips not conserved: accounted %d, deposited %d", got, s.Deposited))
	}

	seen := make(map[Address]bool, len(s.Players)+len(s.OnDeck))
	for _, group := range [][]Player{s.Players, s.OnDeck} {
		for _, p := range group {
			if seen[p.Address] {
				errs = append(errs, fmt.Errorf("address %s appears more than once", p.Address))
			}
			seen[p.Address] = true
		}
	}
	for _, p := range s.OnDeck {
		if p.Playing {
			errs = append(errs, fmt.Errorf("on-deck player %s marked playing", p.Address))
		}
	}

	if uint64(len(s.Players)) > s.Params.MaxPlayers {
		errs = append(errs, fmt.Errorf("%d players seated, max is %d", len(s.Players), s.Params.MaxPlayers))
	}
	if len(s.Community) > CommunityCards {
		errs = append(errs, fmt.Errorf("%d community cards", len(s.Community)))
	}

	if s.HandNumber > 0 {
		if err := s.Deck.Validate(); err != nil {
			errs = append(errs, err)
		}
	} else if s.Deck.Next < 0 || s.Deck.Next > poker.DeckSize {
		errs = append(errs, fmt.Errorf("deck cursor %d out of range", s.Deck.Next))
	}

	for _, group := range [][]Player{s.Players, s.OnDeck} {
		for _, p := range group {
			for _, c := range p.Cards {
				if !c.Valid() {
					errs = append(errs, fmt.Errorf("%s holds invalid card %d", p.Address, uint8(c)))
				}
			}
		}
	}
	for _, c := range s.Community {
		if !c.Valid() {
			errs = append(errs, fmt.Errorf("invalid community card %d", uint8(c)))
		}
	}

	if s.Dealer < 0 || s.NextPlayer < 0 || s.LastAggressor < 0 {
		errs = append(errs, fmt.Errorf("negative seat index: dealer %d, next %d, last aggressor %d", s.Dealer, s.NextPlayer, s.LastAggressor))
	}
	if n := len(s.Players); n > 0 && s.Dealer >= n {
		errs = append(errs, fmt.Errorf("dealer index %d out of range", s.Dealer))
	}

	if s.Stage == StagePlay {
		errs = append(errs, s.auditCardsInPlay()...)

		n := len(s.Players)
		if n < 2 {
			errs = append(errs, fmt.Errorf("hand in progress with %d players", n))
		}
		for name, idx := range map[string]int{"dealer": s.Dealer, "next player": s.NextPlayer, "last aggressor": s.LastAggressor} {
			if idx < 0 || idx >= n {
				errs = append(errs, fmt.Errorf("%s index %d out of range", name, idx))
			}
		}
		for _, p := range s.Players {
			if p.Bet > s.MinBet {
				errs = append(errs, fmt.Errorf("%s bet %d exceeds minimum bet %d", p.Address, p.Bet, s.MinBet))
			}
		}
	}

	return errors.Join(errs...)
}

// auditCardsInPlay checks every seated player holds a full hand and no card is
// both on the board and in a hand, or in two hands.
func (s *GameState) auditCardsInPlay() []error {
	var errs []error
	var seen [poker.DeckSize]bool
	mark := func(owner string, c poker.Card) {
		if !c.Valid() {
			return
		}
		if seen[c] {
			errs = append(errs, fmt.Errorf("card %s held by %s is already in play", c, owner))
		}
		seen[c] = true
	}
	for _, c := range s.Community {
		mark("the board", c)
	}
	for _, p := range s.Players {
		if len(p.Cards) != HoleCards {
			errs = append(errs, fmt.Errorf("%s holds %d cards, want %d", p.Address, len(p.Cards), HoleCards))
		}
		for _, c := range p.Cards {
			mark(string(p.Address), c)
		}
	}
	return errs
}
