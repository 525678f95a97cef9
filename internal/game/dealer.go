package game

import (
	"fmt"

	"github.com/lox/holdem-engine/internal/randutil"
	"github.com/lox/holdem-engine/poker"
)

// HoleCards is the number of private cards dealt to each seated player.
const HoleCards = 2

// PlayHand starts a new hand. Busted players are moved on deck, waiting
// players with chips are seated, the deck is shuffled from the table seed,
// the dealer button advances, blinds are posted and hole cards dealt.
//
// On error the input state is returned unchanged.
func PlayHand(s *GameState, caller Address) (*GameState, error) {
	next := s.Clone()
	if err := next.playHand(caller); err != nil {
		return s, err
	}
	return next, nil
}

func (s *GameState) playHand(caller Address) error {
	if s.Stage != StageJoin {
		return fmt.Errorf("%w: hand already in progress", ErrWrongStage)
	}

	for i := 0; i < len(s.Players); {
		if s.Players[i].Balance == 0 {
			s.unseat(i)
			continue
		}
		i++
	}
	s.promoteOnDeck()

	n := len(s.Players)
	if n < 2 {
		return fmt.Errorf("%w: need 2 seated players, have %d", ErrNotEnoughPlayers, n)
	}
	if s.seatOf(caller) < 0 {
		return fmt.Errorf("%w: %s is not seated", ErrNotAParticipant, caller)
	}

	s.Deck = poker.NewShuffledDeck(randutil.FromSeed(randutil.HandKey(s.Seed, s.HandNumber+1)))
	s.Community = nil
	s.LastResult = nil
	for i := range s.Players {
		p := &s.Players[i]
		p.Cards = nil
		p.Bet = 0
		p.Action = None
		p.Playing = true
	}

	s.Dealer = (s.Dealer + 1) % n
	sb := (s.Dealer + 1) % n
	bb := (s.Dealer + 2) % n
	s.postBlind(sb, s.Params.Blind/2)
	s.postBlind(bb, s.Params.Blind)
	s.MinBet = s.Params.Blind

	start := (s.Dealer + 1) % n
	for i := 0; i < HoleCards*n; i++ {
		card, err := s.Deck.DealOne()
		if err != nil {
			return fmt.Errorf("%w: dealing hole cards: %v", ErrDeckExhausted, err)
		}
		seat := (start + i) % n
		s.Players[seat].Cards = append(s.Players[seat].Cards, card)
	}

	s.NextPlayer = (bb + 1) % n
	s.LastAggressor = bb
	s.Stage = StagePlay
	s.HandNumber++
	return nil
}

// promoteOnDeck seats waiting players with a positive balance in FIFO order
// until the table is full.
func (s *GameState) promoteOnDeck() {
	var waiting []Player
	for _, p := range s.OnDeck {
		if p.Balance > 0 && uint64(len(s.Players)) < s.Params.MaxPlayers {
			p.Playing = true
			s.Players = append(s.Players, p)
			continue
		}
		waiting = append(waiting, p)
	}
	s.OnDeck = waiting
}

// postBlind commits up to amount from a seat, capped at its balance.
func (s *GameState) postBlind(seat int, amount uint64) {
	p := &s.Players[seat]
	amount = min(amount, p.Balance)
	p.Balance -= amount
	p.Bet += amount
}
