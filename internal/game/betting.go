package game

import (
	"fmt"
	"math"
)

// TakeAction applies the caller's betting action. value is only read for
// Raise, where it is the new total bet for the round.
//
// On error the input state is returned unchanged.
func TakeAction(s *GameState, caller Address, action Action, value uint64) (*GameState, error) {
	next := s.Clone()
	if err := next.takeAction(caller, action, value); err != nil {
		return s, err
	}
	return next, nil
}

// TimeoutFold folds the player on turn when their clock runs out. expected is
// the address that was on turn when the timer was armed; if the turn has moved
// on since, ErrOutOfTurn is returned.
//
// On error the input state is returned unchanged.
func TimeoutFold(s *GameState, expected Address) (*GameState, error) {
	next := s.Clone()
	if err := next.timeoutFold(expected); err != nil {
		return s, err
	}
	return next, nil
}

func (s *GameState) takeAction(caller Address, action Action, value uint64) error {
	if s.Stage != StagePlay {
		return fmt.Errorf("%w: no hand in progress", ErrWrongStage)
	}
	seat := s.seatOf(caller)
	if seat < 0 {
		return fmt.Errorf("%w: %s is not seated", ErrNotAParticipant, caller)
	}
	if seat != s.NextPlayer {
		return fmt.Errorf("%w: waiting on seat %d, %s is seat %d", ErrOutOfTurn, s.NextPlayer, caller, seat)
	}
	return s.act(seat, action, value)
}

func (s *GameState) timeoutFold(expected Address) error {
	current, ok := s.CurrentPlayer()
	if !ok {
		return fmt.Errorf("%w: no hand in progress", ErrWrongStage)
	}
	if current != expected {
		return fmt.Errorf("%w: turn moved from %s to %s", ErrOutOfTurn, expected, current)
	}
	return s.act(s.NextPlayer, Fold, 0)
}

// act validates and applies an action for the seat on turn, advances the turn
// and closes the betting round when the action reaches the last aggressor.
func (s *GameState) act(seat int, action Action, value uint64) error {
	p := &s.Players[seat]

	switch action {
	case Check:
		if p.Bet != s.MinBet {
			return fmt.Errorf("%w: cannot check facing %d, must match or fold", ErrInvalidAction, s.MinBet-p.Bet)
		}
	case Match:
		delta := s.MinBet - p.Bet
		if delta > p.Balance {
			return fmt.Errorf("%w: match needs %d, balance is %d", ErrInvalidAction, delta, p.Balance)
		}
		p.Balance -= delta
		p.Bet = s.MinBet
	case Raise:
		if s.MinBet > math.MaxUint64/2 || value <= 2*s.MinBet {
			return fmt.Errorf("%w: raise to %d must exceed twice the minimum bet %d", ErrInvalidAction, value, s.MinBet)
		}
		delta := value - p.Bet
		if delta > p.Balance {
			return fmt.Errorf("%w: raise needs %d, balance is %d", ErrInvalidAction, delta, p.Balance)
		}
		p.Balance -= delta
		p.Bet = value
		s.MinBet = value
	case Fold:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidAction, action)
	}

	closing := seat == s.LastAggressor && action != Raise
	if action == Raise {
		s.LastAggressor = seat
	}

	if action == Fold {
		s.foldSeat(seat)
		if len(s.Players) == 1 {
			s.awardLastStanding()
			return nil
		}
		// the successor slid into the folded seat's index
		s.NextPlayer = seat % len(s.Players)
	} else {
		p.Action = action
		s.NextPlayer = (seat + 1) % len(s.Players)
	}

	if closing {
		return s.closeRound()
	}
	return nil
}

// closeRound sweeps bets into the pot and either runs the showdown or burns a
// card and reveals the next community tranche.
func (s *GameState) closeRound() error {
	s.sweepBets()
	if len(s.Community) >= CommunityCards {
		return s.showdown()
	}

	if err := s.Deck.Burn(); err != nil {
		return fmt.Errorf("%w: burning before street: %v", ErrDeckExhausted, err)
	}
	cards, err := s.Deck.Deal(trancheSize(len(s.Community)))
	if err != nil {
		return fmt.Errorf("%w: dealing community cards: %v", ErrDeckExhausted, err)
	}
	s.Community = append(s.Community, cards...)

	n := len(s.Players)
	s.MinBet = 0
	s.NextPlayer = (s.Dealer + 1) % n
	s.LastAggressor = s.Dealer % n
	return nil
}

// trancheSize is 3 for the flop, then 1 for the turn and the river.
func trancheSize(revealed int) int {
	if revealed == 0 {
		return 3
	}
	return 1
}

func (s *GameState) sweepBets() {
	for i := range s.Players {
		s.Pot += s.Players[i].Bet
		s.Players[i].Bet = 0
	}
}
