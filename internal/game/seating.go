package game

import (
	"fmt"
	"math"

	"github.com/lox/holdem-engine/internal/randutil"
)

// Join admits addr with a deposit and a seed contribution. The contribution is
// XORed into the table seed. The player is seated when the table is between
// hands and has room, otherwise queued on deck; joined reports which.
//
// On error the input state is returned unchanged.
func Join(s *GameState, addr Address, deposit uint64, seed []byte) (*GameState, bool, error) {
	next := s.Clone()
	joined, err := next.join(addr, deposit, seed)
	if err != nil {
		return s, false, err
	}
	return next, joined, nil
}

func (s *GameState) join(addr Address, deposit uint64, seed []byte) (bool, error) {
	if addr == "" {
		return false, fmt.Errorf("%w: address is required", ErrInvalidParameters)
	}
	if len(seed) != SeedSize {
		return false, fmt.Errorf("%w: seed must be %d bytes, got %d", ErrSeedInvalid, SeedSize, len(seed))
	}
	if s.seatOf(addr) >= 0 || s.onDeckIndex(addr) >= 0 {
		return false, fmt.Errorf("%w: %s", ErrAlreadyJoined, addr)
	}
	if deposit > math.MaxUint64-s.Deposited {
		return false, fmt.Errorf("%w: deposit %d overflows table total", ErrInvalidParameters, deposit)
	}

	var contribution [SeedSize]byte
	copy(contribution[:], seed)
	s.Seed = randutil.XOR(s.Seed, contribution)
	s.Deposited += deposit

	p := Player{Address: addr, Balance: deposit}
	if s.Stage == StageJoin && uint64(len(s.Players)) < s.Params.MaxPlayers {
		p.Playing = true
		s.Players = append(s.Players, p)
		return true, nil
	}
	s.OnDeck = append(s.OnDeck, p)
	return false, nil
}

// Withdraw removes addr from the table and returns its remaining balance.
// A seated player withdrawing on their own turn folds as a normal action, so
// the betting round can close; out of turn it is a forced fold. Committed bets
// stay in the pot.
//
// On error the input state is returned unchanged.
func Withdraw(s *GameState, addr Address) (*GameState, uint64, error) {
	next := s.Clone()
	balance, err := next.withdraw(addr)
	if err != nil {
		return s, 0, err
	}
	return next, balance, nil
}

func (s *GameState) withdraw(addr Address) (uint64, error) {
	if seat := s.seatOf(addr); seat >= 0 {
		switch {
		case s.Stage == StagePlay && seat == s.NextPlayer:
			if err := s.act(seat, Fold, 0); err != nil {
				return 0, err
			}
		case s.Stage == StagePlay:
			s.foldSeat(seat)
			if len(s.Players) == 1 {
				s.awardLastStanding()
			}
		default:
			s.unseat(seat)
		}
	}

	i := s.onDeckIndex(addr)
	if i < 0 {
		return 0, fmt.Errorf("%w: %s", ErrNotAParticipant, addr)
	}
	balance := s.OnDeck[i].Balance
	s.OnDeck = removePlayer(s.OnDeck, i)
	s.Withdrawn += balance
	return balance, nil
}

// unseat removes a seat, sweeps its bet into the pot and queues the player at
// the back of the on-deck list with their balance intact.
func (s *GameState) unseat(seat int) *Player {
	p := s.removeSeat(seat)
	p.Playing = false
	s.OnDeck = append(s.OnDeck, p)
	return &s.OnDeck[len(s.OnDeck)-1]
}

// foldSeat unseats a player during a hand.
func (s *GameState) foldSeat(seat int) {
	p := s.unseat(seat)
	p.Action = Fold
}

// removeSeat deletes a seat and reindexes dealer, next_player and
// last_aggressor. References above the removed seat shift down. A reference to
// the removed seat itself moves to the predecessor for dealer and
// last_aggressor and to the successor for next_player.
func (s *GameState) removeSeat(seat int) Player {
	p := s.Players[seat]
	s.Pot += p.Bet
	p.Bet = 0
	s.Players = removePlayer(s.Players, seat)

	n := len(s.Players)
	if n == 0 {
		s.Dealer, s.NextPlayer, s.LastAggressor = 0, 0, 0
		return p
	}
	s.Dealer = toPredecessor(s.Dealer, seat, n)
	s.LastAggressor = toPredecessor(s.LastAggressor, seat, n)
	s.NextPlayer = toSuccessor(s.NextPlayer, seat, n)
	return p
}

func toPredecessor(ref, removed, n int) int {
	switch {
	case ref > removed:
		ref--
	case ref == removed:
		ref = ref - 1 + n
	}
	return ref % n
}

func toSuccessor(ref, removed, n int) int {
	if ref > removed {
		ref--
	}
	return ref % n
}
