package game

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/lox/holdem-engine/internal/randutil"
)

func TestPlayHandPostsBlindsAndDeals(t *testing.T) {
	t.Parallel()
	s := newTable(t, 10, 100, "p0", "p1", "p2", "p3")
	s = mustPlay(t, s, "p0")

	if s.Stage != StagePlay || s.HandNumber != 1 {
		t.Fatalf("stage %s hand %d", s.Stage, s.HandNumber)
	}
	if s.Dealer != 1 {
		t.Errorf("dealer = %d, want 1", s.Dealer)
	}
	if s.Players[2].Bet != 5 || s.Players[3].Bet != 10 {
		t.Errorf("blinds: sb %d bb %d", s.Players[2].Bet, s.Players[3].Bet)
	}
	if s.NextPlayer != 0 || s.LastAggressor != 3 || s.MinBet != 10 {
		t.Errorf("next %d aggressor %d min %d", s.NextPlayer, s.LastAggressor, s.MinBet)
	}
	// round-robin from the seat left of the dealer
	if s.Players[2].Cards[0] != s.Deck.Cards[0] || s.Players[1].Cards[0] != s.Deck.Cards[3] || s.Players[2].Cards[1] != s.Deck.Cards[4] {
		t.Errorf("cards not dealt round-robin from seat 2")
	}
	if s.Deck.Next != 8 {
		t.Errorf("deck cursor = %d, want 8", s.Deck.Next)
	}
	requireAudit(t, s)
}

func TestPlayHandShortBlindIsCapped(t *testing.T) {
	t.Parallel()
	s := mustCreate(t, Params{Blind: 10, MaxPlayers: 4, TimePerTurn: 10})
	s = mustJoin(t, s, "p0", 3)
	s = mustJoin(t, s, "p1", 100)
	s = mustPlay(t, s, "p1")
	// heads-up: p0 posts the small blind of 5 but only has 3
	if s.Players[0].Bet != 3 || s.Players[0].Balance != 0 {
		t.Errorf("short blind not capped: %+v", s.Players[0])
	}
	requireAudit(t, s)
}

func TestPlayHandErrors(t *testing.T) {
	t.Parallel()

	t.Run("wrong stage", func(t *testing.T) {
		t.Parallel()
		s := mustPlay(t, newTable(t, 2, 10, "a", "b"), "a")
		before := s.Clone()
		got, err := PlayHand(s, "a")
		requireRejected(t, before, s, got, err, ErrWrongStage)
	})

	t.Run("not enough players", func(t *testing.T) {
		t.Parallel()
		s := newTable(t, 2, 10, "a")
		before := s.Clone()
		got, err := PlayHand(s, "a")
		requireRejected(t, before, s, got, err, ErrNotEnoughPlayers)
	})

	t.Run("busted players do not count", func(t *testing.T) {
		t.Parallel()
		s := newTable(t, 2, 10, "a")
		s = mustJoin(t, s, "b", 0)
		before := s.Clone()
		got, err := PlayHand(s, "a")
		requireRejected(t, before, s, got, err, ErrNotEnoughPlayers)
	})

	t.Run("caller not seated", func(t *testing.T) {
		t.Parallel()
		s := mustCreate(t, Params{Blind: 2, MaxPlayers: 2, TimePerTurn: 10})
		s = mustJoin(t, s, "a", 10)
		s = mustJoin(t, s, "b", 10)
		s = mustJoin(t, s, "c", 10)
		before := s.Clone()
		got, err := PlayHand(s, "c")
		requireRejected(t, before, s, got, err, ErrNotAParticipant)
	})
}

func TestPlayHandRotatesSeats(t *testing.T) {
	t.Parallel()
	s := mustCreate(t, Params{Blind: 2, MaxPlayers: 2, TimePerTurn: 10})
	s = mustJoin(t, s, "a", 1)
	s = mustJoin(t, s, "b", 10)
	s = mustJoin(t, s, "c", 10)

	// a is the small blind heads-up and is all in for 1; folding it busts a
	s = mustPlay(t, s, "b")
	s = mustAct(t, s, "a", Fold, 0)
	if s.Stage != StageJoin {
		t.Fatalf("expected hand over, stage %s", s.Stage)
	}
	if s.OnDeck[1].Address != "a" || s.OnDeck[1].Balance != 0 {
		t.Fatalf("expected busted a at back of deck: %+v", s.OnDeck)
	}

	s = mustPlay(t, s, "c")
	seated := []Address{s.Players[0].Address, s.Players[1].Address}
	if !reflect.DeepEqual(seated, []Address{"b", "c"}) {
		t.Errorf("seated %v, want [b c]", seated)
	}
	if len(s.OnDeck) != 1 || s.OnDeck[0].Address != "a" {
		t.Errorf("busted player should stay on deck: %+v", s.OnDeck)
	}
	requireAudit(t, s)
}

func TestShuffleIsDeterministic(t *testing.T) {
	t.Parallel()
	build := func() *GameState {
		return mustPlay(t, newTable(t, 2, 50, "alice", "bob", "carol"), "bob")
	}
	a, b := build(), build()
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same operations produced different states")
	}

	other := mustCreate(t, Params{Blind: 2, MaxPlayers: MaxPlayersLimit, TimePerTurn: 30})
	other = mustJoin(t, other, "alice", 50)
	other = mustJoin(t, other, "bob", 50)
	other, _, err := Join(other, "carol", 50, testSeed("someone else"))
	if err != nil {
		t.Fatal(err)
	}
	other = mustPlay(t, other, "bob")
	if other.Deck.Cards == a.Deck.Cards {
		t.Error("different seeds produced the same deck")
	}
}

func TestSeedStaysXOROfContributions(t *testing.T) {
	t.Parallel()
	s := newTable(t, 2, 50, "alice", "bob")
	seed := s.Seed
	s = mustPlay(t, s, "alice")
	if s.Seed != seed {
		t.Fatal("dealing changed the table seed")
	}
	first := s.Deck.Cards

	s = mustAct(t, s, "alice", Fold, 0)
	s = mustPlay(t, s, "alice")
	if s.Deck.Cards == first {
		t.Error("consecutive hands used the same deck order")
	}
	if s.HandNumber != 2 {
		t.Errorf("HandNumber = %d, want 2", s.HandNumber)
	}

	// a late joiner still mixes into the raw contributions
	s = mustJoin(t, s, "carol", 50)
	var want, c [SeedSize]byte
	for _, a := range []Address{"alice", "bob", "carol"} {
		copy(c[:], testSeed(a))
		want = randutil.XOR(want, c)
	}
	if s.Seed != want {
		t.Error("seed is not the XOR of contributions after hands were played")
	}
}

func TestFullTableDoesNotExhaustDeck(t *testing.T) {
	t.Parallel()
	var addrs []Address
	for i := 0; i < MaxPlayersLimit; i++ {
		addrs = append(addrs, Address(fmt.Sprintf("p%02d", i)))
	}
	s := newTable(t, 2, 100, addrs...)
	s = mustPlay(t, s, addrs[0])

	for s.Stage == StagePlay {
		current, _ := s.CurrentPlayer()
		seat := s.SeatOf(current)
		action := Check
		if s.Players[seat].Bet < s.MinBet {
			action = Match
		}
		next, err := TakeAction(s, current, action, 0)
		if errors.Is(err, ErrDeckExhausted) {
			t.Fatalf("deck exhausted with %d players", MaxPlayersLimit)
		}
		if err != nil {
			t.Fatal(err)
		}
		s = next
	}
	if s.Deck.CardsRemaining() != 0 {
		t.Errorf("expected every card used, %d remain", s.Deck.CardsRemaining())
	}
	requireAudit(t, s)
}
