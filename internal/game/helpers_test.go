package game

import (
	"crypto/sha256"
	"errors"
	"reflect"
	"testing"
)

// testSeed derives a distinct 32-byte contribution per address.
func testSeed(addr Address) []byte {
	sum := sha256.Sum256([]byte(addr))
	return sum[:]
}

func mustCreate(t *testing.T, p Params) *GameState {
	t.Helper()
	s, err := Create("test-table", p)
	if err != nil {
		t.Fatalf("Create(%+v) failed: %v", p, err)
	}
	return s
}

func mustJoin(t *testing.T, s *GameState, addr Address, deposit uint64) *GameState {
	t.Helper()
	next, _, err := Join(s, addr, deposit, testSeed(addr))
	if err != nil {
		t.Fatalf("Join(%s) failed: %v", addr, err)
	}
	return next
}

func mustPlay(t *testing.T, s *GameState, caller Address) *GameState {
	t.Helper()
	next, err := PlayHand(s, caller)
	if err != nil {
		t.Fatalf("PlayHand(%s) failed: %v", caller, err)
	}
	return next
}

func mustAct(t *testing.T, s *GameState, caller Address, action Action, value uint64) *GameState {
	t.Helper()
	next, err := TakeAction(s, caller, action, value)
	if err != nil {
		t.Fatalf("TakeAction(%s, %s, %d) failed: %v", caller, action, value, err)
	}
	return next
}

// newTable creates a table and seats the given players with equal deposits.
func newTable(t *testing.T, blind, deposit uint64, addrs ...Address) *GameState {
	t.Helper()
	s := mustCreate(t, Params{Blind: blind, MaxPlayers: MaxPlayersLimit, TimePerTurn: 30})
	for _, a := range addrs {
		s = mustJoin(t, s, a, deposit)
	}
	return s
}

// requireRejected asserts that an operation failed with want and left the
// input snapshot untouched.
func requireRejected(t *testing.T, before, input, got *GameState, err, want error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
	if got != input {
		t.Errorf("expected the input state to be returned on error")
	}
	if !reflect.DeepEqual(before, input) {
		t.Errorf("input state was mutated by a failed operation")
	}
}

func requireAudit(t *testing.T, s *GameState) {
	t.Helper()
	if err := s.Audit(); err != nil {
		t.Fatalf("audit failed: %v", err)
	}
}
