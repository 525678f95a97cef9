package game

import (
	"fmt"
	"strings"

	"github.com/lox/holdem-engine/internal/randutil"
	"github.com/lox/holdem-engine/poker"
)

// MaxPlayersLimit is the largest table the deck can serve: 22 players take 44
// hole cards, leaving 3 burns and 5 community cards.
const MaxPlayersLimit = 22

// CommunityCards is the number of shared cards revealed before showdown.
const CommunityCards = 5

// SeedSize is the required length of a joiner's seed contribution.
const SeedSize = randutil.SeedSize

// Address identifies a participant. Addresses arrive already authenticated.
type Address string

// Stage is the table lifecycle stage
type Stage uint8

const (
	StageJoin Stage = iota
	StagePlay
)

func (s Stage) String() string {
	switch s {
	case StageJoin:
		return "Join"
	case StagePlay:
		return "Play"
	default:
		return "Unknown"
	}
}

// ParseStage maps a stage name to a Stage. Unknown names are ErrWrongStage.
func ParseStage(name string) (Stage, error) {
	switch strings.ToLower(name) {
	case "join":
		return StageJoin, nil
	case "play":
		return StagePlay, nil
	}
	return 0, fmt.Errorf("%w: unknown stage %q", ErrWrongStage, name)
}

// Action represents a player action
type Action uint8

const (
	None Action = iota
	Check
	Match
	Raise
	Fold
)

func (a Action) String() string {
	switch a {
	case None:
		return "None"
	case Check:
		return "Check"
	case Match:
		return "Match"
	case Raise:
		return "Raise"
	case Fold:
		return "Fold"
	default:
		return "Unknown"
	}
}

// ParseAction maps an action name to an Action. "call" is accepted for Match.
// Unknown names, including "none", are ErrInvalidAction.
func ParseAction(name string) (Action, error) {
	switch strings.ToLower(name) {
	case "check":
		return Check, nil
	case "match", "call":
		return Match, nil
	case "raise":
		return Raise, nil
	case "fold":
		return Fold, nil
	}
	return None, fmt.Errorf("%w: unknown action %q", ErrInvalidAction, name)
}

// Params are the immutable game parameters fixed at creation.
type Params struct {
	Blind       uint64
	MaxPlayers  uint64
	TimePerTurn uint64 // seconds; advisory, enforced by the host
}

// Validate checks the parameter ranges.
func (p Params) Validate() error {
	if p.Blind == 0 {
		return fmt.Errorf("%w: blind must be positive", ErrInvalidParameters)
	}
	if p.MaxPlayers == 0 || p.MaxPlayers > MaxPlayersLimit {
		return fmt.Errorf("%w: max players must be between 1 and %d, got %d", ErrInvalidParameters, MaxPlayersLimit, p.MaxPlayers)
	}
	if p.TimePerTurn == 0 {
		return fmt.Errorf("%w: time per turn must be positive", ErrInvalidParameters)
	}
	return nil
}

// Player is a participant, either seated or waiting on deck.
type Player struct {
	Address Address
	Cards   []poker.Card // hole cards, empty until dealt
	Action  Action       // last action taken
	Playing bool         // seated (true) or on deck (false)
	Bet     uint64       // committed this betting round
	Balance uint64       // chips not yet committed
}

// HandResult describes how the last completed hand was settled.
type HandResult struct {
	Hand      uint64
	Winners   []Address
	Share     uint64 // paid to each winner
	Remainder uint64 // odd chips left in the pot for the next hand
	Showdown  bool   // false when everyone else folded
	Describe  string // best hand of the first winner, empty without showdown
}

// GameState is the canonical snapshot of a table. The engine owns it between
// calls; the host only ever stores the encoded form.
type GameState struct {
	GameID        string
	Params        Params
	Players       []Player // seated, index is the seat
	OnDeck        []Player // FIFO of players waiting for the next hand
	Community     []poker.Card
	Deck          poker.Deck
	Pot           uint64
	MinBet        uint64
	Dealer        int
	NextPlayer    int
	LastAggressor int
	Stage         Stage
	Seed          [SeedSize]byte // XOR of every joiner's contribution
	HandNumber    uint64
	Deposited     uint64
	Withdrawn     uint64
	LastResult    *HandResult
}

// Create returns a new table in the Join stage. When gameID is empty an id is
// derived from the parameters.
func Create(gameID string, p Params) (*GameState, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if gameID == "" {
		gameID = fmt.Sprintf("holdem-%d", p.Blind+p.MaxPlayers+p.TimePerTurn)
	}
	return &GameState{
		GameID: gameID,
		Params: p,
		Stage:  StageJoin,
	}, nil
}

// Clone returns a deep copy of the state.
func (s *GameState) Clone() *GameState {
	c := *s
	c.Players = clonePlayers(s.Players)
	c.OnDeck = clonePlayers(s.OnDeck)
	c.Community = cloneCards(s.Community)
	if s.LastResult != nil {
		r := *s.LastResult
		if s.LastResult.Winners != nil {
			r.Winners = append([]Address(nil), s.LastResult.Winners...)
		}
		c.LastResult = &r
	}
	return &c
}

func clonePlayers(ps []Player) []Player {
	if ps == nil {
		return nil
	}
	out := make([]Player, len(ps))
	for i, p := range ps {
		p.Cards = cloneCards(p.Cards)
		out[i] = p
	}
	return out
}

func cloneCards(cs []poker.Card) []poker.Card {
	if cs == nil {
		return nil
	}
	return append([]poker.Card(nil), cs...)
}

// seatOf returns the seat index of addr, or -1. Recomputed from the seat list
// on every call so it cannot drift from it.
func (s *GameState) seatOf(addr Address) int {
	for i := range s.Players {
		if s.Players[i].Address == addr {
			return i
		}
	}
	return -1
}

func (s *GameState) onDeckIndex(addr Address) int {
	for i := range s.OnDeck {
		if s.OnDeck[i].Address == addr {
			return i
		}
	}
	return -1
}

// SeatOf returns the seat index of addr, or -1 when addr is not seated.
func (s *GameState) SeatOf(addr Address) int {
	return s.seatOf(addr)
}

// CurrentPlayer returns the address whose turn it is, if a hand is running.
func (s *GameState) CurrentPlayer() (Address, bool) {
	if s.Stage != StagePlay || s.NextPlayer < 0 || s.NextPlayer >= len(s.Players) {
		return "", false
	}
	return s.Players[s.NextPlayer].Address, true
}

// removePlayer deletes index i, returning nil instead of an empty slice so
// snapshots stay canonical.
func removePlayer(ps []Player, i int) []Player {
	out := append(ps[:i:i], ps[i+1:]...)
	if len(out) == 0 {
		return nil
	}
	return out
}
