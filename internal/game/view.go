package game

import (
	"fmt"

	"github.com/lox/holdem-engine/poker"
)

// PlayerSummary is what everyone may see about a participant.
type PlayerSummary struct {
	Address Address `json:"address"`
	Action  string  `json:"action"`
	Playing bool    `json:"playing"`
	Bet     uint64  `json:"bet"`
	Balance uint64  `json:"balance"`
}

// PublicState is the table as seen by anyone: no hole cards, no deck order
// and no seed.
type PublicState struct {
	GameID        string          `json:"gameId"`
	Blind         uint64          `json:"blind"`
	MaxPlayers    uint64          `json:"maxPlayers"`
	TimePerTurn   uint64          `json:"timePerTurn"`
	Players       []PlayerSummary `json:"players"`
	OnDeck        []PlayerSummary `json:"onDeck"`
	Community     []string        `json:"community"`
	Pot           uint64          `json:"pot"`
	MinBet        uint64          `json:"minBet"`
	Dealer        int             `json:"dealer"`
	NextPlayer    int             `json:"nextPlayer"`
	LastAggressor int             `json:"lastAggressor"`
	Stage         string          `json:"stage"`
	HandNumber    uint64          `json:"handNumber"`
	LastResult    *HandResult     `json:"lastResult,omitempty"`
}

// PlayerState is a participant's private view, including hole cards.
type PlayerState struct {
	Address Address  `json:"address"`
	Seat    int      `json:"seat"` // -1 while on deck
	Cards   []string `json:"cards"`
	Action  string   `json:"action"`
	Playing bool     `json:"playing"`
	Bet     uint64   `json:"bet"`
	Balance uint64   `json:"balance"`
}

// PublicState returns the public view of s.
func (s *GameState) PublicState() PublicState {
	v := PublicState{
		GameID:        s.GameID,
		Blind:         s.Params.Blind,
		MaxPlayers:    s.Params.MaxPlayers,
		TimePerTurn:   s.Params.TimePerTurn,
		Players:       summaries(s.Players),
		OnDeck:        summaries(s.OnDeck),
		Community:     cardStrings(s.Community),
		Pot:           s.Pot,
		MinBet:        s.MinBet,
		Dealer:        s.Dealer,
		NextPlayer:    s.NextPlayer,
		LastAggressor: s.LastAggressor,
		Stage:         s.Stage.String(),
		HandNumber:    s.HandNumber,
	}
	if s.LastResult != nil {
		v.LastResult = s.Clone().LastResult
	}
	return v
}

// PlayerState returns the private view of addr, seated or on deck.
func (s *GameState) PlayerState(addr Address) (PlayerState, error) {
	seat := s.seatOf(addr)
	var p Player
	switch {
	case seat >= 0:
		p = s.Players[seat]
	case s.onDeckIndex(addr) >= 0:
		p = s.OnDeck[s.onDeckIndex(addr)]
	default:
		return PlayerState{}, fmt.Errorf("%w: %s", ErrNotAParticipant, addr)
	}
	return PlayerState{
		Address: p.Address,
		Seat:    seat,
		Cards:   cardStrings(p.Cards),
		Action:  p.Action.String(),
		Playing: p.Playing,
		Bet:     p.Bet,
		Balance: p.Balance,
	}, nil
}

func summaries(ps []Player) []PlayerSummary {
	out := make([]PlayerSummary, 0, len(ps))
	for _, p := range ps {
		out = append(out, PlayerSummary{
			Address: p.Address,
			Action:  p.Action.String(),
			Playing: p.Playing,
			Bet:     p.Bet,
			Balance: p.Balance,
		})
	}
	return out
}

func cardStrings(cards []poker.Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.String())
	}
	return out
}
