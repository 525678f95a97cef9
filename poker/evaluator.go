package poker

import (
	"fmt"

	ph "github.com/paulhankin/poker"
)

// HandRank represents the strength of a 7-card hand. Higher values are stronger.
type HandRank int16

// CompareHands compares two hands and returns 1 if a wins, -1 if b wins, 0 for tie
func CompareHands(a, b HandRank) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	}
	return 0
}

var evalSuits = [4]ph.Suit{ph.Club, ph.Diamond, ph.Heart, ph.Spade}

// toEval converts a card to the evaluator's representation, where ranks run
// ace=1, two=2 ... king=13.
func toEval(c Card) (ph.Card, error) {
	if !c.Valid() {
		return 0, fmt.Errorf("invalid card index %d", c)
	}
	rank := ph.Rank(c.Rank() + 2)
	if c.Rank() == Ace {
		rank = ph.Rank(1)
	}
	return ph.MakeCard(evalSuits[c.Suit()], rank)
}

func toEval7(cards []Card) (*[7]ph.Card, error) {
	if len(cards) != 7 {
		return nil, fmt.Errorf("need exactly 7 cards, got %d", len(cards))
	}
	var out [7]ph.Card
	seen := make(map[Card]bool, 7)
	for i, c := range cards {
		if seen[c] {
			return nil, fmt.Errorf("duplicate card %s", c)
		}
		seen[c] = true
		ec, err := toEval(c)
		if err != nil {
			return nil, err
		}
		out[i] = ec
	}
	return &out, nil
}

// Evaluate7 ranks the best five-card hand contained in exactly seven cards.
func Evaluate7(cards []Card) (HandRank, error) {
	hand, err := toEval7(cards)
	if err != nil {
		return 0, err
	}
	return HandRank(ph.Eval7(hand)), nil
}

// Describe returns a human readable name for the best hand in cards,
// e.g. "full house, kings over sevens".
func Describe(cards []Card) (string, error) {
	converted := make([]ph.Card, len(cards))
	for i, c := range cards {
		ec, err := toEval(c)
		if err != nil {
			return "", err
		}
		converted[i] = ec
	}
	return ph.Describe(converted)
}
