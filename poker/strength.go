package poker

import "fmt"

// HoleStrength is a coarse preflop class for a two-card hand. Higher is
// stronger, so classes compare with < and >.
type HoleStrength uint8

const (
	Trash HoleStrength = iota
	Weak
	Medium
	Strong
	Premium
)

func (h HoleStrength) String() string {
	switch h {
	case Trash:
		return "Trash"
	case Weak:
		return "Weak"
	case Medium:
		return "Medium"
	case Strong:
		return "Strong"
	case Premium:
		return "Premium"
	default:
		return "Unknown"
	}
}

// ClassifyHole buckets hole cards:
// Premium (JJ+, AK), Strong (TT, AQ, AJ), Medium (77-99, suited broadway),
// Weak (22-66, suited connectors and one-gappers), Trash (everything else).
func ClassifyHole(cards []Card) (HoleStrength, error) {
	if len(cards) != 2 {
		return Trash, fmt.Errorf("need 2 hole cards, got %d", len(cards))
	}
	a, b := cards[0], cards[1]
	if !a.Valid() || !b.Valid() || a == b {
		return Trash, fmt.Errorf("invalid hole cards %s %s", a, b)
	}

	lo, hi := a.Rank(), b.Rank()
	if lo > hi {
		lo, hi = hi, lo
	}
	pair := lo == hi
	suited := a.Suit() == b.Suit()

	switch {
	case pair && lo >= Jack, lo == King && hi == Ace:
		return Premium, nil
	case pair && lo == Ten, hi == Ace && (lo == Queen || lo == Jack):
		return Strong, nil
	case pair && lo >= Seven, suited && lo >= Ten:
		return Medium, nil
	case pair, suited && hi-lo <= 2:
		return Weak, nil
	}
	return Trash, nil
}
