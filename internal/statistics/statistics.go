// Package statistics summarises pot sizes over many simulated hands.
package statistics

import (
	"fmt"
	"math"
	"sort"
)

// Street is how far a hand got before it was decided.
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
)

var streetNames = [...]string{"preflop", "flop", "turn", "river"}

func (s Street) String() string {
	if s < Preflop || s > River {
		return fmt.Sprintf("Street(%d)", int(s))
	}
	return streetNames[s]
}

// StreetOf maps the number of community cards on the board to a street.
func StreetOf(community int) Street {
	switch {
	case community >= 5:
		return River
	case community == 4:
		return Turn
	case community >= 3:
		return Flop
	default:
		return Preflop
	}
}

// HandResult is the outcome of one finished hand.
type HandResult struct {
	Pot      uint64 // chips paid out to winners
	Blind    uint64
	Winners  int
	Showdown bool
	Street   Street
}

// Statistics accumulates pot sizes measured in big blinds.
type Statistics struct {
	Hands  int
	SumBB  float64
	SumBB2 float64   // sum of squares for the variance
	Values []float64 // every pot, for the median and percentiles

	Showdowns int
	SplitPots int
	Streets   [River + 1]int

	MaxPotChips uint64
	MaxPotBB    float64
}

// Mean returns the mean pot in big blinds
func (s *Statistics) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.SumBB / float64(s.Hands)
}

// Variance returns the sample variance of pot sizes
func (s *Statistics) Variance() float64 {
	if s.Hands < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumBB2 - float64(s.Hands)*mean*mean) / float64(s.Hands-1)
}

// StdDev returns the sample standard deviation
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(max(s.Variance(), 0))
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// ShowdownRate is the fraction of hands decided at showdown.
func (s *Statistics) ShowdownRate() float64 {
	if s.Hands == 0 {
		return 0
	}
	return float64(s.Showdowns) / float64(s.Hands)
}

// Add records one hand. Hands with a zero blind are measured in chips.
func (s *Statistics) Add(result HandResult) {
	blind := float64(result.Blind)
	if blind == 0 {
		blind = 1
	}
	potBB := float64(result.Pot) / blind

	s.Hands++
	s.SumBB += potBB
	s.SumBB2 += potBB * potBB
	s.Values = append(s.Values, potBB)

	if result.Showdown {
		s.Showdowns++
	}
	if result.Winners > 1 {
		s.SplitPots++
	}
	if result.Street >= Preflop && result.Street <= River {
		s.Streets[result.Street]++
	}
	if result.Pot > s.MaxPotChips {
		s.MaxPotChips = result.Pot
		s.MaxPotBB = potBB
	}
}

// Merge folds other into s.
func (s *Statistics) Merge(other *Statistics) {
	if other == nil {
		return
	}
	s.Hands += other.Hands
	s.SumBB += other.SumBB
	s.SumBB2 += other.SumBB2
	s.Values = append(s.Values, other.Values...)
	s.Showdowns += other.Showdowns
	s.SplitPots += other.SplitPots
	for i := range s.Streets {
		s.Streets[i] += other.Streets[i]
	}
	if other.MaxPotChips > s.MaxPotChips {
		s.MaxPotChips = other.MaxPotChips
		s.MaxPotBB = other.MaxPotBB
	}
}

// Median returns the median pot
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the pot at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Validate checks the counters agree with each other
func (s *Statistics) Validate() error {
	if s.Hands < 0 {
		return fmt.Errorf("invalid hands count: %d", s.Hands)
	}
	if len(s.Values) != s.Hands {
		return fmt.Errorf("values array length (%d) does not match hands count (%d)", len(s.Values), s.Hands)
	}
	if s.Showdowns > s.Hands {
		return fmt.Errorf("showdowns (%d) exceed total hands (%d)", s.Showdowns, s.Hands)
	}
	if s.SplitPots > s.Showdowns {
		return fmt.Errorf("split pots (%d) exceed showdowns (%d)", s.SplitPots, s.Showdowns)
	}
	total := 0
	for _, n := range s.Streets {
		total += n
	}
	if total != s.Hands {
		return fmt.Errorf("street totals (%d) do not match total hands (%d)", total, s.Hands)
	}
	return nil
}
