// Package render draws engine views for the terminal.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/simulator"
)

// Renderer formats views with a fixed set of styles.
type Renderer struct {
	styles Styles
}

// New returns a renderer using the default styles.
func New() *Renderer {
	return &Renderer{styles: DefaultStyles()}
}

// Cards renders card strings such as "Ah" with red and black suits.
func (r *Renderer) Cards(cards []string) string {
	if len(cards) == 0 {
		return r.styles.Info.Render("[]")
	}
	formatted := make([]string, len(cards))
	for i, c := range cards {
		if strings.HasSuffix(c, "h") || strings.HasSuffix(c, "d") {
			formatted[i] = r.styles.RedCard.Render(c)
		} else {
			formatted[i] = r.styles.BlackCard.Render(c)
		}
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

// Table renders the public view of a table.
func (r *Renderer) Table(v game.PublicState) string {
	header := r.styles.Header.Render(fmt.Sprintf("%s  hand #%d  %s", v.GameID, v.HandNumber, v.Stage))

	var lines []string
	lines = append(lines, fmt.Sprintf("%s %d  %s %d  %s %d",
		r.styles.Label.Render("blind"), v.Blind,
		r.styles.Label.Render("pot"), v.Pot,
		r.styles.Label.Render("min bet"), v.MinBet))
	lines = append(lines, r.styles.Label.Render("board")+" "+r.Cards(v.Community))
	lines = append(lines, "")

	for i, p := range v.Players {
		marker := "  "
		if i == v.Dealer {
			marker = "D "
		}
		line := fmt.Sprintf("%s%-2d %-16s bal %-6d bet %-6d %s", marker, i, p.Address, p.Balance, p.Bet, p.Action)
		switch {
		case v.Stage == game.StagePlay.String() && i == v.NextPlayer:
			line = r.styles.Turn.Render(line + "  <")
		case !p.Playing:
			line = r.styles.Folded.Render(line)
		}
		lines = append(lines, line)
	}
	if len(v.OnDeck) > 0 {
		lines = append(lines, "", r.styles.Label.Render("on deck"))
		for _, p := range v.OnDeck {
			lines = append(lines, r.styles.Folded.Render(fmt.Sprintf("   %-16s bal %d", p.Address, p.Balance)))
		}
	}
	if res := v.LastResult; res != nil {
		lines = append(lines, "", r.Result(res))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, r.styles.Box.Render(strings.Join(lines, "\n")))
}

// Result renders the outcome of a finished hand.
func (r *Renderer) Result(res *game.HandResult) string {
	winners := make([]string, len(res.Winners))
	for i, w := range res.Winners {
		winners[i] = string(w)
	}
	line := fmt.Sprintf("hand #%d won by %s for %d", res.Hand, strings.Join(winners, ", "), res.Share)
	if res.Describe != "" {
		line += " with " + res.Describe
	}
	if res.Remainder > 0 {
		line += fmt.Sprintf(" (%d carried)", res.Remainder)
	}
	return r.styles.Winner.Render(line)
}

// Player renders a participant's private view.
func (r *Renderer) Player(v game.PlayerState) string {
	seat := "on deck"
	if v.Seat >= 0 {
		seat = fmt.Sprintf("seat %d", v.Seat)
	}
	body := strings.Join([]string{
		fmt.Sprintf("%s %s", r.styles.Label.Render("cards"), r.Cards(v.Cards)),
		fmt.Sprintf("%s %d  %s %d  %s %s",
			r.styles.Label.Render("balance"), v.Balance,
			r.styles.Label.Render("bet"), v.Bet,
			r.styles.Label.Render("last"), v.Action),
	}, "\n")
	header := r.styles.Header.Render(fmt.Sprintf("%s  %s", v.Address, seat))
	return lipgloss.JoinVertical(lipgloss.Left, header, r.styles.Box.Render(body))
}

// Simulation renders a summary of a simulator run.
func (r *Renderer) Simulation(res *simulator.Result) string {
	var showdowns, actions, rejected int
	for _, t := range res.Tables {
		showdowns += t.Showdowns
		actions += t.Actions
		rejected += t.Rejected
	}
	perSecond := 0.0
	if res.Duration > 0 {
		perSecond = float64(res.Hands) / res.Duration.Seconds()
	}
	lines := []string{
		fmt.Sprintf("%s %d", r.styles.Label.Render("tables"), len(res.Tables)),
		fmt.Sprintf("%s %d (%.0f/s)", r.styles.Label.Render("hands"), res.Hands, perSecond),
		fmt.Sprintf("%s %d", r.styles.Label.Render("showdowns"), showdowns),
		fmt.Sprintf("%s %d (%d replaced with folds)", r.styles.Label.Render("actions"), actions, rejected),
		fmt.Sprintf("%s %s", r.styles.Label.Render("elapsed"), res.Duration.Round(time.Millisecond)),
	}
	if pots := res.Pots; pots != nil && pots.Hands > 0 {
		low, high := pots.ConfidenceInterval95()
		lines = append(lines,
			fmt.Sprintf("%s %.2fbb (95%% CI %.2f to %.2f), median %.2fbb, max %.1fbb",
				r.styles.Label.Render("pots"), pots.Mean(), low, high, pots.Median(), pots.MaxPotBB),
			fmt.Sprintf("%s %.1f%% showdown, %d split, ended preflop/flop/turn/river %v",
				r.styles.Label.Render("outcomes"), 100*pots.ShowdownRate(), pots.SplitPots, pots.Streets))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		r.styles.Header.Render("Simulation"),
		r.styles.Box.Render(strings.Join(lines, "\n")))
}
