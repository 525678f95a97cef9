// Package game implements the Texas Hold'em rules engine.
//
// The main type is GameState, a complete snapshot of one table: seated players,
// the on-deck queue, the deck, community cards, pot and turn bookkeeping. The
// engine never keeps state between calls. Every operation takes a snapshot and
// returns a new one, or returns the input unchanged together with an error.
//
// # Basic Usage
//
//	s, _ := game.Create("", game.Params{Blind: 2, MaxPlayers: 4, TimePerTurn: 30})
//	s, _, _ = game.Join(s, "alice", 100, aliceSeed)
//	s, _, _ = game.Join(s, "bob", 100, bobSeed)
//	s, _ = game.PlayHand(s, "alice")
//	s, err := game.TakeAction(s, "alice", game.Match, 0)
//	if errors.Is(err, game.ErrOutOfTurn) {
//	    // s is unchanged
//	}
//
// # Determinism
//
// The table seed is the XOR of every joiner's 32-byte contribution. Each hand
// shuffles a fresh deck with a ChaCha8 stream keyed by SHA-256 of the seed and
// the hand number; the seed itself only changes when someone joins. Replaying
// the same operations against the same snapshot always produces the same
// result.
//
// # Architecture
//
// GameState operations are grouped by concern:
//   - seating.go: Join and Withdraw, seat removal and reindexing
//   - dealer.go: PlayHand, blinds and hole cards
//   - betting.go: TakeAction, TimeoutFold and street progression
//   - showdown.go: ranking, pot split and last-player-standing payouts
//   - view.go: public and per-player views
//   - audit.go: chip conservation and structural checks
package game
