package game

import "errors"

// Errors returned by engine operations. Operations wrap them with context, so
// callers should test with errors.Is.
var (
	ErrInvalidParameters = errors.New("invalid game parameters")
	ErrAlreadyJoined     = errors.New("player already joined")
	ErrSeedInvalid       = errors.New("invalid seed")
	ErrWrongStage        = errors.New("wrong stage")
	ErrOutOfTurn         = errors.New("out of turn")
	ErrInvalidAction     = errors.New("invalid action")
	ErrNotEnoughPlayers  = errors.New("not enough players")
	ErrDeckExhausted     = errors.New("deck exhausted")
	ErrNotAParticipant   = errors.New("not a participant")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrInvalidParameters, "InvalidParameters"},
	{ErrAlreadyJoined, "AlreadyJoined"},
	{ErrSeedInvalid, "SeedInvalid"},
	{ErrWrongStage, "WrongStage"},
	{ErrOutOfTurn, "OutOfTurn"},
	{ErrInvalidAction, "InvalidAction"},
	{ErrNotEnoughPlayers, "NotEnoughPlayers"},
	{ErrDeckExhausted, "DeckExhausted"},
	{ErrNotAParticipant, "NotAParticipant"},
}

// Code returns the stable name of an engine error, or "Internal" for errors
// that did not originate from the engine's taxonomy.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "Internal"
}
