// Package codec serializes game snapshots to the opaque blobs the host
// persists. Encoding is deterministic CBOR, so equal states always produce
// identical bytes.
package codec

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/lox/holdem-engine/internal/game"
)

// Version is the snapshot format written by Encode.
const Version = 1

var (
	// ErrUnsupportedVersion is returned for blobs written by another format version.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	// ErrCorrupt is returned for blobs that decode but violate state invariants.
	ErrCorrupt = errors.New("corrupt snapshot")
)

type envelope struct {
	Version uint64          `cbor:"1,keyasint"`
	State   *game.GameState `cbor:"2,keyasint"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("codec: invalid encoding options: %v", err))
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("codec: invalid decoding options: %v", err))
	}
}

// Encode serializes a snapshot.
func Encode(s *game.GameState) ([]byte, error) {
	if s == nil {
		return nil, errors.New("cannot encode nil state")
	}
	data, err := encMode.Marshal(envelope{Version: Version, State: s})
	if err != nil {
		return nil, fmt.Errorf("failed to encode state %s: %w", s.GameID, err)
	}
	return data, nil
}

// Decode restores a snapshot and checks its invariants.
func Decode(data []byte) (*game.GameState, error) {
	var env envelope
	if err := decMode.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	if env.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	if env.State == nil {
		return nil, fmt.Errorf("%w: missing state", ErrCorrupt)
	}
	if err := env.State.Audit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return env.State, nil
}
