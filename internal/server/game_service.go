package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/lox/holdem-engine/internal/codec"
	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/store"
)

// ErrTableExists is returned when creating a table whose id is taken.
var ErrTableExists = errors.New("table already exists")

// Notifier receives messages the service publishes for a table.
type Notifier func(tableID string, msg *Message)

// GameService hosts tables on top of a snapshot store. Each call checks out
// the table's snapshot, applies one engine operation and checks the result
// back in. Calls on the same table are serialized; nothing else is cached.
type GameService struct {
	store  store.Store
	clock  quartz.Clock
	logger *log.Logger

	mu     sync.Mutex
	locks  map[string]*sync.Mutex
	timers map[string]*turnTimer
	notify Notifier
}

// turnTimer is keyed by hand, street and player so that operations which do
// not move the turn leave the running clock alone.
type turnTimer struct {
	timer *quartz.Timer
	key   string
}

// NewGameService creates a game service
func NewGameService(st store.Store, logger *log.Logger, clock quartz.Clock) *GameService {
	return &GameService{
		store:  st,
		clock:  clock,
		logger: logger.WithPrefix("game"),
		locks:  make(map[string]*sync.Mutex),
		timers: make(map[string]*turnTimer),
	}
}

// SetNotifier installs the callback used for table updates and timeouts.
func (gs *GameService) SetNotifier(n Notifier) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.notify = n
}

func (gs *GameService) tableLock(id string) *sync.Mutex {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	l, ok := gs.locks[id]
	if !ok {
		l = &sync.Mutex{}
		gs.locks[id] = l
	}
	return l
}

// CreateTable creates a table. An empty id is replaced with a fresh UUIDv7.
func (gs *GameService) CreateTable(ctx context.Context, id string, params game.Params) (string, error) {
	if id == "" {
		u, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("failed to generate table id: %w", err)
		}
		id = u.String()
	}

	state, err := game.Create(id, params)
	if err != nil {
		return "", err
	}

	lock := gs.tableLock(id)
	lock.Lock()
	defer lock.Unlock()

	if _, err := gs.store.Load(ctx, id); err == nil {
		return "", fmt.Errorf("%w: %s", ErrTableExists, id)
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}
	if err := gs.save(ctx, state); err != nil {
		return "", err
	}

	gs.logger.Info("Table created", "table", id, "blind", params.Blind, "maxPlayers", params.MaxPlayers, "timePerTurn", params.TimePerTurn)
	return id, nil
}

// EnsureTable creates a configured table unless it already exists.
func (gs *GameService) EnsureTable(ctx context.Context, id string, params game.Params) error {
	_, err := gs.CreateTable(ctx, id, params)
	if errors.Is(err, ErrTableExists) {
		return nil
	}
	return err
}

// Join admits a player with a deposit and seed contribution.
func (gs *GameService) Join(ctx context.Context, id string, addr game.Address, deposit uint64, seed []byte) (bool, error) {
	var joined bool
	_, err := gs.update(ctx, id, func(s *game.GameState) (*game.GameState, error) {
		next, ok, err := game.Join(s, addr, deposit, seed)
		joined = ok
		return next, err
	})
	if err == nil {
		gs.logger.Info("Player joined", "table", id, "player", addr, "deposit", deposit, "seated", joined)
	}
	return joined, err
}

// PlayHand starts the next hand.
func (gs *GameService) PlayHand(ctx context.Context, id string, caller game.Address) (game.PublicState, error) {
	next, err := gs.update(ctx, id, func(s *game.GameState) (*game.GameState, error) {
		return game.PlayHand(s, caller)
	})
	if err != nil {
		return game.PublicState{}, err
	}
	gs.logger.Info("Hand started", "table", id, "hand", next.HandNumber, "players", len(next.Players))
	return next.PublicState(), nil
}

// TakeAction applies a betting action.
func (gs *GameService) TakeAction(ctx context.Context, id string, caller game.Address, action game.Action, value uint64) (game.PublicState, error) {
	next, err := gs.update(ctx, id, func(s *game.GameState) (*game.GameState, error) {
		return game.TakeAction(s, caller, action, value)
	})
	if err != nil {
		return game.PublicState{}, err
	}
	gs.logger.Debug("Action taken", "table", id, "player", caller, "action", action, "value", value)
	return next.PublicState(), nil
}

// Withdraw removes a player and returns the balance to pay out.
func (gs *GameService) Withdraw(ctx context.Context, id string, addr game.Address) (uint64, error) {
	var balance uint64
	_, err := gs.update(ctx, id, func(s *game.GameState) (*game.GameState, error) {
		next, b, err := game.Withdraw(s, addr)
		balance = b
		return next, err
	})
	if err == nil {
		gs.logger.Info("Player withdrew", "table", id, "player", addr, "balance", balance)
	}
	return balance, err
}

// Timeout folds expected if it is still their turn.
func (gs *GameService) Timeout(ctx context.Context, id string, expected game.Address) error {
	next, err := gs.update(ctx, id, func(s *game.GameState) (*game.GameState, error) {
		return game.TimeoutFold(s, expected)
	})
	if err != nil {
		return err
	}
	gs.logger.Warn("Turn timed out, player folded", "table", id, "player", expected)
	gs.publish(id, MessageTypePlayerTimeout, PlayerTimeoutData{
		GameID:         id,
		Address:        string(expected),
		TimeoutSeconds: next.Params.TimePerTurn,
	})
	return nil
}

// PublicState returns the public view of a table.
func (gs *GameService) PublicState(ctx context.Context, id string) (game.PublicState, error) {
	s, err := gs.load(ctx, id)
	if err != nil {
		return game.PublicState{}, err
	}
	return s.PublicState(), nil
}

// PlayerState returns a participant's private view.
func (gs *GameService) PlayerState(ctx context.Context, id string, addr game.Address) (game.PlayerState, error) {
	s, err := gs.load(ctx, id)
	if err != nil {
		return game.PlayerState{}, err
	}
	return s.PlayerState(addr)
}

// ListTables returns the ids of all stored tables.
func (gs *GameService) ListTables(ctx context.Context) ([]string, error) {
	return gs.store.List(ctx)
}

// Resume arms turn timers for every stored table with a hand in progress.
func (gs *GameService) Resume(ctx context.Context) error {
	ids, err := gs.store.List(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		s, err := gs.load(ctx, id)
		if err != nil {
			gs.logger.Error("Failed to load table", "table", id, "error", err)
			continue
		}
		gs.armTimer(s)
	}
	return nil
}

// Close stops all turn timers.
func (gs *GameService) Close() {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	for id, t := range gs.timers {
		t.timer.Stop()
		delete(gs.timers, id)
	}
}

func (gs *GameService) load(ctx context.Context, id string) (*game.GameState, error) {
	blob, err := gs.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return codec.Decode(blob)
}

func (gs *GameService) save(ctx context.Context, s *game.GameState) error {
	blob, err := codec.Encode(s)
	if err != nil {
		return err
	}
	return gs.store.Save(ctx, s.GameID, blob)
}

// update runs op against the stored snapshot under the table lock and
// persists the result. A failed op persists nothing.
func (gs *GameService) update(ctx context.Context, id string, op func(*game.GameState) (*game.GameState, error)) (*game.GameState, error) {
	lock := gs.tableLock(id)
	lock.Lock()
	defer lock.Unlock()

	state, err := gs.load(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := op(state)
	if err != nil {
		return nil, err
	}
	if err := next.Audit(); err != nil {
		gs.logger.Error("Refusing to persist invalid state", "table", id, "error", err)
		return nil, fmt.Errorf("invalid state after operation: %w", err)
	}
	if err := gs.save(ctx, next); err != nil {
		return nil, err
	}

	gs.armTimer(next)
	gs.publish(id, MessageTypeTableUpdate, TableUpdateData{GameID: id, State: next.PublicState()})
	return next, nil
}

// armTimer replaces the table's turn timer when the turn has moved. While a
// hand is running the player on turn is folded when time_per_turn elapses.
func (gs *GameService) armTimer(s *game.GameState) {
	id := s.GameID
	current, ok := s.CurrentPlayer()
	key := fmt.Sprintf("%d/%d/%s", s.HandNumber, len(s.Community), current)

	gs.mu.Lock()
	defer gs.mu.Unlock()

	if t, exists := gs.timers[id]; exists {
		if ok && t.key == key {
			return
		}
		t.timer.Stop()
		delete(gs.timers, id)
	}
	if !ok {
		return
	}
	d := time.Duration(s.Params.TimePerTurn) * time.Second
	timer := gs.clock.AfterFunc(d, func() {
		if err := gs.Timeout(context.Background(), id, current); err != nil {
			gs.logger.Debug("Stale turn timer", "table", id, "player", current, "error", err)
		}
	}, "turn", id)
	gs.timers[id] = &turnTimer{timer: timer, key: key}
}

func (gs *GameService) publish(id string, typ MessageType, data any) {
	gs.mu.Lock()
	notify := gs.notify
	gs.mu.Unlock()
	if notify == nil {
		return
	}
	msg, err := NewMessage(typ, data)
	if err != nil {
		gs.logger.Error("Failed to create message", "type", typ, "error", err)
		return
	}
	notify(id, msg)
}
