package server

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/holdem-engine/internal/codec"
	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/store"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn        *websocket.Conn
	send        chan *Message
	tables      map[string]bool
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.RWMutex
	closeOnce   sync.Once
	gameService *GameService
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, gameService *GameService) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:        conn,
		send:        make(chan *Message, 256),
		tables:      make(map[string]bool),
		logger:      logger.WithPrefix("conn"),
		ctx:         ctx,
		cancel:      cancel,
		gameService: gameService,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		c.mu.Lock()
		close(c.send)
		c.send = nil
		c.mu.Unlock()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *Message) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.send == nil {
		return ErrConnectionClosed
	}

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, dropping message", "type", msg.Type)
		return ErrSendBufferFull
	}
}

// Watch subscribes the connection to updates for a table
func (c *Connection) Watch(tableID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[tableID] = true
}

// Watching reports whether the connection receives updates for a table
func (c *Connection) Watching(tableID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tables[tableID]
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
	ErrSendBufferFull   = errors.New("send buffer full")
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	c.mu.RLock()
	send := c.send
	c.mu.RUnlock()

	for {
		select {
		case message, ok := <-send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage decodes a request, runs it against the game service and
// replies with a result or an error carrying the same request id.
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "requestId", msg.RequestID)

	result, err := c.dispatch(msg)
	if err != nil {
		c.sendError(msg.RequestID, err)
		return
	}
	c.reply(msg.RequestID, MessageTypeResult, result)
}

func (c *Connection) dispatch(msg *Message) (any, error) {
	ctx := c.ctx
	gs := c.gameService

	switch msg.Type {
	case MessageTypeCreate:
		var data CreateData
		if err := decode(msg, &data); err != nil {
			return nil, err
		}
		id, err := gs.CreateTable(ctx, data.GameID, game.Params{
			Blind:       data.Blind,
			MaxPlayers:  data.MaxPlayers,
			TimePerTurn: data.TimePerTurn,
		})
		if err != nil {
			return nil, err
		}
		c.Watch(id)
		return CreateResult{GameID: id}, nil

	case MessageTypeJoin:
		var data JoinData
		if err := decode(msg, &data); err != nil {
			return nil, err
		}
		seed, err := hex.DecodeString(data.Seed)
		if err != nil {
			return nil, &requestError{code: "SeedInvalid", msg: "seed must be hex encoded"}
		}
		c.Watch(data.GameID)
		joined, err := gs.Join(ctx, data.GameID, game.Address(data.Address), data.Deposit, seed)
		if err != nil {
			return nil, err
		}
		return JoinResult{Joined: joined}, nil

	case MessageTypePlayHand:
		var data PlayHandData
		if err := decode(msg, &data); err != nil {
			return nil, err
		}
		c.Watch(data.GameID)
		return gs.PlayHand(ctx, data.GameID, game.Address(data.Address))

	case MessageTypeTakeAction:
		var data TakeActionData
		if err := decode(msg, &data); err != nil {
			return nil, err
		}
		action, err := game.ParseAction(data.Action)
		if err != nil {
			return nil, err
		}
		c.Watch(data.GameID)
		return gs.TakeAction(ctx, data.GameID, game.Address(data.Address), action, data.Value)

	case MessageTypeWithdraw:
		var data WithdrawData
		if err := decode(msg, &data); err != nil {
			return nil, err
		}
		balance, err := gs.Withdraw(ctx, data.GameID, game.Address(data.Address))
		if err != nil {
			return nil, err
		}
		return WithdrawResult{Balance: balance}, nil

	case MessageTypePublicState:
		var data PublicStateData
		if err := decode(msg, &data); err != nil {
			return nil, err
		}
		return gs.PublicState(ctx, data.GameID)

	case MessageTypePlayerState:
		var data PlayerStateData
		if err := decode(msg, &data); err != nil {
			return nil, err
		}
		return gs.PlayerState(ctx, data.GameID, game.Address(data.Address))

	case MessageTypeListTables:
		tables, err := gs.ListTables(ctx)
		if err != nil {
			return nil, err
		}
		return TableListResult{Tables: tables}, nil

	default:
		return nil, &requestError{code: "UnknownMessageType", msg: "unknown message type: " + msg.Type.String()}
	}
}

// requestError is a transport-level failure with its own wire code.
type requestError struct {
	code string
	msg  string
}

func (e *requestError) Error() string { return e.msg }

func decode(msg *Message, v any) error {
	if err := json.Unmarshal(msg.Data, v); err != nil {
		return &requestError{code: "InvalidMessage", msg: "failed to parse " + msg.Type.String() + " data"}
	}
	return nil
}

// ErrorCode maps an error to the code sent to clients.
func ErrorCode(err error) string {
	var re *requestError
	switch {
	case errors.As(err, &re):
		return re.code
	case errors.Is(err, store.ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrTableExists):
		return "AlreadyExists"
	case errors.Is(err, codec.ErrCorrupt), errors.Is(err, codec.ErrUnsupportedVersion):
		return "CorruptState"
	}
	return game.Code(err)
}

func (c *Connection) sendError(requestID string, err error) {
	code := ErrorCode(err)
	if code == "Internal" {
		c.logger.Error("Request failed", "requestId", requestID, "error", err)
	}
	c.reply(requestID, MessageTypeError, ErrorData{Code: code, Message: err.Error()})
}

func (c *Connection) reply(requestID string, typ MessageType, data any) {
	msg, err := NewMessage(typ, data)
	if err != nil {
		c.logger.Error("Failed to create message", "type", typ, "error", err)
		return
	}
	msg.RequestID = requestID
	_ = c.SendMessage(msg)
}
