package server

import (
	"encoding/json"
	"time"

	"github.com/lox/holdem-engine/internal/game"
)

// MessageType represents a WebSocket message type
type MessageType string

const (
	// Client to server requests
	MessageTypeCreate      MessageType = "create"
	MessageTypeJoin        MessageType = "join"
	MessageTypePlayHand    MessageType = "play_hand"
	MessageTypeTakeAction  MessageType = "take_action"
	MessageTypeWithdraw    MessageType = "withdraw"
	MessageTypePublicState MessageType = "public_state"
	MessageTypePlayerState MessageType = "player_state"
	MessageTypeListTables  MessageType = "list_tables"

	// Server to client messages
	MessageTypeResult        MessageType = "result"
	MessageTypeError         MessageType = "error"
	MessageTypeTableUpdate   MessageType = "table_update"
	MessageTypePlayerTimeout MessageType = "player_timeout"
)

func (mt MessageType) String() string {
	return string(mt)
}

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type CreateData struct {
	GameID      string `json:"gameId,omitempty"`
	Blind       uint64 `json:"blind"`
	MaxPlayers  uint64 `json:"maxPlayers"`
	TimePerTurn uint64 `json:"timePerTurn"`
}

type JoinData struct {
	GameID  string `json:"gameId"`
	Address string `json:"address"`
	Deposit uint64 `json:"deposit"`
	Seed    string `json:"seed"` // 64 hex characters
}

type PlayHandData struct {
	GameID  string `json:"gameId"`
	Address string `json:"address"`
}

type TakeActionData struct {
	GameID  string `json:"gameId"`
	Address string `json:"address"`
	Action  string `json:"action"`
	Value   uint64 `json:"value,omitempty"`
}

type WithdrawData struct {
	GameID  string `json:"gameId"`
	Address string `json:"address"`
}

type PublicStateData struct {
	GameID string `json:"gameId"`
}

type PlayerStateData struct {
	GameID  string `json:"gameId"`
	Address string `json:"address"`
}

// Server → Client Messages

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateResult struct {
	GameID string `json:"gameId"`
}

type JoinResult struct {
	Joined bool `json:"joined"`
}

type WithdrawResult struct {
	Balance uint64 `json:"balance"`
}

type TableListResult struct {
	Tables []string `json:"tables"`
}

type TableUpdateData struct {
	GameID string           `json:"gameId"`
	State  game.PublicState `json:"state"`
}

type PlayerTimeoutData struct {
	GameID         string `json:"gameId"`
	Address        string `json:"address"`
	TimeoutSeconds uint64 `json:"timeoutSeconds"`
}
