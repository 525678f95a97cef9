package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/store"
)

func TestServerHealth(t *testing.T) {
	t.Parallel()
	gs := NewGameService(store.NewMemory(), testLogger(), quartz.NewMock(t))
	srv := NewServer("localhost:0", testLogger(), gs)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

// wsClient issues requests and waits for the matching response, skipping
// broadcasts.
type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
	next int
}

func dial(t *testing.T, srv *httptest.Server) *wsClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &wsClient{t: t, conn: conn}
}

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	gs := NewGameService(store.NewMemory(), testLogger(), quartz.NewMock(t))
	srv := NewServer("", testLogger(), gs)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(gs.Close)
	return ts
}

func (c *wsClient) call(typ MessageType, data any) *Message {
	c.t.Helper()
	c.next++
	reqID := fmt.Sprintf("req-%d", c.next)
	payload, err := json.Marshal(data)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(Message{Type: typ, Data: payload, RequestID: reqID}))

	for {
		require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var msg Message
		require.NoError(c.t, c.conn.ReadJSON(&msg))
		if msg.RequestID == reqID {
			return &msg
		}
	}
}

func (c *wsClient) mustCall(typ MessageType, data any, out any) {
	c.t.Helper()
	msg := c.call(typ, data)
	require.Equal(c.t, MessageTypeResult, msg.Type, "unexpected reply %s", string(msg.Data))
	if out != nil {
		require.NoError(c.t, json.Unmarshal(msg.Data, out))
	}
}

func (c *wsClient) expectError(typ MessageType, data any, code string) {
	c.t.Helper()
	msg := c.call(typ, data)
	require.Equal(c.t, MessageTypeError, msg.Type)
	var e ErrorData
	require.NoError(c.t, json.Unmarshal(msg.Data, &e))
	assert.Equal(c.t, code, e.Code, e.Message)
}

func hexSeed(addr string) string {
	sum := sha256.Sum256([]byte(addr))
	return hex.EncodeToString(sum[:])
}

func TestWebSocketReferenceScenario(t *testing.T) {
	t.Parallel()
	c := dial(t, startServer(t))

	var created CreateResult
	c.mustCall(MessageTypeCreate, CreateData{Blind: 2, MaxPlayers: 4, TimePerTurn: 4}, &created)
	require.NotEmpty(t, created.GameID)
	id := created.GameID

	var joined JoinResult
	c.mustCall(MessageTypeJoin, JoinData{GameID: id, Address: "A", Deposit: 5, Seed: hexSeed("A")}, &joined)
	assert.True(t, joined.Joined)
	c.mustCall(MessageTypeJoin, JoinData{GameID: id, Address: "B", Deposit: 4, Seed: hexSeed("B")}, &joined)
	assert.True(t, joined.Joined)

	var view game.PublicState
	c.mustCall(MessageTypePlayHand, PlayHandData{GameID: id, Address: "A"}, &view)
	assert.Equal(t, uint64(2), view.MinBet)
	assert.Equal(t, 0, view.NextPlayer)

	var private game.PlayerState
	c.mustCall(MessageTypePlayerState, PlayerStateData{GameID: id, Address: "A"}, &private)
	assert.Len(t, private.Cards, 2)
	assert.Equal(t, uint64(4), private.Balance)

	c.expectError(MessageTypeTakeAction, TakeActionData{GameID: id, Address: "A", Action: "check"}, "InvalidAction")
	c.expectError(MessageTypeTakeAction, TakeActionData{GameID: id, Address: "B", Action: "check"}, "OutOfTurn")

	c.mustCall(MessageTypeTakeAction, TakeActionData{GameID: id, Address: "A", Action: "match"}, &view)
	c.mustCall(MessageTypeTakeAction, TakeActionData{GameID: id, Address: "B", Action: "check"}, &view)
	assert.Len(t, view.Community, 3)
	c.mustCall(MessageTypeTakeAction, TakeActionData{GameID: id, Address: "A", Action: "fold"}, &view)
	assert.Equal(t, "Join", view.Stage)

	var withdrawn WithdrawResult
	c.mustCall(MessageTypeWithdraw, WithdrawData{GameID: id, Address: "A"}, &withdrawn)
	assert.Equal(t, uint64(3), withdrawn.Balance)
	c.mustCall(MessageTypeWithdraw, WithdrawData{GameID: id, Address: "B"}, &withdrawn)
	assert.Equal(t, uint64(6), withdrawn.Balance)

	c.mustCall(MessageTypePublicState, PublicStateData{GameID: id}, &view)
	assert.Empty(t, view.Players)
	assert.Empty(t, view.OnDeck)
}

func TestWebSocketErrors(t *testing.T) {
	t.Parallel()
	c := dial(t, startServer(t))

	c.expectError(MessageTypePublicState, PublicStateData{GameID: "missing"}, "NotFound")
	c.expectError(MessageTypeCreate, CreateData{Blind: 0, MaxPlayers: 4, TimePerTurn: 4}, "InvalidParameters")
	c.expectError(MessageType("shuffle"), struct{}{}, "UnknownMessageType")

	var created CreateResult
	c.mustCall(MessageTypeCreate, CreateData{GameID: "t1", Blind: 2, MaxPlayers: 4, TimePerTurn: 4}, &created)
	c.expectError(MessageTypeCreate, CreateData{GameID: "t1", Blind: 2, MaxPlayers: 4, TimePerTurn: 4}, "AlreadyExists")
	c.expectError(MessageTypeJoin, JoinData{GameID: "t1", Address: "A", Deposit: 1, Seed: "zz"}, "SeedInvalid")
	c.expectError(MessageTypeJoin, JoinData{GameID: "t1", Address: "A", Deposit: 1, Seed: "abcd"}, "SeedInvalid")
	c.expectError(MessageTypePlayHand, PlayHandData{GameID: "t1", Address: "A"}, "NotEnoughPlayers")
	c.expectError(MessageTypeTakeAction, TakeActionData{GameID: "t1", Address: "A", Action: "allin"}, "InvalidAction")
	c.expectError(MessageTypeWithdraw, WithdrawData{GameID: "t1", Address: "A"}, "NotAParticipant")

	var tables TableListResult
	c.mustCall(MessageTypeListTables, struct{}{}, &tables)
	assert.Equal(t, []string{"t1"}, tables.Tables)
}

func TestWebSocketBroadcastsUpdates(t *testing.T) {
	t.Parallel()
	ts := startServer(t)
	alice := dial(t, ts)
	watcher := dial(t, ts)

	var created CreateResult
	alice.mustCall(MessageTypeCreate, CreateData{GameID: "shared", Blind: 2, MaxPlayers: 4, TimePerTurn: 4}, &created)
	watcher.mustCall(MessageTypePublicState, PublicStateData{GameID: "shared"}, nil)
	// the watcher subscribes by joining
	watcher.mustCall(MessageTypeJoin, JoinData{GameID: "shared", Address: "W", Deposit: 3, Seed: hexSeed("W")}, nil)
	alice.mustCall(MessageTypeJoin, JoinData{GameID: "shared", Address: "A", Deposit: 3, Seed: hexSeed("A")}, nil)

	require.NoError(t, watcher.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg Message
		require.NoError(t, watcher.conn.ReadJSON(&msg))
		if msg.Type != MessageTypeTableUpdate {
			continue
		}
		var update TableUpdateData
		require.NoError(t, json.Unmarshal(msg.Data, &update))
		if len(update.State.Players) == 2 {
			assert.Equal(t, "shared", update.GameID)
			return
		}
	}
}
