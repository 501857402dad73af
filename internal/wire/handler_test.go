package wire

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/taskform/internal/resource"
	"github.com/matthewbaird/taskform/internal/session"
	"github.com/matthewbaird/taskform/internal/types"
)

// received mirrors ServerMessage with the payload left raw.
type received struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
}

func dial(t *testing.T, query string) (*websocket.Conn, *session.Manager, context.Context) {
	t.Helper()
	sessions, err := session.NewManager(session.Config{
		Store: resource.NewMemoryStore(resource.SeedResources()...),
	})
	require.NoError(t, err)

	srv := httptest.NewServer(NewHandler(sessions))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + query
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn, sessions, ctx
}

// readUntil reads messages until one of type typ satisfies match.
func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string, match func(received) bool) received {
	t.Helper()
	for {
		var msg received
		require.NoError(t, wsjson.Read(ctx, conn, &msg))
		if msg.Type == typ && (match == nil || match(msg)) {
			return msg
		}
	}
}

func decodeSchema(t *testing.T, msg received) SchemaData {
	t.Helper()
	var data SchemaData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	return data
}

func TestHandler_SessionAndSchemaPush(t *testing.T) {
	conn, sessions, ctx := dial(t, "?lang=en")

	msg := readUntil(t, ctx, conn, "session", nil)
	var sd SessionData
	require.NoError(t, json.Unmarshal(msg.Data, &sd))
	require.NotEmpty(t, sd.SessionID)
	assert.Equal(t, 1, sessions.Len())

	// The initial load reaches the client without a request.
	schema := decodeSchema(t, readUntil(t, ctx, conn, "schema", func(m received) bool {
		fields := decodeSchemaLoose(m).Fields
		return len(fields) == 15 && len(fields[3].Options) > 0
	}))
	assert.Equal(t, types.ProgramScala, schema.Task.ProgramType)
	assert.Equal(t, "Main Package", schema.Fields[3].Label)
}

func TestHandler_UpdateAndValidate(t *testing.T) {
	conn, _, ctx := dial(t, "")
	readUntil(t, ctx, conn, "session", nil)

	require.NoError(t, wsjson.Write(ctx, conn, map[string]any{
		"type": "update",
		"id":   "u1",
		"data": UpdateData{Field: "programType", Value: types.ProgramPython},
	}))
	schema := decodeSchema(t, readUntil(t, ctx, conn, "schema", func(m received) bool { return m.RequestID == "u1" }))
	assert.Equal(t, types.ProgramPython, schema.Task.ProgramType)
	assert.True(t, schema.Fields[2].Hidden)

	require.NoError(t, wsjson.Write(ctx, conn, map[string]any{
		"type": "validate",
		"id":   "v1",
		"data": ValidateData{Field: "executorMemory", Trigger: "blur", Value: "abc"},
	}))
	msg := readUntil(t, ctx, conn, "validation", nil)
	assert.Equal(t, "v1", msg.RequestID)
	var vd ValidationData
	require.NoError(t, json.Unmarshal(msg.Data, &vd))
	assert.Equal(t, "executorMemory", vd.Field)
	assert.Equal(t, "format", string(vd.Code))

	require.NoError(t, wsjson.Write(ctx, conn, map[string]any{
		"type": "update",
		"id":   "u2",
		"data": UpdateData{Field: "nope", Value: 1},
	}))
	msg = readUntil(t, ctx, conn, "error", nil)
	assert.Equal(t, "u2", msg.RequestID)
	var ed ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &ed))
	assert.Equal(t, "invalid_field", ed.Code)
}

func TestHandler_PingAndUnknown(t *testing.T) {
	conn, _, ctx := dial(t, "")
	readUntil(t, ctx, conn, "session", nil)

	require.NoError(t, wsjson.Write(ctx, conn, ClientMessage{Type: "ping", ID: "p"}))
	assert.Equal(t, "p", readUntil(t, ctx, conn, "pong", nil).RequestID)

	require.NoError(t, wsjson.Write(ctx, conn, ClientMessage{Type: "bogus", ID: "b"}))
	assert.Equal(t, "b", readUntil(t, ctx, conn, "error", nil).RequestID)
}

func TestHandler_UnknownSession(t *testing.T) {
	sessions, err := session.NewManager(session.Config{Store: resource.NewMemoryStore()})
	require.NoError(t, err)
	srv := httptest.NewServer(NewHandler(sessions))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, resp, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"?session=missing", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 404, resp.StatusCode)
}

func decodeSchemaLoose(m received) SchemaData {
	var data SchemaData
	_ = json.Unmarshal(m.Data, &data)
	return data
}
