package wire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/matthewbaird/taskform/internal/model"
	"github.com/matthewbaird/taskform/internal/session"
	"github.com/matthewbaird/taskform/internal/types"
)

// pushTimeout bounds a schema push triggered by an option load.
const pushTimeout = 5 * time.Second

// Handler manages WebSocket connections for form editing.
type Handler struct {
	sessions *session.Manager
}

// NewHandler creates a WebSocket handler.
func NewHandler(sessions *session.Manager) *Handler {
	return &Handler{sessions: sessions}
}

// ServeHTTP upgrades to WebSocket and runs the message loop. The connection
// attaches to the session named by the "session" query parameter, or opens a
// new one that is closed again when the connection ends.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess, owned, err := h.attach(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if owned {
		defer h.sessions.Remove(sess.ID)
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("wire: websocket accept: %v", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()

	// Options arrive after the fetch goroutine publishes them. Subscribe
	// before the first schema so no publication falls in between.
	unsubscribe := sess.Loader.Options().Subscribe(func([]types.OptionNode) {
		pushCtx, cancel := context.WithTimeout(ctx, pushTimeout)
		defer cancel()
		h.sendSchema(pushCtx, conn, sess, "")
	})
	defer unsubscribe()

	h.send(ctx, conn, ServerMessage{Type: "session", Data: SessionData{SessionID: sess.ID}})
	h.sendSchema(ctx, conn, sess, "")

	for {
		var msg ClientMessage
		err := wsjson.Read(ctx, conn, &msg)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("wire: connection closed: %v", websocket.CloseStatus(err))
			}
			return
		}

		switch msg.Type {
		case "update":
			h.handleUpdate(ctx, conn, sess, msg)
		case "validate":
			h.handleValidate(ctx, conn, sess, msg)
		case "ping":
			sess.Touch()
			h.send(ctx, conn, ServerMessage{Type: "pong", RequestID: msg.ID})
		default:
			h.sendError(ctx, conn, msg.ID, "unknown_type", fmt.Sprintf("unknown message type: %s", msg.Type))
		}
	}
}

func (h *Handler) attach(r *http.Request) (*session.Session, bool, error) {
	if id := r.URL.Query().Get("session"); id != "" {
		sess, err := h.sessions.Get(id)
		if err != nil {
			return nil, false, err
		}
		return sess, false, nil
	}
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = r.Header.Get("Accept-Language")
	}
	sess, err := h.sessions.Create(nil, lang)
	if err != nil {
		return nil, false, err
	}
	return sess, true, nil
}

func (h *Handler) handleUpdate(ctx context.Context, conn *websocket.Conn, sess *session.Session, msg ClientMessage) {
	var data UpdateData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid update data")
		return
	}
	if err := sess.Set(data.Field, data.Value); err != nil {
		var fe *model.FieldError
		if errors.As(err, &fe) {
			h.sendError(ctx, conn, msg.ID, "invalid_field", fe.Error())
			return
		}
		h.sendError(ctx, conn, msg.ID, "update_failed", err.Error())
		return
	}
	h.sendSchema(ctx, conn, sess, msg.ID)
}

func (h *Handler) handleValidate(ctx context.Context, conn *websocket.Conn, sess *session.Session, msg ClientMessage) {
	var data ValidateData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid validate data")
		return
	}
	out, err := sess.Validate(data.Field, data.Trigger, data.Value, data.Index)
	if err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_field", err.Error())
		return
	}
	h.send(ctx, conn, ServerMessage{
		Type:      "validation",
		RequestID: msg.ID,
		Data:      ValidationData{Field: data.Field, Index: data.Index, Outcome: out},
	})
}

func (h *Handler) sendSchema(ctx context.Context, conn *websocket.Conn, sess *session.Session, requestID string) {
	version, fields, task := sess.Schema()
	h.send(ctx, conn, ServerMessage{
		Type:      "schema",
		RequestID: requestID,
		Data:      SchemaData{Version: version, Fields: fields, Task: task},
	})
}

func (h *Handler) send(ctx context.Context, conn *websocket.Conn, msg ServerMessage) {
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		log.Printf("wire: write error: %v", err)
	}
}

func (h *Handler) sendError(ctx context.Context, conn *websocket.Conn, requestID, code, message string) {
	h.send(ctx, conn, ServerMessage{
		Type:      "error",
		RequestID: requestID,
		Data: ErrorData{
			Code:    code,
			Message: message,
		},
	})
}
