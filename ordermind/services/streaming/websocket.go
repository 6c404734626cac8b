package streaming

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/coder/websocket"
)

// WebSocketEmitter sends each fragment as one text message carrying the same
// {"content": ...} body as an SSE frame.
type WebSocketEmitter struct {
	conn *websocket.Conn
	ctx  context.Context

	mu     sync.Mutex
	closed bool
}

func NewWebSocketEmitter(ctx context.Context, conn *websocket.Conn) *WebSocketEmitter {
	return &WebSocketEmitter{conn: conn, ctx: ctx}
}

func (e *WebSocketEmitter) Emit(content string) error {
	payload, err := json.Marshal(framePayload{Content: content})
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEmitterClosed
	}
	return e.conn.Write(e.ctx, websocket.MessageText, payload)
}

// Close sends a normal closure once.
func (e *WebSocketEmitter) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()
	return e.conn.Close(websocket.StatusNormalClosure, "")
}
