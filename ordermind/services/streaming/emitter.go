package streaming

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
)

var (
	ErrEmitterClosed = errors.New("emitter closed")
	ErrNoFlusher     = errors.New("response writer does not support flushing")
)

// Emitter delivers fragments to the client. Close must be idempotent and may
// be called concurrently with Emit.
type Emitter interface {
	Emit(content string) error
	Close() error
}

type framePayload struct {
	Content string `json:"content"`
}

// EncodeFrame renders one server-sent event: data: {"content":"..."}\n\n.
// JSON string escaping keeps newlines in content from ending the frame early.
func EncodeFrame(content string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("data: ")
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(framePayload{Content: content}); err != nil {
		return nil, err
	}
	// Encode appends one newline; the frame separator needs two
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// SSEEmitter writes frames to an HTTP response as text/event-stream.
type SSEEmitter struct {
	mu      sync.Mutex
	w       io.Writer
	flusher http.Flusher
	closed  bool
}

// NewSSEEmitter sends the event-stream headers and flushes them so the
// client starts reading before the first fragment exists.
func NewSSEEmitter(w http.ResponseWriter) (*SSEEmitter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrNoFlusher
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return &SSEEmitter{w: w, flusher: flusher}, nil
}

func (e *SSEEmitter) Emit(content string) error {
	frame, err := EncodeFrame(content)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEmitterClosed
	}
	if _, err := e.w.Write(frame); err != nil {
		return err
	}
	e.flusher.Flush()
	return nil
}

// Close stops further writes. The response itself ends when the handler
// returns.
func (e *SSEEmitter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}
