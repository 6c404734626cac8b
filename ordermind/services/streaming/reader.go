package streaming

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrIncompleteStream marks a stream that ended without the sentinel frame.
var ErrIncompleteStream = errors.New("stream ended before completion")

var frameSeparator = []byte("\n\n")

const maxFrameSize = 1 << 20

// DecodeFrame parses one frame without its trailing separator.
func DecodeFrame(frame []byte) (string, error) {
	data := bytes.TrimPrefix(frame, []byte("data: "))
	var p framePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return "", fmt.Errorf("decode frame %q: %w", truncate(string(frame), 64), err)
	}
	return p.Content, nil
}

// ReadStream consumes an event stream, passing each fragment to fn in order.
// It returns complete=true once the sentinel frame arrives; the sentinel is
// never passed to fn. A stream that ends without it returns complete=false
// and a nil error, and callers must treat the response as incomplete.
func ReadStream(r io.Reader, fn func(content string)) (bool, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxFrameSize)
	scanner.Split(splitFrames)
	for scanner.Scan() {
		frame := scanner.Bytes()
		if len(bytes.TrimSpace(frame)) == 0 {
			continue
		}
		content, err := DecodeFrame(frame)
		if err != nil {
			return false, err
		}
		if content == Sentinel {
			return true, nil
		}
		fn(content)
	}
	return false, scanner.Err()
}

// ReadAll collects a whole stream and reports ErrIncompleteStream when the
// sentinel never arrived.
func ReadAll(r io.Reader) (string, error) {
	var sb strings.Builder
	complete, err := ReadStream(r, func(c string) { sb.WriteString(c) })
	if err != nil {
		return sb.String(), err
	}
	if !complete {
		return sb.String(), ErrIncompleteStream
	}
	return sb.String(), nil
}

// splitFrames is a bufio.SplitFunc on the blank-line frame separator. A
// trailing partial frame at EOF is dropped.
func splitFrames(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if i := bytes.Index(data, frameSeparator); i >= 0 {
		return i + len(frameSeparator), data[:i], nil
	}
	if atEOF {
		return len(data), nil, nil
	}
	return 0, nil, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
