// Package streaming runs one chat exchange end to end: it drives a token
// source, forwards each fragment to the client as an event stream and records
// the exchange in chat memory exactly once, whichever way the stream ends.
package streaming

import "context"

// Sentinel is the content of the final frame of a completed stream. Readers
// stop at it and never treat it as model output.
const Sentinel = "|DONE|"

// Fragment is one delivery from a TokenSource: a piece of text, the end of
// the stream (Done) or an upstream failure (Err).
type Fragment struct {
	Content string
	Done    bool
	Err     error
}

// TokenSource generates text for a prompt incrementally.
//
// Stream calls deliver once per fragment in order, then once with either
// Fragment{Content: Sentinel, Done: true} or Fragment{Err: err}. It returns
// the concatenation of the content fragments delivered. Failures are reported
// through deliver, never returned.
type TokenSource interface {
	Stream(ctx context.Context, prompt, format string, deliver func(Fragment)) string
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func(ctx context.Context, prompt, format string, deliver func(Fragment)) string

func (f TokenSourceFunc) Stream(ctx context.Context, prompt, format string, deliver func(Fragment)) string {
	return f(ctx, prompt, format, deliver)
}
