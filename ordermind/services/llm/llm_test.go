package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ordermind/ordermind/services/streaming"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunk(content string) string {
	return fmt.Sprintf(`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"delta":{"role":"assistant","content":%q},"finish_reason":null}]}`, content)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{APIKey: "test", BaseURL: srv.URL, MaxRetries: 0})
}

func collect() (*[]streaming.Fragment, func(streaming.Fragment)) {
	var got []streaming.Fragment
	return &got, func(f streaming.Fragment) { got = append(got, f) }
}

func TestStreamDeliversFragmentsThenSentinel(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.Header().Set("Content-Type", "text/event-stream")
		for _, c := range []string{"", "Hel", "lo\n", "wörld"} {
			fmt.Fprintf(w, "data: %s\n\n", chunk(c))
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	got, deliver := collect()
	full := c.Stream(context.Background(), "hi", "be nice", deliver)

	assert.Equal(t, "Hello\nwörld", full)
	require.Len(t, *got, 4)
	assert.Equal(t, "Hel", (*got)[0].Content)
	assert.Equal(t, "wörld", (*got)[2].Content)
	assert.True(t, (*got)[3].Done)
	assert.Equal(t, streaming.Sentinel, (*got)[3].Content)

	assert.Equal(t, true, body["stream"])
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
}

func TestStreamOmitsEmptySystemMessage(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	got, deliver := collect()
	assert.Equal(t, "", c.Stream(context.Background(), "hi", "", deliver))
	require.Len(t, *got, 1)
	assert.True(t, (*got)[0].Done)
	assert.Len(t, body["messages"].([]any), 1)
}

func TestStreamUpstreamErrorDeliversErr(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"boom","type":"server_error"}}`)
	})

	got, deliver := collect()
	full := c.Stream(context.Background(), "hi", "", deliver)

	assert.Equal(t, "", full)
	require.Len(t, *got, 1)
	assert.Error(t, (*got)[0].Err)
	assert.False(t, (*got)[0].Done)
}

func TestStreamMalformedChunkKeepsPartialContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "data: %s\n\n", chunk("partial"))
		fmt.Fprint(w, "data: {not json\n\n")
	})

	got, deliver := collect()
	full := c.Stream(context.Background(), "hi", "", deliver)

	assert.Equal(t, "partial", full)
	require.Len(t, *got, 2)
	assert.Equal(t, "partial", (*got)[0].Content)
	assert.Error(t, (*got)[1].Err)
}

func TestComplete(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Order 2 has shipped."}}]}`)
	})

	out, err := c.Complete(context.Background(), "status?", "")
	require.NoError(t, err)
	assert.Equal(t, "Order 2 has shipped.", out)
}

func TestCallTool(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"finish_reason":"tool_calls","message":{"role":"assistant","content":null,"tool_calls":[{"id":"call_1","type":"function","function":{"name":"get_order","arguments":"{\"order_id\":\"2\"}"}}]}}]}`)
	})

	call, err := c.CallTool(context.Background(), "where is order 2?", "sys", []ToolDefinition{{
		Name:        "get_order",
		Description: "Retrieves an order",
		Parameters:  map[string]any{"type": "object"},
	}}, 0.1)
	require.NoError(t, err)
	assert.Equal(t, "get_order", call.Name)
	assert.JSONEq(t, `{"order_id":"2"}`, call.Arguments)
	assert.Equal(t, "required", body["tool_choice"])
	assert.InDelta(t, 0.1, body["temperature"], 1e-9)
}

func TestCallToolWithoutToolCall(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"no"}}]}`)
	})
	_, err := c.CallTool(context.Background(), "q", "", nil, 0)
	assert.ErrorIs(t, err, ErrNoToolCall)
}

func TestEmbed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/embeddings"))
		w.Header().Set("Content-Type", "application/json")
		// returned out of order on purpose
		fmt.Fprint(w, `{"object":"list","model":"m","data":[{"object":"embedding","index":1,"embedding":[0,1]},{"object":"embedding","index":0,"embedding":[1,0]}],"usage":{"prompt_tokens":1,"total_tokens":1}}`)
	})

	vecs, err := c.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0}, {0, 1}}, vecs)

	none, err := c.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}
