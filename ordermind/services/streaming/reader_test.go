package streaming

import (
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stream(t *testing.T, contents ...string) string {
	t.Helper()
	var sb strings.Builder
	for _, c := range contents {
		frame, err := EncodeFrame(c)
		require.NoError(t, err)
		sb.Write(frame)
	}
	return sb.String()
}

func TestReadStreamStopsAtSentinel(t *testing.T) {
	body := stream(t, "Hel", "lo\n", "wörld", Sentinel, "ignored")

	var got []string
	complete, err := ReadStream(strings.NewReader(body), func(c string) { got = append(got, c) })
	require.NoError(t, err)
	assert.True(t, complete)
	assert.Equal(t, []string{"Hel", "lo\n", "wörld"}, got)
	assert.NotContains(t, strings.Join(got, ""), Sentinel)
}

func TestReadStreamAcrossTinyReads(t *testing.T) {
	body := stream(t, "split", " across", " reads", Sentinel)

	text, err := ReadAll(iotest.OneByteReader(strings.NewReader(body)))
	require.NoError(t, err)
	assert.Equal(t, "split across reads", text)
}

func TestReadStreamWithoutSentinelIsIncomplete(t *testing.T) {
	body := stream(t, "trunc", "ated")
	// a half-written final frame is dropped
	body += `data: {"content":"par`

	complete, err := ReadStream(strings.NewReader(body), func(string) {})
	require.NoError(t, err)
	assert.False(t, complete)

	text, err := ReadAll(strings.NewReader(body))
	assert.ErrorIs(t, err, ErrIncompleteStream)
	assert.Equal(t, "truncated", text)
}

func TestReadStreamRejectsMalformedFrame(t *testing.T) {
	_, err := ReadStream(strings.NewReader("data: not-json\n\n"), func(string) {})
	assert.Error(t, err)
}

func TestReadStreamEmptyBody(t *testing.T) {
	complete, err := ReadStream(strings.NewReader(""), func(string) {})
	require.NoError(t, err)
	assert.False(t, complete)
}
