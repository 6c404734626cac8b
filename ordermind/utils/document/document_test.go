package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	text := "Jan 1 morning: gym.\r\n\r\nJan 1 afternoon:\nwrote Go.\n   \n\n\nJan 2: rest.  \n"
	assert.Equal(t, []string{
		"Jan 1 morning: gym.",
		"Jan 1 afternoon:\nwrote Go.",
		"Jan 2: rest.",
	}, Split(text))
	assert.Empty(t, Split(" \n\n \t"))
}

func TestParseHTML(t *testing.T) {
	page := `<html><head><title>skip</title><style>p{}</style></head>
<body><h1>Diary</h1><script>alert(1)</script>
<p>Went   to the
 market.</p><div>Bought <b>apples</b>.</div></body></html>`

	chunks, err := Parse("diary.html", "", []byte(page))
	require.NoError(t, err)
	assert.Equal(t, []string{"Diary", "Went to the market.", "Bought apples ."}, chunks)
}

func TestParsePlainText(t *testing.T) {
	chunks, err := Parse("notes.txt", "text/plain", []byte("<p>not html</p>\n\nsecond"))
	require.NoError(t, err)
	assert.Equal(t, []string{"<p>not html</p>", "second"}, chunks)
}

func TestIsHTML(t *testing.T) {
	assert.True(t, IsHTML("a.HTM", ""))
	assert.True(t, IsHTML("upload", "text/html; charset=utf-8"))
	assert.False(t, IsHTML("a.md", "text/markdown"))
}
