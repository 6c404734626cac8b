package color

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisabledPaletteIsPlain(t *testing.T) {
	p := NewPalette(false)
	assert.Equal(t, "ordermind> ", p.Prompt("ordermind> "))
	assert.Equal(t, "cut off", p.Warning("cut off"))
}

func TestEnabledPaletteWrapsInEscapes(t *testing.T) {
	p := NewPalette(true)
	out := p.Error("boom")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "\x1b[")
}

func TestForWriterDisablesNonTerminal(t *testing.T) {
	p := ForWriter(&bytes.Buffer{})
	assert.Equal(t, "hi", p.Info("hi"))
}
