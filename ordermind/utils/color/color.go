package color

import (
	"io"
	"os"

	"github.com/fatih/color"
)

// Palette colors terminal output for the chat client. A disabled palette
// returns its input unchanged.
type Palette struct {
	prompt  *color.Color
	info    *color.Color
	warning *color.Color
	err     *color.Color
}

func NewPalette(enabled bool) *Palette {
	p := &Palette{
		prompt:  color.New(color.FgCyan, color.Bold),
		info:    color.New(color.FgGreen),
		warning: color.New(color.FgYellow, color.Bold),
		err:     color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.prompt, p.info, p.warning, p.err} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// ForWriter enables color only when w is the process stdout or stderr and
// stdout is a terminal.
func ForWriter(w io.Writer) *Palette {
	f, ok := w.(*os.File)
	return NewPalette(ok && (f == os.Stdout || f == os.Stderr) && !color.NoColor)
}

func (p *Palette) Prompt(s string) string  { return p.prompt.Sprint(s) }
func (p *Palette) Info(s string) string    { return p.info.Sprint(s) }
func (p *Palette) Warning(s string) string { return p.warning.Sprint(s) }
func (p *Palette) Error(s string) string   { return p.err.Sprint(s) }
