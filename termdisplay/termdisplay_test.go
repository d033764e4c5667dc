package termdisplay

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/harveysanders/lcdconsole/console"
)

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("")
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	s.SetSize(w, h)
	t.Cleanup(s.Fini)
	return s
}

func row(s tcell.Screen, y, x0, n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i], _, _, _ = s.GetContent(x0+i, y) //nolint:staticcheck // GetContent is the correct API
	}
	return string(b)
}

func TestConsoleOnTerminal(t *testing.T) {
	s := newScreen(t, 40, 12)
	c := console.New(New(s), console.Config{})
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}
	regions, _ := c.Regions()

	c.Print(console.LevelHeading, "USART Server")
	c.Print(console.LevelError, "overrun")

	h := regions[console.LevelHeading]
	if got := row(s, int(h.OriginY), int(h.OriginX), 12); got != "USART Server" {
		t.Errorf("heading row %q", got)
	}
	e := regions[console.LevelError]
	if got := row(s, int(e.OriginY), int(e.OriginX), 7); got != "overrun" {
		t.Errorf("error row %q", got)
	}
}

func TestStyleFollowsLevel(t *testing.T) {
	s := newScreen(t, 20, 4)
	d := New(s)
	d.SetFont(console.FontLarge)
	d.SetForeground(console.Red)
	d.DrawGlyph(2, 1, 'E')

	r, _, style, _ := s.GetContent(2, 1) //nolint:staticcheck // GetContent is the correct API
	if r != 'E' {
		t.Errorf("got %q", r)
	}
	fg, bg, attrs := style.Decompose()
	if fg != tcell.NewRGBColor(0xFF, 0, 0) {
		t.Errorf("foreground %v", fg)
	}
	if bg != tcell.NewRGBColor(0, 0, 0xFF) {
		t.Errorf("background %v", bg)
	}
	if attrs&tcell.AttrBold == 0 {
		t.Error("large font not bold")
	}
}

func TestClearUsesBackground(t *testing.T) {
	s := newScreen(t, 8, 2)
	d := New(s)
	d.DrawGlyph(0, 0, 'x')
	d.SetBackground(console.Green)
	d.Clear()

	r, _, style, _ := s.GetContent(0, 0) //nolint:staticcheck // GetContent is the correct API
	if r != ' ' {
		t.Errorf("cell holds %q after Clear", r)
	}
	if _, bg, _ := style.Decompose(); bg != tcell.NewRGBColor(0, 0xFF, 0) {
		t.Errorf("background %v", bg)
	}
	if w, h := d.Size(); w != 8 || h != 2 {
		t.Errorf("size %dx%d", w, h)
	}
}
