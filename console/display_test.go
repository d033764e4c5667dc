package console

import (
	"errors"
	"image/color"
	"runtime"
	"sync"
)

type drawCall struct {
	X, Y  int16
	Ch    byte
	Font  Font
	Color color.RGBA
}

// recorder is a Display that remembers every primitive call.
type recorder struct {
	mu      sync.Mutex
	w, h    int16
	font    Font
	fg, bg  color.RGBA
	draws   []drawCall
	renders [][]drawCall // draws grouped by SetFont, i.e. by render
	clears  int
	yield   bool
}

func newRecorder(w, h int16) *recorder {
	return &recorder{w: w, h: h}
}

func (r *recorder) Size() (int16, int16) { return r.w, r.h }

func (r *recorder) SetFont(f Font) {
	r.mu.Lock()
	r.font = f
	r.renders = append(r.renders, nil)
	r.mu.Unlock()
}

func (r *recorder) SetForeground(c color.RGBA) {
	r.mu.Lock()
	r.fg = c
	r.mu.Unlock()
}

func (r *recorder) SetBackground(c color.RGBA) {
	r.mu.Lock()
	r.bg = c
	r.mu.Unlock()
}

func (r *recorder) Clear() {
	r.mu.Lock()
	r.clears++
	r.mu.Unlock()
}

func (r *recorder) DrawGlyph(x, y int16, ch byte) {
	r.mu.Lock()
	d := drawCall{X: x, Y: y, Ch: ch, Font: r.font, Color: r.fg}
	r.draws = append(r.draws, d)
	if n := len(r.renders); n > 0 {
		r.renders[n-1] = append(r.renders[n-1], d)
	}
	r.mu.Unlock()
	if r.yield {
		runtime.Gosched()
	}
}

func (r *recorder) drawCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.draws)
}

func (r *recorder) text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := make([]byte, len(r.draws))
	for i, d := range r.draws {
		b[i] = d.Ch
	}
	return string(b)
}

// metricsRecorder adds GlyphMetrics and Flusher to recorder.
type metricsRecorder struct {
	*recorder
	small, large Glyph
	flushes      int
	flushErr     error
}

func (m *metricsRecorder) GlyphSize(f Font) (int16, int16) {
	if f == FontSmall {
		return m.small.Width, m.small.Height
	}
	return m.large.Width, m.large.Height
}

func (m *metricsRecorder) Flush() error {
	m.flushes++
	return m.flushErr
}

// brokenDisplay fails hardware bring-up.
type brokenDisplay struct {
	*recorder
}

var errNoPanel = errors.New("no panel on bus")

func (brokenDisplay) Configure() error { return errNoPanel }
