// Package console prints formatted status lines onto a small display shared
// by several goroutines.
//
// Each Level owns a fixed band of the screen, a font and a colour. A print
// formats into private scratch memory, stores the text as the level's last
// line and then paints it from the origin of the level's band while holding
// the single render lock, so lines from different goroutines never mix on
// screen.
//
// Example usage:
//
//	c := console.New(display, console.Config{Logger: logger})
//	if err := c.Init(); err != nil {
//	    logger.Error("console:init", slog.Any("reason", err))
//	}
//	c.Print(console.LevelHeading, "SPI Server")
//	c.Print(console.LevelError, "rx overrun: %d", count)
package console

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// BufferSize is the capacity of a level's print buffer, terminator included.
const BufferSize = 64

var (
	// ErrLevelRange is returned for levels above MaxLevel.
	ErrLevelRange = errors.New("console: level out of range")
	// ErrNoLock is returned by Init when NewLock yields no lock.
	ErrNoLock = errors.New("console: render lock unavailable")
)

// Locker is the render lock. *semaphore.Weighted satisfies it.
type Locker interface {
	Acquire(ctx context.Context, n int64) error
	Release(n int64)
}

// Line is a print accepted by the console, as sent to Config.Mirror.
type Line struct {
	Level  Level
	Text   string // Stored text, at most BufferSize-1 bytes.
	Length int    // Formatted length before truncation.
}

// Config holds the optional settings of a Console. The zero value is usable.
type Config struct {
	// Background is the screen colour set by Init. Zero means Blue.
	Background color.RGBA
	// Regions overrides the layout computed from the display size.
	Regions *[NumLevels]Region
	// LockTimeout bounds the wait for the render lock. When it expires the
	// line is not drawn. Zero waits until the print's context is done.
	LockTimeout time.Duration
	// NewLock creates the render lock. Defaults to a weighted semaphore of 1.
	NewLock func() (Locker, error)
	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger
	// Mirror, if set, receives every accepted line. Sends never block;
	// lines are dropped while the channel is full.
	Mirror chan<- Line
}

// Stats counts what happened to accepted prints.
type Stats struct {
	Rendered uint64 // Lines painted.
	Skipped  uint64 // Lines formatted but not painted.
}

// renderState exists only between a successful Init and Close.
type renderState struct {
	lock     Locker
	renderer *Renderer
}

// Console is the process-wide console state: print buffers, render lock and
// the level regions. Create it with New and call Init once before printing.
type Console struct {
	display Display
	cfg     Config
	logger  *slog.Logger

	bufMu   sync.Mutex
	buffers [NumLevels][BufferSize]byte

	state    atomic.Pointer[renderState]
	rendered atomic.Uint64
	skipped  atomic.Uint64
}

// New returns a console drawing on d. Nothing is drawn until Init succeeds.
func New(d Display, cfg Config) *Console {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(127),
		}))
	}
	if cfg.Background == (color.RGBA{}) {
		cfg.Background = Blue
	}
	if cfg.NewLock == nil {
		cfg.NewLock = func() (Locker, error) { return semaphore.NewWeighted(1), nil }
	}
	return &Console{display: d, cfg: cfg, logger: logger}
}

// Init brings up the display, creates the render lock, clears the screen to
// the background colour and computes the level regions. It must be called
// once, before any print. If it fails the console stays usable but only
// formats: prints return their length and draw nothing.
func (c *Console) Init() error {
	if cf, ok := c.display.(Configurer); ok {
		if err := cf.Configure(); err != nil {
			c.logger.Error("console:display-configure", slog.String("err", err.Error()))
			return errors.New("console: configure display:" + err.Error())
		}
	}
	lock, err := c.cfg.NewLock()
	if err == nil && lock == nil {
		err = ErrNoLock
	}
	if err != nil {
		c.logger.Error("console:lock-create", slog.String("err", err.Error()))
		return err
	}

	c.display.SetBackground(c.cfg.Background)
	c.display.SetForeground(White)
	c.display.Clear()

	var regions [NumLevels]Region
	if c.cfg.Regions != nil {
		regions = *c.cfg.Regions
	} else {
		small, large := DefaultSmall, DefaultLarge
		if gm, ok := c.display.(GlyphMetrics); ok {
			small.Width, small.Height = gm.GlyphSize(FontSmall)
			large.Width, large.Height = gm.GlyphSize(FontLarge)
		}
		w, h := c.display.Size()
		regions = Layout(w, h, small, large)
	}
	c.state.Store(&renderState{lock: lock, renderer: NewRenderer(c.display, regions)})
	c.logger.Info("console:ready", slog.Int("levels", NumLevels))
	return nil
}

// Close waits for any render in flight, clears the screen and turns the
// console into format-only mode.
func (c *Console) Close() error {
	st := c.state.Load()
	if st == nil {
		return nil
	}
	if err := st.lock.Acquire(context.Background(), 1); err != nil {
		return err
	}
	defer st.lock.Release(1)
	if c.state.CompareAndSwap(st, nil) {
		c.display.Clear()
	}
	return nil
}

// Print formats according to a format specifier and paints the result in
// the region of level l. It returns the formatted length, which exceeds
// BufferSize-1 when the stored text was truncated. For an invalid level it
// returns -1 and ErrLevelRange without touching any buffer.
//
// Whether the line was actually painted is not reported; see Stats.
func (c *Console) Print(l Level, format string, args ...any) (int, error) {
	return c.PrintContext(context.Background(), l, format, args...)
}

// PrintContext is like Print but gives up waiting for the render lock when
// ctx is done. The line is still stored and its length returned.
func (c *Console) PrintContext(ctx context.Context, l Level, format string, args ...any) (int, error) {
	if !l.Valid() {
		return -1, ErrLevelRange
	}

	var scratch [BufferSize]byte
	out := fmt.Appendf(scratch[:0], format, args...)
	var line [BufferSize]byte
	text := line[:copy(line[:BufferSize-1], out)]
	if i := bytes.IndexByte(text, 0); i >= 0 {
		text = text[:i]
	}

	c.bufMu.Lock()
	c.buffers[l] = line
	c.bufMu.Unlock()

	c.render(ctx, l, text)

	if c.cfg.Mirror != nil {
		select {
		case c.cfg.Mirror <- Line{Level: l, Text: string(text), Length: len(out)}:
		default:
			c.logger.Debug("console:mirror-full", slog.String("level", l.String()))
		}
	}
	return len(out), nil
}

func (c *Console) render(ctx context.Context, l Level, text []byte) {
	st := c.state.Load()
	if st == nil {
		c.skipped.Add(1)
		return
	}
	if c.cfg.LockTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.LockTimeout)
		defer cancel()
	}
	if err := st.lock.Acquire(ctx, 1); err != nil {
		c.skipped.Add(1)
		c.logger.Debug("console:render-skipped", slog.String("level", l.String()), slog.Any("reason", err))
		return
	}
	defer st.lock.Release(1)
	if c.state.Load() != st {
		// Closed while waiting.
		c.skipped.Add(1)
		return
	}
	if _, err := st.renderer.Render(l, text); err != nil {
		c.logger.Warn("console:flush", slog.String("level", l.String()), slog.String("err", err.Error()))
	}
	c.rendered.Add(1)
}

// Buffer returns the text last stored for l.
func (c *Console) Buffer(l Level) (string, bool) {
	if !l.Valid() {
		return "", false
	}
	c.bufMu.Lock()
	defer c.bufMu.Unlock()
	b := c.buffers[l][:]
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b), true
}

// Regions returns the level regions computed by Init. The second result is
// false when the console is not rendering.
func (c *Console) Regions() ([NumLevels]Region, bool) {
	st := c.state.Load()
	if st == nil {
		return [NumLevels]Region{}, false
	}
	return st.renderer.regions, true
}

// Stats returns the render counters.
func (c *Console) Stats() Stats {
	return Stats{Rendered: c.rendered.Load(), Skipped: c.skipped.Load()}
}
