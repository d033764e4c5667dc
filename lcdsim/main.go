// Command lcdsim runs the console on a terminal. One goroutine per level
// prints as fast as -interval allows, so lines can be watched being
// serialized. Press Esc or q to quit.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/harveysanders/lcdconsole/console"
	"github.com/harveysanders/lcdconsole/termdisplay"
)

func main() {
	interval := flag.Duration("interval", 200*time.Millisecond, "mean delay between prints of one level")
	duration := flag.Duration("duration", 0, "stop after this long (0 runs until Esc)")
	timeout := flag.Duration("lock-timeout", 0, "bound on the render lock wait (0 waits)")
	logPath := flag.String("log", "", "write the console log to this file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(discardOr(*logPath), &slog.HandlerOptions{Level: slog.LevelDebug}))

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintln(os.Stderr, "lcdsim:", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "lcdsim:", err)
		os.Exit(1)
	}

	con := console.New(termdisplay.New(screen), console.Config{
		Logger:      logger,
		LockTimeout: *timeout,
	})
	if err := con.Init(); err != nil {
		screen.Fini()
		fmt.Fprintln(os.Stderr, "lcdsim:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if *duration > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, *duration)
		defer stop()
	}

	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			if key, ok := ev.(*tcell.EventKey); ok {
				if key.Key() == tcell.KeyEscape || key.Key() == tcell.KeyCtrlC || key.Rune() == 'q' {
					cancel()
					return
				}
			}
		}
	}()

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < console.NumLevels; i++ {
		wg.Add(1)
		go func(l console.Level) {
			defer wg.Done()
			run(ctx, con, l, *interval, start)
		}(console.Level(i))
	}
	wg.Wait()

	s := con.Stats()
	con.Close()
	screen.Fini()
	fmt.Printf("rendered %d, skipped %d\n", s.Rendered, s.Skipped)
}

// run prints on level l until ctx is done.
func run(ctx context.Context, con *console.Console, l console.Level, interval time.Duration, start time.Time) {
	for n := 0; ; n++ {
		var err error
		switch l {
		case console.LevelNone:
			_, err = con.PrintContext(ctx, l, "up %6.1fs", time.Since(start).Seconds())
		case console.LevelHeading:
			_, err = con.PrintContext(ctx, l, "lcdsim\r\n%d levels", console.NumLevels)
		case console.LevelMessage:
			_, err = con.PrintContext(ctx, l, "message #%d\r\nstats %+v", n, con.Stats())
		case console.LevelError:
			_, err = con.PrintContext(ctx, l, "error #%d", n)
		}
		if err != nil {
			return
		}

		jitter := time.Duration(0)
		if interval > 0 {
			jitter = time.Duration(rand.Int63n(int64(interval)))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval/2 + jitter):
		}
	}
}

func discardOr(path string) io.Writer {
	if path == "" {
		return io.Discard
	}
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lcdsim:", err)
		os.Exit(1)
	}
	return f
}
