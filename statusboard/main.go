//go:build tinygo

// Status board firmware for a Pico 2 W with an ILI9341 panel on SPI0.
// Uptime, network progress and errors are printed on the console levels,
// and every printed line is mirrored to an MQTT broker.
package main

import (
	"log/slog"
	"machine"
	"time"

	"github.com/harveysanders/lcdconsole/console"
	"github.com/harveysanders/lcdconsole/glcd"
	"github.com/harveysanders/lcdconsole/statusboard/cyw43439"
	"github.com/harveysanders/lcdconsole/statusboard/mqtt"
	"tinygo.org/x/drivers/ili9341"
)

const (
	serverAddrStr = "10.0.0.9:1883"
	hostname      = "statusboard"

	// ILI9341 wiring.
	tftSCK = machine.GP18
	tftSDO = machine.GP19
	tftSDI = machine.GP16
	tftCS  = machine.GP17
	tftDC  = machine.GP20
	tftRST = machine.GP21
)

func main() {
	boot := time.Now()
	logger := slog.New(slog.NewTextHandler(machine.Serial, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	panel, err := configurePanel()
	if err != nil {
		printErrForever(logger, "configure SPI", slog.Any("reason", err))
	}
	small, large := glcd.DefaultFaces()

	// Mirrored lines waiting for the broker. Lines are dropped while the
	// network is down and this fills up.
	mirror := make(chan console.Line, 16)
	con := console.New(glcd.New(panel, small, large), console.Config{
		Logger:      logger,
		Mirror:      mirror,
		LockTimeout: 500 * time.Millisecond,
	})
	if err := con.Init(); err != nil {
		// The console still formats; keep going so MQTT gets the lines.
		logger.Error("console:init", slog.Any("reason", err))
	}
	con.Print(console.LevelHeading, "Status Board")

	go func() {
		link, err := cyw43439.Up(cyw43439.Config{
			Hostname: hostname,
			Logger:   logger,
			Joining: func(ssid string, attempt int) {
				con.Print(console.LevelMessage, "WiFi %s\r\ntry %d", ssid, attempt)
			},
		})
		if err != nil {
			con.Print(console.LevelError, "net: %s", err.Error())
			printErrForever(logger, "network bring-up", slog.Any("reason", err))
		}
		con.Print(console.LevelMessage, "IP %s", link.Addr().String())

		pub := mqtt.Publisher{
			ID:                "tinygo-statusboard",
			Logger:            logger,
			Timeout:           5 * time.Second,
			TCPBufSize:        2030, // MTU - ethhdr - iphdr - tcphdr
			HeartbeatInterval: 30 * time.Second,
			Boot:              boot,
			Console:           con,
		}
		if err := pub.ConnectAndPublish(link, serverAddrStr, mirror); err != nil {
			con.Print(console.LevelError, "mqtt: %s", err.Error())
			printErrForever(logger, "connect to MQTT broker", slog.Any("reason", err))
		}
	}()

	for {
		up := time.Since(boot).Round(time.Second)
		con.Print(console.LevelNone, "up %s", up.String())
		if s := con.Stats(); s.Skipped > 0 {
			logger.Info("console:stats", slog.Uint64("rendered", s.Rendered), slog.Uint64("skipped", s.Skipped))
		}
		time.Sleep(time.Second)
	}
}

// configurePanel sets up SPI0 and the ILI9341 on it.
func configurePanel() (*ili9341.Device, error) {
	err := machine.SPI0.Configure(machine.SPIConfig{
		SCK:       tftSCK,
		SDO:       tftSDO,
		SDI:       tftSDI,
		Frequency: 40_000_000,
	})
	if err != nil {
		return nil, err
	}
	panel := ili9341.NewSPI(machine.SPI0, tftDC, tftCS, tftRST)
	panel.Configure(ili9341.Config{})
	return panel, nil
}

// printErrForever prints a message to serial @ 1hz. It
// blocks forever.
func printErrForever(logger *slog.Logger, msg string, args ...any) {
	for {
		logger.Error(msg, args...)
		time.Sleep(time.Second)
	}
}
