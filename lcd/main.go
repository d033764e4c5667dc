//go:build tinygo

// Console demo on a 16x2 HD44780 over I2C0. The potentiometer voltage on
// ADC0 is printed on the heading (top) row and the raw reading on the message
// (bottom) row, which the error level takes over near the rails.
package main

import (
	"log/slog"
	"machine"
	"time"

	"github.com/harveysanders/lcdconsole/console"
	"github.com/harveysanders/lcdconsole/hd44780"
)

const (
	max16Bit uint16  = 65535 // Max ADC value. The Pico has an onboard 16-bit ADC.
	sysV     float32 = 3.3   // Logic level in volts. Pico runs at 3.3VDC.
)

func main() {
	logger := slog.New(slog.NewTextHandler(machine.Serial, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	debugLED := machine.GP15
	debugLED.Configure(machine.PinConfig{Mode: machine.PinOutput})

	machine.InitADC()
	sensor := machine.ADC{Pin: machine.ADC0}
	sensor.Configure(machine.ADCConfig{})

	err := machine.I2C0.Configure(machine.I2CConfig{
		SDA: machine.GP4,
		SCL: machine.GP5,
	})
	if err != nil {
		for {
			logger.Error("could not configure I2C", slog.Any("reason", err))
			time.Sleep(time.Second)
		}
	}

	lcd := hd44780.New(machine.I2C0, 16, 2)
	con := console.New(lcd, console.Config{Logger: logger})
	if err := con.Init(); err != nil {
		// Keeps formatting; the serial log still shows what would be printed.
		logger.Error("console:init", slog.Any("reason", err))
	}

	for {
		val := sensor.Get()
		percentage := float32(val) / float32(max16Bit)
		con.Print(console.LevelHeading, "V: %.1f %5.1f%%", percentage*sysV, percentage*100)
		switch {
		case percentage < 0.02:
			con.Print(console.LevelError, "pot at minimum  ")
		case percentage > 0.98:
			con.Print(console.LevelError, "pot at maximum  ")
		default:
			con.Print(console.LevelMessage, "16-bit: %-8d", val)
		}

		debugLED.High()
		time.Sleep(250 * time.Millisecond)
		debugLED.Low()
		time.Sleep(250 * time.Millisecond)
	}
}
