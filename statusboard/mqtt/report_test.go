package mqtt

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/harveysanders/lcdconsole/console"
)

func TestTopic(t *testing.T) {
	tests := []struct {
		prefix string
		level  console.Level
		want   string
	}{
		{"", console.LevelNone, "lcdconsole/none"},
		{"", console.LevelError, "lcdconsole/error"},
		{"pico/board1", console.LevelHeading, "pico/board1/heading"},
		{"x", console.LevelMessage, "x/message"},
	}
	for _, tt := range tests {
		if got := string(Topic(tt.prefix, tt.level)); got != tt.want {
			t.Errorf("Topic(%q, %v) = %q, want %q", tt.prefix, tt.level, got, tt.want)
		}
	}
}

func TestEncodeReport(t *testing.T) {
	line := console.Line{Level: console.LevelError, Text: "rx overrun", Length: 10}
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	payload, err := encodeReport(line, NewReport(line, 3*time.Second, now))
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatal(err)
	}
	if got["level"] != "error" || got["text"] != "rx overrun" {
		t.Errorf("payload %s", payload)
	}
	if got["length"] != float64(10) || got["sinceBootNS"] != float64(3*time.Second) {
		t.Errorf("payload %s", payload)
	}
	if got["timestamp"] != "2026-10-18T12:00:00Z" {
		t.Errorf("timestamp %v", got["timestamp"])
	}
}

func TestEncodeReportInvalidLevel(t *testing.T) {
	line := console.Line{Level: console.Level(9)}
	if _, err := encodeReport(line, NewReport(line, 0, time.Time{})); err == nil {
		t.Error("expected error")
	}
}

func TestSplitHostPort(t *testing.T) {
	tests := []struct {
		addr       string
		host, port string
		errText    string
	}{
		{addr: "10.0.0.9:1883", host: "10.0.0.9", port: "1883"},
		{addr: "broker.local:8883", host: "broker.local", port: "8883"},
		{addr: "[fe80::1]:1883", host: "[fe80::1]", port: "1883"},
		{addr: "broker.local", errText: "missing port"},
		{addr: ":1883", errText: "empty host"},
		{addr: "broker:", errText: "empty port"},
	}
	for _, tt := range tests {
		host, port, err := splitHostPort(tt.addr)
		if tt.errText != "" {
			if err == nil || !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("%q: got err %v, want %q", tt.addr, err, tt.errText)
			}
			continue
		}
		if err != nil || host != tt.host || port != tt.port {
			t.Errorf("%q: got %q %q %v", tt.addr, host, port, err)
		}
	}
}

func TestParsePort(t *testing.T) {
	for in, want := range map[string]uint16{
		"1883":  1883,
		"65535": 65535,
		"65536": 0,
		"80a":   0,
		"":      0,
	} {
		if got := parsePort(in); got != want {
			t.Errorf("parsePort(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestWallClock(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	if got := wallClock(time.Time{}, now); !got.IsZero() {
		t.Errorf("unsynced clock gave %v", got)
	}
	if got := wallClock(now.Add(-time.Hour), now); !got.Equal(now) {
		t.Errorf("synced clock gave %v", got)
	}

	line := console.Line{Level: console.LevelNone, Text: "up"}
	payload, err := encodeReport(line, NewReport(line, time.Second, wallClock(time.Time{}, now)))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(payload), `"timestamp":"0001-01-01T00:00:00Z"`) {
		t.Errorf("payload %s", payload)
	}
}
