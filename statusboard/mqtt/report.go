package mqtt

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/harveysanders/lcdconsole/console"
)

// DefaultTopicPrefix is prepended to the level name of every published line.
const DefaultTopicPrefix = "lcdconsole"

// Report is the JSON payload of a mirrored console line.
type Report struct {
	Level       string        `json:"level"`
	Text        string        `json:"text"`
	Length      int           `json:"length"`      // Formatted length; above len(Text) when truncated.
	SinceBootNS time.Duration `json:"sinceBootNS"` // Nanoseconds since boot.
	Timestamp   time.Time     `json:"timestamp"`   // Wall-clock time. Zero until the clock has been synced.
}

// NewReport builds the payload for line.
func NewReport(line console.Line, sinceBoot time.Duration, now time.Time) Report {
	return Report{
		Level:       line.Level.String(),
		Text:        line.Text,
		Length:      line.Length,
		SinceBootNS: sinceBoot,
		Timestamp:   now,
	}
}

// Topic returns the topic a line of level l is published on: <prefix>/<level>.
func Topic(prefix string, l console.Level) []byte {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return []byte(prefix + "/" + l.String())
}

// encodeReport marshals r, rejecting levels the console would never send.
func encodeReport(line console.Line, r Report) ([]byte, error) {
	if !line.Level.Valid() {
		return nil, errors.New("encode report: " + console.ErrLevelRange.Error())
	}
	return json.Marshal(r)
}

// wallClock returns now when the clock has been synced, otherwise the zero time.
func wallClock(syncedAt, now time.Time) time.Time {
	if syncedAt.IsZero() {
		return time.Time{}
	}
	return now
}

// splitHostPort splits the broker address at its last colon, so bracketed
// IPv6 hosts keep their inner colons.
func splitHostPort(addr string) (host, port string, err error) {
	i := strings.LastIndexByte(addr, ':')
	switch {
	case i < 0:
		return "", "", errors.New("missing port in address")
	case i == 0:
		return "", "", errors.New("empty host")
	case i == len(addr)-1:
		return "", "", errors.New("empty port")
	}
	return addr[:i], addr[i+1:], nil
}

// parsePort converts a port string to uint16.
// Returns 0 if parsing fails or the value overflows.
func parsePort(portStr string) uint16 {
	var port uint32
	for i := 0; i < len(portStr); i++ {
		if portStr[i] < '0' || portStr[i] > '9' {
			return 0
		}
		port = port*10 + uint32(portStr[i]-'0')
		if port > 0xFFFF {
			return 0
		}
	}
	return uint16(port)
}

var (
	errBadPort = errors.New("invalid port")
	errNoAddrs = errors.New("no addresses returned")
)

// errUnderlying prefixes err with what was being done.
func errUnderlying(doing string, err error) error {
	return errors.New(doing + ": " + err.Error())
}
