//go:build tinygo

package mqtt

import (
	"io"
	"log/slog"
	"net/netip"
	"runtime"
	"time"

	"github.com/harveysanders/lcdconsole/console"
	"github.com/harveysanders/lcdconsole/statusboard/cyw43439"
	"github.com/soypat/lneto/tcp"
	mqtt "github.com/soypat/natiu-mqtt"
)

var pubFlags, _ = mqtt.NewPublishFlags(mqtt.QoS0, false, false)

// Publisher mirrors console lines to an MQTT broker.
type Publisher struct {
	ID                string
	Timeout           time.Duration
	TCPBufSize        int
	Logger            *slog.Logger
	HeartbeatInterval time.Duration
	TopicPrefix       string    // Defaults to DefaultTopicPrefix.
	Username          string    // MQTT broker username (optional)
	Password          string    // MQTT broker password (optional, requires Username)
	Boot              time.Time // Reference for Report.SinceBootNS.
	TimeSyncedAt      time.Time // When the wall clock was set. Zero leaves Report.Timestamp zero.
	// Console receives connection progress on the message level and failures
	// on the error level. Optional.
	Console *console.Console
}

func (p *Publisher) status(l console.Level, format string, args ...any) {
	if p.Console != nil {
		p.Console.Print(l, format, args...)
	}
}

// ConnectAndPublish connects to the broker at addr and publishes every line
// received from lines until the channel is closed. Dropped connections are
// redialed.
func (p *Publisher) ConnectAndPublish(link *cyw43439.Link, addr string, lines <-chan console.Line) error {
	const pollTime = 5 * time.Millisecond

	p.Logger.Info("mqtt:address", slog.String("addr", addr))

	host, portStr, err := splitHostPort(addr)
	if err != nil {
		return errUnderlying("parsing host:port from "+addr, err)
	}
	port := parsePort(portStr)
	if port == 0 {
		return errUnderlying("parsing port from "+addr, errBadPort)
	}

	stack := link.Stack()
	rstack := stack.StackRetrying(pollTime)

	brokerAddr, err := netip.ParseAddr(host)
	if err != nil {
		p.Logger.Info("dns:resolving", slog.String("host", host))
		addrs, err := rstack.DoLookupIP(host, 5*time.Second, 3)
		if err != nil {
			return errUnderlying("dns lookup for "+host, err)
		}
		if len(addrs) == 0 {
			return errUnderlying("dns lookup for "+host, errNoAddrs)
		}
		brokerAddr = addrs[0]
	}
	p.Logger.Info("dns:resolved", slog.String("ip", brokerAddr.String()))

	cfg := mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, 1024)},
		OnPub: func(pubHead mqtt.Header, varPub mqtt.VariablesPublish, r io.Reader) error {
			p.Logger.Info("mqtt:received", slog.String("topic", string(varPub.TopicName)))
			return nil
		},
	}
	var varconn mqtt.VariablesConnect
	varconn.SetDefaultMQTT([]byte(p.ID))
	if p.Username != "" {
		varconn.Username = []byte(p.Username)
		if p.Password != "" {
			varconn.Password = []byte(p.Password)
		}
	}
	client := mqtt.NewClient(cfg)

	var conn tcp.Conn
	err = conn.Configure(tcp.ConnConfig{
		RxBuf:             make([]byte, p.TCPBufSize),
		TxBuf:             make([]byte, p.TCPBufSize),
		TxPacketQueueSize: 3,
	})
	if err != nil {
		return errUnderlying("tcp configure", err)
	}

	closeConn := func(reason string) {
		p.Logger.Error("tcpconn:closing", slog.String("reason", reason))
		conn.Close()
		for i := 0; i < 50 && !conn.State().IsClosed(); i++ {
			time.Sleep(100 * time.Millisecond)
		}
		conn.Abort()
	}

	serverAddr := netip.AddrPortFrom(brokerAddr, port)
	var pubVar mqtt.VariablesPublish

	for {
		localPort := uint16(stack.Prand32()>>17) + 1024
		p.Logger.Info("socket:dialing", slog.Uint64("localPort", uint64(localPort)))
		p.status(console.LevelMessage, "MQTT %s\r\nTCP handshake", addr)

		err = rstack.DoDialTCP(&conn, localPort, serverAddr, 10*time.Second, 3)
		if err != nil {
			p.Logger.Error("socket:dial-failed", slog.String("err", err.Error()))
			p.status(console.LevelError, "MQTT dial failed")
			closeConn("dial failed: " + err.Error())
			time.Sleep(2 * time.Second)
			continue
		}
		p.Logger.Info("tcp:connected", slog.String("state", conn.State().String()))

		p.status(console.LevelMessage, "MQTT connect\r\nauthenticating")
		conn.SetDeadline(time.Now().Add(p.Timeout))
		err = client.StartConnect(&conn, &varconn)
		if err != nil {
			p.Logger.Error("mqtt:start-connect-failed", slog.String("reason", err.Error()))
			p.status(console.LevelError, "MQTT: %s", err.Error())
			closeConn("connect failed")
			continue
		}
		for retries := 50; retries > 0 && !client.IsConnected(); retries-- {
			time.Sleep(100 * time.Millisecond)
			if err = client.HandleNext(); err != nil {
				p.Logger.Error("mqtt:handle-next-failed", slog.String("err", err.Error()))
			}
		}
		if !client.IsConnected() {
			p.Logger.Error("mqtt:connect-failed", slog.Any("reason", client.Err()))
			p.status(console.LevelError, "MQTT timed out")
			closeConn("connect timed out")
			continue
		}
		p.status(console.LevelMessage, "MQTT connected\r\npublishing")

		heartbeat := time.NewTicker(p.HeartbeatInterval)
		for client.IsConnected() {
			select {
			case line, ok := <-lines:
				if !ok {
					heartbeat.Stop()
					closeConn("mirror closed")
					return nil
				}
				payload, err := encodeReport(line, NewReport(line, time.Since(p.Boot), wallClock(p.TimeSyncedAt, time.Now())))
				if err != nil {
					p.Logger.Error("mqtt:marshal-failed", slog.Any("reason", err))
					continue
				}
				pubVar.TopicName = Topic(p.TopicPrefix, line.Level)
				pubVar.PacketIdentifier = uint16(stack.Prand32())
				conn.SetDeadline(time.Now().Add(p.Timeout))
				// Failures are only logged: printing them would mirror them
				// straight back into this loop.
				if err = client.PublishPayload(pubFlags, pubVar, payload); err != nil {
					p.Logger.Error("mqtt:publish-failed", slog.Any("reason", err))
					continue
				}
				p.Logger.Debug("mqtt:published",
					slog.String("level", line.Level.String()),
					slog.Uint64("packetID", uint64(pubVar.PacketIdentifier)),
				)
				if err = client.HandleNext(); err != nil {
					p.Logger.Error("mqtt:handle-next-failed", slog.String("err", err.Error()))
				}
			case <-heartbeat.C:
				// Keep the connection alive when the console is quiet.
				if err = client.HandleNext(); err != nil {
					p.Logger.Error("mqtt:handle-next-failed", slog.String("err", err.Error()))
				}
			default:
				// TinyGo runs goroutines on one core; let the printers run.
				runtime.Gosched()
			}
		}
		heartbeat.Stop()

		p.Logger.Error("mqtt:disconnected", slog.Any("reason", client.Err()))
		p.status(console.LevelError, "MQTT disconnected")
		closeConn("disconnected")
		runtime.Gosched()
	}
}
