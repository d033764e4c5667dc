//go:build tinygo

// Package cyw43439 brings up the Pico W radio for the status board: WiFi
// join, DHCP with a static fallback, and the packet pump the lneto stack
// needs.
//
// Credentials are set with linker flags:
//
//	tinygo flash -target=pico2-w -ldflags="-X github.com/harveysanders/lcdconsole/statusboard/cyw43439.ssid=home -X github.com/harveysanders/lcdconsole/statusboard/cyw43439.pass=secret" ./statusboard
package cyw43439

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"net/netip"
	"time"

	"github.com/soypat/cyw43439"
	"github.com/soypat/lneto/x/xnet"
)

const mtu = cyw43439.MTU

var (
	ssid string
	pass string
)

// Config configures Up.
type Config struct {
	// Hostname is sent with DHCP requests. Required.
	Hostname string
	// MaxTCPConns is the number of TCP connections the stack can hold.
	MaxTCPConns int
	// StaticAddr is requested via DHCP and used as-is when DHCP fails.
	StaticAddr netip.Addr
	// Logger for bring-up and pump errors. Nil discards.
	Logger *slog.Logger
	// Joining is called before every join attempt, so a display can show it.
	Joining func(ssid string, attempt int)
}

// Link is a joined radio with an addressed network stack.
type Link struct {
	stack   xnet.StackAsync
	dev     *cyw43439.Device
	log     *slog.Logger
	sendbuf []byte
}

// Up initializes the radio, joins the network named by the ssid linker flag
// (retrying until it succeeds) and configures an address.
func Up(cfg Config) (*Link, error) {
	if cfg.Hostname == "" {
		return nil, errors.New("empty hostname")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(127),
		}))
	}

	start := time.Now()
	dev := cyw43439.NewPicoWDevice()
	dev.SetLogger(logger)
	if err := dev.Init(cyw43439.DefaultWifiConfig()); err != nil {
		return nil, errors.New("wifi init failed:" + err.Error())
	}
	logger.Info("cyw43439:init", slog.Duration("duration", time.Since(start)))

	for attempt := 1; ; attempt++ {
		if cfg.Joining != nil {
			cfg.Joining(ssid, attempt)
		}
		err := dev.JoinWPA2(ssid, pass)
		if err == nil {
			break
		}
		logger.Error("wifi:join-failed", slog.String("ssid", ssid), slog.String("err", err.Error()))
		time.Sleep(5 * time.Second)
	}

	mac, err := dev.HardwareAddr6()
	if err != nil {
		return nil, errors.New("get hardware address:" + err.Error())
	}
	logger.Info("wifi:joined", slog.String("mac", net.HardwareAddr(mac[:]).String()))

	l := &Link{dev: dev, log: logger, sendbuf: make([]byte, mtu)}
	maxTCP := cfg.MaxTCPConns
	if maxTCP < 1 {
		maxTCP = 1
	}
	err = l.stack.Reset(xnet.StackConfig{
		Hostname:        cfg.Hostname,
		MaxTCPConns:     maxTCP,
		RandSeed:        time.Since(start).Nanoseconds(),
		HardwareAddress: mac,
		MTU:             mtu,
	})
	if err != nil {
		return nil, errors.New("stack reset:" + err.Error())
	}
	dev.RecvEthHandle(func(pkt []byte) error {
		return l.stack.Demux(pkt, 0)
	})

	// DHCP needs the pump running.
	go l.pump()
	if err := l.dhcp(cfg.StaticAddr); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Link) dhcp(requested netip.Addr) error {
	if !requested.IsValid() {
		requested = netip.AddrFrom4([4]byte{})
	}
	if !requested.Is4() {
		return errors.New("only dhcpv4 supported")
	}

	rstack := l.stack.StackRetrying(50 * time.Millisecond)
	l.log.Info("dhcp:starting")
	results, err := rstack.DoDHCPv4(requested.As4(), 3*time.Second, 3)
	if err != nil {
		if requested.IsUnspecified() {
			return errors.New("dhcp failed:" + err.Error())
		}
		l.log.Info("dhcp:static-fallback", slog.String("ip", requested.String()))
		l.stack.SetIPAddr(requested)
		return nil
	}
	if err = l.stack.AssimilateDHCPResults(results); err != nil {
		return errors.New("assimilate dhcp:" + err.Error())
	}
	gatewayHW, err := rstack.DoResolveHardwareAddress6(results.Router, 500*time.Millisecond, 4)
	if err != nil {
		return errors.New("resolve gateway:" + err.Error())
	}
	l.stack.SetGateway6(gatewayHW)
	l.log.Info("dhcp:done",
		slog.String("ip", results.AssignedAddr.String()),
		slog.String("router", results.Router.String()),
		slog.Uint64("lease_sec", uint64(results.TLease)),
	)
	return nil
}

// pump moves packets between the radio and the stack forever.
func (l *Link) pump() {
	for {
		sent, recv := l.poll()
		if sent == 0 && !recv {
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func (l *Link) poll() (sent int, recv bool) {
	recv, err := l.dev.PollOne()
	if err != nil {
		l.log.Error("link:poll", slog.String("err", err.Error()))
	}
	sent, err = l.stack.Encapsulate(l.sendbuf, -1, 0)
	if err != nil {
		l.log.Error("link:encapsulate", slog.Int("plen", sent), slog.String("err", err.Error()))
		return 0, recv
	}
	if sent == 0 {
		return 0, recv
	}
	if err = l.dev.SendEth(l.sendbuf[:sent]); err != nil {
		l.log.Error("link:send", slog.Int("plen", sent), slog.String("err", err.Error()))
	}
	return sent, recv
}

// Stack returns the lneto stack for dialing and DNS.
func (l *Link) Stack() *xnet.StackAsync { return &l.stack }

// Addr returns the address of the link.
func (l *Link) Addr() netip.Addr { return l.stack.Addr() }
