package server

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"strconv"
	"time"

	"github.com/martoast/gemini-plays-pokemon/internal/logger"
	"github.com/martoast/gemini-plays-pokemon/pkg/gametypes"
)

// Simulator is a stand-in decision server for exercising the emulator-side
// script without burning model quota. It accepts one connection and sends a
// mostly-A button stream on a fixed interval, which is enough to get through
// the game's start menus.
type Simulator struct {
	addr     string
	interval time.Duration
}

// simulatorButtons are the occasional alternatives to A.
var simulatorButtons = []gametypes.Button{
	gametypes.ButtonA,
	gametypes.ButtonB,
	gametypes.ButtonStart,
	gametypes.ButtonRight,
	gametypes.ButtonLeft,
	gametypes.ButtonUp,
	gametypes.ButtonDown,
}

// NewSimulator creates a simulator listening on addr that sends one button
// every interval.
func NewSimulator(addr string, interval time.Duration) *Simulator {
	return &Simulator{addr: addr, interval: interval}
}

// Run serves one emulator connection until the peer disconnects or ctx is
// cancelled.
func (s *Simulator) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.addr, err)
	}
	defer func() { _ = listener.Close() }()

	simLog := logger.NewStyledLogger("SIM")
	simLog.Info("Listening, waiting for emulator", "addr", listener.Addr().String())

	tcpListener := listener.(*net.TCPListener)
	var conn net.Conn
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_ = tcpListener.SetDeadline(time.Now().Add(acceptPollInterval))
		conn, err = tcpListener.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return fmt.Errorf("accept failed: %w", err)
		}
		break
	}
	defer func() { _ = conn.Close() }()

	simLog.Info("Emulator connected", "remote", conn.RemoteAddr().String())

	buf := make([]byte, 1024)
	lastSend := time.Time{}
	for ctx.Err() == nil {
		// Drain and log whatever the emulator reports.
		_ = conn.SetReadDeadline(time.Now().Add(readPollInterval))
		if n, err := conn.Read(buf); err == nil && n > 0 {
			simLog.Debug("Received", "message", truncateMessage(string(buf[:n])))
		} else if err != nil {
			if ne, ok := err.(net.Error); !ok || !ne.Timeout() {
				simLog.Info("Peer disconnected", "error", err)
				return nil
			}
		}

		if time.Since(lastSend) < s.interval {
			continue
		}
		button := s.pickButton()
		if _, err := conn.Write([]byte(strconv.Itoa(button.Code()) + "\n")); err != nil {
			return fmt.Errorf("failed to send button press: %w", err)
		}
		simLog.Info("Sent button", "button", button.String(), "code", button.Code())
		lastSend = time.Now()
	}
	return ctx.Err()
}

// pickButton presses A 80% of the time, otherwise a random useful button.
func (s *Simulator) pickButton() gametypes.Button {
	if rand.Float64() < 0.8 {
		return gametypes.ButtonA
	}
	return simulatorButtons[rand.Intn(len(simulatorButtons))]
}
