package server

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/martoast/gemini-plays-pokemon/internal/logger"
	"github.com/martoast/gemini-plays-pokemon/pkg/gametypes"
)

// readPollInterval bounds how long a session read blocks before re-checking
// the running flag.
const readPollInterval = 100 * time.Millisecond

// fieldSeparator joins the fields of an emulator message.
const fieldSeparator = "||"

// msgScreenshot is the only message type the core protocol defines. Its
// payload is the path of a freshly captured frame.
const msgScreenshot = "screenshot"

// Decider is what a session needs from the decision engine.
type Decider interface {
	Decide(ctx context.Context, screenshotPath string) (*gametypes.Decision, error)
}

// Session handles one emulator connection: it drains the line protocol,
// dispatches screenshot notifications to the engine, and writes button codes
// back to the socket.
type Session struct {
	ID       string
	conn     net.Conn
	engine   Decider
	registry *Registry
}

// NewSession wraps an accepted connection.
func NewSession(conn net.Conn, engine Decider, registry *Registry) *Session {
	return &Session{
		ID:       uuid.NewString(),
		conn:     conn,
		engine:   engine,
		registry: registry,
	}
}

// Close closes the underlying connection. Safe to call more than once.
func (s *Session) Close() {
	_ = s.conn.Close()
}

// Run drives the session read loop until the peer disconnects, the socket
// fails, or the controller shuts down. Messages are processed in arrival
// order; decision errors never terminate the session.
func (s *Session) Run(ctx context.Context) {
	logger.Banner("Emulator connected")
	logger.Info("Session started", "session", s.ID, "remote", s.conn.RemoteAddr().String())

	s.registry.SetCurrent(s)
	defer func() {
		s.registry.ClearCurrent(s)
		s.Close()
		logger.Info("Session ended", "session", s.ID)
	}()

	buf := make([]byte, 4096)
	for s.registry.Running() && ctx.Err() == nil {
		_ = s.conn.SetReadDeadline(time.Now().Add(readPollInterval))
		n, err := s.conn.Read(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				// No data yet; poll again.
				continue
			}
			// EOF or a hard socket error ends the session.
			logger.Debug("Session read ended", "session", s.ID, "error", err)
			return
		}
		if n == 0 {
			return
		}

		message := strings.TrimSpace(string(buf[:n]))
		if message == "" {
			continue
		}
		if err := s.handleMessage(ctx, message); err != nil {
			// Only a failed write back to the emulator is session-fatal.
			logger.Error("Session terminating", "session", s.ID, "error", err)
			return
		}
	}
}

// handleMessage dispatches one protocol message. The returned error is
// non-nil only for failures that must end the session.
func (s *Session) handleMessage(ctx context.Context, message string) error {
	logger.Debug("Received message", "session", s.ID, "message", truncateMessage(message))

	parts := strings.Split(message, fieldSeparator)
	if len(parts) < 2 {
		logger.Debug("Ignoring malformed message", "session", s.ID)
		return nil
	}

	msgType, payload := parts[0], parts[1]
	if msgType != msgScreenshot {
		logger.Debug("Ignoring unknown message type", "session", s.ID, "type", msgType)
		return nil
	}

	if _, err := os.Stat(payload); err != nil {
		logger.Warn("Screenshot file not found", "session", s.ID, "path", payload)
		return nil
	}

	decision, err := s.engine.Decide(ctx, payload)
	if err != nil {
		logger.Error("Decision cycle failed", "session", s.ID, "error", err)
		return nil
	}
	if !decision.HasAction() {
		return nil
	}

	return s.sendButton(*decision.Button)
}

// sendButton writes the button's numeric code, newline-terminated, back to
// the emulator.
func (s *Session) sendButton(button gametypes.Button) error {
	wire := strconv.Itoa(button.Code()) + "\n"
	if _, err := s.conn.Write([]byte(wire)); err != nil {
		return fmt.Errorf("failed to send button press: %w", err)
	}
	logger.Debug("Sent button press", "session", s.ID, "button", button.String(), "code", button.Code())
	return nil
}

func truncateMessage(message string) string {
	if len(message) <= 80 {
		return message
	}
	return message[:80] + "..."
}
