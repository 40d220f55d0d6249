package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/martoast/gemini-plays-pokemon/internal/logger"
)

const (
	// acceptPollInterval bounds how long Accept blocks before the loop
	// re-checks the running flag.
	acceptPollInterval = 1 * time.Second

	// shutdownJoinTimeout bounds how long Shutdown waits for session
	// goroutines before abandoning them; closing their sockets forces any
	// blocked call to fail and unwind.
	shutdownJoinTimeout = 3 * time.Second

	// portReclaimDelay is the pause before the single bind retry when the
	// address is already in use.
	portReclaimDelay = 1 * time.Second
)

// Server owns the listening socket and spawns one session goroutine per
// accepted connection.
type Server struct {
	addr     string
	engine   Decider
	registry *Registry

	listener *net.TCPListener
	sessions sync.WaitGroup

	teardownOnce sync.Once
}

// New creates a server that will listen on addr.
func New(addr string, engine Decider, registry *Registry) *Server {
	return &Server{
		addr:     addr,
		engine:   engine,
		registry: registry,
	}
}

// Listen binds the listening socket. An address already in use gets one
// best-effort reclaim attempt (the previous owner may still be tearing down)
// before the error is returned for the caller to treat as fatal.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		if !isAddrInUse(err) {
			return fmt.Errorf("failed to bind %s: %w", s.addr, err)
		}
		logger.Warn("Port already in use, retrying bind", "addr", s.addr)
		time.Sleep(portReclaimDelay)
		listener, err = net.Listen("tcp", s.addr)
		if err != nil {
			return fmt.Errorf("failed to bind %s after reclaim attempt: %w", s.addr, err)
		}
	}

	s.listener = listener.(*net.TCPListener)
	logger.Info("Listening for emulator connection", "addr", s.listener.Addr().String())
	return nil
}

// Addr returns the bound listen address. Valid after Listen.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Serve runs the accept loop until shutdown. Listen must have succeeded
// first.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return errors.New("server is not listening; call Listen first")
	}

	for s.registry.Running() && ctx.Err() == nil {
		_ = s.listener.SetDeadline(time.Now().Add(acceptPollInterval))
		conn, err := s.listener.AcceptTCP()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if !s.registry.Running() || ctx.Err() != nil {
				break
			}
			logger.Error("Accept failed", "error", err)
			break
		}

		_ = conn.SetKeepAlive(true)
		_ = conn.SetKeepAlivePeriod(30 * time.Second)

		session := NewSession(conn, s.engine, s.registry)
		s.sessions.Add(1)
		go func() {
			defer s.sessions.Done()
			session.Run(ctx)
		}()
	}

	s.Shutdown()
	return nil
}

// Shutdown tears down the server: stop accepting, close the active session,
// close the listener, and wait briefly for session goroutines. It executes
// at most once; later calls return immediately and never panic.
func (s *Server) Shutdown() {
	s.teardownOnce.Do(func() {
		logger.Info("Shutting down")
		s.registry.Stop()

		if current := s.registry.Current(); current != nil {
			current.Close()
		}
		if s.listener != nil {
			_ = s.listener.Close()
		}

		done := make(chan struct{})
		go func() {
			s.sessions.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(shutdownJoinTimeout):
			logger.Warn("Timed out waiting for sessions to finish")
		}

		logger.Info("Shutdown complete")
	})
}

// isAddrInUse reports whether err is the EADDRINUSE bind failure.
func isAddrInUse(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE)
}
