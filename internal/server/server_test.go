package server

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martoast/gemini-plays-pokemon/internal/engine"
	"github.com/martoast/gemini-plays-pokemon/internal/memory"
)

// mockBackend plays back a canned reply and counts invocations.
type mockBackend struct {
	mu    sync.Mutex
	reply string
	calls int
}

func (m *mockBackend) Generate(_ context.Context, _ string, _ [][]byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.reply, nil
}

func (m *mockBackend) ProviderName() string { return "mock" }

func (m *mockBackend) IsConfigured() bool { return true }

func (m *mockBackend) SetDebugTransport(_ http.RoundTripper) {}

func (m *mockBackend) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type serverFixture struct {
	server     *Server
	backend    *mockBackend
	notepad    *memory.Notepad
	screenshot string
	cancel     context.CancelFunc
}

// startServer brings up a full controller stack on a loopback port with a
// mock model backend.
func startServer(t *testing.T, reply string, cooldown time.Duration) *serverFixture {
	t.Helper()
	dir := t.TempDir()

	notepad := memory.NewNotepad(memory.NewFileStore(filepath.Join(dir, "notepad.txt")), 10000, false)
	require.NoError(t, notepad.Initialize())
	thinking := memory.NewThinkingHistory(memory.NewFileStore(filepath.Join(dir, "thinking.txt")), 10000, 5)
	require.NoError(t, thinking.Initialize())
	comparison := memory.NewComparison(filepath.Join(dir, "comparison"))

	screenshot := filepath.Join(dir, "screenshot.png")
	require.NoError(t, os.WriteFile(screenshot, []byte("fake-frame"), 0644))

	backend := &mockBackend{reply: reply}
	eng := engine.New(backend, notepad, thinking, comparison, cooldown)

	registry := NewRegistry()
	srv := New("127.0.0.1:0", eng, registry)
	require.NoError(t, srv.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = srv.Serve(ctx) }()

	t.Cleanup(func() {
		cancel()
		srv.Shutdown()
	})

	return &serverFixture{
		server:     srv,
		backend:    backend,
		notepad:    notepad,
		screenshot: screenshot,
		cancel:     cancel,
	}
}

func dial(t *testing.T, f *serverFixture) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", f.server.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readReply(t *testing.T, conn net.Conn, timeout time.Duration) (string, error) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(timeout)))
	return bufio.NewReader(conn).ReadString('\n')
}

func TestSessionSendsButtonCodeForScreenshot(t *testing.T) {
	f := startServer(t, "THINK: ok\nBUTTON: up\nNOTEPAD: no change", 0)
	conn := dial(t, f)

	notepadBefore := f.notepad.Read()

	_, err := conn.Write([]byte("screenshot||" + f.screenshot))
	require.NoError(t, err)

	reply, err := readReply(t, conn, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "6\n", reply)
	assert.Equal(t, notepadBefore, f.notepad.Read(), "no notepad mutation on 'no change'")
}

func TestSessionDefaultsUnrecognizedButtonToA(t *testing.T) {
	f := startServer(t, "THINK: ok\nBUTTON: xyz\nNOTEPAD: no change", 0)
	conn := dial(t, f)

	_, err := conn.Write([]byte("screenshot||" + f.screenshot))
	require.NoError(t, err)

	reply, err := readReply(t, conn, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "0\n", reply)
}

func TestSessionIgnoresMissingScreenshot(t *testing.T) {
	f := startServer(t, "BUTTON: A", 0)
	conn := dial(t, f)

	_, err := conn.Write([]byte("screenshot||/nonexistent/missing.png"))
	require.NoError(t, err)

	_, err = readReply(t, conn, 500*time.Millisecond)
	assert.Error(t, err, "no bytes must be written for a missing screenshot")
	assert.Equal(t, 0, f.backend.callCount(), "no backend call for a missing screenshot")
}

func TestSessionCooldownCollapsesBurstToOneDecision(t *testing.T) {
	f := startServer(t, "BUTTON: A\nNOTEPAD: no change", 3*time.Second)
	conn := dial(t, f)

	_, err := conn.Write([]byte("screenshot||" + f.screenshot))
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)
	_, err = conn.Write([]byte("screenshot||" + f.screenshot))
	require.NoError(t, err)

	reply, err := readReply(t, conn, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "0\n", reply)

	// The second message fell inside the cooldown window: no further reply,
	// no further backend call.
	_, err = readReply(t, conn, 500*time.Millisecond)
	assert.Error(t, err)
	assert.Equal(t, 1, f.backend.callCount())
}

func TestSessionIgnoresMalformedLines(t *testing.T) {
	f := startServer(t, "BUTTON: B\nNOTEPAD: no change", 0)
	conn := dial(t, f)

	// Fewer than two fields: ignored without ending the session.
	_, err := conn.Write([]byte("garbage-without-separator"))
	require.NoError(t, err)
	time.Sleep(200 * time.Millisecond)

	_, err = conn.Write([]byte("screenshot||" + f.screenshot))
	require.NoError(t, err)

	reply, err := readReply(t, conn, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "1\n", reply)
}

func TestSessionIgnoresUnknownMessageTypes(t *testing.T) {
	f := startServer(t, "BUTTON: A\nNOTEPAD: no change", 0)
	conn := dial(t, f)

	_, err := conn.Write([]byte("party_info||some-payload"))
	require.NoError(t, err)
	time.Sleep(200 * time.Millisecond)

	assert.Equal(t, 0, f.backend.callCount())
}

func TestNewConnectionReplacesCurrentSession(t *testing.T) {
	f := startServer(t, "BUTTON: A\nNOTEPAD: no change", 0)

	first := dial(t, f)
	_, err := first.Write([]byte("screenshot||" + f.screenshot))
	require.NoError(t, err)
	_, err = readReply(t, first, 2*time.Second)
	require.NoError(t, err)

	// A second connection becomes the current session and is fully served.
	second := dial(t, f)
	_, err = second.Write([]byte("screenshot||" + f.screenshot))
	require.NoError(t, err)
	reply, err := readReply(t, second, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "0\n", reply)
}

func TestShutdownIsIdempotent(t *testing.T) {
	f := startServer(t, "BUTTON: A", 0)

	assert.NotPanics(t, func() {
		f.server.Shutdown()
		f.server.Shutdown()
		f.server.Shutdown()
	})

	// The listener is closed: new connections fail.
	_, err := net.DialTimeout("tcp", f.server.Addr(), 500*time.Millisecond)
	assert.Error(t, err)
}

func TestShutdownClosesActiveSession(t *testing.T) {
	f := startServer(t, "BUTTON: A", 0)
	conn := dial(t, f)

	// Let the session register itself.
	time.Sleep(200 * time.Millisecond)

	f.cancel()
	f.server.Shutdown()

	// The peer observes the closed socket.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 1)
	_, err := conn.Read(buf)
	assert.Error(t, err)
}

func TestListenRejectsPortInUse(t *testing.T) {
	blocker, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = blocker.Close() }()

	srv := New(blocker.Addr().String(), nil, NewRegistry())
	err = srv.Listen()
	assert.Error(t, err, "bind must fail while the port is held")
}

func TestSimulatorSendsButtons(t *testing.T) {
	sim := NewSimulator("127.0.0.1:0", 50*time.Millisecond)

	// Run against a private listener: pick a free port first.
	probe, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := probe.Addr().String()
	require.NoError(t, probe.Close())

	sim.addr = addr
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = sim.Run(ctx) }()

	var conn net.Conn
	require.Eventually(t, func() bool {
		conn, err = net.Dial("tcp", addr)
		return err == nil
	}, 2*time.Second, 50*time.Millisecond)
	defer func() { _ = conn.Close() }()

	reply, err := readReply(t, conn, 2*time.Second)
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9]\n$`, reply)
}
