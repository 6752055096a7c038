package terminal

import (
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"
)

// testShell returns a shell for spawn tests, skipping when none exists.
func testShell(t *testing.T) string {
	t.Helper()
	for _, shell := range []string{"/bin/sh", "/bin/bash"} {
		if _, err := exec.LookPath(shell); err == nil {
			return shell
		}
	}
	t.Skip("no shell available")
	return ""
}

// waitForScreenText polls until the terminal's screen contains want.
func waitForScreenText(t *testing.T, term *Terminal, want string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(term.Screen().GetText(), want) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("screen never showed %q; got:\n%s", want, term.Screen().GetText())
}

func newTestManager(shell string) *Manager {
	return NewManager(ManagerConfig{
		DefaultShell: shell,
		DefaultCols:  80,
		DefaultRows:  24,
		Scrollback:   100,
	})
}

func TestManagerCreateTracksAndCloses(t *testing.T) {
	shell := testShell(t)
	m := newTestManager(shell)
	defer m.Shutdown(2 * time.Second)

	term, err := m.Create(Options{Name: "pane-1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if term.ID() == "" || term.Name() != "pane-1" {
		t.Errorf("identity = %q / %q", term.ID(), term.Name())
	}
	if !term.IsRunning() {
		t.Error("fresh terminal should be running")
	}
	if m.Count() != 1 {
		t.Errorf("Count = %d", m.Count())
	}
	if got, ok := m.Get(term.ID()); !ok || got != term {
		t.Error("Get did not return the created terminal")
	}

	if err := m.Close(term.ID()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Closing untracks it.
	deadline := time.Now().Add(2 * time.Second)
	for m.Count() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if m.Count() != 0 {
		t.Errorf("Count after close = %d", m.Count())
	}
	if err := m.Close(term.ID()); !errors.Is(err, ErrTerminalNotFound) {
		t.Errorf("closing unknown id = %v", err)
	}
}

func TestManagerAppliesDefaults(t *testing.T) {
	shell := testShell(t)
	m := newTestManager(shell)
	defer m.Shutdown(2 * time.Second)

	term, err := m.Create(Options{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer term.Close()

	if term.Screen().Width() != 80 || term.Screen().Height() != 24 {
		t.Errorf("default size = %dx%d", term.Screen().Width(), term.Screen().Height())
	}
}

func TestManagerCreateUnknownShell(t *testing.T) {
	m := newTestManager("/no/such/shell-binary")
	defer m.Shutdown(time.Second)

	if _, err := m.Create(Options{}); !errors.Is(err, ErrShellNotFound) {
		t.Errorf("err = %v, want ErrShellNotFound", err)
	}
}

func TestManagerShutdownRefusesNewTerminals(t *testing.T) {
	m := newTestManager("/bin/sh")
	m.Shutdown(time.Second)
	if _, err := m.Create(Options{}); !errors.Is(err, ErrManagerClosed) {
		t.Errorf("err = %v, want ErrManagerClosed", err)
	}
}

func TestTerminalEchoReachesScreen(t *testing.T) {
	shell := testShell(t)
	m := newTestManager(shell)
	defer m.Shutdown(2 * time.Second)

	term, err := m.Create(Options{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer term.Close()

	// Compute the marker in the shell so the echoed command line itself
	// cannot satisfy the wait.
	if _, err := term.WriteString("echo m$((40000+1234))\n"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	waitForScreenText(t, term, "m41234")
}

func TestTerminalResizeValidation(t *testing.T) {
	shell := testShell(t)
	m := newTestManager(shell)
	defer m.Shutdown(2 * time.Second)

	term, err := m.Create(Options{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer term.Close()

	if err := term.Resize(0, 10); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Resize(0,10) = %v", err)
	}
	if err := term.Resize(10, -1); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Resize(10,-1) = %v", err)
	}
	if err := term.Resize(100, 40); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if term.Screen().Width() != 100 || term.Screen().Height() != 40 {
		t.Errorf("screen size = %dx%d", term.Screen().Width(), term.Screen().Height())
	}
}

func TestTerminalCloseIsIdempotentAndStopsWrites(t *testing.T) {
	shell := testShell(t)
	m := newTestManager(shell)
	defer m.Shutdown(2 * time.Second)

	term, err := m.Create(Options{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := term.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := term.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
	if _, err := term.Write([]byte("x")); !errors.Is(err, ErrTerminalClosed) {
		t.Errorf("write after close = %v", err)
	}
	if err := term.Resize(10, 10); !errors.Is(err, ErrTerminalClosed) {
		t.Errorf("resize after close = %v", err)
	}

	select {
	case <-term.Done():
	case <-time.After(2 * time.Second):
		t.Error("Done channel never closed")
	}
}

func TestTerminalExitClosesDone(t *testing.T) {
	shell := testShell(t)
	m := newTestManager(shell)
	defer m.Shutdown(2 * time.Second)

	term, err := m.Create(Options{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := term.WriteString("exit 7\n"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	select {
	case <-term.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("terminal never exited")
	}
	if code := term.ExitCode(); code != 7 {
		t.Errorf("ExitCode = %d", code)
	}
}

func TestTerminalScrollbackSharedWithScreen(t *testing.T) {
	shell := testShell(t)
	m := newTestManager(shell)
	defer m.Shutdown(2 * time.Second)

	term, err := m.Create(Options{Rows: 5, Cols: 40})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer term.Close()

	if _, err := term.WriteString("for i in 1 2 3 4 5 6 7 8 9 10; do echo row$i; done\n"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	waitForScreenText(t, term, "row10")

	deadline := time.Now().Add(2 * time.Second)
	for term.Screen().HistoryLen() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if term.Screen().HistoryLen() == 0 {
		t.Fatal("scrolled rows never reached the scrollback")
	}
	// Terminal.History and Screen.Scrollback are the same store.
	if term.History() != term.Screen().Scrollback() {
		t.Error("terminal and screen disagree about the scrollback store")
	}
}
