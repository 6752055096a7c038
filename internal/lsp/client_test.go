package lsp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tidwall/gjson"
)

// loopConn records sent payloads and lets a test inject replies.
type loopConn struct {
	mu   sync.Mutex
	sent [][]byte
	fail error
}

func (c *loopConn) Send(payload []byte) error {
	if c.fail != nil {
		return c.fail
	}
	c.mu.Lock()
	c.sent = append(c.sent, payload)
	c.mu.Unlock()
	return nil
}

func (c *loopConn) sentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func (c *loopConn) sentAt(i int) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sent[i]
}

// waitForSend polls until the client has put n messages on the wire.
func waitForSend(t *testing.T, c *loopConn, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for c.sentCount() < n && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if c.sentCount() < n {
		t.Fatal("request never sent")
	}
}

func TestCallRoundTrip(t *testing.T) {
	conn := &loopConn{}
	client := NewClient(conn, time.Second)

	done := make(chan struct{})
	var raw []byte
	var err error
	go func() {
		raw, err = client.Call(context.Background(), "textDocument/definition",
			PositionParams("file:///a.go", Position{Line: 3, Character: 7}))
		close(done)
	}()

	// Wait for the request to hit the wire, then reply to its id.
	waitForSend(t, conn, 1)
	req := gjson.ParseBytes(conn.sentAt(0))
	if req.Get("method").String() != "textDocument/definition" {
		t.Fatalf("request = %s", req.Raw)
	}
	if req.Get("params.position.line").Int() != 3 {
		t.Fatalf("params = %s", req.Get("params").Raw)
	}

	client.Receive([]byte(`{"jsonrpc":"2.0","id":` + req.Get("id").Raw + `,"result":{"uri":"file:///b.go","range":{"start":{"line":0,"character":0},"end":{"line":0,"character":1}}}}`))
	<-done

	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	locs, err := ParseLocations(raw)
	if err != nil || len(locs) != 1 || locs[0].URI != "file:///b.go" {
		t.Errorf("result = %v %v", locs, err)
	}
}

func TestCallTimeout(t *testing.T) {
	client := NewClient(&loopConn{}, 10*time.Millisecond)
	_, err := client.Call(context.Background(), "textDocument/hover", nil)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
}

func TestCallContextCancel(t *testing.T) {
	client := NewClient(&loopConn{}, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	_, err := client.Call(ctx, "textDocument/hover", nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestCallTransportError(t *testing.T) {
	client := NewClient(&loopConn{fail: errors.New("pipe broken")}, time.Second)
	_, err := client.Call(context.Background(), "textDocument/hover", nil)
	if !errors.Is(err, ErrTransport) {
		t.Errorf("err = %v, want ErrTransport", err)
	}
}

func TestServerErrorReply(t *testing.T) {
	conn := &loopConn{}
	client := NewClient(conn, time.Second)

	errCh := make(chan error, 1)
	go func() {
		_, err := client.Call(context.Background(), "workspace/symbol", nil)
		errCh <- err
	}()
	waitForSend(t, conn, 1)
	id := gjson.ParseBytes(conn.sentAt(0)).Get("id").Raw
	client.Receive([]byte(`{"jsonrpc":"2.0","id":` + id + `,"error":{"code":-32601,"message":"not supported"}}`))

	if err := <-errCh; !errors.Is(err, ErrTransport) {
		t.Errorf("err = %v, want ErrTransport", err)
	}
}

func TestLateReplyIsDropped(t *testing.T) {
	conn := &loopConn{}
	client := NewClient(conn, 5*time.Millisecond)
	_, err := client.Call(context.Background(), "textDocument/hover", nil)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v", err)
	}
	// Replying after the timeout must not panic or block.
	id := gjson.ParseBytes(conn.sentAt(0)).Get("id").Raw
	client.Receive([]byte(`{"jsonrpc":"2.0","id":` + id + `,"result":null}`))
}

func TestNotifications(t *testing.T) {
	conn := &loopConn{}
	client := NewClient(conn, time.Second)

	var gotMethod string
	var gotParams []byte
	client.OnNotification(func(method string, params []byte) {
		gotMethod = method
		gotParams = params
	})
	client.Receive([]byte(`{"jsonrpc":"2.0","method":"textDocument/publishDiagnostics","params":{"uri":"file:///a.go","diagnostics":[]}}`))
	if gotMethod != "textDocument/publishDiagnostics" {
		t.Fatalf("method = %q", gotMethod)
	}
	uri, diags, err := ParseDiagnostics(gotParams)
	if err != nil || uri != "file:///a.go" || len(diags) != 0 {
		t.Errorf("params = %q %v %v", uri, diags, err)
	}

	if err := client.Notify("initialized", []byte(`{}`)); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	last := gjson.ParseBytes(conn.sentAt(conn.sentCount() - 1))
	if last.Get("method").String() != "initialized" || last.Get("id").Exists() {
		t.Errorf("notification = %s", last.Raw)
	}
}

func TestCloseAbandonsPending(t *testing.T) {
	conn := &loopConn{}
	client := NewClient(conn, time.Minute)
	errCh := make(chan error, 1)
	go func() {
		_, err := client.Call(context.Background(), "textDocument/hover", nil)
		errCh <- err
	}()
	waitForSend(t, conn, 1)
	client.Close()
	if err := <-errCh; !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
	if _, err := client.Call(context.Background(), "x", nil); !errors.Is(err, ErrClosed) {
		t.Errorf("call after close = %v", err)
	}
}
