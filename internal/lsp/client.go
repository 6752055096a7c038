package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Conn is the transport collaborator: it carries complete JSON-RPC message
// payloads in both directions. Framing (Content-Length headers, stdio vs
// socket) lives behind this interface.
type Conn interface {
	// Send transmits one complete JSON-RPC message.
	Send(payload []byte) error
}

// NotificationHandler receives server-initiated notifications
// (e.g. textDocument/publishDiagnostics).
type NotificationHandler func(method string, params []byte)

// DefaultRequestTimeout bounds how long a Call waits for the server.
const DefaultRequestTimeout = time.Second

// Client correlates JSON-RPC requests with replies, applying a per-request
// timeout and honoring context cancellation. Replies arriving after their
// request was abandoned are dropped.
type Client struct {
	conn    Conn
	timeout time.Duration

	mu      sync.Mutex
	nextID  int64
	pending map[int64]chan result
	closed  bool

	onNotify NotificationHandler
}

type result struct {
	raw []byte
	err error
}

// NewClient wraps conn. A timeout of zero uses DefaultRequestTimeout.
func NewClient(conn Conn, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Client{
		conn:    conn,
		timeout: timeout,
		pending: make(map[int64]chan result),
	}
}

// OnNotification registers the handler for server notifications. Must be
// called before the first Receive.
func (c *Client) OnNotification(fn NotificationHandler) {
	c.onNotify = fn
}

// Call sends a request and waits for the matching reply, the per-request
// timeout, or ctx cancellation, whichever comes first. params must be a
// JSON value (nil means omitted).
func (c *Client) Call(ctx context.Context, method string, params []byte) ([]byte, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.nextID++
	id := c.nextID
	ch := make(chan result, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	payload, err := buildRequest(id, method, params)
	if err != nil {
		c.drop(id)
		return nil, err
	}
	if err := c.conn.Send(payload); err != nil {
		c.drop(id)
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res.raw, res.err
	case <-timer.C:
		c.drop(id)
		return nil, ErrTimeout
	case <-ctx.Done():
		c.drop(id)
		return nil, ctx.Err()
	}
}

// Notify sends a notification (no reply expected).
func (c *Client) Notify(method string, params []byte) error {
	payload, err := buildNotification(method, params)
	if err != nil {
		return err
	}
	if err := c.conn.Send(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return nil
}

// Receive feeds one complete incoming JSON-RPC message into the client.
// The transport collaborator calls this from its read loop.
func (c *Client) Receive(payload []byte) {
	v := gjson.ParseBytes(payload)
	if !v.IsObject() {
		return
	}

	id := v.Get("id")
	if !id.Exists() || v.Get("method").Exists() {
		// Notification, or a server-to-client request this adapter does not
		// implement.
		if c.onNotify != nil && v.Get("method").Exists() && !id.Exists() {
			c.onNotify(v.Get("method").String(), []byte(v.Get("params").Raw))
		}
		return
	}

	c.mu.Lock()
	ch, ok := c.pending[id.Int()]
	if ok {
		delete(c.pending, id.Int())
	}
	c.mu.Unlock()
	if !ok {
		// Late reply for an abandoned request.
		return
	}

	if errVal := v.Get("error"); errVal.Exists() {
		ch <- result{err: fmt.Errorf("%w: %s", ErrTransport, errVal.Get("message").String())}
		return
	}
	res := v.Get("result")
	if !res.Exists() {
		ch <- result{err: ErrDecode}
		return
	}
	ch <- result{raw: []byte(res.Raw)}
}

// Close abandons every pending request with ErrClosed.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for id, ch := range c.pending {
		ch <- result{err: ErrClosed}
		delete(c.pending, id)
	}
}

func (c *Client) drop(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func buildRequest(id int64, method string, params []byte) ([]byte, error) {
	payload := []byte(`{"jsonrpc":"2.0"}`)
	payload, err := sjson.SetBytes(payload, "id", id)
	if err == nil {
		payload, err = sjson.SetBytes(payload, "method", method)
	}
	if err == nil && params != nil {
		payload, err = sjson.SetRawBytes(payload, "params", params)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return payload, nil
}

func buildNotification(method string, params []byte) ([]byte, error) {
	payload := []byte(`{"jsonrpc":"2.0"}`)
	payload, err := sjson.SetBytes(payload, "method", method)
	if err == nil && params != nil {
		payload, err = sjson.SetRawBytes(payload, "params", params)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return payload, nil
}

// PositionParams builds the (textDocument, position) params most request
// methods take.
func PositionParams(uri DocumentURI, pos Position) []byte {
	params, _ := json.Marshal(map[string]any{
		"textDocument": map[string]any{"uri": string(uri)},
		"position":     pos,
	})
	return params
}

// RangeParams builds (textDocument, range) params, used by codeAction and
// rangeFormatting requests.
func RangeParams(uri DocumentURI, r Range) []byte {
	params, _ := json.Marshal(map[string]any{
		"textDocument": map[string]any{"uri": string(uri)},
		"range":        r,
	})
	return params
}

// CompletionParams builds completion params. triggerChar, when non-empty,
// marks the request as character-triggered.
func CompletionParams(uri DocumentURI, pos Position, triggerChar string) []byte {
	ctx := map[string]any{"triggerKind": 1}
	if triggerChar != "" {
		ctx = map[string]any{"triggerKind": 2, "triggerCharacter": triggerChar}
	}
	params, _ := json.Marshal(map[string]any{
		"textDocument": map[string]any{"uri": string(uri)},
		"position":     pos,
		"context":      ctx,
	})
	return params
}
