package lsp

import "errors"

// Sentinel errors surfaced to the command layer. None of them mutate
// editor state; callers log and show partial results where they can.
var (
	// ErrTimeout means the server did not answer within the request budget.
	ErrTimeout = errors.New("lsp: request timed out")

	// ErrTransport means the connection failed while sending or receiving,
	// or the server answered a request with a JSON-RPC error object.
	ErrTransport = errors.New("lsp: transport failure")

	// ErrDecode means the reply was not valid JSON-RPC.
	ErrDecode = errors.New("lsp: malformed reply")

	// ErrInvalidShape means the reply parsed but did not match any shape
	// this adapter understands for the method.
	ErrInvalidShape = errors.New("lsp: unexpected response shape")

	// ErrClosed means the client was shut down.
	ErrClosed = errors.New("lsp: client closed")
)
