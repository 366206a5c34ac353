package port

import "context"

// Payload is one mobile push notification.
type Payload struct {
	Title string
	Body  string
	// Data carries correlation ids and routing hints for the client app.
	Data map[string]string
}

// Result is the per-token outcome of a multi-token send.
type Result struct {
	Token string
	Err   error
}

// Provider sends mobile push notifications. Calls are best-effort single
// attempts: a stale or invalid token is reported, never retried here.
// Implementations must bound every call with their own timeout.
type Provider interface {
	Send(ctx context.Context, token string, p Payload) error
	SendMulti(ctx context.Context, tokens []string, p Payload) ([]Result, error)
}
