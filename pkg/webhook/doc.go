// Package webhook receives event callbacks for subscribed components.
//
// A [Receiver] serves a small chi router:
//
//	POST /         accept an event
//	GET  /events   recent events, newest first
//	GET  /healthz  liveness
//	GET  /metrics  Prometheus exposition, when configured
//
// Accepted events are written to a [Store] and forwarded on
// [Receiver.Events] for display. Forwarding never blocks the request; a
// slow reader misses events but they remain in the store.
//
// When a secret is configured, requests must carry an
// x-adsk-signature header of the form "sha1hash=<hex HMAC-SHA1 of body>".
package webhook
