// Package observability provides hooks for metrics and tracing.
//
// Library packages (graphql, mfg, cache, webhook) report events through the
// hook interfaces defined here and never import a metrics backend directly.
// The CLI registers a backend at startup; [Metrics] is the Prometheus one.
//
// # Usage
//
// Register hooks at application startup:
//
//	m := observability.NewMetrics(prometheus.NewRegistry())
//	m.Install()
//
// Libraries call hooks to emit events:
//
//	observability.GraphQL().OnRequest(ctx, "GetModelHierarchy")
//	// ... send request ...
//	observability.GraphQL().OnResponse(ctx, "GetModelHierarchy", status, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// GraphQL Hooks
// =============================================================================

// GraphQLHooks receives events from the GraphQL transport.
type GraphQLHooks interface {
	// OnRequest records an outgoing operation.
	OnRequest(ctx context.Context, operation string)

	// OnResponse records a finished operation. status is the HTTP status
	// code (0 when no response was received) and err the final error.
	OnResponse(ctx context.Context, operation string, status int, duration time.Duration, err error)
}

// =============================================================================
// Hierarchy Hooks
// =============================================================================

// HierarchyHooks receives events from model hierarchy assembly.
type HierarchyHooks interface {
	// OnPage records one page of occurrences (flat mode).
	OnPage(ctx context.Context, occurrences int)

	// OnRound records one batched expansion round (lazy mode).
	OnRound(ctx context.Context, round, ids int)

	// OnComplete records an assembled hierarchy.
	OnComplete(ctx context.Context, mode string, nodes int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Webhook Hooks
// =============================================================================

// WebhookHooks receives events from the webhook receiver.
type WebhookHooks interface {
	// OnEvent records a received event of the given type.
	OnEvent(ctx context.Context, eventType string)

	// OnRejected records a delivery that could not be decoded or stored.
	OnRejected(ctx context.Context, reason string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopGraphQLHooks is a no-op implementation of GraphQLHooks.
type NoopGraphQLHooks struct{}

func (NoopGraphQLHooks) OnRequest(context.Context, string)                             {}
func (NoopGraphQLHooks) OnResponse(context.Context, string, int, time.Duration, error) {}

// NoopHierarchyHooks is a no-op implementation of HierarchyHooks.
type NoopHierarchyHooks struct{}

func (NoopHierarchyHooks) OnPage(context.Context, int)                                   {}
func (NoopHierarchyHooks) OnRound(context.Context, int, int)                             {}
func (NoopHierarchyHooks) OnComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopWebhookHooks is a no-op implementation of WebhookHooks.
type NoopWebhookHooks struct{}

func (NoopWebhookHooks) OnEvent(context.Context, string)    {}
func (NoopWebhookHooks) OnRejected(context.Context, string) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	graphqlHooks   GraphQLHooks   = NoopGraphQLHooks{}
	hierarchyHooks HierarchyHooks = NoopHierarchyHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	webhookHooks   WebhookHooks   = NoopWebhookHooks{}
	hooksMu        sync.RWMutex
)

// SetGraphQLHooks registers custom GraphQL hooks.
// This should be called once at application startup before any requests.
func SetGraphQLHooks(h GraphQLHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		graphqlHooks = h
	}
}

// SetHierarchyHooks registers custom hierarchy hooks.
func SetHierarchyHooks(h HierarchyHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		hierarchyHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetWebhookHooks registers custom webhook hooks.
func SetWebhookHooks(h WebhookHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		webhookHooks = h
	}
}

// GraphQL returns the registered GraphQL hooks.
func GraphQL() GraphQLHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return graphqlHooks
}

// Hierarchy returns the registered hierarchy hooks.
func Hierarchy() HierarchyHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return hierarchyHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Webhook returns the registered webhook hooks.
func Webhook() WebhookHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return webhookHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	graphqlHooks = NoopGraphQLHooks{}
	hierarchyHooks = NoopHierarchyHooks{}
	cacheHooks = NoopCacheHooks{}
	webhookHooks = NoopWebhookHooks{}
}
