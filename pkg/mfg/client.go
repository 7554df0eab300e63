package mfg

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/matzehuels/fusiongraph/pkg/cache"
	"github.com/matzehuels/fusiongraph/pkg/errors"
	"github.com/matzehuels/fusiongraph/pkg/observability"
)

const (
	// DefaultPollInterval is the wait between status checks of server-side
	// jobs such as thumbnail or derivative generation.
	DefaultPollInterval = time.Second

	// DefaultCacheTTL is how long assembled hierarchies stay cached.
	DefaultCacheTTL = 24 * time.Hour

	downloadTimeout = 5 * time.Minute
)

// Options configures a [Client]. Zero values select the defaults.
type Options struct {
	Cache        cache.Cache   // defaults to a NullCache
	Keyer        cache.Keyer   // defaults to cache.NewDefaultKeyer()
	TTL          time.Duration // defaults to DefaultCacheTTL
	HTTPClient   *http.Client  // used for signed URL downloads
	PollInterval time.Duration // defaults to DefaultPollInterval

	// Logger receives progress messages as key/value pairs.
	Logger func(msg string, args ...any)
}

// Client is the caller-facing API for reading designs.
type Client struct {
	q        Querier
	cache    cache.Cache
	keyer    cache.Keyer
	ttl      time.Duration
	nocache  bool
	http     *http.Client
	interval time.Duration
	logger   func(string, ...any)
}

// NewClient returns a Client sending its queries through q.
func NewClient(q Querier, opts Options) *Client {
	c := &Client{
		q:        q,
		cache:    opts.Cache,
		keyer:    opts.Keyer,
		ttl:      opts.TTL,
		http:     opts.HTTPClient,
		interval: opts.PollInterval,
		logger:   opts.Logger,
	}
	if c.cache == nil {
		c.cache = cache.NewNullCache()
	}
	c.nocache = cache.Disabled(c.cache)
	if c.keyer == nil {
		c.keyer = cache.NewDefaultKeyer()
	}
	if c.ttl <= 0 {
		c.ttl = DefaultCacheTTL
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: downloadTimeout}
	}
	if c.interval <= 0 {
		c.interval = DefaultPollInterval
	}
	if c.logger == nil {
		c.logger = func(string, ...any) {}
	}
	return c
}

// HierarchyOptions controls [Client.ModelHierarchy].
type HierarchyOptions struct {
	Mode    Mode // ModeFlat when empty
	Refresh bool // bypass the cache for this call
}

// ModelHierarchy assembles the model hierarchy of the design named by key.
// The result is a [*FlatHierarchy] for ModeFlat and a [*NodeHierarchy] for
// ModeLazy.
func (c *Client) ModelHierarchy(ctx context.Context, key LookupKey, opts HierarchyOptions) (tree Tree, err error) {
	mode, err := ParseMode(string(opts.Mode))
	if err != nil {
		return nil, err
	}
	if err := key.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		nodes := 0
		if tree != nil {
			nodes = tree.Len()
		}
		observability.Hierarchy().OnComplete(ctx, string(mode), nodes, time.Since(start), err)
	}()

	cacheKey, err := c.versionKey(ctx, key, func(id ComponentVersionID) string {
		return c.keyer.HierarchyKey(id, cache.HierarchyKeyOpts{Mode: string(mode)})
	})
	if err != nil {
		return nil, err
	}

	switch mode {
	case ModeFlat:
		var h FlatHierarchy
		err := c.cached(ctx, "hierarchy", cacheKey, opts.Refresh, &h, func() error {
			c.logger("fetching occurrences", "design", key.String())
			fetched, err := FetchAllOccurrences(ctx, c.q, key)
			if err != nil {
				return err
			}
			h = *fetched
			return nil
		})
		if err != nil {
			return nil, err
		}
		c.logger("assembled hierarchy", "mode", mode, "occurrences", h.Len())
		return &h, nil

	case ModeLazy:
		var h NodeHierarchy
		err := c.cached(ctx, "hierarchy", cacheKey, opts.Refresh, &h, func() error {
			c.logger("expanding component versions", "design", key.String())
			fetched, err := LazyHierarchy(ctx, c.q, key)
			if err != nil {
				return err
			}
			h = *fetched
			return nil
		})
		if err != nil {
			return nil, err
		}
		c.logger("assembled hierarchy", "mode", mode, "nodes", h.Len())
		return &h, nil

	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown hierarchy mode %q", mode)
	}
}

// versionKey resolves the tip root component version of key and returns the
// cache key build derives from it. It returns "" without a query when the
// client has no cache.
func (c *Client) versionKey(ctx context.Context, key LookupKey, build func(ComponentVersionID) string) (string, error) {
	if c.nocache {
		return "", nil
	}
	res, err := lookup[componentRoot](ctx, c.q, key, componentLookupQuery.Request)
	if err != nil {
		return "", err
	}
	if res.Root.ID == "" {
		return "", malformed(componentLookupQuery.Name(), "tipRootComponentVersion.id")
	}
	c.logger("resolved tip version", "design", key.String(), "version", res.Root.ID)
	return build(res.Root.ID), nil
}

// cached loads v from the cache or runs fetch and stores v afterwards. An
// empty key bypasses the cache. Cache failures are logged and never fail
// the call.
func (c *Client) cached(ctx context.Context, keyType, key string, refresh bool, v any, fetch func() error) error {
	if key == "" {
		return fetch()
	}
	hooks := observability.Cache()
	if !refresh {
		err := cache.GetJSON(ctx, c.cache, key, v)
		switch {
		case err == nil:
			hooks.OnCacheHit(ctx, keyType)
			c.logger("cache hit", "type", keyType)
			return nil
		case stderrors.Is(err, cache.ErrCacheMiss):
			hooks.OnCacheMiss(ctx, keyType)
		default:
			c.logger("cache read failed", "type", keyType, "error", err)
		}
	}
	if err := fetch(); err != nil {
		return err
	}
	size, err := cache.SetJSON(ctx, c.cache, key, v, c.ttl)
	if err != nil {
		c.logger("cache write failed", "type", keyType, "error", err)
		return nil
	}
	hooks.OnCacheSet(ctx, keyType, size)
	return nil
}
