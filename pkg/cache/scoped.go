package cache

// ScopedKeyer wraps a Keyer with a prefix for tenant isolation.
// Hierarchies visible to one OAuth client are not necessarily visible to
// another, so the CLI scopes keys by client id when the cache is shared
// (Redis).
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "client:"+clientID+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HierarchyKey generates a prefixed hierarchy key.
func (k *ScopedKeyer) HierarchyKey(versionID string, opts HierarchyKeyOpts) string {
	return k.prefix + k.inner.HierarchyKey(versionID, opts)
}

// VersionKey generates a prefixed version key.
func (k *ScopedKeyer) VersionKey(kind, versionID string) string {
	return k.prefix + k.inner.VersionKey(kind, versionID)
}
