package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Keyer generates cache keys for the values fusiongraph caches.
type Keyer interface {
	// HierarchyKey identifies the hierarchy assembled below a root
	// component version. Versions are immutable, so a new version of a
	// design always gets a new key.
	HierarchyKey(versionID string, opts HierarchyKeyOpts) string

	// VersionKey identifies any other value derived from a component
	// version, such as its physical properties.
	VersionKey(kind, versionID string) string
}

// HierarchyKeyOpts holds the options that change the shape of an assembled
// hierarchy and must therefore be part of its key.
type HierarchyKeyOpts struct {
	Mode string `json:"mode"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HierarchyKey returns "hierarchy:<sha256>" over the version id and options.
func (DefaultKeyer) HierarchyKey(versionID string, opts HierarchyKeyOpts) string {
	return hashKey("hierarchy", versionID, opts)
}

// VersionKey returns "<kind>:<sha256>" over the version id.
func (DefaultKeyer) VersionKey(kind, versionID string) string {
	return hashKey(kind, versionID)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
