package registry

import "fmt"

// CachePolicy decides whether the display cache follows the registry call's outcome
type CachePolicy string

const (
	// CachePolicyStrict touches the cache only after the registry confirmed the write
	CachePolicyStrict CachePolicy = "strict"
	// CachePolicyOptimistic updates the cache even when the registry call failed
	CachePolicyOptimistic CachePolicy = "optimistic"
)

// ParseCachePolicy validates a CACHE_POLICY value. Empty means strict.
func ParseCachePolicy(s string) (CachePolicy, error) {
	switch CachePolicy(s) {
	case CachePolicyStrict, "":
		return CachePolicyStrict, nil
	case CachePolicyOptimistic:
		return CachePolicyOptimistic, nil
	default:
		return "", fmt.Errorf("unknown cache policy: %s (supported: %s, %s)",
			s, CachePolicyStrict, CachePolicyOptimistic)
	}
}
