package cache

import (
	"fmt"
	"sort"
	"strings"
)

// KeyPrefix namespaces every key this package writes.
const KeyPrefix = "artsel"

// CacheKey identifies one page of a paginated resource.
type CacheKey struct {
	// Resource is the collection name (e.g., "artworks")
	Resource string

	// Page is the 1-based page number
	Page int

	// Limit is the page size requested
	Limit int

	// Fields restricts the attributes returned; order does not matter
	Fields []string
}

// String generates a deterministic cache key string.
// Format: artsel:resource:page=N:limit=L:fields=a,b,c
//
// Example:
//
//	artsel:artworks:page=2:limit=12:fields=id,title
func (k CacheKey) String() string {
	parts := []string{KeyPrefix}

	if resource := strings.Trim(k.Resource, "/"); resource != "" {
		parts = append(parts, resource)
	}

	parts = append(parts, fmt.Sprintf("page=%d", k.Page))

	if k.Limit > 0 {
		parts = append(parts, fmt.Sprintf("limit=%d", k.Limit))
	}

	if len(k.Fields) > 0 {
		fields := append([]string(nil), k.Fields...)
		sort.Strings(fields)
		parts = append(parts, "fields="+strings.Join(fields, ","))
	}

	return strings.Join(parts, ":")
}
