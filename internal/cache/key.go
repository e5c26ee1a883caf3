package cache

import (
	"sort"
	"strings"
)

const keySeparator = "_"

var keyEscaper = strings.NewReplacer("%", "%25", keySeparator, "%5F")

// KeyFor derives the cache key of a request: the endpoint followed by one
// name_value pair per parameter, sorted by name and joined by "_".
//
// Endpoint, names and values are escaped before joining so that a "_"
// inside any of them cannot make two different requests share a key.
// Parameter insertion order never affects the result.
func KeyFor(endpoint string, params Params) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names)+1)
	parts = append(parts, keyEscaper.Replace(endpoint))
	for _, name := range names {
		parts = append(parts, keyEscaper.Replace(name)+keySeparator+keyEscaper.Replace(params[name]))
	}
	return strings.Join(parts, keySeparator)
}
