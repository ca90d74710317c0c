package registry

import (
	"sort"
	"strings"

	"github.com/billforge/panel/plugin"
)

// parsePattern splits a "<METHOD> <subpath>" route pattern. The method is
// everything before the first whitespace, uppercased; the subpath is the
// remainder and must begin with "/".
func parsePattern(pattern string) (method, subpath string, reason string) {
	idx := strings.IndexAny(pattern, " \t")
	if idx < 0 {
		return "", "", "missing whitespace between method and subpath"
	}

	method = strings.ToUpper(pattern[:idx])
	subpath = strings.TrimLeft(pattern[idx:], " \t")

	if method == "" {
		return "", "", "empty method"
	}
	if subpath == "" {
		return "", "", "empty subpath"
	}
	if !strings.HasPrefix(subpath, "/") {
		return "", "", "subpath must start with /"
	}
	return method, subpath, ""
}

// buildTables derives both route tables from the plugin list. Disabled
// plugins are excluded here, not by the caller. Duplicate keys resolve
// deterministically: the last writer in enumeration order wins, where
// enumeration follows the descriptor slice order and, within one
// descriptor, sorted pattern/slot order.
func buildTables(descriptors []plugin.Descriptor) (*routeTables, []*MalformedPatternError) {
	tables := newRouteTables()
	var warnings []*MalformedPatternError

	for _, desc := range descriptors {
		if !desc.Enabled {
			continue
		}

		for _, pattern := range sortedKeys(desc.Routes) {
			method, subpath, reason := parsePattern(pattern)
			if reason != "" {
				warnings = append(warnings, &MalformedPatternError{
					Plugin:  desc.ID,
					Pattern: pattern,
					Reason:  reason,
				})
				continue
			}
			fullPath := APIPathPrefix + desc.ID + subpath
			tables.api[apiKey{method: method, path: fullPath}] = APIRoute{
				Method:  method,
				Path:    fullPath,
				Handler: desc.Routes[pattern],
				Owner:   desc.ID,
			}
		}

		for _, slot := range sortedKeys(desc.ExtensionPoints) {
			routePath, ok := strings.CutPrefix(slot, PageRouteSlotPrefix)
			if !ok {
				// Non-routing extension point; rendering subsystem territory.
				continue
			}
			fullPath := UIPathPrefix + routePath
			tables.ui[fullPath] = UIRoute{
				Path:    fullPath,
				Factory: desc.ExtensionPoints[slot],
				Owner:   desc.ID,
			}
		}
	}

	return tables, warnings
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
