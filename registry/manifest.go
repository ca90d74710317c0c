package registry

import (
	"sort"
	"strings"

	"github.com/billforge/panel/component"
	"github.com/billforge/panel/utils"
)

// UIManifest derives the admin navigation manifest from the UI route
// table. Labels are title-cased from the page path's last segment; the
// front end may override them client-side.
func (r *Registry) UIManifest() component.Manifest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]component.NavItem, 0, len(r.tables.ui))
	for _, route := range r.tables.ui {
		items = append(items, component.NavItem{
			Path:  route.Path,
			Label: utils.TitleLabel(lastSegment(route.Path)),
			Owner: route.Owner,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Path < items[j].Path })
	return component.Manifest{Items: items}
}

func lastSegment(path string) string {
	path = strings.TrimSuffix(path, "/")
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
