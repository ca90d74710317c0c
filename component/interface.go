// Package component defines the contract between plugins that contribute
// admin UI pages and the rendering layer that mounts them. The route
// registry stores factories verbatim; it never instantiates or renders.
package component

// Component is a single UI page component instance.
type Component interface {
	// Name returns the component's unique identifier, used by the
	// rendering layer to pick the matching front-end implementation.
	Name() string

	// Props returns the initial properties handed to the front end when
	// the page is mounted.
	Props() map[string]any
}

// Factory constructs a fresh Component per mount. Plugins register
// factories against extension point slots; the rendering layer calls them.
type Factory func() Component

// Page is a minimal Component implementation for plugins that only need
// to point the front end at a named page with static props.
type Page struct {
	ComponentName string
	PageProps     map[string]any
}

func (p *Page) Name() string          { return p.ComponentName }
func (p *Page) Props() map[string]any { return p.PageProps }

// NewPage creates a Factory yielding a static page component.
func NewPage(name string, props map[string]any) Factory {
	return func() Component {
		return &Page{ComponentName: name, PageProps: props}
	}
}

var _ Component = (*Page)(nil)
