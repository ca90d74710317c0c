package component

// NavItem describes one entry in the admin UI navigation, derived from a
// plugin's page-route contribution. The front end consumes the manifest
// as JSON and handles rendering on its own.
type NavItem struct {
	// Path is the full navigation path (e.g. "/admin/customers").
	Path string `json:"path"`
	// Label is the human-readable navigation label.
	Label string `json:"label"`
	// Owner is the id of the plugin contributing the page.
	Owner string `json:"owner"`
}

// Manifest is the full navigation contribution of all active plugins.
type Manifest struct {
	Items []NavItem `json:"items"`
}
