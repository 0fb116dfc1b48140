package imageapi

// Provider formats
const (
	FormatJSON = "json"
	FormatHTML = "html"
)

// Provider describes one external image API
type Provider struct {
	Name      string
	BaseURL   string
	Endpoints map[string]string

	// Format is FormatJSON or FormatHTML.
	Format string
	// URLField is a dotted path into a JSON body, e.g. "url" or "results.0.url".
	URLField string
	// Selector and Attr locate the image element in an HTML body.
	Selector string
	Attr     string
}

// RequestURL returns base URL + endpoint path for a reaction type, or false
// when the provider has no base URL or does not serve the type.
func (p Provider) RequestURL(reactionType string) (string, bool) {
	if p.BaseURL == "" {
		return "", false
	}
	path, ok := p.Endpoints[reactionType]
	if !ok || path == "" {
		return "", false
	}
	return p.BaseURL + path, true
}
