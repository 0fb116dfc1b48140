package config

import (
	"fmt"

	"github.com/latoulicious/Nekobot/pkg/imageapi"
	"github.com/latoulicious/Nekobot/pkg/trigger"
	"gopkg.in/yaml.v3"
)

// Reaction maps a reaction type to its primary trigger and aliases
type Reaction struct {
	Type     string      `yaml:"-"`
	Triggers TriggerSpec `yaml:"triggers"`
	Aliases  []string    `yaml:"aliases"`
	// Hidden reactions still fire but are left out of trigger listings.
	Hidden bool `yaml:"hidden"`
}

// Words returns the primary trigger followed by the aliases, unnormalized
func (r Reaction) Words() []string {
	words := make([]string, 0, len(r.Aliases)+1)
	if r.Triggers.Text != "" {
		words = append(words, r.Triggers.Text)
	}
	return append(words, r.Aliases...)
}

// TriggerSpec holds the primary trigger phrase. It accepts either
// `triggers: {text: pat}` or the shorthand `triggers: pat`.
type TriggerSpec struct {
	Text string `yaml:"text"`
}

func (t *TriggerSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		t.Text = value.Value
		return nil
	}
	type plain TriggerSpec
	return value.Decode((*plain)(t))
}

// Reactions is the reactions section, kept in document order so ambiguous
// trigger words resolve to the first reaction that declares them.
type Reactions []Reaction

func (r *Reactions) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: reactions must be a mapping", value.Line)
	}

	out := make(Reactions, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var reaction Reaction
		if err := value.Content[i+1].Decode(&reaction); err != nil {
			return fmt.Errorf("reaction %q: %w", value.Content[i].Value, err)
		}
		reaction.Type = value.Content[i].Value
		out = append(out, reaction)
	}
	*r = out
	return nil
}

// Types returns the reaction type identifiers in configuration order
func (r Reactions) Types() []string {
	types := make([]string, 0, len(r))
	for _, reaction := range r {
		types = append(types, reaction.Type)
	}
	return types
}

// Definitions converts the reactions into trigger index definitions
func (r Reactions) Definitions() []trigger.Definition {
	defs := make([]trigger.Definition, 0, len(r))
	for _, reaction := range r {
		defs = append(defs, trigger.Definition{
			ReactionType: reaction.Type,
			Words:        reaction.Words(),
			Hidden:       reaction.Hidden,
		})
	}
	return defs
}

// Provider formats
const (
	FormatJSON = imageapi.FormatJSON
	FormatHTML = imageapi.FormatHTML
)

// Provider configures one external image API
type Provider struct {
	Name      string            `yaml:"-"`
	BaseURL   string            `yaml:"base_url"`
	Endpoints map[string]string `yaml:"endpoints"`

	// Format is json (default) or html.
	Format string `yaml:"format"`
	// URLField is a dotted path into the JSON body, e.g. "results.0.url".
	URLField string `yaml:"url_field"`
	// Selector and Attr locate the image in an HTML body.
	Selector string `yaml:"selector"`
	Attr     string `yaml:"attr"`
}

// Endpoint returns the path for a reaction type and whether the provider serves it
func (p Provider) Endpoint(reactionType string) (string, bool) {
	path, ok := p.Endpoints[reactionType]
	return path, ok && path != ""
}

// Providers is the apis section, kept in document order
type Providers []Provider

func (p *Providers) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: apis must be a mapping", value.Line)
	}

	out := make(Providers, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var provider Provider
		if err := value.Content[i+1].Decode(&provider); err != nil {
			return fmt.Errorf("api %q: %w", value.Content[i].Value, err)
		}
		provider.Name = value.Content[i].Value
		if provider.Format == "" {
			provider.Format = FormatJSON
		}
		if provider.URLField == "" && provider.Format == FormatJSON {
			provider.URLField = "url"
		}
		out = append(out, provider)
	}
	*p = out
	return nil
}

// ImageProviders converts the apis section for the image resolver
func (p Providers) ImageProviders() []imageapi.Provider {
	out := make([]imageapi.Provider, 0, len(p))
	for _, provider := range p {
		out = append(out, imageapi.Provider{
			Name:      provider.Name,
			BaseURL:   provider.BaseURL,
			Endpoints: provider.Endpoints,
			Format:    provider.Format,
			URLField:  provider.URLField,
			Selector:  provider.Selector,
			Attr:      provider.Attr,
		})
	}
	return out
}
