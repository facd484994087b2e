package clash

import "fmt"

const (
	rulesBaseURL     = "https://cdn.jsdelivr.net/gh/Loyalsoldier/clash-rules@release/"
	providerInterval = 86400
)

// RuleProvider describes a remote rule-set the client downloads on its own.
type RuleProvider struct {
	Type     string `yaml:"type"`
	Behavior string `yaml:"behavior"`
	URL      string `yaml:"url"`
	Path     string `yaml:"path"`
	Interval int    `yaml:"interval"`
}

// NamedProvider keeps a provider next to its key so the table serializes in
// declaration order.
type NamedProvider struct {
	Name     string
	Provider RuleProvider
}

var providerBehaviors = []struct {
	name     string
	behavior string
}{
	{"reject", "domain"},
	{"icloud", "domain"},
	{"apple", "domain"},
	{"google", "domain"},
	{"proxy", "domain"},
	{"direct", "domain"},
	{"private", "domain"},
	{"gfw", "domain"},
	{"tld-not-cn", "domain"},
	{"telegramcidr", "ipcidr"},
	{"cncidr", "ipcidr"},
	{"lancidr", "ipcidr"},
	{"applications", "classical"},
}

// Providers returns the full rule-provider table. It is the same for every
// mode; rules that a mode does not reference are still declared.
func Providers() []NamedProvider {
	out := make([]NamedProvider, 0, len(providerBehaviors))
	for _, p := range providerBehaviors {
		out = append(out, NamedProvider{
			Name: p.name,
			Provider: RuleProvider{
				Type:     "http",
				Behavior: p.behavior,
				URL:      fmt.Sprintf("%s%s.txt", rulesBaseURL, p.name),
				Path:     fmt.Sprintf("./ruleset/%s.yaml", p.name),
				Interval: providerInterval,
			},
		})
	}
	return out
}
