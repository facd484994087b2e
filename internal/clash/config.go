package clash

import (
	"subclash/internal/link"

	"gopkg.in/yaml.v3"
)

// Static base settings written at the top of every document.
const (
	DefaultMixedPort          = 7890
	DefaultExternalController = "127.0.0.1:9090"
	DefaultRunMode            = "rule"
	DefaultLogLevel           = "warning"

	// GroupName is the selector every rule with a PROXY target resolves to.
	GroupName = "PROXY"
)

type ProxyGroup struct {
	Name    string   `yaml:"name"`
	Type    string   `yaml:"type"`
	Proxies []string `yaml:"proxies"`
}

// Config is a complete Clash document. It serializes with a fixed top-level
// key order through MarshalYAML.
type Config struct {
	MixedPort          int
	ExternalController string
	AllowLAN           bool
	Mode               string
	LogLevel           string

	Proxies       []link.Proxy
	ProxyGroups   []ProxyGroup
	RuleProviders []NamedProvider
	Rules         []string
}

func (c *Config) MarshalYAML() (interface{}, error) {
	m := &yaml.Node{Kind: yaml.MappingNode}

	providers := &yaml.Node{Kind: yaml.MappingNode}
	for _, p := range c.RuleProviders {
		if err := appendField(providers, p.Name, p.Provider); err != nil {
			return nil, err
		}
	}

	fields := []struct {
		key   string
		value interface{}
	}{
		{"mixed-port", c.MixedPort},
		{"external-controller", c.ExternalController},
		{"allow-lan", c.AllowLAN},
		{"mode", c.Mode},
		{"log-level", c.LogLevel},
		{"proxies", nonNilProxies(c.Proxies)},
		{"proxy-groups", nonNilGroups(c.ProxyGroups)},
		{"rule-providers", providers},
		{"rules", nonNilStrings(c.Rules)},
	}
	for _, f := range fields {
		if err := appendField(m, f.key, f.value); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ProxyNames lists the names of the document's proxies in order.
func (c *Config) ProxyNames() []string {
	names := make([]string, 0, len(c.Proxies))
	for _, p := range c.Proxies {
		names = append(names, p.Name)
	}
	return names
}

func appendField(m *yaml.Node, key string, value interface{}) error {
	k := &yaml.Node{}
	k.SetString(key)

	if n, ok := value.(*yaml.Node); ok {
		m.Content = append(m.Content, k, n)
		return nil
	}
	v := &yaml.Node{}
	if err := v.Encode(value); err != nil {
		return err
	}
	m.Content = append(m.Content, k, v)
	return nil
}

func nonNilProxies(p []link.Proxy) []link.Proxy {
	if p == nil {
		return []link.Proxy{}
	}
	return p
}

func nonNilGroups(g []ProxyGroup) []ProxyGroup {
	if g == nil {
		return []ProxyGroup{}
	}
	return g
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
