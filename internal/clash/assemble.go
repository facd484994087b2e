package clash

import (
	"bytes"
	"io"

	"subclash/internal/link"

	"gopkg.in/yaml.v3"
)

// Assemble builds the document for proxies under mode. The single PROXY
// selector lists every proxy name in input order. Callers are responsible for
// rejecting an empty proxy list.
func Assemble(proxies []link.Proxy, mode Mode) *Config {
	cfg := &Config{
		MixedPort:          DefaultMixedPort,
		ExternalController: DefaultExternalController,
		AllowLAN:           false,
		Mode:               DefaultRunMode,
		LogLevel:           DefaultLogLevel,
		Proxies:            append([]link.Proxy(nil), proxies...),
		RuleProviders:      Providers(),
		Rules:              RulesFor(mode),
	}
	cfg.ProxyGroups = []ProxyGroup{{
		Name:    GroupName,
		Type:    "select",
		Proxies: cfg.ProxyNames(),
	}}
	return cfg
}

// Encode writes cfg as YAML with two-space indentation.
func Encode(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

// Marshal is Encode into a byte slice.
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
