package link

import (
	"gopkg.in/yaml.v3"
)

// Type is the Clash proxy type a link decodes into.
type Type string

const (
	TypeShadowsocks Type = "ss"
	TypeVMess       Type = "vmess"
)

// Proxy is the normalized representation of one subscription entry.
// The protocol specific attributes live in Options, which is either
// *Shadowsocks or *VMess.
type Proxy struct {
	Name   string
	Server string
	Port   uint16

	Options Options
}

// Options is the protocol variant of a Proxy. Only this package implements it.
type Options interface {
	Type() Type
	appendYAML(m *yaml.Node) error
}

// Shadowsocks carries the attributes of an ss:// link. Both fields are
// always present on a decoded record.
type Shadowsocks struct {
	Cipher   string
	Password string
}

func (*Shadowsocks) Type() Type { return TypeShadowsocks }

// VMess carries the attributes of a vmess:// link. Nil pointers and a nil
// header map mean the link did not supply the attribute; they produce no key.
type VMess struct {
	UUID    *string
	AlterID uint32
	Cipher  string

	TLS       *bool
	Network   *string
	WSPath    *string
	WSHeaders map[string]string
}

func (*VMess) Type() Type { return TypeVMess }

// Type returns the protocol type of the record, or "" when Options is unset.
func (p Proxy) Type() Type {
	if p.Options == nil {
		return ""
	}
	return p.Options.Type()
}

// MarshalYAML flattens the record into a sparse Clash proxy mapping. Key order:
// name, type, server, port, then the protocol fields.
func (p Proxy) MarshalYAML() (interface{}, error) {
	m := &yaml.Node{Kind: yaml.MappingNode}
	if err := appendField(m, "name", p.Name); err != nil {
		return nil, err
	}
	if err := appendField(m, "type", string(p.Type())); err != nil {
		return nil, err
	}
	if err := appendField(m, "server", p.Server); err != nil {
		return nil, err
	}
	if err := appendField(m, "port", int(p.Port)); err != nil {
		return nil, err
	}
	if p.Options != nil {
		if err := p.Options.appendYAML(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (s *Shadowsocks) appendYAML(m *yaml.Node) error {
	if err := appendField(m, "cipher", s.Cipher); err != nil {
		return err
	}
	return appendField(m, "password", s.Password)
}

func (v *VMess) appendYAML(m *yaml.Node) error {
	if v.UUID != nil {
		if err := appendField(m, "uuid", *v.UUID); err != nil {
			return err
		}
	}
	if err := appendField(m, "alterId", v.AlterID); err != nil {
		return err
	}
	if err := appendField(m, "cipher", v.Cipher); err != nil {
		return err
	}
	if v.TLS != nil {
		if err := appendField(m, "tls", *v.TLS); err != nil {
			return err
		}
	}
	if v.Network != nil {
		if err := appendField(m, "network", *v.Network); err != nil {
			return err
		}
	}
	if v.WSPath != nil {
		if err := appendField(m, "ws-path", *v.WSPath); err != nil {
			return err
		}
	}
	if v.WSHeaders != nil {
		if err := appendField(m, "ws-headers", v.WSHeaders); err != nil {
			return err
		}
	}
	return nil
}

func appendField(m *yaml.Node, key string, value interface{}) error {
	k := &yaml.Node{}
	k.SetString(key)
	v := &yaml.Node{}
	if err := v.Encode(value); err != nil {
		return err
	}
	m.Content = append(m.Content, k, v)
	return nil
}
