package link

// Normalize returns a deep copy of p with placeholder attributes removed:
// empty optional strings, a false tls flag and empty header maps become
// absent, and an empty name falls back to the server. Normalize(Normalize(p))
// equals Normalize(p).
func Normalize(p Proxy) Proxy {
	out := Proxy{
		Name:   p.Name,
		Server: p.Server,
		Port:   p.Port,
	}
	if out.Name == "" {
		out.Name = out.Server
	}

	switch o := p.Options.(type) {
	case *Shadowsocks:
		if o != nil {
			cp := *o
			out.Options = &cp
		}
	case *VMess:
		if o != nil {
			out.Options = normalizeVMess(o)
		}
	}
	return out
}

func normalizeVMess(v *VMess) *VMess {
	out := &VMess{
		UUID:    nonEmpty(v.UUID),
		AlterID: v.AlterID,
		Cipher:  v.Cipher,
		Network: nonEmpty(v.Network),
		WSPath:  nonEmpty(v.WSPath),
	}
	if out.Cipher == "" {
		out.Cipher = "auto"
	}
	if v.TLS != nil && *v.TLS {
		enabled := true
		out.TLS = &enabled
	}
	if len(v.WSHeaders) > 0 {
		out.WSHeaders = make(map[string]string, len(v.WSHeaders))
		for k, val := range v.WSHeaders {
			out.WSHeaders[k] = val
		}
	}
	return out
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	cp := *s
	return &cp
}
