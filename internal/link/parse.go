package link

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

const (
	prefixShadowsocks = "ss://"
	prefixVMess       = "vmess://"
)

// Decode turns a single proxy URI into a Proxy. Scheme matching is
// case-sensitive; anything other than ss:// and vmess:// is reported as
// ErrUnsupportedProtocol, and any failure past the prefix as ErrMalformedLink.
func Decode(raw string) (Proxy, error) {
	switch {
	case strings.HasPrefix(raw, prefixShadowsocks):
		return parseShadowsocks(raw)
	case strings.HasPrefix(raw, prefixVMess):
		return parseVMess(raw)
	default:
		return Proxy{}, unsupported(schemeOf(raw))
	}
}

// --- Shadowsocks ---
// ss://<base64(method:password@host:port)>#<urlencoded name>
func parseShadowsocks(raw string) (Proxy, error) {
	body := strings.TrimPrefix(raw, prefixShadowsocks)
	payload, fragment, hasFragment := strings.Cut(body, "#")

	decoded, err := DecodeBase64(payload)
	if err != nil {
		return Proxy{}, malformed("ss", "base64 decode failed", err)
	}

	// Passwords may contain '@', hosts may not.
	at := strings.LastIndexByte(decoded, '@')
	if at < 0 {
		return Proxy{}, malformed("ss", "missing '@' between credentials and host", nil)
	}
	credentials, hostPort := decoded[:at], decoded[at+1:]

	method, password, ok := strings.Cut(credentials, ":")
	if !ok {
		return Proxy{}, malformed("ss", "missing ':' between method and password", nil)
	}
	if method == "" {
		return Proxy{}, malformed("ss", "empty method", nil)
	}

	host, port, err := splitHostPort(hostPort)
	if err != nil {
		return Proxy{}, malformed("ss", "invalid host or port", err)
	}

	name := host
	if hasFragment && fragment != "" {
		name, err = url.PathUnescape(fragment)
		if err != nil {
			return Proxy{}, malformed("ss", "name is not valid percent-encoding", err)
		}
	}

	return Proxy{
		Name:   name,
		Server: host,
		Port:   port,
		Options: &Shadowsocks{
			Cipher:   method,
			Password: password,
		},
	}, nil
}

// --- VMess ---
// vmess://<base64(json)>
// Generators disagree on value types, so text fields accept numbers too.
// Keys outside this set (scy, type, sni...) are ignored.
type vmessJSON struct {
	Ps   looseString `json:"ps"`
	Add  string      `json:"add"`
	Port looseString `json:"port"`
	Id   *string     `json:"id"`
	Aid  looseString `json:"aid"`
	Net  looseString `json:"net"`
	Tls  interface{} `json:"tls"`
	Path looseString `json:"path"`
	Host looseString `json:"host"`
}

func parseVMess(raw string) (Proxy, error) {
	decoded, err := DecodeBase64(strings.TrimPrefix(raw, prefixVMess))
	if err != nil {
		return Proxy{}, malformed("vmess", "base64 decode failed", err)
	}

	var v vmessJSON
	if err := json.Unmarshal([]byte(decoded), &v); err != nil {
		return Proxy{}, malformed("vmess", "invalid json", err)
	}

	if v.Add == "" {
		return Proxy{}, malformed("vmess", "missing server address", nil)
	}
	port, err := parsePort(string(v.Port))
	if err != nil {
		return Proxy{}, malformed("vmess", "invalid port", err)
	}

	var alterID uint32
	if v.Aid != "" {
		aid, err := strconv.ParseUint(string(v.Aid), 10, 32)
		if err != nil {
			return Proxy{}, malformed("vmess", "invalid alterId", err)
		}
		alterID = uint32(aid)
	}

	opts := &VMess{
		UUID:    v.Id,
		AlterID: alterID,
		Cipher:  "auto",
	}

	if truthy(v.Tls) && v.Tls != "none" {
		enabled := true
		opts.TLS = &enabled
	}
	if v.Net != "" {
		network := string(v.Net)
		opts.Network = &network
	}
	if v.Net == "ws" && v.Path != "" {
		path := string(v.Path)
		opts.WSPath = &path
	}
	if v.Net == "ws" && v.Host != "" {
		opts.WSHeaders = map[string]string{"Host": string(v.Host)}
	}

	name := string(v.Ps)
	if name == "" {
		name = v.Add
	}

	return Proxy{
		Name:    name,
		Server:  v.Add,
		Port:    port,
		Options: opts,
	}, nil
}
