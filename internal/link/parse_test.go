package link

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
)

func ssLink(plain, fragment string) string {
	s := "ss://" + base64.StdEncoding.EncodeToString([]byte(plain))
	if fragment != "" {
		s += "#" + fragment
	}
	return s
}

func vmessLink(t *testing.T, fields map[string]interface{}) string {
	t.Helper()
	b, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return "vmess://" + base64.StdEncoding.EncodeToString(b)
}

func TestDecode_Shadowsocks(t *testing.T) {
	p, err := Decode(ssLink("aes-256-gcm:password123@example.com:8388", "TestServer"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Type() != TypeShadowsocks {
		t.Fatalf("type=%q, want=%q", p.Type(), TypeShadowsocks)
	}
	if p.Name != "TestServer" || p.Server != "example.com" || p.Port != 8388 {
		t.Fatalf("name/server/port=%q/%q/%d", p.Name, p.Server, p.Port)
	}
	ss, ok := p.Options.(*Shadowsocks)
	if !ok {
		t.Fatalf("options=%T, want *Shadowsocks", p.Options)
	}
	if ss.Cipher != "aes-256-gcm" || ss.Password != "password123" {
		t.Fatalf("cipher/password=%q/%q", ss.Cipher, ss.Password)
	}
}

func TestDecode_ShadowsocksName(t *testing.T) {
	cases := []struct {
		name     string
		link     string
		wantName string
	}{
		{"fragment", ssLink("m:p@h1:1111", "A"), "A"},
		{"url encoded", ssLink("m:p@h1:1111", "Node%201"), "Node 1"},
		{"utf8 encoded", ssLink("m:p@h1:1111", "%F0%9F%87%AF%F0%9F%87%B5%20JP"), "🇯🇵 JP"},
		{"no fragment", ssLink("m:p@h1:1111", ""), "h1"},
		{"empty fragment", ssLink("m:p@h1:1111", "") + "#", "h1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Decode(tc.link)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Name != tc.wantName {
				t.Fatalf("name=%q, want=%q", p.Name, tc.wantName)
			}
		})
	}
}

func TestDecode_ShadowsocksSeparators(t *testing.T) {
	p, err := Decode(ssLink("chacha20-ietf-poly1305:p@ss:word@10.0.0.1:443", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ss := p.Options.(*Shadowsocks)
	if ss.Cipher != "chacha20-ietf-poly1305" || ss.Password != "p@ss:word" {
		t.Fatalf("cipher/password=%q/%q", ss.Cipher, ss.Password)
	}
	if p.Server != "10.0.0.1" || p.Port != 443 {
		t.Fatalf("server/port=%q/%d", p.Server, p.Port)
	}

	p, err = Decode(ssLink("aes-128-gcm:pass@[2001:db8::1]:8388", "v6"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Server != "2001:db8::1" || p.Port != 8388 {
		t.Fatalf("server/port=%q/%d", p.Server, p.Port)
	}
}

func TestDecode_ShadowsocksUnpaddedBase64(t *testing.T) {
	payload := base64.RawStdEncoding.EncodeToString([]byte("aes-128-gcm:pass@ex.com:443"))
	p, err := Decode("ss://" + payload + "#old")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Server != "ex.com" || p.Port != 443 {
		t.Fatalf("server/port=%q/%d", p.Server, p.Port)
	}
}

func TestDecode_ShadowsocksMalformed(t *testing.T) {
	cases := []struct {
		name string
		link string
	}{
		{"bad base64", "ss://!!!notbase64!!!#x"},
		{"url-safe alphabet", "ss://" + base64.URLEncoding.EncodeToString([]byte("m:p??>@h:1")) + "#x"},
		{"missing at", ssLink("aes-256-gcm:passwordexample.com:8388", "")},
		{"missing colon in credentials", ssLink("aes-256-gcm@example.com:8388", "")},
		{"empty method", ssLink(":pass@example.com:8388", "")},
		{"missing port", ssLink("m:p@example.com", "")},
		{"non numeric port", ssLink("m:p@example.com:http", "")},
		{"port zero", ssLink("m:p@example.com:0", "")},
		{"port too large", ssLink("m:p@example.com:70000", "")},
		{"empty host", ssLink("m:p@:8388", "")},
		{"bad escape in name", ssLink("m:p@example.com:8388", "%zz")},
		{"empty payload", "ss://"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.link)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !errors.Is(err, ErrMalformedLink) {
				t.Fatalf("err=%v, want ErrMalformedLink", err)
			}
			if errors.Is(err, ErrUnsupportedProtocol) {
				t.Fatalf("err=%v, must not match ErrUnsupportedProtocol", err)
			}
		})
	}
}

func TestDecode_VMess(t *testing.T) {
	link := vmessLink(t, map[string]interface{}{
		"ps":   "TestVMess",
		"add":  "vmess.example.com",
		"port": "443",
		"id":   "12345678-1234-1234-1234-123456789abc",
		"aid":  "0",
		"net":  "ws",
		"path": "/path",
		"host": "cdn.example.com",
		"tls":  "tls",
	})
	p, err := Decode(link)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Type() != TypeVMess {
		t.Fatalf("type=%q, want=%q", p.Type(), TypeVMess)
	}
	if p.Name != "TestVMess" || p.Server != "vmess.example.com" || p.Port != 443 {
		t.Fatalf("name/server/port=%q/%q/%d", p.Name, p.Server, p.Port)
	}
	v := p.Options.(*VMess)
	if v.UUID == nil || *v.UUID != "12345678-1234-1234-1234-123456789abc" {
		t.Fatalf("uuid=%v", v.UUID)
	}
	if v.AlterID != 0 || v.Cipher != "auto" {
		t.Fatalf("alterId/cipher=%d/%q", v.AlterID, v.Cipher)
	}
	if v.TLS == nil || !*v.TLS {
		t.Fatalf("tls=%v, want true", v.TLS)
	}
	if v.Network == nil || *v.Network != "ws" {
		t.Fatalf("network=%v, want ws", v.Network)
	}
	if v.WSPath == nil || *v.WSPath != "/path" {
		t.Fatalf("ws-path=%v, want /path", v.WSPath)
	}
	if v.WSHeaders["Host"] != "cdn.example.com" || len(v.WSHeaders) != 1 {
		t.Fatalf("ws-headers=%v", v.WSHeaders)
	}
}

func TestDecode_VMessOptionalFields(t *testing.T) {
	cases := []struct {
		name        string
		fields      map[string]interface{}
		wantName    string
		wantAlterID uint32
		wantCipher  string
		wantTLS     bool
		wantNetwork string
		wantWSPath  bool
		wantHeaders bool
	}{
		{
			name:        "numeric port and aid",
			fields:      map[string]interface{}{"add": "a.example", "port": 8443, "id": "u", "aid": 64},
			wantName:    "a.example",
			wantAlterID: 64,
			wantCipher:  "auto",
		},
		{
			name:       "aid absent",
			fields:     map[string]interface{}{"ps": "n", "add": "a.example", "port": "1"},
			wantName:   "n",
			wantCipher: "auto",
		},
		{
			name:       "tls none",
			fields:     map[string]interface{}{"add": "a.example", "port": "1", "tls": "none"},
			wantName:   "a.example",
			wantCipher: "auto",
		},
		{
			name:       "tls empty",
			fields:     map[string]interface{}{"add": "a.example", "port": "1", "tls": ""},
			wantName:   "a.example",
			wantCipher: "auto",
		},
		{
			name:       "tls bool",
			fields:     map[string]interface{}{"add": "a.example", "port": "1", "tls": true},
			wantName:   "a.example",
			wantCipher: "auto",
			wantTLS:    true,
		},
		{
			name:        "tcp ignores path and host",
			fields:      map[string]interface{}{"add": "a.example", "port": "1", "net": "tcp", "path": "/x", "host": "h"},
			wantName:    "a.example",
			wantCipher:  "auto",
			wantNetwork: "tcp",
		},
		{
			name:        "ws without path or host",
			fields:      map[string]interface{}{"add": "a.example", "port": "1", "net": "ws"},
			wantName:    "a.example",
			wantCipher:  "auto",
			wantNetwork: "ws",
		},
		{
			name:        "ws path only",
			fields:      map[string]interface{}{"add": "a.example", "port": "1", "net": "ws", "path": "/ray"},
			wantName:    "a.example",
			wantCipher:  "auto",
			wantNetwork: "ws",
			wantWSPath:  true,
		},
		{
			name:        "ws host only",
			fields:      map[string]interface{}{"add": "a.example", "port": "1", "net": "ws", "host": "h"},
			wantName:    "a.example",
			wantCipher:  "auto",
			wantNetwork: "ws",
			wantHeaders: true,
		},
		{
			name:       "scy ignored",
			fields:     map[string]interface{}{"add": "a.example", "port": "1", "id": "u", "scy": "aes-128-gcm"},
			wantName:   "a.example",
			wantCipher: "auto",
		},
		{
			name:       "numeric ps",
			fields:     map[string]interface{}{"ps": 123, "add": "a.example", "port": "1"},
			wantName:   "123",
			wantCipher: "auto",
		},
		{
			name:        "numeric path and host",
			fields:      map[string]interface{}{"add": "a.example", "port": "1", "net": "ws", "path": 8, "host": 9},
			wantName:    "a.example",
			wantCipher:  "auto",
			wantNetwork: "ws",
			wantWSPath:  true,
			wantHeaders: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Decode(vmessLink(t, tc.fields))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			v := p.Options.(*VMess)
			if p.Name != tc.wantName {
				t.Fatalf("name=%q, want=%q", p.Name, tc.wantName)
			}
			if v.AlterID != tc.wantAlterID {
				t.Fatalf("alterId=%d, want=%d", v.AlterID, tc.wantAlterID)
			}
			if v.Cipher != tc.wantCipher {
				t.Fatalf("cipher=%q, want=%q", v.Cipher, tc.wantCipher)
			}
			if (v.TLS != nil) != tc.wantTLS {
				t.Fatalf("tls=%v, want present=%v", v.TLS, tc.wantTLS)
			}
			if tc.wantNetwork == "" && v.Network != nil {
				t.Fatalf("network=%q, want absent", *v.Network)
			}
			if tc.wantNetwork != "" && (v.Network == nil || *v.Network != tc.wantNetwork) {
				t.Fatalf("network=%v, want=%q", v.Network, tc.wantNetwork)
			}
			if (v.WSPath != nil) != tc.wantWSPath {
				t.Fatalf("ws-path=%v, want present=%v", v.WSPath, tc.wantWSPath)
			}
			if (v.WSHeaders != nil) != tc.wantHeaders {
				t.Fatalf("ws-headers=%v, want present=%v", v.WSHeaders, tc.wantHeaders)
			}
		})
	}
}

func TestDecode_VMessMalformed(t *testing.T) {
	cases := []struct {
		name string
		link string
	}{
		{"bad base64", "vmess://%%%"},
		{"not json", "vmess://" + base64.StdEncoding.EncodeToString([]byte("not json"))},
		{"json array", "vmess://" + base64.StdEncoding.EncodeToString([]byte(`["a"]`))},
		{"missing add", vmessLink(t, map[string]interface{}{"port": "443"})},
		{"missing port", vmessLink(t, map[string]interface{}{"add": "a.example"})},
		{"non numeric port", vmessLink(t, map[string]interface{}{"add": "a.example", "port": "https"})},
		{"port out of range", vmessLink(t, map[string]interface{}{"add": "a.example", "port": 65536})},
		{"non numeric aid", vmessLink(t, map[string]interface{}{"add": "a.example", "port": "1", "aid": "x"})},
		{"port is object", vmessLink(t, map[string]interface{}{"add": "a.example", "port": map[string]int{"a": 1}})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.link)
			if !errors.Is(err, ErrMalformedLink) {
				t.Fatalf("err=%v, want ErrMalformedLink", err)
			}
		})
	}
}

func TestDecode_Unsupported(t *testing.T) {
	for _, link := range []string{
		"http://invalid.link",
		"trojan://pass@host:443",
		"SS://" + base64.StdEncoding.EncodeToString([]byte("m:p@h:1")),
		"not a link at all",
	} {
		_, err := Decode(link)
		if !errors.Is(err, ErrUnsupportedProtocol) {
			t.Fatalf("Decode(%q) err=%v, want ErrUnsupportedProtocol", link, err)
		}
		var de *DecodeError
		if !errors.As(err, &de) || de.Kind != KindUnsupportedProtocol {
			t.Fatalf("Decode(%q) err=%#v, want *DecodeError with KindUnsupportedProtocol", link, err)
		}
	}
}

func TestDecodeError_Unwrap(t *testing.T) {
	_, err := Decode("ss://!!!")
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("err=%T, want *DecodeError", err)
	}
	if de.Scheme != "ss" || de.Kind != KindMalformedLink {
		t.Fatalf("scheme/kind=%q/%v", de.Scheme, de.Kind)
	}
	if errors.Unwrap(err) == nil {
		t.Fatalf("expected wrapped base64 cause")
	}
}
