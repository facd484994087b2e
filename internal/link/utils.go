package link

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DecodeBase64 decodes standard-alphabet base64, tolerating embedded
// whitespace and missing padding.
func DecodeBase64(s string) (string, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return "", nil
	}
	// Fix padding
	if n := len(s) % 4; n != 0 {
		s += strings.Repeat("=", 4-n)
	}

	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeBody returns the base64-decoded subscription body when the whole body
// decodes to valid UTF-8 text, otherwise the body unchanged.
func DecodeBody(body string) string {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return body
	}
	decoded, err := DecodeBase64(trimmed)
	if err != nil || !utf8.ValidString(decoded) {
		return body
	}
	return decoded
}

// schemeOf returns the text before "://", truncated for logging.
func schemeOf(raw string) string {
	scheme, _, ok := strings.Cut(raw, "://")
	if !ok {
		scheme = raw
	}
	if len(scheme) > 16 {
		scheme = scheme[:16]
	}
	return scheme
}

func splitHostPort(hostPort string) (string, uint16, error) {
	i := strings.LastIndexByte(hostPort, ':')
	if i < 0 {
		return "", 0, errors.New("missing port")
	}
	host, portStr := hostPort[:i], hostPort[i+1:]
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		host = host[1 : len(host)-1]
	}
	if host == "" {
		return "", 0, errors.New("empty host")
	}
	port, err := parsePort(portStr)
	if err != nil {
		return "", 0, err
	}
	return host, port, nil
}

func parsePort(s string) (uint16, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil {
		return 0, fmt.Errorf("port %q: %w", s, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("port %q out of range", s)
	}
	return uint16(n), nil
}

// looseString accepts a JSON string or number. Subscriptions emit both for
// port and aid.
type looseString string

func (l *looseString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*l = ""
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*l = looseString(str)
	default:
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return fmt.Errorf("expected string or number, got %s", s)
		}
		*l = looseString(s)
	}
	return nil
}

// truthy reports whether a decoded JSON value is set: true, non-zero or non-empty.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	default:
		return true
	}
}
