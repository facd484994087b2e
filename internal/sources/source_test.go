package sources_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"subclash/internal/fetch"
	"subclash/internal/logger"
	"subclash/internal/sources"
	_ "subclash/internal/sources/file"
	_ "subclash/internal/sources/http"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSchemeOf(t *testing.T) {
	cases := map[string]string{
		"https://example.com/sub": "https",
		"HTTP://example.com":      "http",
		"file:///tmp/sub.txt":     "file",
		"./sub.txt":               "file",
		"-":                       "file",
		"ftp://example.com":       "ftp",
	}
	for in, want := range cases {
		if got := sources.SchemeOf(in); got != want {
			t.Fatalf("SchemeOf(%q)=%q, want=%q", in, got, want)
		}
	}
}

func TestGet_UnknownScheme(t *testing.T) {
	if _, err := sources.Get("ftp://example.com/sub", sources.Deps{}); err == nil {
		t.Fatalf("expected error for unregistered scheme")
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub.txt")
	if err := os.WriteFile(path, []byte("ss://abc\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	for _, loc := range []string{path, "file://" + path} {
		src, err := sources.Get(loc, sources.Deps{})
		if err != nil {
			t.Fatalf("Get(%q): %v", loc, err)
		}
		body, err := src.Read(context.Background(), loc)
		if err != nil || body != "ss://abc\n" {
			t.Fatalf("Read(%q)=%q, %v", loc, body, err)
		}
	}

	src, _ := sources.Get(path+".missing", sources.Deps{})
	if _, err := src.Read(context.Background(), path+".missing"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestFileSource_Stdin(t *testing.T) {
	src, err := sources.Get("-", sources.Deps{Stdin: strings.NewReader("vmess://xyz")})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	body, err := src.Read(context.Background(), "-")
	if err != nil || body != "vmess://xyz" {
		t.Fatalf("Read=%q, %v", body, err)
	}
}

func TestHTTPSource(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("remote body"))
	}))
	defer ts.Close()

	f, err := fetch.New(fetch.Options{})
	if err != nil {
		t.Fatalf("fetch.New: %v", err)
	}
	src, err := sources.Get(ts.URL, sources.Deps{Fetcher: f})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	body, err := src.Read(context.Background(), ts.URL)
	if err != nil || body != "remote body" {
		t.Fatalf("Read=%q, %v", body, err)
	}
}

func TestReadAll_OrderAndDecode(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.txt")
	second := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(first, []byte("ss://first\r\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	// base64("ss://second\n")
	if err := os.WriteFile(second, []byte("c3M6Ly9zZWNvbmQK"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var done atomic.Int32
	body, err := sources.ReadAll(context.Background(), []string{first, second}, sources.Deps{}, 2, func() { done.Add(1) })
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if body != "ss://first\nss://second\n" {
		t.Fatalf("body=%q", body)
	}
	if done.Load() != 2 {
		t.Fatalf("onDone calls=%d, want=2", done.Load())
	}
}

func TestReadAll_Error(t *testing.T) {
	_, err := sources.ReadAll(context.Background(), []string{filepath.Join(t.TempDir(), "missing")}, sources.Deps{}, 1, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestHTTPSource_LogsHostOnly(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ss://abc"))
	}))
	defer ts.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	prev := logger.Log
	logger.Log = zap.New(core).Sugar()
	defer func() { logger.Log = prev }()

	f, err := fetch.New(fetch.Options{})
	if err != nil {
		t.Fatalf("fetch.New: %v", err)
	}
	loc := ts.URL + "/api/sub?token=s3cr3t"
	src, err := sources.Get(loc, sources.Deps{Fetcher: f})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := src.Read(context.Background(), loc); err != nil {
		t.Fatalf("Read: %v", err)
	}

	if logs.Len() == 0 {
		t.Fatalf("expected a debug entry")
	}
	for _, e := range logs.All() {
		if strings.Contains(e.Message, "s3cr3t") || strings.Contains(e.Message, "/api/sub") {
			t.Fatalf("log leaks subscription path: %q", e.Message)
		}
	}
	if !strings.Contains(logs.All()[0].Message, "127.0.0.1") {
		t.Fatalf("log=%q, want host", logs.All()[0].Message)
	}
}
