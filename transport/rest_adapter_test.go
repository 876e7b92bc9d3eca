package transport

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/goliatone/go-signin/core"
)

func TestRESTAdapter_DoSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Query().Get("api-version") != "2.0" {
			t.Errorf("expected query parameter to be merged, got %q", r.URL.RawQuery)
		}
		if r.Header.Get("X-Client-SKU") != "go" || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected default and request headers, got %#v", r.Header)
		}
		w.Header().Set("X-Request-ID", "req-1")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client())
	adapter.DefaultHeaders["X-Client-SKU"] = "go"
	res, err := adapter.Do(context.Background(), Request{
		Method:  "post",
		URL:     server.URL + "/issue",
		Query:   map[string]string{"api-version": "2.0"},
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    []byte(`{}`),
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if !res.OK() || res.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected status %d", res.StatusCode)
	}
	if string(res.Body) != `{"ok":true}` || res.Headers["X-Request-Id"] != "req-1" {
		t.Fatalf("unexpected response %#v", res)
	}
}

func TestRESTAdapter_TimeoutIsClassified(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	_, err := NewRESTAdapter(server.Client()).Do(context.Background(), Request{
		URL:     server.URL,
		Timeout: 20 * time.Millisecond,
	})
	if !core.HasSubError(err, core.SubErrorConnectionTimeout) {
		t.Fatalf("expected connection timeout, got %v", err)
	}
	if core.ErrorCodeOf(err) != core.ErrorCodeIO {
		t.Fatalf("expected io_error, got %q", core.ErrorCodeOf(err))
	}
}

type failingDoer struct {
	err error
}

func (d failingDoer) Do(*http.Request) (*http.Response, error) {
	return nil, d.err
}

func TestRESTAdapter_ClientFailuresAreClassified(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want core.SubErrorCode
	}{
		{name: "dns", err: &net.DNSError{Err: "no such host", Name: "issuer.example", IsNotFound: true}, want: core.SubErrorNoNetwork},
		{name: "refused", err: &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, want: core.SubErrorNetworkTemporarilyUnavailable},
		{name: "unknown", err: errors.New("proxy misconfigured"), want: core.SubErrorUnexpectedException},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRESTAdapter(failingDoer{err: tc.err}).Do(context.Background(), Request{URL: "https://issuer.example/token"})
			if !core.HasSubError(err, tc.want) {
				t.Fatalf("expected %s, got %v", tc.want, err)
			}
		})
	}
}

func TestRESTAdapter_BodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 64)))
	}))
	defer server.Close()

	_, err := NewRESTAdapter(server.Client()).Do(context.Background(), Request{URL: server.URL, MaxResponseBodyBytes: 16})
	if !errors.Is(err, ErrResponseTooLarge) {
		t.Fatalf("expected body limit error, got %v", err)
	}
}

func TestRESTAdapter_InvalidURL(t *testing.T) {
	_, err := NewRESTAdapter(nil).Do(context.Background(), Request{URL: "/relative"})
	if core.ErrorCodeOf(err) != core.ErrorCodeInvalidParameter {
		t.Fatalf("expected invalid_parameter, got %v", err)
	}
}
