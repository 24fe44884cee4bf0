package xhttp

import (
	"net/http"
	"testing"
)

func TestGetRequestIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		xForwardedFor string
		remoteAddr    string
		expectedIP    string
	}{
		{
			name:          "x-forwarded-for is ignored",
			xForwardedFor: "203.0.113.195",
			remoteAddr:    "192.0.2.1:1234",
			expectedIP:    "192.0.2.1",
		},
		{
			name:       "remote addr with port",
			remoteAddr: "192.0.2.1:1234",
			expectedIP: "192.0.2.1",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "2001:db8::1",
			expectedIP: "2001:db8::1",
		},
		{
			name:       "empty remote addr",
			remoteAddr: "",
			expectedIP: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := newIPRequest(t, tt.remoteAddr, tt.xForwardedFor)
			if got := GetRequestIP(req); got != tt.expectedIP {
				t.Errorf("GetRequestIP() = %q, want %q", got, tt.expectedIP)
			}
		})
	}
}

func TestTrustedProxiesClientIP(t *testing.T) {
	t.Parallel()

	proxies, err := ParseTrustedProxies([]string{"10.0.0.0/8", "192.0.2.1"})
	if err != nil {
		t.Fatalf("ParseTrustedProxies() error = %v", err)
	}

	tests := []struct {
		name          string
		proxies       TrustedProxies
		xForwardedFor string
		remoteAddr    string
		expectedIP    string
	}{
		{
			name:          "untrusted peer cannot spoof",
			proxies:       proxies,
			xForwardedFor: "198.51.100.9",
			remoteAddr:    "203.0.113.7:5000",
			expectedIP:    "203.0.113.7",
		},
		{
			name:          "trusted peer reports client",
			proxies:       proxies,
			xForwardedFor: "203.0.113.195",
			remoteAddr:    "192.0.2.1:1234",
			expectedIP:    "203.0.113.195",
		},
		{
			name:          "spoofed leftmost hop is skipped",
			proxies:       proxies,
			xForwardedFor: "198.51.100.9, 203.0.113.195, 10.1.2.3",
			remoteAddr:    "192.0.2.1:1234",
			expectedIP:    "203.0.113.195",
		},
		{
			name:          "all hops trusted",
			proxies:       proxies,
			xForwardedFor: "10.0.0.5",
			remoteAddr:    "10.0.0.6:1234",
			expectedIP:    "10.0.0.5",
		},
		{
			name:          "garbage hop stops the walk",
			proxies:       proxies,
			xForwardedFor: "203.0.113.195, <script>",
			remoteAddr:    "192.0.2.1:1234",
			expectedIP:    "192.0.2.1",
		},
		{
			name:       "trusted peer without header",
			proxies:    proxies,
			remoteAddr: "192.0.2.1:1234",
			expectedIP: "192.0.2.1",
		},
		{
			name:          "no proxies configured",
			xForwardedFor: "198.51.100.9",
			remoteAddr:    "192.0.2.1:1234",
			expectedIP:    "192.0.2.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := newIPRequest(t, tt.remoteAddr, tt.xForwardedFor)
			if got := tt.proxies.ClientIP(req); got != tt.expectedIP {
				t.Errorf("ClientIP() = %q, want %q", got, tt.expectedIP)
			}
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	t.Parallel()

	if _, err := ParseTrustedProxies([]string{"10.0.0.0/33"}); err == nil {
		t.Error("ParseTrustedProxies(bad prefix) error = nil, want error")
	}
	if _, err := ParseTrustedProxies([]string{"proxy.internal"}); err == nil {
		t.Error("ParseTrustedProxies(hostname) error = nil, want error")
	}
	got, err := ParseTrustedProxies([]string{" ", "::1"})
	if err != nil {
		t.Fatalf("ParseTrustedProxies() error = %v", err)
	}
	if len(got) != 1 || got[0].String() != "::1/128" {
		t.Errorf("ParseTrustedProxies() = %v, want [::1/128]", got)
	}
}

func newIPRequest(t *testing.T, remoteAddr, xForwardedFor string) *http.Request {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, "http://example.com", nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if xForwardedFor != "" {
		req.Header.Set(XForwardedFor, xForwardedFor)
	}
	req.RemoteAddr = remoteAddr
	return req
}
