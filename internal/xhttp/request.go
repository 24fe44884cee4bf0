package xhttp

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// GetRequestIP returns the host of the connection's remote address.
// X-Forwarded-For is client controlled and is only honored through
// TrustedProxies.
func GetRequestIP(r *http.Request) string {
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}

// TrustedProxies is the set of peers allowed to report a client address in
// X-Forwarded-For.
type TrustedProxies []netip.Prefix

// ParseTrustedProxies accepts CIDR prefixes and bare addresses.
func ParseTrustedProxies(values []string) (TrustedProxies, error) {
	proxies := make(TrustedProxies, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if strings.Contains(v, "/") {
			prefix, err := netip.ParsePrefix(v)
			if err != nil {
				return nil, fmt.Errorf("invalid proxy prefix %q: %w", v, err)
			}
			proxies = append(proxies, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(v)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy address %q: %w", v, err)
		}
		addr = addr.Unmap()
		proxies = append(proxies, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return proxies, nil
}

func (p TrustedProxies) trusts(host string) bool {
	addr, err := netip.ParseAddr(hostOnly(host))
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range p {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP returns the remote address unless it is a trusted proxy, in which
// case X-Forwarded-For is walked right to left and the first untrusted hop
// is returned.
func (p TrustedProxies) ClientIP(r *http.Request) string {
	remote := GetRequestIP(r)
	if len(p) == 0 || !p.trusts(remote) {
		return remote
	}

	hops := strings.Split(strings.Join(r.Header.Values(XForwardedFor), ","), ",")
	client := remote
	for i := len(hops) - 1; i >= 0; i-- {
		hop := hostOnly(strings.TrimSpace(hops[i]))
		if hop == "" {
			continue
		}
		if _, err := netip.ParseAddr(hop); err != nil {
			// garbage from an untrusted sender; stop at the last good hop
			break
		}
		client = hop
		if !p.trusts(hop) {
			break
		}
	}
	return client
}

func hostOnly(s string) string {
	if host, _, err := net.SplitHostPort(s); err == nil {
		return host
	}
	return strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
}
