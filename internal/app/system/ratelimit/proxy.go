// internal/app/system/ratelimit/proxy.go
package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// TrustedProxies lists the networks whose X-Forwarded-For and X-Real-IP
// headers are believed. A nil or empty list trusts no one, so a client
// cannot pick its own address by sending those headers.
type TrustedProxies struct {
	nets []*net.IPNet
}

// ParseTrustedProxies reads a comma-separated list of CIDRs or bare IPs,
// e.g. "10.0.0.0/8, 192.168.1.10". Blank input yields an empty list.
func ParseTrustedProxies(list string) (*TrustedProxies, error) {
	tp := &TrustedProxies{}
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.Contains(part, "/") {
			ip := net.ParseIP(part)
			if ip == nil {
				return nil, fmt.Errorf("trusted proxy %q is not an IP or CIDR", part)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			tp.nets = append(tp.nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(part)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", part, err)
		}
		tp.nets = append(tp.nets, n)
	}
	return tp, nil
}

// Len reports how many networks are trusted.
func (tp *TrustedProxies) Len() int {
	if tp == nil {
		return 0
	}
	return len(tp.nets)
}

func (tp *TrustedProxies) trusts(addr string) bool {
	if tp == nil {
		return false
	}
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range tp.nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// Resolve returns the client address of r. Forwarding headers are only read
// when the direct peer is trusted; X-Forwarded-For is then walked from the
// right and the first hop that is not itself a trusted proxy wins.
func (tp *TrustedProxies) Resolve(r *http.Request) string {
	peer := hostOf(r.RemoteAddr)
	if !tp.trusts(peer) {
		return peer
	}

	var hops []string
	for _, v := range r.Header.Values("X-Forwarded-For") {
		hops = append(hops, strings.Split(v, ",")...)
	}
	if len(hops) > 0 {
		client := peer
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if net.ParseIP(hop) == nil {
				break
			}
			client = hop
			if !tp.trusts(hop) {
				break
			}
		}
		return client
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return peer
}

// RealIP is middleware that replaces RemoteAddr with the resolved client
// address so ClientIP, the login limiter and the audit log all agree.
func (tp *TrustedProxies) RealIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.RemoteAddr = tp.Resolve(r)
		next.ServeHTTP(w, r)
	})
}

func hostOf(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
