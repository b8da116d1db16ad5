package common

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the host part of the request's remote address. Routers put
// chi's RealIP middleware in front, so proxy headers are already folded into
// RemoteAddr; the headers are only consulted when RemoteAddr is empty.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if addr := strings.TrimSpace(r.RemoteAddr); addr != "" {
		if host, _, err := net.SplitHostPort(addr); err == nil {
			return host
		}
		return addr
	}
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if candidate := strings.TrimSpace(first); candidate != "" {
			return candidate
		}
	}
	return strings.TrimSpace(r.Header.Get("X-Real-IP"))
}
