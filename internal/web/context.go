package web

import (
	"net"
	"net/http"
)

// clientIP returns the host part of RemoteAddr, which TrustedRealIP has
// already replaced with the forwarded address for trusted proxies.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
