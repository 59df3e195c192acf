package proxy

import (
	"net"
	"net/http"
	"strings"
)

// hopByHopHeaders must not be forwarded between proxies in either
// direction. They are connection-level headers that only make sense for a
// single transport hop and would confuse the downstream service or cause
// protocol errors. Keys are lowercase; lookups must lowercase first.
var hopByHopHeaders = map[string]struct{}{
	"host":                {},
	"connection":          {},
	"transfer-encoding":   {},
	"te":                  {},
	"upgrade":             {},
	"proxy-authorization": {},
	"proxy-authenticate":  {},
	"keep-alive":          {},
	"trailer":             {},
}

// isHopByHop reports whether the header must be stripped when forwarding.
func isHopByHop(name string) bool {
	_, ok := hopByHopHeaders[strings.ToLower(name)]
	return ok
}

// copyForwardHeaders copies inbound request headers onto the outbound
// request, minus hop-by-hop headers.
func copyForwardHeaders(dst http.Header, src http.Header) {
	for name, values := range src {
		if isHopByHop(name) {
			continue
		}
		for _, value := range values {
			dst.Add(name, value)
		}
	}
}

// copyRelayHeaders copies downstream response headers onto the gateway
// response, minus hop-by-hop headers and HTTP/2 pseudo-headers.
// Pseudo-headers (:status, :path, ...) are HTTP/2 framing metadata and must
// never appear on the wire to an HTTP/1.1 client.
func copyRelayHeaders(dst http.Header, src http.Header) {
	for name, values := range src {
		if strings.HasPrefix(name, ":") || isHopByHop(name) {
			continue
		}
		for _, value := range values {
			dst.Add(name, value)
		}
	}
}

// ClientIP extracts the originating client IP address.
//
// When the gateway sits behind a reverse proxy or load balancer the actual
// client IP arrives in X-Forwarded-For, which may carry a comma-separated
// chain; the first entry is the original client. Direct connections fall
// back to the transport peer address.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); strings.TrimSpace(forwarded) != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
