package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
)

var clientIPKey = contextKey{"client_ip"}

// ClientIP stores the caller's IP in the request context. It reads r.RemoteAddr, so it must
// run after chi's RealIP when the server sits behind a proxy.
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := hostOnly(r.RemoteAddr)
		if ip == "" {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientIPKey, ip)))
	})
}

// ClientIPFromContext returns the caller IP stored by ClientIP, or "unknown".
func ClientIPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey).(string); ok && ip != "" {
		return ip
	}
	return "unknown"
}

func hostOnly(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
