package middleware

import (
	"net"
	"net/http"
	"strings"
)

// WithSubnet only lets through requests whose X-Real-IP lies inside the
// trusted CIDR. An empty or invalid CIDR rejects everything.
func WithSubnet(cidr string) func(next http.Handler) http.Handler {
	var trusted *net.IPNet
	if cidr != "" {
		_, trusted, _ = net.ParseCIDR(cidr)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP")))

			if trusted == nil || ip == nil || !trusted.Contains(ip) {
				w.WriteHeader(http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
