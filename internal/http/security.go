package http

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	applog "expensetracker/internal/log"
)

type securityMetrics struct {
	rateLimitHits      int64
	suspiciousRequests int64
}

// trustedProxies may set forwarding headers.
var trustedProxies = []*net.IPNet{
	parsecidr("127.0.0.0/8"),
	parsecidr("10.0.0.0/8"),
	parsecidr("172.16.0.0/12"),
	parsecidr("192.168.0.0/16"),
}

func parsecidr(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("failed to parse trusted proxy CIDR %s: %v", cidr, err))
	}
	return network
}

func isTrustedProxy(ip net.IP) bool {
	for _, network := range trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// extractClientIP honours X-Forwarded-For and X-Real-IP only when the direct
// peer is a trusted proxy.
func extractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsedDirectIP := net.ParseIP(directIP)
	if parsedDirectIP == nil || !isTrustedProxy(parsedDirectIP) {
		return directIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}
	return directIP
}

var suspiciousPatterns = []string{
	"../", "..\\", ".env", "wp-admin", "phpmyadmin",
	".git", ".ssh", "<script", "union select", "etc/passwd",
}

// isSuspiciousRequest flags scanner probes and injection attempts.
func isSuspiciousRequest(r *http.Request) bool {
	path := strings.ToLower(r.URL.Path)
	query, err := url.QueryUnescape(r.URL.RawQuery)
	if err != nil {
		query = r.URL.RawQuery
	}
	query = strings.ToLower(query)
	for _, p := range suspiciousPatterns {
		if strings.Contains(path, p) || strings.Contains(query, p) {
			return true
		}
	}
	switch r.Method {
	case "TRACE", "TRACK", "DEBUG", "CONNECT":
		return true
	}
	return len(r.URL.String()) > 2048
}

// flagSuspicious logs and counts suspicious requests, then rejects them.
func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isSuspiciousRequest(r) {
			atomic.AddInt64(&s.security.suspiciousRequests, 1)
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request rejected",
				applog.FieldClientIP, extractClientIP(r),
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r)
	})
}
