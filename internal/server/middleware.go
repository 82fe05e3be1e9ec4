package server

import (
	"net"
	"net/http"
	"net/netip"

	"tomoru/internal/logger"

	"go.uber.org/zap"
)

// Incrementer is the write side of the request counter
type Incrementer interface {
	Increment(ip string) error
}

// CountRequests counts every request against its client address before
// handing it to next unchanged. No path or method is exempt.
func CountRequests(counter Incrementer, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r.RemoteAddr)
		if err := counter.Increment(ip); err != nil {
			logger.L().Error("failed to count request",
				zap.String("ip", ip),
				zap.String("path", r.URL.Path),
				zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP strips the port from a transport peer address. IPv4-mapped IPv6
// addresses are reported in their IPv4 form; anything that is not an IP is
// returned as given. Forwarding headers are ignored.
func ClientIP(remoteAddr string) string {
	if ap, err := netip.ParseAddrPort(remoteAddr); err == nil {
		return ap.Addr().Unmap().String()
	}

	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return addr.Unmap().String()
	}
	return host
}
