package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/labstack/echo/v4"
)

// TrustProxies makes c.RealIP() see through the given reverse proxies. The
// rate limiter keys on that address, so without it every client behind the
// proxy shares one budget.
func TrustProxies(e *echo.Echo, trusted []netip.Prefix) {
	e.IPExtractor = clientIP(trusted)
}

// clientIP walks X-Forwarded-For from the nearest hop outwards and returns
// the first address that is not a trusted proxy. A peer outside trusted is
// the client itself and its headers are ignored.
func clientIP(trusted []netip.Prefix) echo.IPExtractor {
	isProxy := func(addr netip.Addr) bool {
		for _, p := range trusted {
			if p.Contains(addr) {
				return true
			}
		}
		return false
	}

	return func(req *http.Request) string {
		peer := remoteAddr(req.RemoteAddr)
		if !peer.IsValid() || !isProxy(peer) {
			return hostOnly(req.RemoteAddr)
		}

		hops := strings.Split(req.Header.Get(echo.HeaderXForwardedFor), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			addr = addr.Unmap()
			if !isProxy(addr) {
				return addr.String()
			}
			peer = addr
		}
		// Every hop was a proxy; the outermost one is as close as we get.
		return peer.String()
	}
}

func remoteAddr(s string) netip.Addr {
	addr, err := netip.ParseAddr(hostOnly(s))
	if err != nil {
		return netip.Addr{}
	}
	return addr.Unmap()
}

func hostOnly(s string) string {
	host, _, err := net.SplitHostPort(s)
	if err != nil {
		return s
	}
	return host
}
