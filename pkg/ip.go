package pkg

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// IPIsLocal reports loopback addresses and docker bridge gateways (172.x.0.1),
// with or without a port.
func IPIsLocal(ipAddr string) bool {
	addr, ok := parseAddr(ipAddr)
	if !ok {
		return false
	}
	if addr.IsLoopback() {
		return true
	}
	if !addr.Is4() {
		return false
	}
	b := addr.As4()
	return b[0] == 172 && b[2] == 0 && b[3] == 1
}

func parseAddr(ipAddr string) (netip.Addr, bool) {
	if host, _, err := net.SplitHostPort(ipAddr); err == nil {
		ipAddr = host
	}
	addr, err := netip.ParseAddr(ipAddr)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

// ReadUserIP returns the client IP, preferring the proxy headers over the
// remote address. Local and docker gateway addresses are reported as "localhost".
func ReadUserIP(r *http.Request) (string, error) {
	ipAddr := r.Header.Get("X-Real-Ip")
	if ipAddr == "" {
		// first entry is the original client
		ipAddr, _, _ = strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
		ipAddr = strings.TrimSpace(ipAddr)
	}
	if ipAddr == "" {
		ipAddr = r.RemoteAddr
	}

	addr, ok := parseAddr(ipAddr)
	if !ok {
		return "", fmt.Errorf("ip addr %s is invalid", ipAddr)
	}
	if IPIsLocal(ipAddr) {
		return "localhost", nil
	}
	return addr.String(), nil
}
