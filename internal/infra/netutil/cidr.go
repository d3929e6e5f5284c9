package netutil

import (
	"net"
)

// ParseCIDRs parses the admin allowlist; it returns the valid networks and the entries it rejected.
func ParseCIDRs(cidrs []string) (out []*net.IPNet, invalid []string) {
	for _, s := range cidrs {
		_, n, err := net.ParseCIDR(s)
		if err != nil || n == nil {
			invalid = append(invalid, s)
			continue
		}
		out = append(out, n)
	}
	return
}
