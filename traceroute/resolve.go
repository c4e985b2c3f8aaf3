package traceroute

import (
	"context"
	"errors"
	"net"

	"github.com/southcitycomputer/scc-perf/cache"
)

// LookupHostFn is declared for testing purpose
var LookupHostFn = net.DefaultResolver.LookupHost

// resolveTarget returns the first address of target, cached per host
func resolveTarget(ctx context.Context, target string) (string, error) {
	if ip := net.ParseIP(target); ip != nil {
		return ip.String(), nil
	}
	return cache.Lookup(cache.KindResolve, target, func() (string, error) {
		addrs, err := LookupHostFn(ctx, target)
		if err != nil {
			return "", err
		}
		if len(addrs) == 0 {
			return "", errors.New("no addresses found")
		}
		return addrs[0], nil
	})
}
