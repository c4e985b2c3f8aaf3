package reversedns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/southcitycomputer/scc-perf/cache"
)

const reverseDnsDefaultTimeout = 5 * time.Second

// LookupAddrFn is defined as variable to ease testing
var LookupAddrFn = net.DefaultResolver.LookupAddr

// GetReverseDns returns the PTR names of ipAddr, without the trailing dot
func GetReverseDns(ctx context.Context, ipAddr string) ([]string, error) {
	if _, err := netip.ParseAddr(ipAddr); err != nil {
		return nil, errors.New("invalid IP address: " + ipAddr)
	}
	ctx, cancel := context.WithTimeout(ctx, reverseDnsDefaultTimeout)
	defer cancel()

	rawReverseDnsNames, err := LookupAddrFn(ctx, ipAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to get reverse dns: %w", err)
	}
	reverseDnsNames := []string{}
	for _, name := range rawReverseDnsNames {
		reverseDnsNames = append(reverseDnsNames, strings.TrimRight(name, "."))
	}
	return reverseDnsNames, nil
}

// Hostname returns the first PTR name of ipAddr or "" when there is none.
// Answers, including empty ones, are cached.
func Hostname(ctx context.Context, ipAddr string) string {
	name, err := cache.Lookup(cache.KindReverseDNS, ipAddr, func() (string, error) {
		names, err := GetReverseDns(ctx, ipAddr)
		if err != nil {
			return "", err
		}
		if len(names) == 0 {
			return "", nil
		}
		return names[0], nil
	})
	if err != nil {
		return ""
	}
	return name
}
