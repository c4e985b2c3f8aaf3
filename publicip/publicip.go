// Package publicip discovers the public address the diagnostics run from
package publicip

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/southcitycomputer/scc-perf/cache"
	"github.com/southcitycomputer/scc-perf/log"
)

//go:generate mockgen -source=publicip.go -destination=mock_fetcher.go -package=publicip

const defaultPublicIPCacheExpiration = 2 * time.Hour

// Fetcher returns the public IP of this host
type Fetcher interface {
	GetIP(ctx context.Context) (net.IP, error)
}

type PublicIPFetcher struct {
	client *http.Client
	// consensus is asked when every checker failed
	consensus func() (net.IP, error)
}

func NewPublicIPFetcher() *PublicIPFetcher {
	return &PublicIPFetcher{
		client: &http.Client{Timeout: 5 * time.Second},
		consensus: func() (net.IP, error) {
			return newConsensus().ExternalIP()
		},
	}
}

func (p *PublicIPFetcher) GetIP(ctx context.Context) (net.IP, error) {
	return cache.LookupWithExpiration(cache.KindPublicIP, "source", func() (net.IP, error) {
		ip, err := GetPublicIP(ctx, p.client)
		if err != nil && p.consensus != nil {
			log.Debugf("ip checkers failed, asking consensus: %s", err)
			ip, err = p.consensus()
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get public ip: %w", err)
		}
		log.Debugf("Public IP fetched: %s", ip.String())
		return ip, nil
	}, defaultPublicIPCacheExpiration)
}
