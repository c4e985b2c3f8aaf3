package publicip

import (
	"time"

	externalip "github.com/glendc/go-external-ip"
)

// MaxTries is the maximum amount of tries to attempt to one service.
const MaxTries = 3

// Timeout sets the time limit of collecting results from different services.
var Timeout = 2 * time.Second

// APIURIs are the voters of the consensus used when every checker failed.
var APIURIs = []string{
	"https://api.ipify.org",
	"http://myexternalip.com/raw",
	"http://ipinfo.io/ip",
	"http://ipecho.net/plain",
	"http://icanhazip.com",
	"http://ifconfig.me/ip",
	"http://ident.me",
	"http://checkip.amazonaws.com",
	"http://whatismyip.akamai.com",
}

func newConsensus() *externalip.Consensus {
	consensus := externalip.NewConsensus(externalip.DefaultConsensusConfig().WithTimeout(Timeout), nil)
	for _, uri := range APIURIs {
		_ = consensus.AddVoter(externalip.NewHTTPSource(uri), 1)
	}
	_ = consensus.UseIPProtocol(4)
	return consensus
}
