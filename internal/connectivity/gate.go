// Package connectivity decides whether the remote classification path should
// be attempted at all.
package connectivity

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/ecovision-ai/birdsense/internal/conf"
	"github.com/ecovision-ai/birdsense/internal/logging"
)

// Gate performs a two-stage online check: local network attachment first, then
// a DNS resolution of a well-known host to verify real internet access. Every
// internal failure is treated as offline so the caller always degrades to the
// local classification path instead of erroring.
type Gate struct {
	probeHost string
	timeout   time.Duration
	log       *slog.Logger

	// injection points for tests
	interfaces func() ([]net.Interface, error)
	addrs      func(iface *net.Interface) ([]net.Addr, error)
	lookupHost func(ctx context.Context, host string) ([]string, error)
}

// New creates a Gate from the application settings.
func New(settings *conf.Settings) *Gate {
	resolver := &net.Resolver{}
	return &Gate{
		probeHost:  settings.Connectivity.ProbeHost,
		timeout:    settings.Connectivity.Timeout,
		log:        logging.ForService("connectivity"),
		interfaces: net.Interfaces,
		addrs:      (*net.Interface).Addrs,
		lookupHost: resolver.LookupHost,
	}
}

// IsOnline reports whether the remote path is worth attempting. It never
// returns an error; any failure along the way means offline.
func (g *Gate) IsOnline(ctx context.Context) bool {
	if !g.hasNetworkAttachment() {
		g.log.Debug("No usable network interface, treating as offline")
		return false
	}

	lookupCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	addrs, err := g.lookupHost(lookupCtx, g.probeHost)
	if err != nil {
		g.log.Debug("DNS probe failed, treating as offline",
			"host", g.probeHost, "error", err)
		return false
	}
	if len(addrs) == 0 {
		g.log.Debug("DNS probe returned no addresses, treating as offline",
			"host", g.probeHost)
		return false
	}

	return true
}

// hasNetworkAttachment reports whether any non-loopback interface is up and
// carries at least one address.
func (g *Gate) hasNetworkAttachment() bool {
	ifaces, err := g.interfaces()
	if err != nil {
		g.log.Debug("Failed to enumerate network interfaces", "error", err)
		return false
	}

	for i := range ifaces {
		iface := &ifaces[i]
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := g.addrs(iface)
		if err != nil || len(addrs) == 0 {
			continue
		}
		return true
	}
	return false
}
