// Package net finds the sketch server on the local network.
package net

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/hashicorp/mdns"
	"github.com/rs/zerolog/log"
)

const serviceType = "_sketchboard._tcp"

// Advertise announces a sketch server listening on port. Shut the returned
// server down to withdraw it.
func Advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	var ips []net.IP
	if ip := net.ParseIP(GetOutgoingIP()); ip != nil {
		ips = []net.IP{ip}
	}
	service, err := mdns.NewMDNSService(host, serviceType, "", "", port, ips, []string{"SketchBoard", "path=/save"})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	log.Info().Str("service", serviceType).Int("port", port).Msg("[NET] advertising sketch server")
	return server, nil
}

// Discover returns the base URL of the first sketch server that answers
// within timeout.
func Discover(ctx context.Context, timeout time.Duration) (string, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	found := firstURL(entries)

	params := mdns.DefaultParams(serviceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.QueryContext(ctx, params)
	close(entries)
	url := <-found
	if err != nil {
		return "", fmt.Errorf("mDNS query: %w", err)
	}
	if url == "" {
		return "", fmt.Errorf("no %s server answered within %s", serviceType, timeout)
	}
	log.Info().Str("endpoint", url).Msg("[NET] discovered sketch server")
	return url, nil
}

// firstURL drains entries and, once it is closed, sends the URL of the
// first usable entry, or "" when none was.
func firstURL(entries <-chan *mdns.ServiceEntry) <-chan string {
	found := make(chan string, 1)
	go func() {
		var first string
		for e := range entries {
			if url, ok := entryURL(e); ok && first == "" {
				first = url
			}
		}
		found <- first
	}()
	return found
}

func entryURL(e *mdns.ServiceEntry) (string, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return "", false
	}
	return fmt.Sprintf("http://%s:%d", e.AddrV4.String(), e.Port), true
}

// firstIPv4 returns the first address of an interface that is up and not
// loopback.
func firstIPv4() net.IP {
	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4()
			}
		}
	}
	return net.IPv4(127, 0, 0, 1)
}
