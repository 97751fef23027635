package net

import (
	"net"

	"github.com/rs/zerolog/log"
)

// GetOutgoingIP finds the preferred local IP address for the host to share.
// No packet is sent; dialing UDP only picks the route.
func GetOutgoingIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		ip := firstIPv4()
		if ip.IsLoopback() {
			log.Warn().Msg("[NET] no suitable local IP found, using loopback")
		}
		return ip.String()
	}
	defer conn.Close()

	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}
