package config

import (
	"net"
	"strconv"
)

// SplitHostPort parses an "addr:port" string as used by config's qdrant_addr
// field, defaulting to port 6334 when the port is missing or unparsable.
func SplitHostPort(addr string) (host string, port int) {
	const defaultPort = 6334
	h, p, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, defaultPort
	}
	port, err = strconv.Atoi(p)
	if err != nil {
		return h, defaultPort
	}
	return h, port
}
