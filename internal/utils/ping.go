package utils

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

// PingTimeout bounds a single TCP reachability probe
const PingTimeout = 1500 * time.Millisecond

// PingService checks if a service is reachable at the given URL
func PingService(ctx context.Context, serviceURL string) error {
	parsedURL, err := url.Parse(serviceURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	host := parsedURL.Hostname()
	port := parsedURL.Port()

	// Default ports if not specified
	if port == "" {
		switch parsedURL.Scheme {
		case "https":
			port = "443"
		case "smtp":
			port = "25"
		default:
			port = "80"
		}
	}

	return PingAddr(ctx, net.JoinHostPort(host, port))
}

// PingAddr dials host:port and closes the connection straight away
func PingAddr(ctx context.Context, address string) error {
	ctx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	defer conn.Close()

	return nil
}

// PingSMTP checks that the outgoing mail relay accepts connections
func PingSMTP(ctx context.Context, host string, port int) error {
	return PingAddr(ctx, net.JoinHostPort(host, strconv.Itoa(port)))
}
