// Package security provides the application's security services.
package security

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// URLGuardService validates owner-supplied URLs (listing photos) so the
// application never stores or probes an address pointing into private
// infrastructure.
type URLGuardService interface {
	// NewSafeClient builds an HTTP client for probing submitted URLs.
	// safeurl blocks private, loopback, link-local and metadata IPs at
	// the dialer level, which also defeats DNS rebinding.
	NewSafeClient(timeout time.Duration) *http.Client

	// ValidateURL statically checks a URL's scheme, host and IP before
	// any request is made. It returns an error for dangerous URLs.
	ValidateURL(rawURL string) error
}

// allowedSchemes are the URL schemes accepted for listing photos.
var allowedSchemes = []string{"http", "https"}

// blockedNetworks are the network ranges rejected by ValidateURL. Parsed
// once at package init. safeurl additionally verifies resolved IPs at dial
// time, so DNS rebinding is covered by the client, not this static check.
var blockedNetworks []net.IPNet

func init() {
	cidrs := []string{
		// Private ranges (RFC 1918)
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		// Loopback (RFC 1122)
		"127.0.0.0/8",
		// Link-local (RFC 3927), includes cloud metadata 169.254.169.254
		"169.254.0.0/16",
		// Current network
		"0.0.0.0/8",
		// IPv6 loopback
		"::1/128",
		// IPv6 link-local
		"fe80::/10",
		// IPv6 unique local
		"fc00::/7",
	}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("invalid CIDR in blockedNetworks: %s: %v", cidr, err))
		}
		blockedNetworks = append(blockedNetworks, *network)
	}
}

// urlGuard implements URLGuardService.
type urlGuard struct{}

// NewURLGuard returns a new URLGuardService.
func NewURLGuard() *urlGuard {
	return &urlGuard{}
}

// NewSafeClient builds an HTTP client wrapped by safeurl. Requests to
// private, loopback, link-local and metadata addresses are refused at the
// dialer, after DNS resolution.
func (g *urlGuard) NewSafeClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(allowedSchemes...).
		SetAllowedPorts(80, 443).
		Build()

	wrappedClient := safeurl.Client(config)
	return wrappedClient.Client
}

// ValidateURL statically validates a submitted URL. It does not resolve
// DNS; hostname-based evasion is caught by the safe client's dialer.
func (g *urlGuard) ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if !isAllowedScheme(scheme) {
		return fmt.Errorf("disallowed scheme: %s (allowed: %v)", scheme, allowedSchemes)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("empty host in URL: %s", rawURL)
	}

	// Literal IPs are checked against the blocked ranges directly.
	ip := net.ParseIP(host)
	if ip != nil {
		if isBlockedIP(ip) {
			return fmt.Errorf("blocked IP address: %s", ip.String())
		}
		return nil
	}

	if isBlockedHostname(host) {
		return fmt.Errorf("blocked host: %s", host)
	}

	return nil
}

// isAllowedScheme reports whether the scheme is on the allowlist.
func isAllowedScheme(scheme string) bool {
	for _, allowed := range allowedSchemes {
		if strings.EqualFold(scheme, allowed) {
			return true
		}
	}
	return false
}

// isBlockedIP reports whether the IP falls in a blocked network range.
func isBlockedIP(ip net.IP) bool {
	for _, network := range blockedNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// blockedHostnames are hostnames rejected outright.
var blockedHostnames = []string{
	"localhost",
}

// isBlockedHostname reports whether the hostname is blocked.
func isBlockedHostname(host string) bool {
	lower := strings.ToLower(host)
	for _, blocked := range blockedHostnames {
		if lower == blocked {
			return true
		}
	}
	return false
}
