package domain

import (
	"net"
	"strconv"
	"time"
)

// ConnectionSpec identifies the SmartOS global zone to query
type ConnectionSpec struct {
	Host string
	Port int
	User string
	// KeyFile is the private key used for authentication
	KeyFile    string
	Passphrase string
	// KnownHostsFile is the trusted host key store
	KnownHostsFile string
	// Timeout bounds the whole remote call; zero means no limit
	Timeout time.Duration
}

// Address returns host:port
func (c ConnectionSpec) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Target returns user@host, the form used by ssh(1) and in messages
func (c ConnectionSpec) Target() string {
	if c.User == "" {
		return c.Host
	}
	return c.User + "@" + c.Host
}
