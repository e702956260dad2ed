package tcp

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/bnema/stk-connect/internal/ports"
)

const (
	DefaultTimeout   = 5 * time.Second
	DefaultKeepAlive = 30 * time.Second
)

// Dialer opens TCP command connections with Nagle disabled, so every command
// line leaves the host as soon as it is written.
type Dialer struct {
	dialer net.Dialer
}

var _ ports.Dialer = (*Dialer)(nil)

func NewDialer(timeout time.Duration, keepAlive time.Duration) *Dialer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Dialer{dialer: net.Dialer{Timeout: timeout, KeepAlive: keepAlive}}
}

func (d *Dialer) DialContext(ctx context.Context, network string, address string) (net.Conn, error) {
	conn, err := d.dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetNoDelay(true); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("disable nagle on %s: %w", address, err)
		}
	}

	return conn, nil
}
