package application

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/bnema/stk-connect/internal/domain"
	"github.com/bnema/stk-connect/internal/logger"
	"github.com/bnema/stk-connect/internal/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultDialTimeout = 5 * time.Second

// Connector owns a single command connection to an already-running application.
// It is not safe for concurrent use.
type Connector struct {
	endpoint     domain.Endpoint
	dialer       ports.Dialer
	writeTimeout time.Duration
	log          zerolog.Logger
	conn         net.Conn
	sent         int
}

type ConnectorOption func(*Connector)

func WithDialer(dialer ports.Dialer) ConnectorOption {
	return func(c *Connector) {
		if dialer != nil {
			c.dialer = dialer
		}
	}
}

func WithLogger(log zerolog.Logger) ConnectorOption {
	return func(c *Connector) {
		c.log = log
	}
}

// WithWriteTimeout bounds each Send; zero leaves writes unbounded.
func WithWriteTimeout(d time.Duration) ConnectorOption {
	return func(c *Connector) {
		c.writeTimeout = d
	}
}

func NewConnector(endpoint domain.Endpoint, opts ...ConnectorOption) *Connector {
	c := &Connector{
		endpoint: endpoint,
		dialer:   &net.Dialer{Timeout: defaultDialTimeout},
		log:      zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.log = logger.WithComponent(c.log, "connector").With().
		Str("session", uuid.NewString()).
		Str("endpoint", endpoint.Address()).
		Logger()

	return c
}

func (c *Connector) Endpoint() domain.Endpoint {
	return c.endpoint
}

func (c *Connector) Connected() bool {
	return c.conn != nil
}

// Connect opens the command connection. A second call while connected fails with
// domain.ErrAlreadyConnected and leaves the open connection in place.
func (c *Connector) Connect(ctx context.Context) error {
	if c.conn != nil {
		return domain.ErrAlreadyConnected
	}

	conn, err := c.dialer.DialContext(ctx, "tcp", c.endpoint.Address())
	if err != nil {
		c.log.Debug().Err(err).Msg("connect failed")
		return &domain.ConnectionError{Address: c.endpoint.Address(), Err: err}
	}

	c.conn = conn
	c.log.Info().Msg("connected")

	return nil
}

// Send writes message as one newline-terminated line. No reply is read.
func (c *Connector) Send(message string) error {
	if c.conn == nil {
		return domain.ErrNotConnected
	}

	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return fmt.Errorf("set write deadline: %w", err)
		}
	}

	c.log.Debug().Str("command", message).Msg("send")
	if _, err := c.conn.Write([]byte(message + "\n")); err != nil {
		return fmt.Errorf("send command to %s: %w", c.endpoint.Address(), err)
	}
	c.sent++

	return nil
}

// Sent counts the commands written over the lifetime of the Connector.
func (c *Connector) Sent() int {
	return c.sent
}

// Close releases the connection. Closing a closed Connector is a no-op.
func (c *Connector) Close() error {
	if c.conn == nil {
		return nil
	}

	conn := c.conn
	c.conn = nil
	c.log.Debug().Msg("closing connection")

	if err := conn.Close(); err != nil {
		return fmt.Errorf("close connection to %s: %w", c.endpoint.Address(), err)
	}

	return nil
}
