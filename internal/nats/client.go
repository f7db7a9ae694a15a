// Package nats publishes marketplace events to NATS JetStream.
package nats

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/neighborjob/marketplace/pkg/logger"
)

// DefaultClientName identifies the API server's connection on the NATS
// monitoring endpoints.
const DefaultClientName = "neighborjob-api"

// Config holds NATS connection configuration.
type Config struct {
	URL string
	// Name is the connection name; empty means DefaultClientName.
	Name     string
	CAFile   string
	CertFile string
	KeyFile  string
	Token    string
}

// Client is the event publisher's connection to NATS.
type Client struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	logger *logger.Logger
}

// Connect dials NATS and opens a JetStream context for event publishing.
// The connection keeps reconnecting in the background; publishes fail fast
// while it is down and the marketplace carries on without them.
func Connect(ctx context.Context, cfg Config, log *logger.Logger) (*Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts, err := connectOptions(cfg, log)
	if err != nil {
		return nil, err
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	log.Info("connected to NATS",
		zap.String("url", nc.ConnectedUrl()),
		zap.String("client", clientName(cfg)),
		zap.String("stream", StreamName),
	)

	return &Client{
		conn:   nc,
		js:     js,
		logger: log,
	}, nil
}

func clientName(cfg Config) string {
	if cfg.Name != "" {
		return cfg.Name
	}
	return DefaultClientName
}

// connectOptions builds the dial options: unlimited reconnects, event
// logging, optional mutual TLS and optional token auth.
func connectOptions(cfg Config, log *logger.Logger) ([]nats.Option, error) {
	name := clientName(cfg)
	events := log.With(zap.String("client", name))

	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.ReconnectBufSize(8 * 1024 * 1024),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			events.Warn("NATS disconnected, marketplace events are not published", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			events.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			events.Error("NATS error", zap.Error(err))
		}),
	}

	tlsFiles := 0
	for _, f := range []string{cfg.CAFile, cfg.CertFile, cfg.KeyFile} {
		if f != "" {
			tlsFiles++
		}
	}
	switch tlsFiles {
	case 0:
	case 3:
		tlsConfig, err := createTLSConfig(cfg.CAFile, cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
		opts = append(opts, nats.Secure(tlsConfig))
	default:
		return nil, errors.New("NATS TLS needs CA, cert and key files together")
	}

	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	return opts, nil
}

// JetStream returns the JetStream context.
func (c *Client) JetStream() jetstream.JetStream {
	return c.js
}

// Close drains pending publishes and closes the connection.
func (c *Client) Close() {
	if c.conn == nil {
		return
	}
	if err := c.conn.Drain(); err != nil {
		c.logger.Warn("NATS drain failed", zap.Error(err))
		c.conn.Close()
	}
}

// IsConnected reports whether events can currently be published.
func (c *Client) IsConnected() bool {
	return c.conn != nil && c.conn.IsConnected()
}

func createTLSConfig(caFile, certFile, keyFile string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}

	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to parse CA certificate")
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load client cert: %w", err)
	}

	return &tls.Config{
		RootCAs:      caCertPool,
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
