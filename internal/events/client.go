package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Client publishes domain events into the durable restraint stream and
// subscribes to inbound scoring requests.
type Client interface {
	Publish(ctx context.Context, subject string, event interface{}) error
	Subscribe(subject string, handler func(subject string, data []byte)) error
	Close()
}

// NATSClient is the JetStream-backed Client. Published events are acked by
// the stream, so a scored run's announcement survives a broker restart.
type NATSClient struct {
	conn   *nats.Conn
	stream jetstream.JetStream
	subs   []*nats.Subscription
	logger *slog.Logger
}

// NewNATSClient connects and provisions the restraint event stream. A
// missing stream is a hard error: publishing into the void would lose
// scored-run events that downstream pipelines depend on.
func NewNATSClient(ctx context.Context, url string, logger *slog.Logger) (*NATSClient, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	stream, err := provisionStream(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &NATSClient{conn: conn, stream: stream, logger: logger}, nil
}

func provisionStream(ctx context.Context, conn *nats.Conn) (jetstream.JetStream, error) {
	js, err := jetstream.New(conn)
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	maxAge, _ := time.ParseDuration(StreamMaxAge)
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{"docking.restraints.>"},
		MaxAge:   maxAge,
	})
	if err != nil {
		return nil, fmt.Errorf("provision stream %s: %w", StreamName, err)
	}
	return js, nil
}

// Publish marshals the event and writes it through JetStream, waiting for
// the stream's ack.
func (c *NATSClient) Publish(ctx context.Context, subject string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event for %s: %w", subject, err)
	}
	if _, err := c.stream.Publish(ctx, subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func (c *NATSClient) Subscribe(subject string, handler func(string, []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	return nil
}

// Close drains the connection so in-flight handlers finish before the
// subscriptions drop.
func (c *NATSClient) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	if err := c.conn.Drain(); err != nil {
		if c.logger != nil {
			c.logger.Warn("nats drain failed, closing hard", "error", err)
		}
		c.conn.Close()
	}
}
