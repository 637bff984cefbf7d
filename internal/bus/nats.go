package bus

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/quentin/tickvault/internal/domain"
	"github.com/quentin/tickvault/internal/events"
	"github.com/quentin/tickvault/internal/logger"
)

// Client wraps a NATS connection used to relay job outcome events to
// downstream bounded contexts running out of process. Delivery through
// the bridge is at-least-once; exactly-once external delivery is
// explicitly not attempted.
type Client struct{ nc *nats.Conn }

// Connect dials the NATS server with unbounded reconnects.
func Connect(url string) (*Client, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &Client{nc: nc}, nil
}

// Close drains and closes the connection.
func (c *Client) Close() {
	if c.nc != nil {
		_ = c.nc.Drain()
	}
}

// PublishJSON marshals v and publishes it on subject.
func (c *Client) PublishJSON(subject string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.nc.Publish(subject, b)
}

// BridgeEvents subscribes the client to the in-process publisher and
// forwards job outcome events onto NATS subjects under prefix:
//
//	<prefix>.completed          IngestionJobCompleted
//	<prefix>.backfill.completed BackfillJobCompleted
//	<prefix>.backfill.failed    BackfillJobFailed
//
// Publish failures are logged and dropped; the bridge must never break
// in-process delivery.
func (c *Client) BridgeEvents(pub *events.Publisher, prefix string, log *logger.Logger) {
	if log == nil {
		log = logger.GetDefault()
	}
	forward := func(subject string) events.Handler {
		return func(event interface{}) {
			if err := c.PublishJSON(subject, event); err != nil {
				log.WithField("subject", subject).WithError(err).Warn("Failed to forward event to NATS")
			}
		}
	}
	pub.Subscribe(domain.IngestionJobCompleted{}, forward(prefix+".completed"))
	pub.Subscribe(domain.BackfillJobCompleted{}, forward(prefix+".backfill.completed"))
	pub.Subscribe(domain.BackfillJobFailed{}, forward(prefix+".backfill.failed"))
}
