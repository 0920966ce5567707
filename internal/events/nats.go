package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/dukerupert/coffee-delivery/internal/domain"
)

// natsConn is the subset of *nats.Conn the publisher needs.
type natsConn interface {
	PublishMsg(m *nats.Msg) error
	FlushWithContext(ctx context.Context) error
}

// NATSPublisher publishes events as JSON on a NATS subject.
type NATSPublisher struct {
	conn    natsConn
	subject string
	now     func() time.Time
}

// NewNATSPublisher creates a publisher on an existing connection. An empty
// subject means SubjectOrderPlaced.
func NewNATSPublisher(conn *nats.Conn, subject string) *NATSPublisher {
	return newNATSPublisher(conn, subject)
}

func newNATSPublisher(conn natsConn, subject string) *NATSPublisher {
	if subject == "" {
		subject = SubjectOrderPlaced
	}
	return &NATSPublisher{conn: conn, subject: subject, now: time.Now}
}

// Connect dials the NATS server at url with reconnect logging.
func Connect(url string, logger *slog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("coffee-delivery"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return nc, nil
}

// PublishOrderPlaced publishes order and flushes, so a nil error means the
// server has received the message.
func (p *NATSPublisher) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	event := OrderPlaced{
		EventID:    uuid.New(),
		OccurredAt: p.now().UTC(),
		Order:      order,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := nats.NewMsg(p.subject)
	msg.Data = data
	msg.Header.Set("Content-Type", "application/json")
	msg.Header.Set(nats.MsgIdHdr, event.EventID.String())

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush order event: %w", err)
	}
	return nil
}
