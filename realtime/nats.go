package realtime

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

const subjectPrefix = "mytournaments"

// NATSPublisher mirrors change messages to NATS subjects of the form
// mytournaments.<room>.<event>.
type NATSPublisher struct {
	conn *nats.Conn
}

func ConnectNATS(url, token string) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name("mytournaments"),
		nats.MaxReconnects(-1),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{conn: conn}, nil
}

func Subject(room, event string) string {
	return subjectPrefix + "." + room + "." + strings.ToLower(event)
}

func (p *NATSPublisher) Publish(ctx context.Context, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to marshal nats message")
		return
	}
	subject := Subject(msg.RoomID, msg.Type)
	if err := p.conn.Publish(subject, data); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("subject", subject).Msg("failed to publish to nats")
	}
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		log.Warn().Err(err).Msg("nats drain failed")
	}
}
