package notifier

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"chargenet/internal/authorizer"
	"chargenet/internal/station"
)

const (
	subjectEVSEAdded    = "chargenet.evse.added"
	subjectCDRForwarded = "chargenet.cdr.forwarded"
)

// EVSEAddedEvent is published after an EVSE is committed to a station.
type EVSEAddedEvent struct {
	Timestamp time.Time `json:"timestamp"`
	StationID string    `json:"station_id"`
	EVSEID    string    `json:"evse_id"`
}

// CDRForwardedEvent is published when a session is settled.
type CDRForwardedEvent struct {
	SessionID    string    `json:"session_id"`
	EVSEID       string    `json:"evse_id"`
	Token        string    `json:"token"`
	SessionStart time.Time `json:"session_start"`
	SessionEnd   time.Time `json:"session_end"`
}

// NatsNotifier publishes station and settlement events to NATS.
// Publish failures are logged, never propagated: notifications are
// fire-and-forget.
type NatsNotifier struct {
	conn   *nats.Conn
	logger *zap.Logger
}

// NewNatsNotifier connects to the given NATS URL.
func NewNatsNotifier(url string, logger *zap.Logger) (*NatsNotifier, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}
	return &NatsNotifier{conn: conn, logger: logger}, nil
}

// Close drains the connection.
func (n *NatsNotifier) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}

// BeforeAdd never vetoes; the notifier only observes.
func (n *NatsNotifier) BeforeAdd(ctx station.AddHookContext) bool {
	return true
}

// AfterAdd publishes the committed addition.
func (n *NatsNotifier) AfterAdd(ctx station.AddHookContext) {
	n.publish(subjectEVSEAdded, EVSEAddedEvent{
		Timestamp: ctx.Timestamp,
		StationID: ctx.StationID.String(),
		EVSEID:    ctx.EVSE.ID().String(),
	})
}

// Forward announces a settled session. Implements authorizer.CDRSink;
// the error is always nil because publishing is fire-and-forget.
func (n *NatsNotifier) Forward(_ context.Context, cdr authorizer.ChargeDetailRecord) error {
	n.publish(subjectCDRForwarded, CDRForwardedEvent{
		SessionID:    cdr.SessionID.String(),
		EVSEID:       cdr.EVSEID.String(),
		Token:        cdr.Token.String(),
		SessionStart: cdr.SessionStart,
		SessionEnd:   cdr.SessionEnd,
	})
	return nil
}

func (n *NatsNotifier) publish(subject string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		n.logger.Error("failed to encode event", zap.String("subject", subject), zap.Error(err))
		return
	}
	if err := n.conn.Publish(subject, data); err != nil {
		n.logger.Warn("failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}
