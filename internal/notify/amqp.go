package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	routingKeyReminderSchedule = "reminder.schedule"
	routingKeyReminderCancel   = "reminder.cancel"
	routingKeyCancellation     = "session.cancelled"
	routingKeyReconciliation   = "refund.reconcile"
)

// AMQPNotifier publishes reminder instructions and session events to a topic
// exchange consumed by the external notification pipeline. It implements
// both Transport and EventPublisher.
type AMQPNotifier struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewAMQPNotifier(url, exchange string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPNotifier{conn: conn, ch: ch, exchange: exchange}, nil
}

type scheduleFireMessage struct {
	Handle  string          `json:"handle"`
	FireAt  time.Time       `json:"fire_at"`
	Payload ReminderPayload `json:"payload"`
}

type cancelFireMessage struct {
	Handle string `json:"handle"`
}

func (n *AMQPNotifier) ScheduleFire(
	ctx context.Context,
	handle string,
	fireAt time.Time,
	payload ReminderPayload,
) error {
	return n.publishJSON(ctx, routingKeyReminderSchedule, scheduleFireMessage{
		Handle:  handle,
		FireAt:  fireAt,
		Payload: payload,
	})
}

func (n *AMQPNotifier) Cancel(ctx context.Context, handle string) error {
	return n.publishJSON(ctx, routingKeyReminderCancel, cancelFireMessage{Handle: handle})
}

func (n *AMQPNotifier) PublishCancellation(ctx context.Context, event CancellationEvent) error {
	return n.publishJSON(ctx, routingKeyCancellation, event)
}

func (n *AMQPNotifier) PublishRefundReconciliation(
	ctx context.Context,
	event RefundReconciliationEvent,
) error {
	return n.publishJSON(ctx, routingKeyReconciliation, event)
}

func (n *AMQPNotifier) publishJSON(ctx context.Context, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return n.ch.PublishWithContext(ctx, n.exchange, key, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

func (n *AMQPNotifier) Close() error {
	if n.ch != nil {
		_ = n.ch.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
