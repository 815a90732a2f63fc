package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/football-club/internal/logging"
)

// MatchHandler reacts to one recorded match.
type MatchHandler func(ctx context.Context, ev MatchRecordedEvent) error

// Consumer listens to the match.recorded queue and hands each event to a
// MatchHandler.
type Consumer struct {
	url     string
	handle  MatchHandler
	log     logging.Logger
	backoff time.Duration
}

func NewConsumer(url string, handle MatchHandler, log logging.Logger) *Consumer {
	return &Consumer{url: url, handle: handle, log: log, backoff: time.Second}
}

// Run connects to RabbitMQ, declares the queue (durable) and consumes
// until ctx is cancelled. Broker failures trigger a reconnect with
// exponential backoff capped at 30s. A message that cannot be handled is
// rejected without requeue so the server keeps operating.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := c.backoff
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn(ctx, "match-consumer: failed to dial broker", "error", err, "retry_in", backoff.String())
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = c.backoff // reset after successful connect

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn(ctx, "match-consumer: consume loop ended; reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn(ctx, "match-consumer: set QoS failed", "error", err)
	}
	if _, err := ch.QueueDeclare(MatchRecordedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(MatchRecordedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handleMessage(ctx, d.Body); err != nil {
				c.log.Error(ctx, "match-consumer: handle message failed", "error", err)
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, body []byte) error {
	var ev MatchRecordedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.CompetitionID == 0 {
		return errors.New("event without competition_id")
	}
	if err := c.handle(ctx, ev); err != nil {
		return fmt.Errorf("match %d: %w", ev.MatchID, err)
	}
	c.log.Info(ctx, "match-consumer: standings updated",
		"competition_id", ev.CompetitionID, "match_id", ev.MatchID,
		"score", fmt.Sprintf("%d-%d", ev.HomeGoals, ev.AwayGoals))
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
