package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer reads booking.changed messages and appends one line per
// message to <LogDir>/booking.log.
type Consumer struct {
	URL    string
	LogDir string
	Logger *zap.Logger
}

// NewConsumer returns a Consumer writing to logs/booking.log.
func NewConsumer(url string, logger *zap.Logger) *Consumer {
	return &Consumer{URL: url, LogDir: "logs", Logger: logger}
}

// Run connects to RabbitMQ, declares the booking.changed queue (durable)
// and consumes messages.  It reconnects with exponential backoff and only
// returns once ctx is cancelled.  Messages that cannot be handled are
// rejected without requeue so the loop keeps going.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := dial(ctx, c.URL, DefaultDialTimeout)
		if err != nil {
			c.Logger.Warn("booking-consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Logger.Warn("booking-consumer: consume loop ended; reconnecting", zap.Error(err))
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Logger.Warn("booking-consumer: set QoS failed", zap.Error(err))
	}
	if _, err = ch.QueueDeclare(BookingQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(BookingQueueName, "", false, false, false, false, nil)
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
			if err := c.HandleMessage(d.Body); err != nil {
				c.Logger.Error("booking-consumer: handle message failed", zap.Error(err))
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one message and appends it to the booking log.
func (c *Consumer) HandleMessage(body []byte) error {
	var ev BookingChangedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll(c.LogDir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(c.LogDir, "booking.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLogLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLogLine renders an event as a single human-friendly line.
func FormatLogLine(ev BookingChangedEvent) string {
	affected := "[]"
	if len(ev.Affected) > 0 {
		affected = fmt.Sprintf("[%s]", strings.Join(ev.Affected, ","))
	}
	restriction := ev.Restriction
	if restriction == "" {
		restriction = "none"
	}
	return fmt.Sprintf("[%s] Bed %s | event_id=%d | bed=%s | name=%q | restriction=%s | affected=%s\n",
		ev.OccurredAt, ev.Action, ev.EventID, ev.BedID, ev.Name, restriction, affected)
}
