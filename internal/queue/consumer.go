package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Mailer delivers a single email.
type Mailer interface {
	Send(to, subject, body string) error
}

// Consumer runs the background workers: the mail worker drains
// notifications.email and the audit worker appends booking.events to
// AuditPath.
type Consumer struct {
	URL       string
	AuditPath string
	Mailer    Mailer
	Log       *zap.Logger

	mu sync.Mutex
}

// NewConsumer returns a consumer writing the audit trail to logs/booking.log.
func NewConsumer(url string, mailer Mailer, log *zap.Logger) *Consumer {
	if url == "" {
		url = DefaultURL
	}
	return &Consumer{
		URL:       url,
		AuditPath: filepath.Join("logs", "booking.log"),
		Mailer:    mailer,
		Log:       log,
	}
}

// Run starts one reconnecting loop per queue and blocks until ctx is
// cancelled.
func (c *Consumer) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); c.run(ctx, NotificationQueue, c.handleNotification) }()
	go func() { defer wg.Done(); c.run(ctx, BookingQueue, c.handleBookingEvent) }()
	wg.Wait()
}

func (c *Consumer) run(ctx context.Context, queue string, handle func([]byte) error) {
	log := c.Log.With(zap.String("queue", queue))
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			log.Warn("failed to dial broker", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn, queue, handle)
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
		log.Warn("consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection, queue string, handle func([]byte) error) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.Warn("set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
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
			if err := handle(d.Body); err != nil {
				c.Log.Error("handle message failed", zap.String("queue", queue), zap.Error(err))
				_ = d.Nack(false, false) // do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handleNotification(body []byte) error {
	var n Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if n.To == "" {
		return errors.New("notification without recipient")
	}
	if err := c.Mailer.Send(n.To, n.Subject, n.Body); err != nil {
		return fmt.Errorf("send %s: %w", n.ID, err)
	}
	c.Log.Info("email sent", zap.String("id", n.ID), zap.String("to", n.To))
	return nil
}

func (c *Consumer) handleBookingEvent(body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] Booking %s | booking_id=%d | user_id=%d | hotel_id=%d | room_id=%d | amount=%s | checked_out=%t | event_id=%s\n",
		ev.OccurredAt.Format(time.RFC3339), ev.Status, ev.BookingID, ev.UserID, ev.HotelID, ev.RoomID, ev.Amount, ev.CheckedOut, ev.ID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(c.AuditPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(c.AuditPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// sleep waits for d or until ctx is done.  It reports whether the full
// duration elapsed.
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
