package mail

import (
	"context"       // Request-scoped cancellation
	"encoding/json" // Message payloads
	"errors"        // Sentinel errors
	"fmt"           // Error wrapping
	"sync"          // Guards the shared connection
	"time"          // Backoff and timestamps

	amqp "github.com/rabbitmq/amqp091-go" // RabbitMQ client
	"github.com/sirupsen/logrus"          // Structured logging
)

// QueuePublisher enqueues messages on a durable RabbitMQ queue. It keeps one connection
// and channel open across messages and redials when the broker has dropped them.
type QueuePublisher struct {
	url   string
	queue string
	log   *logrus.Entry
	dial  func(url string) (*amqp.Connection, error)

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewQueuePublisher returns a publisher that connects on first use
func NewQueuePublisher(url, queue string, log *logrus.Entry) *QueuePublisher {
	return &QueuePublisher{url: url, queue: queue, log: log, dial: amqp.Dial}
}

// Send publishes msg as a persistent JSON message. A publish on a stale channel is
// retried once over a fresh connection.
func (p *QueuePublisher) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // Survive broker restarts
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for attempt := 0; ; attempt++ {
		err = p.publish(ctx, pub)
		if err == nil {
			return nil
		}
		p.reset()
		if attempt > 0 || ctx.Err() != nil {
			return err
		}
		p.log.WithError(err).Warn("mail publisher: publish failed, reconnecting")
	}
}

func (p *QueuePublisher) publish(ctx context.Context, pub amqp.Publishing) error {
	if p.ch == nil || p.ch.IsClosed() || p.conn.IsClosed() {
		if err := p.connect(); err != nil {
			return err
		}
	}
	return p.ch.PublishWithContext(ctx, "", p.queue, false, false, pub)
}

func (p *QueuePublisher) connect() error {
	p.reset()
	conn, err := p.dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	if _, err := declare(ch, p.queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}
	p.conn, p.ch = conn, ch
	return nil
}

// reset drops the cached connection, the next publish dials again
func (p *QueuePublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
}

// Close releases the broker connection
func (p *QueuePublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
}

// Consumer drains the mail queue into a delivering Mailer
type Consumer struct {
	URL     string        // AMQP broker URL
	Queue   string        // Queue name
	Deliver Mailer        // Final transport
	Log     *logrus.Entry // Logger
}

// Run consumes until ctx is cancelled, reconnecting with backoff on broker failures
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.WithError(err).WithField("retry_in", backoff.String()).Warn("mail consumer: dial failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // Reset after successful connect

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.WithError(err).Warn("mail consumer: loop ended, reconnecting")
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	if _, err := declare(ch, c.Queue); err != nil {
		return err
	}
	deliveries, err := ch.Consume(c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Handle(ctx, d.Body); err != nil {
				c.Log.WithError(err).Error("mail consumer: delivery failed")
				_ = d.Nack(false, false) // Reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle decodes one queued message and delivers it
func (c *Consumer) Handle(ctx context.Context, body []byte) error {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if msg.To == "" {
		return errors.New("message without recipient")
	}
	if err := c.Deliver.Send(ctx, msg); err != nil {
		return err
	}
	c.Log.WithFields(logrus.Fields{"to": msg.To, "subject": msg.Subject}).Info("Mail delivered")
	return nil
}

func declare(ch *amqp.Channel, queue string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil) // Durable queue
	if err != nil {
		return q, fmt.Errorf("queue declare: %w", err)
	}
	return q, nil
}
