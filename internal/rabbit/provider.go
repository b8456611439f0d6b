package rabbit

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
)

var ErrNotConnected = errors.New("rabbit provider is not connected")

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Queue    string
}

type Provider struct {
	mu         sync.Mutex
	conn       *amqp.Connection
	queue      amqp.Queue
	channel    *amqp.Channel
	connString string
	queueName  string
}

func New(config Config) *Provider {
	return &Provider{
		connString: fmt.Sprintf(
			"amqp://%s:%s@%s:%d/",
			config.User,
			config.Password,
			config.Host,
			config.Port,
		),
		queueName: config.Queue,
	}
}

func (r *Provider) Connect() error {
	conn, err := amqp.Dial(r.connString)
	if err != nil {
		return fmt.Errorf("failed to dial rabbit: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}
	queue, err := channel.QueueDeclare(
		r.queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to declare queue %q: %w", r.queueName, err)
	}

	r.mu.Lock()
	r.conn, r.channel, r.queue = conn, channel, queue
	r.mu.Unlock()
	return nil
}

func (r *Provider) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return nil
	}
	err := r.conn.Close()
	r.conn, r.channel = nil, nil
	return err
}

func (r *Provider) Publish(_ context.Context, body []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.channel == nil {
		return ErrNotConnected
	}
	return r.channel.Publish(
		"",           // exchange
		r.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		})
}

type MessageProcess = func(msg amqp.Delivery)

// Consume blocks until ctx is done or the broker closes the delivery channel.
func (r *Provider) Consume(ctx context.Context, process MessageProcess) error {
	r.mu.Lock()
	channel := r.channel
	r.mu.Unlock()
	if channel == nil {
		return ErrNotConnected
	}

	msgs, err := channel.Consume(
		r.queue.Name, // queue
		"",           // consumer
		true,         // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return fmt.Errorf("failed to consume %q: %w", r.queue.Name, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed by broker")
			}
			process(m)
		}
	}
}
