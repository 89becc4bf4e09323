package mq

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/carbnb/apiserver/config"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitBackend delivers events through a RabbitMQ queue per channel.
// This is the default in local development.
type RabbitBackend struct {
	conn    *amqp.Connection
	channel *amqp.Channel

	queueDurable    bool
	queueAutoDelete bool
}

// NewRabbitBackend dials the configured broker and opens a channel.
func NewRabbitBackend(cfg config.RabbitMQConfig) (*RabbitBackend, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("rabbitmq url is required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if cfg.PrefetchCount > 0 {
		if err := ch.Qos(cfg.PrefetchCount, 0, false); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, err
		}
	}

	return &RabbitBackend{
		conn:            conn,
		channel:         ch,
		queueDurable:    cfg.QueueDurable,
		queueAutoDelete: cfg.QueueAutoDelete,
	}, nil
}

// Publish declares the queue if needed and sends one JSON message on
// the default exchange.
func (b *RabbitBackend) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(channel) == "" {
		return "", errors.New("rabbitmq channel is required")
	}
	if err := b.declareQueue(channel); err != nil {
		return "", err
	}

	headers := make(amqp.Table, len(attrs))
	for k, v := range attrs {
		headers[k] = v
	}

	id := randomID()
	err := b.channel.PublishWithContext(ctx, "", channel, false, false, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   id,
		Headers:     headers,
		Body:        data,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Subscribe consumes the queue with manual acks. Failed messages are
// requeued.
func (b *RabbitBackend) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if strings.TrimSpace(channel) == "" {
		return errors.New("rabbitmq channel is required")
	}
	if err := b.declareQueue(channel); err != nil {
		return err
	}

	tag := "consumer-" + randomID()
	deliveries, err := b.channel.Consume(channel, tag, false, false, false, false, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = b.channel.Cancel(tag, false)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("rabbitmq delivery channel closed")
			}
			msg := Message{
				ID:         d.MessageId,
				Data:       d.Body,
				Attributes: headerAttrs(d.Headers),
			}
			if err := handler(ctx, msg); err != nil {
				_ = d.Nack(false, true)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (b *RabbitBackend) Close() error {
	if b.channel != nil {
		_ = b.channel.Close()
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}

func (b *RabbitBackend) declareQueue(name string) error {
	_, err := b.channel.QueueDeclare(name, b.queueDurable, b.queueAutoDelete, false, false, nil)
	return err
}

func headerAttrs(headers amqp.Table) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(headers))
	for k, v := range headers {
		switch typed := v.(type) {
		case string:
			attrs[k] = typed
		case []byte:
			attrs[k] = string(typed)
		default:
			attrs[k] = fmt.Sprint(v)
		}
	}
	return attrs
}

func randomID() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return ""
	}
	return hex.EncodeToString(buf[:])
}
