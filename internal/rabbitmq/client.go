package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/RecipeApp/internal/messaging/payloads"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Client представляет собой клиент RabbitMQ
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *slog.Logger
}

// NewClient подключается к RabbitMQ и объявляет очередь задач очистки изображений
func NewClient(url, queueName string, logger *slog.Logger) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open RabbitMQ channel: %w", err)
	}

	// Идемпотентно: очередь создается, если ее нет.
	q, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %q: %w", queueName, err)
	}

	// по одному сообщению на потребителя, пока не будет ack
	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("set RabbitMQ qos: %w", err)
	}

	logger.Info("RabbitMQ connected", "queue", q.Name, "messages", q.Messages)
	return &Client{conn: conn, channel: ch, queue: q, logger: logger}, nil
}

// Close закрывает канал и соединение RabbitMQ
func (c *Client) Close() error {
	var firstErr error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Error("failed to close RabbitMQ channel", "error", err)
			firstErr = err
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Error("failed to close RabbitMQ connection", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	c.logger.Info("RabbitMQ connection closed")
	return firstErr
}

// PublishImageCleanup публикует задачу удаления объекта. Реализует ports.ImageCleanupPublisher.
func (c *Client) PublishImageCleanup(ctx context.Context, payload payloads.ImageCleanupPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal image cleanup payload: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		publishCtx,
		"",           // exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish image cleanup: %w", err)
	}

	c.logger.Info("image cleanup published", "queue", c.queue.Name, "key", payload.Key)
	return nil
}

// StartConsumingImageCleanup регистрирует потребителя и обрабатывает сообщения в горутине.
// Реализует ports.ImageCleanupConsumer.
func (c *Client) StartConsumingImageCleanup(ctx context.Context, handler func(context.Context, payloads.ImageCleanupPayload) error) error {
	msgs, err := c.channel.Consume(
		c.queue.Name,
		"",    // consumer
		false, // auto-ack: подтверждаем вручную
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	c.logger.Info("consumer registered, waiting for messages", "queue", c.queue.Name)

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Warn("RabbitMQ delivery channel closed, stopping consumer")
					return
				}
				processDelivery(ctx, msg, handler, c.logger)
			case <-ctx.Done():
				c.logger.Info("context cancelled, stopping RabbitMQ consumer")
				return
			}
		}
	}()

	return nil
}

// processDelivery декодирует сообщение и вызывает handler.
// Некорректный JSON отбрасывается без возврата в очередь, ошибка обработки возвращает сообщение в очередь.
func processDelivery(ctx context.Context, msg amqp.Delivery, handler func(context.Context, payloads.ImageCleanupPayload) error, logger *slog.Logger) {
	var payload payloads.ImageCleanupPayload
	if err := json.Unmarshal(msg.Body, &payload); err != nil || payload.Key == "" {
		logger.Error("dropping malformed message", "error", err, "body", string(msg.Body))
		if err := msg.Nack(false, false); err != nil {
			logger.Error("failed to nack malformed message", "error", err)
		}
		return
	}

	if err := handler(ctx, payload); err != nil {
		logger.Error("failed to process message, requeueing", "key", payload.Key, "error", err)
		if err := msg.Nack(false, true); err != nil {
			logger.Error("failed to nack message", "error", err)
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		logger.Error("failed to ack message", "error", err)
		return
	}
	logger.Debug("message processed", "key", payload.Key)
}
