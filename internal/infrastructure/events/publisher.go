// Package events publishes analysis lifecycle events to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"skill-gap/internal/config"
)

const TypeAnalysisCompleted = "analysis_completed"

// Event is the payload shared by the websocket hub and the AMQP exchange.
type Event struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	AnalysisID string    `json:"analysis_id"`
	RoleID     string    `json:"role_id"`
	Overall    int       `json:"overall"`
	CreatedAt  time.Time `json:"created_at"`
}

func RoutingKey(userID string) string {
	return "analysis." + userID
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// NopPublisher is used when AMQP_URL is not set.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, ev Event) error { return nil }
func (NopPublisher) Close() error                               { return nil }

type AMQPPublisher struct {
	conn     *amqp.Connection
	exchange string
	logger   *log.Logger

	mu sync.Mutex
	ch *amqp.Channel
}

// NewPublisher dials RabbitMQ and declares the topic exchange. Without a URL
// it returns a NopPublisher.
func NewPublisher(cfg config.EventsConfig, logger *log.Logger) (Publisher, error) {
	if strings.TrimSpace(cfg.AMQPURL) == "" {
		return NopPublisher{}, nil
	}
	if logger == nil {
		logger = log.Default()
	}
	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		return nil, fmt.Errorf("error connecting to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: cfg.Exchange, logger: logger}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	if p == nil {
		return errors.New("nil publisher")
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		ch, err := p.conn.Channel()
		if err != nil {
			return err
		}
		p.ch = ch
	}
	err = p.ch.Publish(
		p.exchange,
		RoutingKey(ev.UserID),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    ev.CreatedAt,
			Type:         ev.Type,
			Body:         body,
		},
	)
	if err != nil {
		// the channel is unusable after an error; reopen on the next publish
		_ = p.ch.Close()
		p.ch = nil
		p.logger.Printf("[Events] publish failed | type=%s user_id=%s err=%v", ev.Type, ev.UserID, err)
	}
	return err
}

func (p *AMQPPublisher) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	return p.conn.Close()
}
