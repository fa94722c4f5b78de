package events

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// RabbitPublisher emits stock.updated events so other storefront services
// (search, recommendations, low-stock alerts) can react without polling the
// stock API. Publishing is best-effort: a broker outage must not fail the
// stock write that triggered the event.
type RabbitPublisher struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	queue  string
	logger zerolog.Logger
}

type StockUpdatedEvent struct {
	ItemID     string    `json:"item_id"`
	StockCount int       `json:"stock_count"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewRabbitPublisher(url, queue string, logger zerolog.Logger) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &RabbitPublisher{conn: conn, ch: ch, queue: queue, logger: logger}, nil
}

func (p *RabbitPublisher) StockUpdated(ctx context.Context, itemID string, stockCount int) {
	event := StockUpdatedEvent{
		ItemID:     itemID,
		StockCount: stockCount,
		UpdatedAt:  time.Now().UTC(),
	}
	body, _ := json.Marshal(event)

	err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		p.logger.Error().Err(err).Str("item", itemID).Msg("publish stock.updated failed")
	}
}

func (p *RabbitPublisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
