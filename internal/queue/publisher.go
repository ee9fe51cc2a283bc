// Package queue publishes domain events to RabbitMQ. The upstream ticketing
// authority consumes these as a best-effort mirror of confirmed sales;
// publish failures are logged and surfaced but never interrupt the sale.
package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/lmoretti/event-seat-reservation/internal/domain"
)

const saleConfirmedQueue = "sale.confirmed"

// SaleConfirmedEvent is the message published when a sale completes. It
// carries enough for the upstream authority to reconcile without querying
// this service back.
type SaleConfirmedEvent struct {
	SaleID      int64    `json:"sale_id"`
	EventID     int64    `json:"event_id"`
	HoldID      string   `json:"hold_id"`
	BuyerName   string   `json:"buyer_name"`
	Seats       []string `json:"seats"`
	Price       string   `json:"price"`
	ConfirmedAt string   `json:"confirmed_at"`
}

type Publisher struct {
	url    string
	logger *slog.Logger
}

func NewPublisher(url string, logger *slog.Logger) *Publisher {
	return &Publisher{
		url:    url,
		logger: logger,
	}
}

// PublishSaleConfirmed sends the sale to the sale.confirmed queue. The
// queue is declared durable and messages are persistent, so a broker
// restart does not lose confirmations that were already accepted.
func (p *Publisher) PublishSaleConfirmed(ctx context.Context, sale *domain.Sale) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.Error("rabbitmq dial failed", "error", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Error("rabbitmq channel open failed", "error", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		saleConfirmedQueue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		p.logger.Error("rabbitmq queue declare failed", "error", err)
		return err
	}

	seats := make([]string, len(sale.Seats))
	for i, seat := range sale.Seats {
		seats[i] = seat.String()
	}

	body, err := json.Marshal(SaleConfirmedEvent{
		SaleID:      sale.ID,
		EventID:     sale.EventID,
		HoldID:      sale.HoldID,
		BuyerName:   sale.BuyerName,
		Seats:       seats,
		Price:       sale.Price.String(),
		ConfirmedAt: sale.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx,
		"",                 // default exchange
		saleConfirmedQueue, // routing key = queue name
		false,              // mandatory
		false,              // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}
