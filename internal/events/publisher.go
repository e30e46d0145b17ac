package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// CheckoutCompletedItem mirrors one cart line at completion time.
type CheckoutCompletedItem struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CheckoutCompleted is published after the cart is cleared, for downstream
// consumers (notifications, fulfilment projections).
type CheckoutCompleted struct {
	CheckoutID  string                  `json:"checkout_id"`
	Owner       string                  `json:"user_id"`
	OrderID     int64                   `json:"order_id"`
	Items       []CheckoutCompletedItem `json:"items"`
	TotalAmount decimal.Decimal         `json:"total_amount"`
	Currency    string                  `json:"currency"`
	CompletedAt time.Time               `json:"completed_at"`
}

// Writer is satisfied by *kafka.Writer.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher emits checkout events with the same availability stance as cart
// reconciliation: best effort, failure logged and discarded.
type Publisher struct {
	writer Writer
	log    zerolog.Logger
}

func NewPublisher(brokers []string, log zerolog.Logger) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "checkout-completed",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, log: log}
}

// NewPublisherWithWriter is used by tests and custom wiring.
func NewPublisherWithWriter(w Writer, log zerolog.Logger) *Publisher {
	return &Publisher{writer: w, log: log}
}

func (p *Publisher) CheckoutCompleted(ctx context.Context, ev CheckoutCompleted) {
	payload, err := json.Marshal(ev)
	if err != nil {
		p.log.Error().Err(err).Str("checkout_id", ev.CheckoutID).Msg("failed to marshal checkout event")
		return
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.CheckoutID),
		Value: payload,
	})
	if err != nil {
		p.log.Warn().Err(err).Str("checkout_id", ev.CheckoutID).Msg("failed to publish checkout event")
	}
}

func (p *Publisher) Close() error {
	if closer, ok := p.writer.(*kafka.Writer); ok {
		return closer.Close()
	}
	return nil
}
