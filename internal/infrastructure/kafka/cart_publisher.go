package kafka

import (
	"context"
	"fmt"
	"log"

	"github.com/example/storefront-cart/internal/domain/cart"
)

// Publisher sends a keyed event to the broker
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// CartPublisher forwards cart mutations to Kafka. It is registered on the
// cart store as an observer.
type CartPublisher struct {
	publisher Publisher
}

func NewCartPublisher(publisher Publisher) *CartPublisher {
	return &CartPublisher{publisher: publisher}
}

func (p *CartPublisher) CartChanged(ctx context.Context, event cart.Event) error {
	if err := p.publisher.Publish(ctx, event.CartID, event); err != nil {
		return fmt.Errorf("failed to publish %s for cart %s: %w", event.Type, event.CartID, err)
	}
	log.Printf("[Kafka] Published %s for cart %s", event.Type, event.CartID)
	return nil
}

var _ cart.Observer = (*CartPublisher)(nil)
