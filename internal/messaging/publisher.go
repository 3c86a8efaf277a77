package messaging

import (
	"context"
	"sync"
)

// Routing keys for domain events
const (
	KeyOrderCreated   = "orden.creada"
	KeyOrderPaid      = "orden.pagada"
	KeyOrderCancelled = "orden.cancelada"
	KeyOrderRefunded  = "orden.reembolsada"
	KeyOrderDeleted   = "orden.eliminada"
	KeyTicketBought   = "boleto.comprado"
	KeyTicketReleased = "boleto.liberado"
)

// Publisher delivers domain events after the change that produced them has committed
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }

// Message is an event captured by a MemoryPublisher
type Message struct {
	RoutingKey string
	Payload    interface{}
}

// MemoryPublisher keeps published events in memory
type MemoryPublisher struct {
	mu       sync.Mutex
	messages []Message
	Err      error
}

func (p *MemoryPublisher) Publish(_ context.Context, routingKey string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.messages = append(p.messages, Message{RoutingKey: routingKey, Payload: payload})
	return nil
}

// Messages returns a copy of everything published so far
func (p *MemoryPublisher) Messages() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Message(nil), p.messages...)
}

// Keys returns the routing keys published so far, in order
func (p *MemoryPublisher) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, len(p.messages))
	for i, m := range p.messages {
		keys[i] = m.RoutingKey
	}
	return keys
}
