package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/carbnb/apiserver/internal/mq"
)

// Envelope is the wire format published to the notifications channel.
type Envelope struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher publishes notification envelopes to the message queue.
// Delivery is handled asynchronously by the worker command.
type Dispatcher struct {
	queue *mq.Queue
}

// NewDispatcher constructs a Dispatcher over the provided queue.
func NewDispatcher(queue *mq.Queue) *Dispatcher {
	return &Dispatcher{queue: queue}
}

func (d *Dispatcher) publish(ctx context.Context, kind Kind, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	data, err := json.Marshal(Envelope{Kind: kind, Payload: raw})
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", kind, err)
	}
	_, err = d.queue.Publish(ctx, Channel, data, map[string]string{"kind": string(kind)})
	return err
}

func (d *Dispatcher) CarStatus(ctx context.Context, p CarStatusPayload) error {
	return d.publish(ctx, KindCarStatus, p)
}

func (d *Dispatcher) BookingStatus(ctx context.Context, p BookingStatusPayload) error {
	return d.publish(ctx, KindBookingStatus, p)
}

func (d *Dispatcher) RegistrationPending(ctx context.Context, p AccountPayload) error {
	return d.publish(ctx, KindRegistrationPending, p)
}

func (d *Dispatcher) OwnerApproved(ctx context.Context, p AccountPayload) error {
	return d.publish(ctx, KindOwnerApproved, p)
}

func (d *Dispatcher) UserDeclined(ctx context.Context, p AccountPayload) error {
	return d.publish(ctx, KindUserDeclined, p)
}
