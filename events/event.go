// Package events carries order lifecycle notifications out of the order
// engine. Events are published after the transaction commits; a failed
// publish never undoes the order change.
package events

import (
	"context"
	"errors"
	"time"

	"littlelemon/entity"
	"littlelemon/pkg/money"
)

type Type string

const (
	OrderCreated Type = "order.created"
	OrderUpdated Type = "order.updated"
	OrderDeleted Type = "order.deleted"
)

type Event struct {
	Type           Type         `json:"type"`
	OrderID        uint         `json:"order_id"`
	UserID         uint         `json:"user"`
	DeliveryCrewID *uint        `json:"delivery_crew"`
	Status         bool         `json:"status"`
	Total          money.Amount `json:"total"`
	Date           entity.Date  `json:"date"`
	At             time.Time    `json:"at"`
}

// FromOrder snapshots o into an event of the given type.
func FromOrder(typ Type, o *entity.Order) Event {
	return Event{
		Type:           typ,
		OrderID:        o.ID,
		UserID:         o.UserID,
		DeliveryCrewID: o.DeliveryCrewID,
		Status:         o.Status,
		Total:          o.Total,
		Date:           o.Date,
		At:             time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
