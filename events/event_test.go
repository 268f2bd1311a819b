package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"littlelemon/entity"
	"littlelemon/pkg/money"

	"github.com/rabbitmq/amqp091-go"
)

type recorder struct {
	got []Event
	err error
}

func (r *recorder) Publish(_ context.Context, ev Event) error {
	r.got = append(r.got, ev)
	return r.err
}

func sampleOrder() *entity.Order {
	crew := uint(7)
	date, _ := entity.ParseDate("2026-03-04")
	return &entity.Order{
		ID:             42,
		UserID:         3,
		DeliveryCrewID: &crew,
		Total:          money.MustParse("21.98"),
		Date:           date,
	}
}

func TestBuildPublishing(t *testing.T) {
	ev := FromOrder(OrderCreated, sampleOrder())

	key, msg, err := buildPublishing(ev)
	if err != nil {
		t.Fatalf("buildPublishing: %v", err)
	}
	if key != "order.created" {
		t.Errorf("routing key = %q", key)
	}
	if msg.ContentType != "application/json" || msg.DeliveryMode != amqp091.Persistent {
		t.Errorf("unexpected headers: %+v", msg)
	}

	var body map[string]any
	if err := json.Unmarshal(msg.Body, &body); err != nil {
		t.Fatalf("body is not json: %v", err)
	}
	if body["total"] != "21.98" || body["date"] != "2026-03-04" || body["delivery_crew"] != float64(7) {
		t.Errorf("body = %v", body)
	}
}

func TestBuildPublishingRequiresType(t *testing.T) {
	if _, _, err := buildPublishing(Event{OrderID: 1}); err == nil {
		t.Fatal("expected error for untyped event")
	}
}

func TestMultiPublishesToAllAndJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	ok := &recorder{}
	bad := &recorder{err: boom}

	err := Multi{ok, nil, bad, Nop{}}.Publish(context.Background(), FromOrder(OrderDeleted, sampleOrder()))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if len(ok.got) != 1 || len(bad.got) != 1 {
		t.Fatalf("deliveries: ok=%d bad=%d", len(ok.got), len(bad.got))
	}
}
