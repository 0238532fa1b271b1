package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestDispatcherContinuesAfterFailingHandler(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	var calls []string
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "panics")
		panic("handler bug")
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "last")
		return nil
	})
	d.SubscribeAll(func(context.Context, Event) error {
		calls = append(calls, "wildcard")
		return nil
	})
	d.Subscribe(EventTicketAssigned, func(context.Context, Event) error {
		calls = append(calls, "unrelated")
		return nil
	})

	d.Publish(context.Background(), NewEvent(EventTicketCreated, 7, Actor{Type: ActorCustomer}, nil))

	want := []string{"first", "panics", "last", "wildcard"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("calls = %v want %v", calls, want)
		}
	}
}

func TestKafkaPublisherDisabledWithoutBrokers(t *testing.T) {
	p := NewKafkaPublisher(nil, "tickets", nil)
	if p.Enabled() {
		t.Fatalf("publisher without brokers must be disabled")
	}
	if err := p.Publish(context.Background(), NewEvent(EventTicketCreated, 1, Actor{}, nil)); err != nil {
		t.Fatalf("disabled publish returned %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestEncodeMessageKeysByTicket(t *testing.T) {
	event := NewEvent(EventTicketStatusChanged, 42, Actor{Type: ActorAdmin}, TicketStatusChangedPayload{NewStatus: "resolved"})
	msg, err := encodeMessage(event)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(msg.Key) != "42" {
		t.Fatalf("key = %q", msg.Key)
	}
	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != string(EventTicketStatusChanged) {
		t.Fatalf("headers = %+v", msg.Headers)
	}
	var decoded map[string]any
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["type"] != string(EventTicketStatusChanged) || decoded["ticket_id"].(float64) != 42 {
		t.Fatalf("unexpected body %v", decoded)
	}
}
