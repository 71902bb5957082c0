package events

import (
	"context"
	"testing"
)

func TestBus_PublishAndCancel(t *testing.T) {
	b := NewBus()

	var got []Event
	cancel := b.Subscribe(func(e Event) { got = append(got, e) })

	_ = b.Publish(context.Background(), Event{Kind: KindMessageSent, ConversationID: "c1"})
	if len(got) != 1 || got[0].ConversationID != "c1" {
		t.Fatalf("expected one event for c1, got %+v", got)
	}

	cancel()
	_ = b.Publish(context.Background(), Event{Kind: KindMessageSent, ConversationID: "c2"})
	if len(got) != 1 {
		t.Fatalf("handler called after cancel: %+v", got)
	}
}

func TestBus_FansOutToEveryHandler(t *testing.T) {
	b := NewBus()
	var a, c int
	b.Subscribe(func(Event) { a++ })
	b.Subscribe(func(Event) { c++ })

	_ = b.Publish(context.Background(), Event{Kind: KindTypingChanged})
	if a != 1 || c != 1 {
		t.Fatalf("expected both handlers called once, got %d and %d", a, c)
	}
}
