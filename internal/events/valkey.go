package events

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/valkey-io/valkey-go"
)

// DefaultChannel is the pub/sub channel shared by every instance.
const DefaultChannel = "pulsechat:events"

// ValkeyBroker publishes events to a Valkey channel and, from Run, feeds
// every event seen on that channel into a local Bus. With one broker per
// instance, subscribers connected anywhere see every change.
type ValkeyBroker struct {
	client  valkey.Client
	channel string
	local   *Bus
}

// NewValkeyBroker connects to the given addresses.
func NewValkeyBroker(addrs []string, channel string, local *Bus) (*ValkeyBroker, error) {
	client, err := valkey.NewClient(valkey.ClientOption{InitAddress: addrs})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to valkey")
	}
	if channel == "" {
		channel = DefaultChannel
	}
	return &ValkeyBroker{client: client, channel: channel, local: local}, nil
}

// Publish sends e to the shared channel. Local delivery happens when the
// message comes back through Run.
func (b *ValkeyBroker) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "failed to encode event")
	}
	cmd := b.client.B().Publish().Channel(b.channel).Message(string(payload)).Build()
	if err := b.client.Do(ctx, cmd).Error(); err != nil {
		return errors.Wrapf(err, "failed to publish %s", e.Kind)
	}
	return nil
}

// Run subscribes to the channel and blocks until ctx is done or the
// subscription fails.
func (b *ValkeyBroker) Run(ctx context.Context) error {
	cmd := b.client.B().Subscribe().Channel(b.channel).Build()
	err := b.client.Receive(ctx, cmd, func(msg valkey.PubSubMessage) {
		var e Event
		if err := json.Unmarshal([]byte(msg.Message), &e); err != nil {
			jww.WARN.Printf("dropping malformed event on %s: %v", msg.Channel, err)
			return
		}
		_ = b.local.Publish(ctx, e)
	})
	if err != nil && ctx.Err() == nil {
		return errors.Wrap(err, "valkey subscription ended")
	}
	return nil
}

// Close releases the client.
func (b *ValkeyBroker) Close() {
	b.client.Close()
}
