package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

const (
	TableServiceRequests = "service_requests"
	TableProfiles        = "profiles"
	TableTransactions    = "transactions"
	TableRatings         = "ratings"
)

// Event is one committed row change. Old is empty for inserts and New is
// empty for deletes.
type Event struct {
	Table       string          `json:"table"`
	Type        EventType       `json:"type"`
	Old         json.RawMessage `json:"old,omitempty"`
	New         json.RawMessage `json:"new,omitempty"`
	CommittedAt time.Time       `json:"committed_at"`
}

// Row returns the most recent payload of the event: New, or Old for deletes.
func (e Event) Row() json.RawMessage {
	if len(e.New) > 0 {
		return e.New
	}
	return e.Old
}

type Filter func(Event) bool

// MatchID keeps events whose row id equals id.
func MatchID(id string) Filter {
	return func(e Event) bool {
		var row struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(e.Row(), &row); err != nil {
			return false
		}
		return row.ID == id
	}
}

const subscriberBuffer = 32

// Feed fans committed row changes out to subscribers, one topic per table.
type Feed struct {
	pubSub *gochannel.GoChannel
	log    zerolog.Logger
}

func NewFeed(log zerolog.Logger) *Feed {
	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            subscriberBuffer,
		BlockPublishUntilSubscriberAck: true,
	}, watermill.NopLogger{})

	return &Feed{pubSub: pubSub, log: log}
}

func (f *Feed) Publish(table string, typ EventType, before, after any) error {
	event := Event{Table: table, Type: typ, CommittedAt: time.Now().UTC()}

	var err error
	if before != nil {
		if event.Old, err = json.Marshal(before); err != nil {
			return fmt.Errorf("marshal old row: %w", err)
		}
	}
	if after != nil {
		if event.New, err = json.Marshal(after); err != nil {
			return fmt.Errorf("marshal new row: %w", err)
		}
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return f.pubSub.Publish(table, message.NewMessage(watermill.NewUUID(), payload))
}

// Subscribe starts delivering events of table that pass filter. A nil filter
// keeps everything. The subscription ends when ctx is done or Unsubscribe is
// called, whichever comes first.
func (f *Feed) Subscribe(ctx context.Context, table string, filter Filter) (*Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)

	messages, err := f.pubSub.Subscribe(subCtx, table)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe %s: %w", table, err)
	}

	sub := &Subscription{
		events: make(chan Event, subscriberBuffer),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(sub.done)
		defer close(sub.events)

		for msg := range messages {
			var event Event
			err := json.Unmarshal(msg.Payload, &event)
			msg.Ack()
			if err != nil {
				f.log.Warn().Err(err).Str("table", table).Msg("dropping malformed change event")
				continue
			}
			if filter != nil && !filter(event) {
				continue
			}

			select {
			case sub.events <- event:
			case <-subCtx.Done():
				return
			default:
				f.log.Warn().Str("table", table).Msg("subscriber lagging, change event dropped")
			}
		}
	}()

	return sub, nil
}

func (f *Feed) Close() error {
	return f.pubSub.Close()
}

type Subscription struct {
	events chan Event
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
}

func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Unsubscribe stops delivery and waits for the forwarding goroutine to exit.
// Calling it more than once is safe.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.cancel)
	<-s.done
}
