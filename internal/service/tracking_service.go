package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"roadside-service/internal/model"
	"roadside-service/internal/realtime"
	"roadside-service/internal/tracking"
)

// Subscriber opens change feed subscriptions.
type Subscriber interface {
	Subscribe(ctx context.Context, table string, filter realtime.Filter) (*realtime.Subscription, error)
}

type TrackingService struct {
	requests *RequestService
	feed     Subscriber
	notifier tracking.Notifier
	log      zerolog.Logger
}

func NewTrackingService(requests *RequestService, feed Subscriber, notifier tracking.Notifier, log zerolog.Logger) *TrackingService {
	return &TrackingService{requests: requests, feed: feed, notifier: notifier, log: log}
}

// Follow streams tracking updates of the request with the given code to emit
// until ctx ends, the request is deleted or emit fails. The first update is
// the current state and raises no alerts.
func (s *TrackingService) Follow(ctx context.Context, code string, emit func(tracking.Update) error) error {
	req, err := s.requests.GetByTrackingCode(ctx, code)
	if err != nil {
		return err
	}

	sub, err := s.feed.Subscribe(ctx, realtime.TableServiceRequests, realtime.MatchID(req.ID.String()))
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	// re-read after subscribing so no change falls between the two
	req, err = s.requests.GetByTrackingCode(ctx, req.TrackingCode)
	if err != nil {
		return err
	}

	session := tracking.NewSession(s.notifier, "request:"+req.TrackingCode, s.log.With().Str("request_id", req.ID.String()).Logger())
	if err := emit(session.Apply(ctx, req)); err != nil {
		return err
	}
	return session.Run(ctx, sub, emit)
}

// ChangeFeed opens change feed subscriptions scoped to what the caller may see.
type ChangeFeed struct {
	feed Subscriber
}

func NewChangeFeed(feed Subscriber) *ChangeFeed {
	return &ChangeFeed{feed: feed}
}

func (c *ChangeFeed) Subscribe(ctx context.Context, principal model.Principal, table string) (*realtime.Subscription, error) {
	filter, err := visibleRows(principal, table)
	if err != nil {
		return nil, err
	}
	return c.feed.Subscribe(ctx, table, filter)
}

type partyColumns struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	ProviderID string `json:"provider_id"`
}

func visibleRows(principal model.Principal, table string) (realtime.Filter, error) {
	switch table {
	case realtime.TableServiceRequests, realtime.TableProfiles, realtime.TableTransactions, realtime.TableRatings:
	default:
		return nil, invalidInput("unknown table %q", table)
	}

	if principal.IsAdmin() {
		return nil, nil
	}

	self := principal.UserID.String()
	switch table {
	case realtime.TableServiceRequests, realtime.TableRatings:
		// a row stays visible on the event that moves it away from the caller
		return func(e realtime.Event) bool {
			return involves(e.Old, self) || involves(e.New, self)
		}, nil
	case realtime.TableProfiles:
		return realtime.MatchID(self), nil
	default:
		return nil, ErrPermissionDenied
	}
}

func involves(row json.RawMessage, userID string) bool {
	if len(row) == 0 {
		return false
	}
	var cols partyColumns
	if err := json.Unmarshal(row, &cols); err != nil {
		return false
	}
	return cols.CustomerID == userID || cols.ProviderID == userID
}
