package tracking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadside-service/internal/model"
	"roadside-service/internal/realtime"
)

type recordingNotifier struct {
	mu     sync.Mutex
	err    error
	alerts []Alert
}

func (n *recordingNotifier) Notify(_ context.Context, _ string, alert Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.alerts = append(n.alerts, alert)
	return nil
}

func fptr(v float64) *float64 {
	return &v
}

func trackedRequest(status model.RequestStatus, providerLat, providerLng float64) *model.ServiceRequest {
	return &model.ServiceRequest{
		ID:          uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		Status:      status,
		CustomerLat: fptr(5.60),
		CustomerLng: fptr(-0.19),
		ProviderLat: fptr(providerLat),
		ProviderLng: fptr(providerLng),
	}
}

func TestSessionApplyComputesDistanceAndNotifies(t *testing.T) {
	notifier := &recordingNotifier{}
	s := NewSession(notifier, "request:ABC", zerolog.Nop())

	first := s.Apply(context.Background(), trackedRequest(model.RequestStatusEnRoute, 5.61, -0.19))
	require.NotNil(t, first.DistanceKm)
	assert.InDelta(t, 1.11, *first.DistanceKm, 0.01)
	assert.Equal(t, []AlertKind{AlertApproaching}, kinds(first.Alerts))

	second := s.Apply(context.Background(), trackedRequest(model.RequestStatusEnRoute, 5.601, -0.19))
	assert.Equal(t, []AlertKind{AlertArrival}, kinds(second.Alerts))
	assert.Len(t, notifier.alerts, 2)
}

func TestSessionApplyUnknownDistance(t *testing.T) {
	s := NewSession(nil, "", zerolog.Nop())
	req := trackedRequest(model.RequestStatusAssigned, 0, 0)
	req.ProviderLat = nil

	update := s.Apply(context.Background(), req)
	assert.Nil(t, update.DistanceKm)
	assert.Empty(t, update.Alerts)
}

func TestSessionApplySwallowsPermissionDenied(t *testing.T) {
	notifier := &recordingNotifier{err: ErrPermissionDenied}
	s := NewSession(notifier, "request:ABC", zerolog.Nop())

	update := s.Apply(context.Background(), trackedRequest(model.RequestStatusEnRoute, 5.61, -0.19))
	assert.Len(t, update.Alerts, 1)
}

func TestSessionRunFollowsFeed(t *testing.T) {
	feed := realtime.NewFeed(zerolog.Nop())
	defer feed.Close()

	req := trackedRequest(model.RequestStatusAccepted, 5.62, -0.19)
	sub, err := feed.Subscribe(context.Background(), realtime.TableServiceRequests, realtime.MatchID(req.ID.String()))
	require.NoError(t, err)
	defer sub.Unsubscribe()

	s := NewSession(nil, "", zerolog.Nop())
	updates := make(chan Update, 4)
	done := make(chan error, 1)
	go func() {
		done <- s.Run(context.Background(), sub, func(u Update) error {
			updates <- u
			return nil
		})
	}()

	require.NoError(t, feed.Publish(realtime.TableServiceRequests, realtime.EventUpdate, nil, req))
	enRoute := *req
	enRoute.Status = model.RequestStatusEnRoute
	require.NoError(t, feed.Publish(realtime.TableServiceRequests, realtime.EventUpdate, req, &enRoute))
	require.NoError(t, feed.Publish(realtime.TableServiceRequests, realtime.EventDelete, &enRoute, nil))

	first := <-updates
	assert.Equal(t, model.RequestStatusAccepted, first.Request.Status)
	second := <-updates
	assert.Equal(t, []AlertKind{AlertStatusChange}, kinds(second.Alerts))
	third := <-updates
	assert.True(t, third.Deleted)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not finish after delete")
	}
}

func TestSessionRunStopsOnEmitError(t *testing.T) {
	feed := realtime.NewFeed(zerolog.Nop())
	defer feed.Close()

	sub, err := feed.Subscribe(context.Background(), realtime.TableServiceRequests, nil)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	boom := errors.New("client gone")
	done := make(chan error, 1)
	go func() {
		done <- NewSession(nil, "", zerolog.Nop()).Run(context.Background(), sub, func(Update) error { return boom })
	}()

	require.NoError(t, feed.Publish(realtime.TableServiceRequests, realtime.EventInsert, nil, trackedRequest(model.RequestStatusPending, 0, 0)))

	select {
	case err := <-done:
		assert.ErrorIs(t, err, boom)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop")
	}
}
