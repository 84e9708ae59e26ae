package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadside-service/internal/config"
	"roadside-service/internal/tracking"
)

func newTestClient(url string) *PushClient {
	c := NewPushClient(&config.Config{Push: config.PushConfig{ServiceURL: url, Token: "secret"}})
	c.backoff = 0
	return c
}

func TestPushClientNotify(t *testing.T) {
	var got PushMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/push/notifications", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Internal-Token"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	d := 0.3
	err := newTestClient(server.URL).Notify(context.Background(), "request:ABC", tracking.Alert{
		Kind:               tracking.AlertArrival,
		Title:              "Provider is almost there",
		Tag:                "request-1-arrival",
		RequireInteraction: true,
		Sound:              true,
		DistanceKm:         &d,
	})
	require.NoError(t, err)

	assert.Equal(t, "request:ABC", got.Target)
	assert.Equal(t, "request-1-arrival", got.Tag)
	assert.Equal(t, "arrival", got.Kind)
	assert.True(t, got.Sound)
	require.NotNil(t, got.DistanceKm)
	assert.Equal(t, 0.3, *got.DistanceKm)
}

func TestPushClientPermissionDenied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	err := newTestClient(server.URL).Notify(context.Background(), "user:1", tracking.Alert{})
	assert.ErrorIs(t, err, tracking.ErrPermissionDenied)
}

func TestPushClientServerError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	err := newTestClient(server.URL).Notify(context.Background(), "user:1", tracking.Alert{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Equal(t, 1, calls)
}

func TestPushClientRetriesNetworkErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	err := newTestClient(url).Notify(context.Background(), "user:1", tracking.Alert{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestPushClientRequiresConfiguration(t *testing.T) {
	err := newTestClient("").Notify(context.Background(), "user:1", tracking.Alert{})
	assert.EqualError(t, err, "push service URL is not configured")
}
