package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadside-service/internal/model"
)

func TestRatingUpsert(t *testing.T) {
	requests := newFakeRequests()
	ratings := newFakeRatings()
	svc := NewRatingService(requests, ratings, &recordingPublisher{}, zerolog.Nop())

	customer := customerPrincipal()
	providerID := uuid.New()
	req := seedRequest(requests, customer.UserID, model.RequestStatusCompleted, &providerID)
	ctx := context.Background()

	first, err := svc.Submit(ctx, customer, req.ID.String(), 5, strPtr("great service"))
	require.NoError(t, err)
	assert.Equal(t, providerID, first.ProviderID)

	second, err := svc.Submit(ctx, customer, req.ID.String(), 4, nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	stored, err := svc.ListForRequest(ctx, customer, req.ID.String())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 4, stored[0].Rating)
	assert.Nil(t, stored[0].Review)

	summary, err := svc.ListForProvider(ctx, providerID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Summary.Count)
	assert.Equal(t, 4.0, summary.Summary.Average)
}

func TestRatingRules(t *testing.T) {
	requests := newFakeRequests()
	svc := NewRatingService(requests, newFakeRatings(), nil, zerolog.Nop())
	customer := customerPrincipal()
	providerID := uuid.New()
	done := seedRequest(requests, customer.UserID, model.RequestStatusCompleted, &providerID)
	open := seedRequest(requests, customer.UserID, model.RequestStatusEnRoute, &providerID)
	ctx := context.Background()

	for _, score := range []int{0, 6} {
		_, err := svc.Submit(ctx, customer, done.ID.String(), score, nil)
		assert.ErrorIs(t, err, ErrInvalidInput, "score %d", score)
	}

	_, err := svc.Submit(ctx, customer, open.ID.String(), 5, nil)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Submit(ctx, customerPrincipal(), done.ID.String(), 5, nil)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Submit(ctx, providerPrincipal(providerID), done.ID.String(), 5, nil)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}
