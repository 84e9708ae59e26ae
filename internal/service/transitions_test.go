package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"roadside-service/internal/model"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to model.RequestStatus
		role     model.Role
		want     bool
	}{
		{model.RequestStatusAssigned, model.RequestStatusAccepted, model.RoleProvider, true},
		{model.RequestStatusAssigned, model.RequestStatusDenied, model.RoleProvider, true},
		{model.RequestStatusAccepted, model.RequestStatusEnRoute, model.RoleProvider, true},
		{model.RequestStatusEnRoute, model.RequestStatusInProgress, model.RoleProvider, true},
		{model.RequestStatusInProgress, model.RequestStatusCompleted, model.RoleProvider, true},
		{model.RequestStatusPending, model.RequestStatusCancelled, model.RoleCustomer, true},
		{model.RequestStatusAccepted, model.RequestStatusCancelled, model.RoleCustomer, true},
		{model.RequestStatusInProgress, model.RequestStatusCancelled, model.RoleAdmin, true},

		{model.RequestStatusEnRoute, model.RequestStatusPending, model.RoleProvider, false},
		{model.RequestStatusEnRoute, model.RequestStatusPending, model.RoleAdmin, false},
		{model.RequestStatusAssigned, model.RequestStatusEnRoute, model.RoleProvider, false},
		{model.RequestStatusAssigned, model.RequestStatusAccepted, model.RoleCustomer, false},
		{model.RequestStatusEnRoute, model.RequestStatusCancelled, model.RoleCustomer, false},
		{model.RequestStatusInProgress, model.RequestStatusCancelled, model.RoleProvider, false},
		{model.RequestStatusCompleted, model.RequestStatusCancelled, model.RoleAdmin, false},
		{model.RequestStatusDenied, model.RequestStatusAccepted, model.RoleProvider, false},
		{model.RequestStatusCancelled, model.RequestStatusPending, model.RoleCustomer, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to)+"/"+string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to, tt.role))
		})
	}
}

func TestTransitionErrorUnwraps(t *testing.T) {
	err := checkTransition(model.RequestStatusEnRoute, model.RequestStatusPending, model.RoleProvider)

	assert.ErrorIs(t, err, ErrInvalidTransition)
	var te *TransitionError
	assert.ErrorAs(t, err, &te)
	assert.Equal(t, model.RequestStatusEnRoute, te.From)
	assert.EqualError(t, err, "cannot move request from en_route to pending as provider")
}
