package service

import "roadside-service/internal/model"

type transition struct {
	from model.RequestStatus
	to   model.RequestStatus
}

// transitionActors lists who may take each guarded edge. Assignment has its
// own operation and admin overrides bypass this table entirely.
var transitionActors = map[transition][]model.Role{
	{model.RequestStatusPending, model.RequestStatusCancelled}:    {model.RoleCustomer, model.RoleAdmin},
	{model.RequestStatusAssigned, model.RequestStatusAccepted}:    {model.RoleProvider},
	{model.RequestStatusAssigned, model.RequestStatusDenied}:      {model.RoleProvider},
	{model.RequestStatusAssigned, model.RequestStatusCancelled}:   {model.RoleCustomer, model.RoleAdmin},
	{model.RequestStatusAccepted, model.RequestStatusEnRoute}:     {model.RoleProvider},
	{model.RequestStatusAccepted, model.RequestStatusCancelled}:   {model.RoleCustomer, model.RoleAdmin},
	{model.RequestStatusEnRoute, model.RequestStatusInProgress}:   {model.RoleProvider},
	{model.RequestStatusEnRoute, model.RequestStatusCancelled}:    {model.RoleAdmin},
	{model.RequestStatusInProgress, model.RequestStatusCompleted}: {model.RoleProvider},
	{model.RequestStatusInProgress, model.RequestStatusCancelled}: {model.RoleAdmin},
}

// CanTransition reports whether role may move a request from one status to another.
func CanTransition(from, to model.RequestStatus, role model.Role) bool {
	for _, allowed := range transitionActors[transition{from, to}] {
		if allowed == role {
			return true
		}
	}
	return false
}

func checkTransition(from, to model.RequestStatus, role model.Role) error {
	if !CanTransition(from, to, role) {
		return &TransitionError{From: from, To: to, Role: role}
	}
	return nil
}
