package tracking

import (
	"context"
	"errors"
)

// ErrPermissionDenied is returned by a Notifier when the recipient has not
// granted notification permission. Callers skip the alert without retrying.
var ErrPermissionDenied = errors.New("notification permission denied")

type Notifier interface {
	Notify(ctx context.Context, target string, alert Alert) error
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string, Alert) error {
	return nil
}
