package resource

import (
	"context"
	"errors"
	"fmt"

	"adminpanel/client"
	"adminpanel/internal/notify"
	v1 "adminpanel/pkg/api/v1"
)

// ErrRejected is returned when the backend answered with success=false.
var ErrRejected = errors.New("request rejected")

// Copy is the toast text of one mutation.
type Copy struct {
	Success string
	Failure string
}

// Mutate runs fn once and reports the outcome as a toast. onSuccess runs
// before the toast so local state is already patched when the user sees it.
// Cancellation produces no toast.
func Mutate[T any](ctx context.Context, n notify.Notifier, copy Copy, fn func(context.Context) (*v1.Response[T], error), onSuccess func(T)) (*v1.Response[T], error) {
	res, err := fn(ctx)
	if err != nil {
		if !client.IsCanceled(err) {
			n.Notify(notify.Failure("Error", failureText(copy.Failure, client.Message(err))))
		}
		return nil, err
	}
	if !res.Success {
		n.Notify(notify.Failure("Error", failureText(copy.Failure, res.Message)))
		return res, fmt.Errorf("%w: %s", ErrRejected, res.Message)
	}

	if onSuccess != nil {
		onSuccess(res.Data)
	}
	msg := copy.Success
	if msg == "" {
		msg = res.Message
	}
	n.Notify(notify.Success("Success", msg))
	return res, nil
}

func failureText(copy, fallback string) string {
	if copy != "" {
		return copy
	}
	if fallback != "" {
		return fallback
	}
	return "Something went wrong. Please try again."
}
