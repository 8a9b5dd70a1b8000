package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// AdapterError is a failed narrative request, tagged with the provider, the
// model asked for, and the HTTP status when the provider returned one.
type AdapterError struct {
	Adapter   string
	Model     string
	Status    int
	Temporary bool
	Err       error
}

func (e *AdapterError) Error() string {
	if e == nil {
		return "narrative request failed"
	}
	target := e.Adapter
	if e.Model != "" {
		target += "/" + e.Model
	}
	msg := fmt.Sprintf("narrative request to %s failed", target)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status=%d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AdapterError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsTransient reports whether an error is safe to retry.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var adapterErr *AdapterError
	if errors.As(err, &adapterErr) {
		if adapterErr.Temporary {
			return true
		}
		if adapterErr.Status == 429 || (adapterErr.Status >= 500 && adapterErr.Status <= 599) {
			return true
		}
	}
	return false
}

func wrapError(adapter, model string, status int, err error) error {
	return &AdapterError{Adapter: adapter, Model: model, Status: status, Err: err}
}
