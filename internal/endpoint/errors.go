package endpoint

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrUnavailable причина отказа Call у неподключенного handle.
var ErrUnavailable = errors.New("endpoint unavailable")

// ConnectionError фиксирует, почему handshake не удался.
type ConnectionError struct {
	Address string
	Cause   error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Address, e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// InvocationError удаленный вызов не состоялся или вернул ошибку.
type InvocationError struct {
	Cause error
}

func (e *InvocationError) Error() string {
	return e.Cause.Error()
}

func (e *InvocationError) Unwrap() error {
	return e.Cause
}

// TimeoutError вызов не уложился в отведенное время.
type TimeoutError struct {
	Timeout time.Duration
	Cause   error
}

func (e *TimeoutError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("remote call timed out after %s", e.Timeout)
	}
	return "remote call timed out"
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
