// Package endpoint represents one remote inference service. A Handle is
// connected once at startup and is read-only afterwards, so it can be
// shared by concurrent requests without locking.
package endpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Session установленное соединение с удаленным сервисом.
type Session interface {
	Predict(ctx context.Context, input string) (json.RawMessage, error)
	SessionHash() string
}

// Dialer выполняет handshake с сервисом по адресу.
type Dialer interface {
	Dial(ctx context.Context, address string) (Session, error)
}

type DialFunc func(ctx context.Context, address string) (Session, error)

func (f DialFunc) Dial(ctx context.Context, address string) (Session, error) {
	return f(ctx, address)
}

// ConnectionState либо Connected с токеном сессии, либо Disconnected с причиной.
type ConnectionState struct {
	connected bool
	session   string
	reason    string
}

func Connected(session string) ConnectionState {
	return ConnectionState{connected: true, session: session}
}

func Disconnected(reason string) ConnectionState {
	return ConnectionState{reason: reason}
}

func (s ConnectionState) IsConnected() bool { return s.connected }
func (s ConnectionState) Session() string   { return s.session }
func (s ConnectionState) Reason() string    { return s.reason }

func (s ConnectionState) String() string {
	if s.connected {
		return "connected"
	}
	return "disconnected: " + s.reason
}

type Options struct {
	// CallTimeout ограничивает один Call. 0 означает без собственного лимита.
	CallTimeout time.Duration
	// ConnectTimeout ограничивает handshake.
	ConnectTimeout time.Duration
}

type Handle struct {
	address     string
	state       ConnectionState
	err         *ConnectionError
	session     Session
	callTimeout time.Duration
}

// Connect никогда не возвращает nil: при любой ошибке handshake handle
// создается в состоянии Disconnected, а причина доступна через Err.
func Connect(ctx context.Context, address string, dialer Dialer, opts Options) *Handle {
	h := &Handle{
		address:     strings.TrimSpace(address),
		callTimeout: opts.CallTimeout,
	}

	session, err := dial(ctx, h.address, dialer, opts.ConnectTimeout)
	if err != nil {
		h.err = &ConnectionError{Address: h.address, Cause: err}
		h.state = Disconnected(err.Error())
		return h
	}

	h.session = session
	h.state = Connected(session.SessionHash())
	return h
}

func dial(ctx context.Context, address string, dialer Dialer, timeout time.Duration) (session Session, err error) {
	if address == "" {
		return nil, fmt.Errorf("endpoint address is empty")
	}
	if dialer == nil {
		return nil, fmt.Errorf("no dialer configured")
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	defer func() {
		if rec := recover(); rec != nil {
			session, err = nil, fmt.Errorf("handshake panic: %v", rec)
		}
	}()

	session, err = dialer.Dial(ctx, address)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("handshake returned no session")
	}
	return session, nil
}

func (h *Handle) Address() string {
	if h == nil {
		return ""
	}
	return h.address
}

func (h *Handle) State() ConnectionState {
	if h == nil {
		return Disconnected("no endpoint handle")
	}
	return h.state
}

// Err возвращает ошибку подключения или nil для Connected.
func (h *Handle) Err() error {
	if h == nil || h.err == nil {
		return nil
	}
	return h.err
}

// Call выполняет ровно один удаленный вызов без повторов.
// У неподключенного handle сразу возвращает InvocationError без сетевого I/O.
func (h *Handle) Call(ctx context.Context, input string) (json.RawMessage, error) {
	if h == nil || !h.state.IsConnected() {
		return nil, &InvocationError{Cause: ErrUnavailable}
	}

	callCtx := ctx
	if h.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, h.callTimeout)
		defer cancel()
	}

	payload, err := h.session.Predict(callCtx, input)
	if err != nil {
		if isTimeout(err) {
			// Длительность известна, только если истек именно наш лимит,
			// а не таймаут http.Client или дедлайн вызывающего.
			var limit time.Duration
			if h.callTimeout > 0 && ctx.Err() == nil && callCtx.Err() == context.DeadlineExceeded {
				limit = h.callTimeout
			}
			return nil, &TimeoutError{Timeout: limit, Cause: err}
		}
		return nil, &InvocationError{Cause: err}
	}
	return payload, nil
}
