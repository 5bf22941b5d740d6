package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"deepcheck/internal/endpoint"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCaller struct {
	state endpoint.ConnectionState
	calls int
	call  func(ctx context.Context, input string) (json.RawMessage, error)
}

func (f *fakeCaller) State() endpoint.ConnectionState { return f.state }

func (f *fakeCaller) Call(ctx context.Context, input string) (json.RawMessage, error) {
	f.calls++
	return f.call(ctx, input)
}

type recordObserver struct {
	mu    sync.Mutex
	kinds []string
}

func (o *recordObserver) ObserveInvocation(kind string, duration time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.kinds = append(o.kinds, kind)
}

func connectedCaller(payload string, err error) *fakeCaller {
	return &fakeCaller{
		state: endpoint.Connected("sess"),
		call: func(ctx context.Context, input string) (json.RawMessage, error) {
			if err != nil {
				return nil, err
			}
			return json.RawMessage(payload), nil
		},
	}
}

func TestInvokeEmptyInput(t *testing.T) {
	for _, caller := range []*fakeCaller{
		connectedCaller(`{}`, nil),
		{state: endpoint.Disconnected("connection refused")},
	} {
		inv := NewInvoker(Config{Handle: caller})
		res := inv.Invoke(context.Background(), "")
		assert.Equal(t, Failure(KindInput, "no input provided"), res)
		assert.Zero(t, caller.calls)
	}
}

func TestInvokeWhitespaceIsNotEmpty(t *testing.T) {
	caller := &fakeCaller{state: endpoint.Disconnected("connection refused")}
	res := NewInvoker(Config{Handle: caller}).Invoke(context.Background(), "   ")

	assert.Equal(t, KindConnection, res.Kind)
	assert.Zero(t, caller.calls)

	var forwarded string
	connected := &fakeCaller{
		state: endpoint.Connected("sess"),
		call: func(ctx context.Context, input string) (json.RawMessage, error) {
			forwarded = input
			return json.RawMessage(`{}`), nil
		},
	}
	res = NewInvoker(Config{Handle: connected}).Invoke(context.Background(), "   ")

	assert.True(t, res.OK)
	assert.Equal(t, "   ", forwarded)
}

func TestInvokeDisconnectedSkipsCall(t *testing.T) {
	caller := &fakeCaller{state: endpoint.Disconnected("connection refused")}
	inv := NewInvoker(Config{Handle: caller})

	for _, input := range []string{"a", "http://suspicious.example", "anything"} {
		res := inv.Invoke(context.Background(), input)
		assert.False(t, res.OK)
		assert.Equal(t, KindConnection, res.Kind)
	}
	assert.Zero(t, caller.calls)
}

func TestInvokeNilHandle(t *testing.T) {
	res := NewInvoker(Config{}).Invoke(context.Background(), "x")
	assert.Equal(t, Failure(KindConnection, "upstream service is not connected"), res)
}

func TestInvokePassesPayloadThrough(t *testing.T) {
	payloads := []string{
		`{"label": "phishing", "score": 0.93}`,
		`[1, "two", null]`,
		`"plain"`,
		`{"error": "upstream said no"}`,
	}
	for _, p := range payloads {
		inv := NewInvoker(Config{Handle: connectedCaller(p, nil)})
		res := inv.Invoke(context.Background(), "x")
		require.True(t, res.OK)
		assert.Equal(t, p, string(res.Payload))
	}
}

func TestInvokeRemoteFailure(t *testing.T) {
	caller := connectedCaller("", &endpoint.InvocationError{Cause: errors.New("remote app error: model crashed")})
	res := NewInvoker(Config{Handle: caller}).Invoke(context.Background(), "x")

	assert.Equal(t, Failure(KindInvocation, "remote app error: model crashed"), res)
	assert.Equal(t, 1, caller.calls)
}

func TestInvokeTimeout(t *testing.T) {
	caller := connectedCaller("", &endpoint.TimeoutError{Timeout: time.Second, Cause: context.DeadlineExceeded})
	res := NewInvoker(Config{Handle: caller}).Invoke(context.Background(), "x")

	assert.False(t, res.OK)
	assert.Equal(t, KindTimeout, res.Kind)
	assert.Equal(t, "remote call timed out after 1s", res.Message)
}

func TestInvokeRecoversPanic(t *testing.T) {
	caller := &fakeCaller{
		state: endpoint.Connected("sess"),
		call: func(ctx context.Context, input string) (json.RawMessage, error) {
			panic("nil map")
		},
	}

	var res Result
	require.NotPanics(t, func() {
		res = NewInvoker(Config{Handle: caller}).Invoke(context.Background(), "x")
	})
	assert.Equal(t, KindInvocation, res.Kind)
	assert.Contains(t, res.Message, "nil map")
}

func TestInvokeIdempotent(t *testing.T) {
	caller := connectedCaller(`{"label":"benign"}`, nil)
	inv := NewInvoker(Config{Handle: caller})

	first := inv.Invoke(context.Background(), "http://example.com")
	second := inv.Invoke(context.Background(), "http://example.com")

	assert.Equal(t, first, second)
	assert.Equal(t, 2, caller.calls)
}

func TestInvokeReportsToObserver(t *testing.T) {
	obs := &recordObserver{}
	inv := NewInvoker(Config{Handle: connectedCaller(`{}`, nil), Observer: obs})

	inv.Invoke(context.Background(), "x")
	inv.Invoke(context.Background(), "")

	assert.Equal(t, []string{"success", "InputError"}, obs.kinds)
}

func TestScenarioPhishingURL(t *testing.T) {
	session := &stubSession{payload: `{"label": "phishing", "score": 0.93}`}
	dialer := endpoint.DialFunc(func(ctx context.Context, address string) (endpoint.Session, error) {
		return session, nil
	})
	handle := endpoint.Connect(context.Background(), "https://example-endpoint.test", dialer, endpoint.Options{})

	res := NewInvoker(Config{Handle: handle}).Invoke(context.Background(), "http://suspicious.example")

	body, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok": true, "payload": {"label": "phishing", "score": 0.93}}`, string(body))
	assert.Equal(t, "http://suspicious.example", session.input)
}

func TestScenarioUnreachableAtStartup(t *testing.T) {
	dialer := endpoint.DialFunc(func(ctx context.Context, address string) (endpoint.Session, error) {
		return nil, errors.New("connection refused")
	})
	handle := endpoint.Connect(context.Background(), "https://example-endpoint.test", dialer, endpoint.Options{})
	require.Equal(t, "connection refused", handle.State().Reason())

	res := NewInvoker(Config{Handle: handle}).Invoke(context.Background(), "anything")

	body, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok": false, "kind": "ConnectionError", "message": "upstream service is not connected"}`, string(body))
}

type stubSession struct {
	payload string
	input   string
}

func (s *stubSession) Predict(ctx context.Context, input string) (json.RawMessage, error) {
	s.input = input
	return json.RawMessage(s.payload), nil
}

func (s *stubSession) SessionHash() string { return "sess" }
