package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"deepcheck/internal/endpoint"
)

// Caller удаленная сторона вызова; *endpoint.Handle реализует его.
type Caller interface {
	State() endpoint.ConnectionState
	Call(ctx context.Context, input string) (json.RawMessage, error)
}

// Observer получает итог каждого вызова.
type Observer interface {
	ObserveInvocation(kind string, duration time.Duration)
}

type Config struct {
	Handle   Caller
	Logger   *slog.Logger
	Observer Observer
}

type Invoker struct {
	handle   Caller
	logger   *slog.Logger
	observer Observer
}

func NewInvoker(cfg Config) *Invoker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Invoker{
		handle:   cfg.Handle,
		logger:   logger,
		observer: cfg.Observer,
	}
}

// Invoke никогда не паникует наружу и всегда возвращает корректный Result.
func (i *Invoker) Invoke(ctx context.Context, input string) Result {
	start := time.Now()
	res := i.invoke(ctx, input)
	if i.observer != nil {
		i.observer.ObserveInvocation(res.Label(), time.Since(start))
	}
	return res
}

func (i *Invoker) invoke(ctx context.Context, input string) (res Result) {
	if input == "" {
		return Failure(KindInput, msgNoInput)
	}
	if i.handle == nil || !i.handle.State().IsConnected() {
		return Failure(KindConnection, msgNotConnected)
	}

	defer func() {
		if rec := recover(); rec != nil {
			i.logger.Error("remote call panic", slog.Any("error", rec))
			res = Failure(KindInvocation, fmt.Sprintf("remote call panic: %v", rec))
		}
	}()

	payload, err := i.handle.Call(ctx, input)
	if err != nil {
		kind := KindInvocation
		var timeoutErr *endpoint.TimeoutError
		if errors.As(err, &timeoutErr) {
			kind = KindTimeout
		}
		i.logger.Warn("remote call failed",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()))
		return Failure(kind, err.Error())
	}
	return Success(payload)
}
