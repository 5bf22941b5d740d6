package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"deepcheck/internal/httpjson"
	"deepcheck/internal/middleware"
	"deepcheck/internal/proxy"
)

const maxPredictBody = 64 << 10

// Invoker выполняет один нормализованный вызов удаленного сервиса.
type Invoker interface {
	Invoke(ctx context.Context, input string) proxy.Result
}

// predictRequest принимает {"url": ...}, {"input": ...} или Gradio-формат {"data": [...]}.
type predictRequest struct {
	URL   *string  `json:"url"`
	Input *string  `json:"input"`
	Data  []string `json:"data"`
}

func (p predictRequest) text() string {
	switch {
	case p.URL != nil:
		return *p.URL
	case p.Input != nil:
		return *p.Input
	case len(p.Data) > 0:
		return p.Data[0]
	}
	return ""
}

type PredictHandler struct {
	invoker Invoker
	logger  *slog.Logger
}

func NewPredictHandler(invoker Invoker, logger *slog.Logger) *PredictHandler {
	return &PredictHandler{invoker: invoker, logger: logger}
}

func (h *PredictHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	input, err := readInput(w, r)
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	res := h.invoker.Invoke(r.Context(), input)
	if !res.OK && res.Kind != proxy.KindInput {
		h.logger.Warn("predict failed",
			slog.String("kind", string(res.Kind)),
			slog.String("message", res.Message),
			slog.String("request_id", middleware.RequestIDFromContext(r.Context())))
	}
	httpjson.Write(w, statusFor(res), res)
}

func readInput(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPredictBody)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(maxPredictBody); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return "", errors.New("cannot parse form")
		}
		return r.FormValue("url"), nil
	}

	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		return "", errors.New("cannot parse request body")
	}
	return req.text(), nil
}

func statusFor(res proxy.Result) int {
	if res.OK {
		return http.StatusOK
	}
	switch res.Kind {
	case proxy.KindInput:
		return http.StatusBadRequest
	case proxy.KindConnection:
		return http.StatusServiceUnavailable
	case proxy.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
