package gradio

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// fakeApp эмулирует Gradio-приложение с одним эндпоинтом.
type fakeApp struct {
	apiPrefix string
	apiNames  []string
	stream    string // тело SSE-ответа; %s заменяется на входной аргумент
	calls     atomic.Int32
	lastInput atomic.Value
}

func newFakeApp(t *testing.T, app *fakeApp) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/config", func(w http.ResponseWriter, r *http.Request) {
		deps := make([]map[string]any, 0, len(app.apiNames))
		for _, name := range app.apiNames {
			deps = append(deps, map[string]any{"api_name": name})
		}
		deps = append(deps, map[string]any{"api_name": false})
		_ = json.NewEncoder(w).Encode(map[string]any{
			"version":      "4.44.1",
			"api_prefix":   app.apiPrefix,
			"dependencies": deps,
		})
	})
	mux.HandleFunc(app.apiPrefix+"/call/predict", func(w http.ResponseWriter, r *http.Request) {
		app.calls.Add(1)
		var req callRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Data) != 1 {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		app.lastInput.Store(req.Data[0])
		_, _ = w.Write([]byte(`{"event_id":"ev-1"}`))
	})
	mux.HandleFunc(app.apiPrefix+"/call/predict/ev-1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		input, _ := app.lastInput.Load().(string)
		body := app.stream
		if strings.Contains(body, "%s") {
			body = fmt.Sprintf(body, input)
		}
		_, _ = w.Write([]byte(body))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}
