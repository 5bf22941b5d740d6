package httpserver

import (
	"net/http"

	"deepcheck/internal/endpoint"
	"deepcheck/internal/httpjson"
)

// StateSource отдает состояние подключения к удаленному сервису.
type StateSource interface {
	Address() string
	State() endpoint.ConnectionState
}

type healthResponse struct {
	Status    string `json:"status"`
	Endpoint  string `json:"endpoint"`
	Connected bool   `json:"connected"`
	Reason    string `json:"reason,omitempty"`
}

// HealthHandler отвечает 503, пока upstream не подключен; процесс при этом жив.
func HealthHandler(src StateSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := src.State()
		resp := healthResponse{
			Status:    "ok",
			Endpoint:  src.Address(),
			Connected: state.IsConnected(),
		}
		status := http.StatusOK
		if !state.IsConnected() {
			resp.Status = "degraded"
			resp.Reason = state.Reason()
			status = http.StatusServiceUnavailable
		}
		httpjson.Write(w, status, resp)
	}
}
