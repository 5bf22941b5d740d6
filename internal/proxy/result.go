package proxy

import "encoding/json"

// ErrorKind закрытая таксономия ошибок вызова.
type ErrorKind string

const (
	KindInput      ErrorKind = "InputError"
	KindConnection ErrorKind = "ConnectionError"
	KindInvocation ErrorKind = "InvocationError"
	KindTimeout    ErrorKind = "TimeoutError"
)

const (
	msgNoInput      = "no input provided"
	msgNotConnected = "upstream service is not connected"
)

// Result либо Success с payload как есть, либо Failure с видом и сообщением.
type Result struct {
	OK      bool            `json:"ok"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Kind    ErrorKind       `json:"kind,omitempty"`
	Message string          `json:"message,omitempty"`
}

func Success(payload json.RawMessage) Result {
	if payload == nil {
		payload = json.RawMessage("null")
	}
	return Result{OK: true, Payload: payload}
}

func Failure(kind ErrorKind, message string) Result {
	return Result{Kind: kind, Message: message}
}

// Label для метрик и логов: "success" или вид ошибки.
func (r Result) Label() string {
	if r.OK {
		return "success"
	}
	return string(r.Kind)
}
