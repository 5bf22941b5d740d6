package gradio

import (
	"errors"
	"fmt"
)

const snippetLimit = 200

var (
	ErrEmptyAddress     = errors.New("endpoint address is empty")
	ErrUnknownAPI       = errors.New("api name is not exposed by the remote app")
	ErrStreamIncomplete = errors.New("event stream ended without result")
)

// StatusError неуспешный HTTP-ответ удаленного приложения.
type StatusError struct {
	Op          string
	StatusCode  int
	BodySnippet string
}

func (e *StatusError) Error() string {
	if e.BodySnippet == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.BodySnippet)
}

// RemoteError событие "error" из потока результата.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return "remote app reported an error"
	}
	return "remote app error: " + e.Message
}

func bodySnippet(body []byte) string {
	if len(body) <= snippetLimit {
		return string(body)
	}
	return string(body[:snippetLimit])
}
