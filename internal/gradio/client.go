// Package gradio implements the call protocol of a hosted Gradio app:
// a config handshake followed by two-step predictions over
// /call/{api_name} and its Server-Sent Events result stream.
package gradio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	eventComplete = "complete"
	eventError    = "error"
)

// Client привязан к одному приложению и одному api name.
// После Connect не изменяется и безопасен для конкурентного использования.
type Client struct {
	baseURL     string
	callURL     string
	apiName     string
	version     string
	sessionHash string
	httpClient  *http.Client
}

type appConfig struct {
	Version      string       `json:"version"`
	APIPrefix    string       `json:"api_prefix"`
	Dependencies []dependency `json:"dependencies"`
}

// api_name бывает строкой, false или null.
type dependency struct {
	APIName json.RawMessage `json:"api_name"`
}

func (d dependency) name() string {
	var name string
	if err := json.Unmarshal(d.APIName, &name); err != nil {
		return ""
	}
	return strings.TrimPrefix(name, "/")
}

type callRequest struct {
	Data        []string `json:"data"`
	SessionHash string   `json:"session_hash,omitempty"`
}

type callResponse struct {
	EventID string `json:"event_id"`
}

// Connect выполняет handshake: читает /config приложения и проверяет,
// что apiName в нем объявлен.
func Connect(ctx context.Context, httpClient *http.Client, address, apiName string) (*Client, error) {
	baseURL, err := ResolveAddress(address)
	if err != nil {
		return nil, err
	}
	apiName = strings.Trim(strings.TrimSpace(apiName), "/")
	if apiName == "" {
		apiName = "predict"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/config", nil)
	if err != nil {
		return nil, fmt.Errorf("build config request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch config: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, &StatusError{Op: "fetch config", StatusCode: resp.StatusCode, BodySnippet: bodySnippet(body)}
	}

	var cfg appConfig
	if err := json.Unmarshal(body, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if !cfg.exposes(apiName) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAPI, apiName)
	}

	prefix := strings.TrimRight(cfg.APIPrefix, "/")
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}

	return &Client{
		baseURL:     baseURL,
		callURL:     baseURL + prefix + "/call/" + apiName,
		apiName:     apiName,
		version:     cfg.Version,
		sessionHash: uuid.NewString(),
		httpClient:  httpClient,
	}, nil
}

// exposes считает список пустым, если ни одна зависимость не объявляет api_name:
// старые версии Gradio не публикуют имена в config.
func (c appConfig) exposes(apiName string) bool {
	named := false
	for _, dep := range c.Dependencies {
		name := dep.name()
		if name == "" {
			continue
		}
		named = true
		if name == apiName {
			return true
		}
	}
	return !named
}

func (c *Client) BaseURL() string     { return c.baseURL }
func (c *Client) Version() string     { return c.version }
func (c *Client) SessionHash() string { return c.sessionHash }

// Predict отправляет один аргумент и ждет результат в SSE-потоке.
// Для эндпоинта с одним выходом возвращается этот выход, иначе весь массив.
func (c *Client) Predict(ctx context.Context, input string) (json.RawMessage, error) {
	eventID, err := c.submit(ctx, input)
	if err != nil {
		return nil, err
	}
	return c.await(ctx, eventID)
}

func (c *Client) submit(ctx context.Context, input string) (string, error) {
	buf, err := json.Marshal(callRequest{Data: []string{input}, SessionHash: c.sessionHash})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.callURL, bytes.NewReader(buf))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", &StatusError{Op: "submit call", StatusCode: resp.StatusCode, BodySnippet: bodySnippet(body)}
	}

	var parsed callResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if parsed.EventID == "" {
		return "", fmt.Errorf("submit call: empty event_id")
	}
	return parsed.EventID, nil
}

func (c *Client) await(ctx context.Context, eventID string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.callURL+"/"+eventID, nil)
	if err != nil {
		return nil, fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, snippetLimit))
		return nil, &StatusError{Op: "open stream", StatusCode: resp.StatusCode, BodySnippet: string(body)}
	}

	events := NewEventReader(resp.Body)
	for events.Next() {
		ev := events.Event()
		switch ev.Name {
		case eventComplete:
			return extractOutput(ev.Data)
		case eventError:
			return nil, &RemoteError{Message: errorMessage(ev.Data)}
		}
	}
	if err := events.Err(); err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}
	return nil, ErrStreamIncomplete
}

func extractOutput(data string) (json.RawMessage, error) {
	var outputs []json.RawMessage
	if err := json.Unmarshal([]byte(data), &outputs); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	if len(outputs) == 1 {
		return outputs[0], nil
	}
	return json.RawMessage(data), nil
}

func errorMessage(data string) string {
	data = strings.TrimSpace(data)
	if data == "" || data == "null" {
		return ""
	}
	var msg string
	if err := json.Unmarshal([]byte(data), &msg); err == nil {
		return msg
	}
	var obj struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(data), &obj); err == nil {
		if obj.Message != "" {
			return obj.Message
		}
		if obj.Error != "" {
			return obj.Error
		}
	}
	return data
}
