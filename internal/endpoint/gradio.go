package endpoint

import (
	"context"
	"net/http"

	"deepcheck/internal/gradio"
)

// NewGradioDialer подключается к Gradio-приложению и вызывает apiName.
func NewGradioDialer(httpClient *http.Client, apiName string) Dialer {
	return DialFunc(func(ctx context.Context, address string) (Session, error) {
		client, err := gradio.Connect(ctx, httpClient, address, apiName)
		if err != nil {
			return nil, err
		}
		return client, nil
	})
}
