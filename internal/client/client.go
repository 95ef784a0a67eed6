// Package client holds the outbound HTTP collaborators: the universal
// extraction service and the chat platform's message delivery API.
package client

import (
	"context"
	"io"
	"net/http"
)

type Client struct {
	*http.Client
	ExtractorURL     string
	TelegramAPIURL   string
	TelegramBotToken string
	Logger           logger
}

type logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}

func newRequest(ctx context.Context, method string, url string, body io.Reader) (*http.Request, error) {
	r, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	r.Header.Set("User-Agent", "fetcha-backend/1.0")
	r.Header.Set("Accept", "application/json")
	return r, nil
}
