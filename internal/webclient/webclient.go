// Package webclient fetches pages for auditing. Backends are registered by
// name: a plain net/http client and two headless browsers (chromedp and rod)
// that return the DOM after scripts have settled.
package webclient

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// WebClient fetches one page per call.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)
	Get(ctx context.Context, url string) (*Response, error)
	Close() error
}

var (
	// ErrMethodNotSupported is returned by browser backends for anything but GET.
	ErrMethodNotSupported = errors.New("method not supported")
	// ErrBodyTooLarge is returned when a page exceeds Config.MaxBodyBytes.
	ErrBodyTooLarge = errors.New("response body too large")
)

type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
}

type Response struct {
	Request *Request
	// FinalURL is where the page was served from after redirects. Empty when
	// the backend cannot tell.
	FinalURL   string
	Headers    http.Header
	Body       []byte
	StatusCode int
	FetchedAt  time.Time
}

func getRequest(url string) *Request {
	return &Request{Method: http.MethodGet, URL: url}
}
