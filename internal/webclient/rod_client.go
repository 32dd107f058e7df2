package webclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/raysh454/wcag131/internal/logging"
)

// RodClient renders pages through go-rod. Chrome is launched lazily and
// fetches are serialised.
type RodClient struct {
	cfg    Config
	logger logging.Logger

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	closed   bool
}

// NewRodClient returns a client that launches Chrome on first use.
func NewRodClient(cfg Config, logger logging.Logger) (*RodClient, error) {
	if logger == nil {
		logger = logging.Nop{}
	}
	if cfg.IdleAfter <= 0 {
		cfg.IdleAfter = 2 * time.Second
	}
	return &RodClient{
		cfg:    cfg,
		logger: logger.With(logging.Field{Key: "backend", Value: "rod"}),
	}, nil
}

func (c *RodClient) connect() (*rod.Browser, error) {
	if c.browser != nil {
		return c.browser, nil
	}
	l := launcher.New().Headless(c.cfg.Headless)
	if c.cfg.BrowserPath != "" {
		l = l.Bin(c.cfg.BrowserPath)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("rod: launch: %w", err)
	}
	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("rod: connect: %w", err)
	}
	c.browser, c.launcher = b, l
	c.logger.Debug("launched chrome", logging.Field{Key: "control_url", Value: u})
	return b, nil
}

// Do opens a tab, navigates, waits for requests to settle and returns the
// rendered document. Only GET is supported.
func (c *RodClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if m := strings.ToUpper(req.Method); m != "" && m != http.MethodGet {
		return nil, fmt.Errorf("rod: %s: %w", m, ErrMethodNotSupported)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, fmt.Errorf("rod: client closed")
	}
	b, err := c.connect()
	if err != nil {
		return nil, err
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		return nil, fmt.Errorf("rod: create tab: %w", err)
	}
	defer page.Close()

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}
	p := page.Context(ctx)

	statusCh := make(chan *proto.NetworkResponse, 1)
	evCtx, stopEvents := context.WithCancel(ctx)
	defer stopEvents()
	go page.Context(evCtx).EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type != proto.NetworkResourceTypeDocument {
			return false
		}
		statusCh <- e.Response
		return true
	})()

	waitIdle := p.WaitRequestIdle(c.cfg.IdleAfter, nil, nil, nil)
	if err := p.Navigate(req.URL); err != nil {
		return nil, fmt.Errorf("rod: navigate %s: %w", req.URL, err)
	}
	if err := p.WaitLoad(); err != nil {
		c.logger.Warn("wait load failed", logging.Field{Key: "url", Value: req.URL}, logging.Field{Key: "error", Value: err.Error()})
	}
	waitIdle()

	html, err := p.HTML()
	if err != nil {
		return nil, fmt.Errorf("rod: read html: %w", err)
	}

	resp := &Response{Request: req, Body: []byte(html), FetchedAt: time.Now()}
	select {
	case doc := <-statusCh:
		resp.StatusCode = doc.Status
		resp.FinalURL = doc.URL
		resp.Headers = make(http.Header, len(doc.Headers))
		for k, v := range doc.Headers {
			resp.Headers.Set(k, v.String())
		}
	default:
	}
	return resp, nil
}

// Get is a convenience method for simple GET requests.
func (c *RodClient) Get(ctx context.Context, url string) (*Response, error) {
	return c.Do(ctx, getRequest(url))
}

// Close shuts Chrome down if it was started.
func (c *RodClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.browser == nil {
		return nil
	}
	err := c.browser.Close()
	c.launcher.Cleanup()
	c.browser, c.launcher = nil, nil
	return err
}
