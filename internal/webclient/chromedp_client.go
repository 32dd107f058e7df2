package webclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/raysh454/wcag131/internal/logging"
)

// ChromedpClient renders pages in a shared headless Chrome. Chrome is only
// started on the first fetch. Fetches are serialised: one tab at a time.
type ChromedpClient struct {
	cfg    Config
	logger logging.Logger

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewChromedpClient prepares the browser allocator.
func NewChromedpClient(cfg Config, logger logging.Logger) (*ChromedpClient, error) {
	if logger == nil {
		logger = logging.Nop{}
	}
	if cfg.IdleAfter <= 0 {
		cfg.IdleAfter = 2 * time.Second
	}
	if cfg.MaxIdleWait <= 0 {
		cfg.MaxIdleWait = 15 * time.Second
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.Flag("headless", cfg.Headless))
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if cfg.BrowserPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.BrowserPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	c := &ChromedpClient{
		cfg:           cfg,
		logger:        logger.With(logging.Field{Key: "backend", Value: "chromedp"}),
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}
	c.logger.Debug("created chromedp webclient",
		logging.Field{Key: "idle_after", Value: cfg.IdleAfter.String()},
		logging.Field{Key: "headless", Value: cfg.Headless})
	return c, nil
}

// Do navigates a fresh tab to req.URL, waits for the network to go idle and
// returns the rendered document. Only GET is supported.
func (c *ChromedpClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if m := strings.ToUpper(req.Method); m != "" && m != http.MethodGet {
		return nil, fmt.Errorf("chromedp: %s: %w", m, ErrMethodNotSupported)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.browserCtx == nil {
		return nil, fmt.Errorf("chromedp: client closed")
	}

	tabCtx, cancelTab := chromedp.NewContext(c.browserCtx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		tabCtx, cancel = context.WithTimeout(tabCtx, c.cfg.Timeout)
		defer cancel()
	}

	w := watchPage(tabCtx, c.cfg.IdleAfter)
	if err := chromedp.Run(tabCtx, network.Enable(), chromedp.Navigate(req.URL)); err != nil {
		c.logger.Warn("navigation failed",
			logging.Field{Key: "url", Value: req.URL},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("chromedp navigate: %w", err)
	}

	w.arm()
	select {
	case <-w.idle:
	case <-time.After(c.cfg.MaxIdleWait):
		c.logger.Debug("network never went idle", logging.Field{Key: "url", Value: req.URL})
	case <-tabCtx.Done():
		return nil, fmt.Errorf("chromedp wait idle: %w", tabCtx.Err())
	}

	var html, location string
	if err := chromedp.Run(tabCtx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&location),
	); err != nil {
		return nil, fmt.Errorf("chromedp read html: %w", err)
	}

	status, headers := w.document()
	return &Response{
		Request:    req,
		FinalURL:   location,
		Headers:    headers,
		Body:       []byte(html),
		StatusCode: status,
		FetchedAt:  time.Now(),
	}, nil
}

// Get is a convenience method for simple GET requests.
func (c *ChromedpClient) Get(ctx context.Context, url string) (*Response, error) {
	return c.Do(ctx, getRequest(url))
}

// Close shuts Chrome down.
func (c *ChromedpClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.browserCancel != nil {
		c.browserCancel()
		c.allocCancel()
		c.browserCtx, c.browserCancel, c.allocCancel = nil, nil, nil
	}
	return nil
}

// pageWatch tracks in-flight requests of one tab and the main document's
// response.
type pageWatch struct {
	idleAfter time.Duration
	idle      chan struct{}
	active    int32

	mu      sync.Mutex
	timer   *time.Timer
	status  int
	headers http.Header
	once    sync.Once
}

func watchPage(ctx context.Context, idleAfter time.Duration) *pageWatch {
	w := &pageWatch{idleAfter: idleAfter, idle: make(chan struct{}, 1)}
	chromedp.ListenTarget(ctx, w.handle)
	return w
}

func (w *pageWatch) handle(ev any) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		atomic.AddInt32(&w.active, 1)
	case *network.EventResponseReceived:
		if e.Type == network.ResourceTypeDocument {
			w.mu.Lock()
			if w.status == 0 && e.Response != nil {
				w.status = int(e.Response.Status)
				w.headers = make(http.Header, len(e.Response.Headers))
				for k, v := range e.Response.Headers {
					w.headers.Set(k, fmt.Sprint(v))
				}
			}
			w.mu.Unlock()
		}
	case *network.EventLoadingFinished, *network.EventLoadingFailed:
		if atomic.AddInt32(&w.active, -1) <= 0 {
			w.arm()
		}
	}
}

// arm (re)starts the idle timer. The page is idle once the timer fires with
// no request in flight.
func (w *pageWatch) arm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.idleAfter, func() {
		if atomic.LoadInt32(&w.active) <= 0 {
			w.once.Do(func() { w.idle <- struct{}{} })
		}
	})
}

func (w *pageWatch) document() (int, http.Header) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status, w.headers
}
