package enumerator

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/raysh454/wcag131/internal/logging"
	"github.com/raysh454/wcag131/internal/utils"
	"github.com/raysh454/wcag131/internal/webclient"
)

var crawlOptions = utils.CanonicalizeOptions{StripTrailingSlash: true, DropTrackingParams: true}

// Spider is a breadth-first, same-host crawler over a[href] links.
// MaxDepth is the number of link hops from the start page: 0 returns the
// start page alone. MaxPages caps the result when positive.
type Spider struct {
	MaxDepth int
	MaxPages int
	wc       webclient.WebClient
	logger   logging.Logger
}

var _ Enumerator = (*Spider)(nil)

func NewSpider(maxDepth int, wc webclient.WebClient, logger logging.Logger) *Spider {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Spider{
		MaxDepth: maxDepth,
		wc:       wc,
		logger:   logger.With(logging.Field{Key: "component", Value: "spider"}),
	}
}

type crawlState struct {
	root    *url.URL
	depth   map[string]int
	results []string
}

func (cs *crawlState) add(u string, depth int) bool {
	if _, seen := cs.depth[u]; seen {
		return false
	}
	cs.depth[u] = depth
	cs.results = append(cs.results, u)
	return true
}

// Enumerate crawls from target. Pages that fail to load are kept in the
// result and logged; only cancellation is returned as an error.
func (s *Spider) Enumerate(ctx context.Context, target string, cb utils.ProgressCallback) ([]string, error) {
	if s.wc == nil {
		return nil, fmt.Errorf("spider: webclient is nil")
	}
	start, err := utils.Canonicalize(target, crawlOptions)
	if err != nil {
		return nil, fmt.Errorf("spider: %w", err)
	}
	root, _ := url.Parse(start)

	cs := &crawlState{root: root, depth: map[string]int{}}
	cs.add(start, 0)

	for i := 0; i < len(cs.results); i++ {
		if err := ctx.Err(); err != nil {
			return cs.results, err
		}
		page := cs.results[i]
		d := cs.depth[page]
		if d >= s.MaxDepth {
			if cb != nil {
				cb(i+1, len(cs.results))
			}
			continue
		}

		links, err := s.links(ctx, page)
		if err != nil {
			s.logger.Warn("error while crawling page",
				logging.Field{Key: "url", Value: page},
				logging.Field{Key: "error", Value: err.Error()})
		}
		for _, l := range links {
			if s.MaxPages > 0 && len(cs.results) >= s.MaxPages {
				break
			}
			cs.add(l, d+1)
		}
		if cb != nil {
			cb(i+1, len(cs.results))
		}
	}

	s.logger.Info("crawl finished",
		logging.Field{Key: "target", Value: start},
		logging.Field{Key: "pages", Value: len(cs.results)})
	return cs.results, nil
}

// links fetches page and returns its canonical same-host links.
func (s *Spider) links(ctx context.Context, page string) ([]string, error) {
	resp, err := s.wc.Get(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("received %d from %s", resp.StatusCode, page)
	}
	if ct := resp.Headers.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", page, err)
	}

	base, _ := url.Parse(page)
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if b, ok := utils.Resolve(base, href); ok {
			base = b
		}
	}

	var out []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		u, ok := utils.Resolve(base, href)
		if !ok || !utils.SameHost(base, u) {
			return
		}
		c, err := utils.Canonicalize(u.String(), crawlOptions)
		if err != nil {
			return
		}
		out = append(out, c)
	})
	return out, nil
}
