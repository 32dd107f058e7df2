// Package utils holds URL helpers shared by the crawler and the batch driver.
package utils

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"path"
	"sort"
	"strings"

	"golang.org/x/net/idna"
)

var (
	ErrEmptyURL    = errors.New("empty url")
	ErrMissingHost = errors.New("missing host")
)

// CanonicalizeOptions controls optional canonicalization policies.
type CanonicalizeOptions struct {
	DropTrackingParams bool   // remove common tracking params (utm_*, gclid, fbclid, ...)
	StripTrailingSlash bool   // treat /a and /a/ the same (root "/" is kept)
	DefaultScheme      string // scheme assumed for input without one; empty requires a scheme
}

// AuditOptions is the policy used to decide whether two submitted URLs name
// the same page.
var AuditOptions = CanonicalizeOptions{
	DropTrackingParams: true,
	StripTrailingSlash: true,
	DefaultScheme:      "https",
}

var trackingParams = map[string]struct{}{
	"utm_source": {}, "utm_medium": {}, "utm_campaign": {}, "utm_term": {}, "utm_content": {},
	"gclid": {}, "fbclid": {}, "mc_cid": {}, "mc_eid": {},
}

// Canonicalize returns a deterministic form of raw: lowercase scheme and
// punycode host, default ports dropped, credentials and fragment removed,
// path cleaned and query parameters sorted.
func Canonicalize(raw string, opts CanonicalizeOptions) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyURL
	}
	if opts.DefaultScheme != "" && !strings.Contains(raw, "://") {
		raw = opts.DefaultScheme + "://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", raw, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("parse %q: %w", raw, ErrMissingHost)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if puny, err := idna.Lookup.ToASCII(host); err == nil {
		host = puny
	}
	switch port := u.Port(); {
	case port == "", u.Scheme == "http" && port == "80", u.Scheme == "https" && port == "443":
		u.Host = host
	default:
		u.Host = net.JoinHostPort(host, port)
	}
	u.User = nil
	u.Fragment = ""

	p := path.Clean(u.Path)
	if p == "." {
		p = "/"
	}
	if !opts.StripTrailingSlash && strings.HasSuffix(u.Path, "/") && p != "/" {
		p += "/"
	}
	u.Path = p
	u.RawPath = ""

	q := u.Query()
	if opts.DropTrackingParams {
		for k := range q {
			if _, ok := trackingParams[strings.ToLower(k)]; ok {
				q.Del(k)
			}
		}
	}
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ordered := url.Values{}
	for _, k := range keys {
		vs := q[k]
		sort.Strings(vs)
		for _, v := range vs {
			ordered.Add(k, v)
		}
	}
	u.RawQuery = ordered.Encode()

	return u.String(), nil
}

// Dedupe canonicalizes raws and drops repeats, keeping first-seen order.
// Entries that fail to parse are returned in rejected with their error.
func Dedupe(raws []string, opts CanonicalizeOptions) (unique []string, rejected map[string]error) {
	seen := make(map[string]struct{}, len(raws))
	rejected = map[string]error{}
	for _, raw := range raws {
		c, err := Canonicalize(raw, opts)
		if err != nil {
			rejected[raw] = err
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		unique = append(unique, c)
	}
	return unique, rejected
}

// Resolve resolves href against base and drops the fragment. Only http and
// https results are returned.
func Resolve(base *url.URL, href string) (*url.URL, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return nil, false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return nil, false
	}
	u := base.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	u.Fragment = ""
	return u, true
}

// SameHost reports whether a and b share a hostname, ignoring case and port.
func SameHost(a, b *url.URL) bool {
	return strings.EqualFold(a.Hostname(), b.Hostname())
}
