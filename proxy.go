package ogproxy

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// Forwarder relays non-crawler and static-asset traffic to the origin
// application server.
type Forwarder struct {
	origin            *url.URL
	client            *http.Client
	stripFrameOptions bool
}

// NewForwarder builds a forwarder for the configured origin.
func NewForwarder(cfg OriginConfig) (*Forwarder, error) {
	origin, err := url.Parse(cfg.URL)
	if err != nil || origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("ogproxy: invalid origin url %q", cfg.URL)
	}
	return &Forwarder{
		origin:            origin,
		client:            &http.Client{Transport: newTransport()},
		stripFrameOptions: cfg.StripFrameOptions,
	}, nil
}

// Forward proxies the request to the origin, preserving method, headers, and
// query. The Host header is rewritten to the origin's to avoid virtual-host
// mismatches, and a body is forwarded only for methods that carry one.
// Redirect chains are followed here rather than relayed. A failure to reach
// the origin surfaces as 502, the one case where the client legitimately
// sees an error, since the edge cannot synthesize arbitrary application pages.
func (f *Forwarder) Forward(c echo.Context, asset bool) error {
	req := c.Request()

	target := *f.origin
	target.Path = strings.TrimSuffix(f.origin.Path, "/") + req.URL.Path
	target.RawQuery = req.URL.RawQuery

	var body io.Reader
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		body = req.Body
	}
	out, err := http.NewRequestWithContext(req.Context(), req.Method, target.String(), body)
	if err != nil {
		return c.String(http.StatusBadGateway, "origin unavailable")
	}
	out.Header = req.Header.Clone()
	out.Header.Del("Host")

	resp, err := f.client.Do(out)
	if err != nil {
		c.Logger().Warnf("origin proxy: %s %s: %v", req.Method, req.URL.Path, err)
		return c.String(http.StatusBadGateway, "origin unavailable")
	}
	defer resp.Body.Close()

	header := c.Response().Header()
	for key, values := range resp.Header {
		if asset && f.stripFrameOptions && http.CanonicalHeaderKey(key) == "X-Frame-Options" {
			continue
		}
		for _, v := range values {
			header.Add(key, v)
		}
	}
	c.Response().WriteHeader(resp.StatusCode)
	_, err = io.Copy(c.Response(), resp.Body)
	return err
}
