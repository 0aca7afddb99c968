package wms

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/evhagen/aoiview/internal/core/model"
	"github.com/evhagen/aoiview/internal/core/observability"
)

const capsCacheKey = "layers"

type Client struct {
	logger  *slog.Logger
	client  *http.Client
	wmsURL  *url.URL
	timeout time.Duration

	// capabilities change rarely; a tiny expirable LRU keeps the layer
	// picker off the upstream
	caps *expirable.LRU[string, []string]

	startNow func() time.Time // for tests
}

func NewClient(logger *slog.Logger, client *http.Client, wmsURL string, timeout, capsTTL time.Duration) (*Client, error) {
	u, err := url.Parse(wmsURL)
	if err != nil {
		return nil, fmt.Errorf("parse wms url: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		logger:   logger,
		client:   client,
		wmsURL:   u,
		timeout:  timeout,
		caps:     expirable.NewLRU[string, []string](4, nil, capsTTL),
		startNow: time.Now,
	}, nil
}

// FetchFeatureInfo performs one GetFeatureInfo request and returns the raw
// body and content type. Non-2xx upstream status is an error; the caller
// maps it to a 502-class response and must not cache it.
func (c *Client) FetchFeatureInfo(ctx context.Context, q model.FeatureQuery) ([]byte, string, error) {
	params := FeatureInfoParams(q)

	ctxReq, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := *c.wmsURL
	u.RawQuery = params.Encode()
	req, err := http.NewRequestWithContext(ctxReq, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := c.startNow()
	resp, err := c.client.Do(req)
	observability.ObserveUpstreamLatency("wms", time.Since(start).Seconds())
	if err != nil {
		return nil, "", fmt.Errorf("wms featureinfo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return nil, "", fmt.Errorf("upstream status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// Layers returns the named layers advertised by GetCapabilities, cached for
// the configured TTL.
func (c *Client) Layers(ctx context.Context) ([]string, error) {
	if names, ok := c.caps.Get(capsCacheKey); ok {
		return names, nil
	}

	ctxReq, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := *c.wmsURL
	u.RawQuery = CapabilitiesParams().Encode()
	req, err := http.NewRequestWithContext(ctxReq, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	start := c.startNow()
	resp, err := c.client.Do(req)
	observability.ObserveUpstreamLatency("wms", time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("wms capabilities: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return nil, fmt.Errorf("upstream status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	names, err := ParseCapabilities(body)
	if err != nil {
		return nil, err
	}

	c.caps.Add(capsCacheKey, names)
	c.logger.Debug("capabilities refreshed", "layers", len(names))
	return names, nil
}

type capLayer struct {
	Name   string     `xml:"Name"`
	Layers []capLayer `xml:"Layer"`
}

type capabilitiesDoc struct {
	Capability struct {
		Layer capLayer `xml:"Layer"`
	} `xml:"Capability"`
}

// ParseCapabilities extracts named layers from a WMS capabilities document,
// walking nested layer groups.
func ParseCapabilities(body []byte) ([]string, error) {
	var doc capabilitiesDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse capabilities: %w", err)
	}
	var names []string
	collectLayers(doc.Capability.Layer, &names)
	return names, nil
}

func collectLayers(l capLayer, out *[]string) {
	if strings.TrimSpace(l.Name) != "" && len(l.Layers) == 0 {
		*out = append(*out, l.Name)
	}
	for _, child := range l.Layers {
		collectLayers(child, out)
	}
}
