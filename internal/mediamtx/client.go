package mediamtx

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// PathItem is one entry of the media server's paths list.
type PathItem struct {
	// Name is the path name, which camwatch uses as the camera ID.
	Name string `json:"name"`

	// Ready reports whether the media server currently has the stream.
	Ready bool `json:"ready"`
}

// pathList is the envelope returned by the paths list endpoint.
type pathList struct {
	ItemCount int        `json:"itemCount"`
	PageCount int        `json:"pageCount"`
	Items     []PathItem `json:"items"`
}

// PathConfig is the stored configuration of a single path.
//
// When a per-path config fetch fails, [Client.GetPathConfigs] substitutes a
// placeholder with Source "unknown" and Failed set, so one broken path never
// aborts a whole refresh cycle.
type PathConfig struct {
	Name           string `json:"name"`
	Source         string `json:"source"`
	SourceOnDemand bool   `json:"sourceOnDemand"`
	RTSPTransport  string `json:"rtspTransport"`
	Failed         bool   `json:"error,omitempty"`
}

// Default on-demand timing applied when callers do not choose their own.
const (
	DefaultOnDemandStartTimeout = "10s"
	DefaultOnDemandCloseAfter   = "10s"
)

// AddPathRequest is the body for path creation.
//
// Duration fields are strings ("10s") because the media server's
// configuration API parses Go-style duration strings.
type AddPathRequest struct {
	Source                     string `json:"source"`
	RTSPTransport              string `json:"rtspTransport"`
	SourceOnDemand             bool   `json:"sourceOnDemand"`
	SourceOnDemandStartTimeout string `json:"sourceOnDemandStartTimeout"`
	SourceOnDemandCloseAfter   string `json:"sourceOnDemandCloseAfter"`
	RTSPUDPReadBufferSize      int    `json:"rtspUDPReadBufferSize,omitempty"`
}

// Client talks to the MediaMTX control API.
//
// Reads (paths list, per-path config) are retried on transient transport
// failures up to a fixed budget with a fixed delay. Mutations (add, delete)
// are never retried: a repeated add after an ambiguous failure would be
// reported as a rejection by the server and mask the real outcome. Mutation
// failures of any kind are reported as a boolean false, not an error, which
// is what callers of add/delete act on.
type Client struct {
	http      *resty.Client
	batchSize int
	logger    *slog.Logger
}

// New creates a control API [Client] for the given base URL.
//
// The base URL includes the API version prefix, e.g.
// "http://127.0.0.1:9997/v3". The timeout applies per request. retries and
// retryDelay set the fixed retry budget for transient transport failures on
// reads. batchSize bounds how many per-path config requests are outstanding
// at once during [Client.GetPathConfigs].
func New(baseURL string, timeout time.Duration, retries int, retryDelay time.Duration, batchSize int, logger *slog.Logger) *Client {
	if batchSize < 1 {
		batchSize = 1
	}

	r := resty.New()
	r.SetBaseURL(baseURL)
	r.SetHeader("Accept", "application/json")
	r.SetTimeout(timeout)
	r.SetRetryCount(retries)
	r.SetRetryWaitTime(retryDelay)
	r.SetRetryMaxWaitTime(retryDelay)
	r.AddRetryCondition(func(resp *resty.Response, err error) bool {
		if err == nil || resp == nil || resp.Request == nil {
			return false
		}
		// transport failures on reads only; mutations are never replayed
		return resp.Request.Method == http.MethodGet
	})

	return &Client{
		http:      r,
		batchSize: batchSize,
		logger:    logger,
	}
}

// ListPaths returns every path currently known to the media server.
func (c *Client) ListPaths(ctx context.Context) ([]PathItem, error) {
	var list pathList

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&list).
		Get("/paths/list")
	if err != nil {
		return nil, fmt.Errorf("list paths: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("list paths: media server returned %s", resp.Status())
	}

	return list.Items, nil
}

// GetPathConfig fetches the stored configuration of a single path.
func (c *Client) GetPathConfig(ctx context.Context, name string) (PathConfig, error) {
	var conf PathConfig

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&conf).
		SetPathParam("name", name).
		Get("/config/paths/get/{name}")
	if err != nil {
		return PathConfig{}, fmt.Errorf("get path config %q: %w", name, err)
	}
	if resp.IsError() {
		return PathConfig{}, fmt.Errorf("get path config %q: media server returned %s", name, resp.Status())
	}

	// some server versions omit the name in the config body
	if conf.Name == "" {
		conf.Name = name
	}
	return conf, nil
}

// GetPathConfigs fetches the configuration of every named path in batches.
//
// At most batchSize requests are outstanding at a time, bounding the load a
// large camera fleet puts on the control API. A failed fetch for one path
// yields a placeholder record (Source "unknown", Failed true) in its slot;
// GetPathConfigs itself never fails. Results are positionally aligned with
// names.
func (c *Client) GetPathConfigs(ctx context.Context, names []string) []PathConfig {
	results := make([]PathConfig, len(names))

	for start := 0; start < len(names); start += c.batchSize {
		end := min(start+c.batchSize, len(names))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				conf, err := c.GetPathConfig(ctx, names[i])
				if err != nil {
					c.logger.Warn("path config fetch failed",
						"path", names[i],
						"error", err,
					)
					results[i] = PathConfig{Name: names[i], Source: "unknown", Failed: true}
					return
				}
				results[i] = conf
			}(i)
		}
		wg.Wait()

		if ctx.Err() != nil {
			// superseded cycle: remaining batches would all fail anyway
			for i := end; i < len(names); i++ {
				results[i] = PathConfig{Name: names[i], Source: "unknown", Failed: true}
			}
			return results
		}
	}

	return results
}

// AddPath creates a path on the media server.
//
// Returns true only when the server accepted the path. Rejections (non-2xx)
// and transport failures are logged and reported as false.
func (c *Client) AddPath(ctx context.Context, name string, req AddPathRequest) bool {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetPathParam("name", name).
		Post("/config/paths/add/{name}")
	if err != nil {
		c.logger.Warn("add path failed", "path", name, "error", err)
		return false
	}
	if resp.IsError() {
		c.logger.Warn("add path rejected",
			"path", name,
			"status", resp.Status(),
			"body", resp.String(),
		)
		return false
	}

	c.logger.Info("path added", "path", name, "source", req.Source)
	return true
}

// DeletePath removes a path from the media server.
//
// Returns true only when the server confirmed the removal.
func (c *Client) DeletePath(ctx context.Context, name string) bool {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("name", name).
		Post("/config/paths/delete/{name}")
	if err != nil {
		c.logger.Warn("delete path failed", "path", name, "error", err)
		return false
	}
	if resp.IsError() {
		c.logger.Warn("delete path rejected",
			"path", name,
			"status", resp.Status(),
			"body", resp.String(),
		)
		return false
	}

	c.logger.Info("path deleted", "path", name)
	return true
}
