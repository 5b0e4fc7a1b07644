package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// connection pooling limits to prevent resource exhaustion when probing many cameras
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second // conservative: matches common ALB defaults
)

// Outcome classifies a settled probe.
type Outcome string

const (
	// OutcomeSuccess means the manifest responded 2xx.
	OutcomeSuccess Outcome = "success"

	// OutcomeSoft means the manifest responded 404. The stream may be
	// starting up or deliberately idle; the outcome is ambiguous and is
	// never counted against the camera.
	OutcomeSoft Outcome = "soft-failure"

	// OutcomeHard means any other HTTP response or a transport failure,
	// including a probe timeout.
	OutcomeHard Outcome = "hard-failure"

	// OutcomeAborted means the probe's context was cancelled before it
	// settled. Aborted probes carry no health information.
	OutcomeAborted Outcome = "aborted"
)

// Target identifies one camera manifest to probe.
type Target struct {
	// ID is the camera ID the result will be attributed to.
	ID string

	// URL is the HLS manifest URL to HEAD.
	URL string
}

// Result is the settled outcome of probing one target.
type Result struct {
	// ID is the camera the probe was issued for.
	ID string

	// Outcome is the classification of the probe.
	Outcome Outcome

	// StatusCode is the HTTP status code, zero if no response arrived.
	StatusCode int

	// Latency is the total time the probe took.
	Latency time.Duration

	// Err is the transport error, if any. nil for HTTP-level outcomes.
	Err error

	// CheckedAt is when the probe settled.
	CheckedAt time.Time
}

// Prober issues HEAD probes against camera manifests.
//
// Prober uses per-request timeouts via context rather than a global client
// timeout, and a pooled transport so a fleet of cameras on the same media
// server reuses connections across cycles.
type Prober struct {
	httpClient *http.Client
	timeout    time.Duration
}

// New creates a [Prober] with the given per-probe timeout.
//
// Connection pooling configuration:
//   - MaxIdleConns: 100 total idle connections
//   - MaxIdleConnsPerHost: 10 idle connections per host
//   - MaxConnsPerHost: 10 concurrent connections per host
//   - IdleConnTimeout: 60 seconds before closing idle connections
func New(timeout time.Duration) *Prober {
	return &Prober{
		httpClient: &http.Client{
			// no default timeout - per-probe timeouts come from the context
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
				DisableKeepAlives:   false, // explicitly enable connection reuse
			},
		},
		timeout: timeout,
	}
}

// Probe issues a single HEAD request against the target and classifies the
// result. Probe never returns an error; failures are folded into the
// [Result] so scatter/gather callers handle every camera uniformly.
func (p *Prober) Probe(ctx context.Context, t Target) Result {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, t.URL, nil)
	if err != nil {
		return Result{
			ID:        t.ID,
			Outcome:   OutcomeHard,
			Latency:   time.Since(start),
			Err:       fmt.Errorf("failed to create request: %w", err),
			CheckedAt: time.Now(),
		}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		outcome := OutcomeHard
		if errors.Is(err, context.Canceled) {
			// cancelled from above (superseded cycle or shutdown), not a timeout
			outcome = OutcomeAborted
		}
		return Result{
			ID:        t.ID,
			Outcome:   outcome,
			Latency:   time.Since(start),
			Err:       fmt.Errorf("probe failed: %w", err),
			CheckedAt: time.Now(),
		}
	}
	_ = resp.Body.Close()

	return Result{
		ID:         t.ID,
		Outcome:    Classify(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Latency:    time.Since(start),
		CheckedAt:  time.Now(),
	}
}

// ProbeAll probes every target concurrently and returns when all have
// settled. No probe's failure aborts its siblings; results are positionally
// aligned with targets.
func (p *Prober) ProbeAll(ctx context.Context, targets []Target) []Result {
	results := make([]Result, len(targets))

	var wg sync.WaitGroup
	for i, t := range targets {
		wg.Add(1)
		go func(i int, t Target) {
			defer wg.Done()
			results[i] = p.Probe(ctx, t)
		}(i, t)
	}
	wg.Wait()

	return results
}

// Classify maps an HTTP status code to a probe [Outcome].
//
// Classify is a pure function: 2xx is success, 404 is the ambiguous soft
// failure, everything else is a hard failure.
func Classify(statusCode int) Outcome {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return OutcomeSuccess
	case statusCode == http.StatusNotFound:
		return OutcomeSoft
	default:
		return OutcomeHard
	}
}

// Close closes all idle connections in the prober's connection pool.
//
// Safe to call multiple times. After Close, the prober remains usable but
// new connections will be established as needed.
func (p *Prober) Close() {
	if p == nil || p.httpClient == nil {
		return
	}
	if transport, ok := p.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
