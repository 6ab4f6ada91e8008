package transform

import (
	"context"
	"encoding/json"
	"epsg-map-service/internal/domain"
	"epsg-map-service/internal/platform/obs"
	"epsg-map-service/internal/ports"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// EPSGTransformProvider implements TransformProvider against an epsg.io style
// "/trans" endpoint: GET ?x=..&y=..&t_srs=.. (forward) or &s_srs=.. (inverse).
//
// It coordinates:
//   - Persistent result caching (optional)
//   - External API calls with retry/backoff
//
// The provider is safe for concurrent use.
type EPSGTransformProvider struct {
	session     *http.Client
	endpoint    string
	userAgent   string
	cache       ports.TransformCache
	maxAttempts int
	backoff     time.Duration
}

// Option customizes an EPSGTransformProvider.
type Option func(*EPSGTransformProvider)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(p *EPSGTransformProvider) { p.session = c }
}

// WithCache puts a persistent cache in front of the remote call.
func WithCache(c ports.TransformCache) Option {
	return func(p *EPSGTransformProvider) { p.cache = c }
}

// WithRetry sets the attempt count and initial backoff.
func WithRetry(maxAttempts int, backoff time.Duration) Option {
	return func(p *EPSGTransformProvider) {
		p.maxAttempts = maxAttempts
		p.backoff = backoff
	}
}

func NewEPSGTransformProvider(endpoint string, opts ...Option) (*EPSGTransformProvider, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("transform endpoint is empty")
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("transform endpoint %q: %w", endpoint, err)
	}

	provider := &EPSGTransformProvider{
		session:     &http.Client{Timeout: 10 * time.Second},
		endpoint:    endpoint,
		userAgent:   "epsg-map-service/1.0",
		maxAttempts: 4,
		backoff:     200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(provider)
	}
	if provider.maxAttempts < 1 {
		provider.maxAttempts = 1
	}

	return provider, nil
}

// flexFloat accepts both JSON numbers and numeric strings; the service
// returns coordinates as strings.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("parse coordinate %s: %w", b, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("parse coordinate %s: not finite", b)
	}
	*f = flexFloat(v)
	return nil
}

type transResponse struct {
	X *flexFloat `json:"x"`
	Y *flexFloat `json:"y"`
}

// Transform one coordinate pair, consulting the cache first.
func (p *EPSGTransformProvider) Transform(
	ctx context.Context,
	req ports.TransformRequest,
) (_ ports.TransformResult, err error) {
	defer obs.Time(ctx, "trans.Transform")(&err)

	srs := strings.TrimSpace(req.SRS)
	if srs == "" {
		return ports.TransformResult{}, errors.New("transform: srs must be non-empty")
	}
	if math.IsNaN(req.X) || math.IsInf(req.X, 0) || math.IsNaN(req.Y) || math.IsInf(req.Y, 0) {
		return ports.TransformResult{}, fmt.Errorf("transform: non-finite input (%v, %v)", req.X, req.Y)
	}
	req.SRS = srs

	// Check persistent cache before issuing the external API call.
	if p.cache != nil {
		hit, ok, err := p.cache.Get(ctx, req)
		if err != nil {
			log.Printf("transform cache read failed: %v", err)
		} else if ok {
			return hit, nil
		}
	}

	res, err := p.fetch(ctx, req)
	if err != nil {
		return ports.TransformResult{}, fmt.Errorf("transform %s srs=%s (%v, %v): %w", req.Direction, srs, req.X, req.Y, err)
	}

	if p.cache != nil {
		if err := p.cache.Put(ctx, req, res); err != nil {
			log.Printf("transform cache write failed: %v", err)
		}
	}

	return res, nil
}

func (p *EPSGTransformProvider) query(req ports.TransformRequest) (url.Values, error) {
	q := url.Values{}
	q.Set("x", strconv.FormatFloat(req.X, 'f', -1, 64))
	q.Set("y", strconv.FormatFloat(req.Y, 'f', -1, 64))

	switch req.Direction {
	case domain.Forward:
		q.Set("t_srs", req.SRS)
	case domain.Inverse:
		q.Set("s_srs", req.SRS)
	default:
		return nil, fmt.Errorf("unknown direction %q", req.Direction)
	}
	return q, nil
}

func (p *EPSGTransformProvider) fetch(
	ctx context.Context,
	req ports.TransformRequest,
) (ports.TransformResult, error) {
	q, err := p.query(req)
	if err != nil {
		return ports.TransformResult{}, err
	}

	resp, err := p.doWithRetry(ctx, func() (*http.Request, error) {
		r, err := p.newRequest(ctx, http.MethodGet, p.endpoint)
		if err != nil {
			return nil, err
		}
		r.URL.RawQuery = q.Encode()
		return r, nil
	})
	if err != nil {
		return ports.TransformResult{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ports.TransformResult{}, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var decoded transResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.TransformResult{}, fmt.Errorf("decode transform response: %w", err)
	}

	if decoded.X == nil || decoded.Y == nil {
		return ports.TransformResult{}, errors.New("transform response is missing x or y")
	}

	return ports.TransformResult{X: float64(*decoded.X), Y: float64(*decoded.Y)}, nil
}
