package imageapi

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/latoulicious/Nekobot/pkg/logging"
)

const maxBodySize = 2 << 20

// Result describes a resolved image
type Result struct {
	URL      string
	Provider string
	Attempts int
}

// Resolver fetches reaction images, falling back across providers
type Resolver struct {
	providers []Provider
	client    *http.Client
	timeout   time.Duration
	userAgent string
	logger    logging.Logger
	shuffle   func([]Provider)
}

// Option configures a Resolver
type Option func(*Resolver)

// WithHTTPClient replaces the owned HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		r.client = client
	}
}

// WithTimeout bounds each provider request
func WithTimeout(timeout time.Duration) Option {
	return func(r *Resolver) {
		r.timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header sent to providers
func WithUserAgent(userAgent string) Option {
	return func(r *Resolver) {
		r.userAgent = userAgent
	}
}

// WithLogger sets the logger used for provider failures
func WithLogger(logger logging.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithShuffle replaces the per-call provider ordering
func WithShuffle(shuffle func([]Provider)) Option {
	return func(r *Resolver) {
		r.shuffle = shuffle
	}
}

// NewResolver creates a resolver over providers. The provider slice is copied
// and never modified afterwards.
func NewResolver(providers []Provider, opts ...Option) *Resolver {
	r := &Resolver{
		providers: append([]Provider(nil), providers...),
		timeout:   10 * time.Second,
		userAgent: "Nekobot/1.0",
		logger:    logging.NullLogger(),
		shuffle: func(ps []Provider) {
			rand.Shuffle(len(ps), func(i, j int) { ps[i], ps[j] = ps[j], ps[i] })
		},
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.client == nil {
		r.client = &http.Client{
			Timeout: r.timeout,
		}
	}

	return r
}

// GetImage returns an image URL for the reaction type, or false when every
// provider failed or none serves the type.
func (r *Resolver) GetImage(ctx context.Context, reactionType string) (string, bool) {
	result, ok := r.Resolve(ctx, reactionType)
	return result.URL, ok
}

// Resolve is GetImage with details about which provider answered
func (r *Resolver) Resolve(ctx context.Context, reactionType string) (Result, bool) {
	order := append([]Provider(nil), r.providers...)
	r.shuffle(order)

	attempts := 0
	for _, provider := range order {
		requestURL, ok := provider.RequestURL(reactionType)
		if !ok {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		attempts++
		imageURL, err := r.fetch(ctx, provider, requestURL)
		if err != nil {
			r.logger.Error("Error fetching image",
				logging.String("provider", provider.Name),
				logging.String("reaction_type", reactionType),
				logging.String("url", requestURL),
				logging.Error(err),
			)
			continue
		}

		r.logger.Debug("Resolved image",
			logging.String("provider", provider.Name),
			logging.String("reaction_type", reactionType),
			logging.Int("attempts", attempts),
		)
		return Result{URL: imageURL, Provider: provider.Name, Attempts: attempts}, true
	}

	return Result{Attempts: attempts}, false
}

func (r *Resolver) fetch(ctx context.Context, provider Provider, requestURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, maxBodySize)

	switch provider.Format {
	case FormatJSON, "":
		return extractJSON(body, provider.URLField)
	case FormatHTML:
		return extractHTML(body, resp.Request.URL, provider.Selector, provider.Attr)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, provider.Format)
	}
}

// Providers returns the configured provider names in configuration order
func (r *Resolver) Providers() []string {
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, p.Name)
	}
	return names
}

// Close releases pooled connections held by the resolver's client
func (r *Resolver) Close() {
	r.client.CloseIdleConnections()
}
