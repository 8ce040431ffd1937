package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
	"github.com/custodia-labs/suitesmith/internal/core/ports/driven"
	"github.com/custodia-labs/suitesmith/internal/logger"
)

// Ensure Publisher implements the interface.
var _ driven.Publisher = (*Publisher)(nil)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Publisher creates gists through the GitHub API.
type Publisher struct {
	gh     *gh.Client
	public bool
}

// Option configures a Publisher.
type Option func(*Publisher) error

// WithBaseURL points the client at another API root, such as a GitHub
// Enterprise server.
func WithBaseURL(raw string) Option {
	return func(p *Publisher) error {
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%w: base url: %w", domain.ErrInvalidInput, err)
		}
		p.gh.BaseURL = u
		return nil
	}
}

// WithPublic makes new gists public. Gists are secret by default.
func WithPublic(public bool) Option {
	return func(p *Publisher) error {
		p.public = public
		return nil
	}
}

// New creates a publisher that authenticates with a static token.
func New(ctx context.Context, token string, opts ...Option) (*Publisher, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: github token is required", domain.ErrInvalidInput)
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout

	p := &Publisher{gh: gh.NewClient(tc)}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Publish creates a gist holding content as filename.
func (p *Publisher) Publish(ctx context.Context, filename, description, content string) (*domain.PublishResult, error) {
	if filename == "" {
		return nil, fmt.Errorf("%w: filename is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: nothing to publish", domain.ErrInvalidInput)
	}

	gist := &gh.Gist{
		Description: gh.Ptr(description),
		Public:      gh.Ptr(p.public),
		Files: map[gh.GistFilename]gh.GistFile{
			gh.GistFilename(filename): {Content: gh.Ptr(content)},
		},
	}

	created, _, err := p.gh.Gists.Create(ctx, gist)
	if err != nil {
		return nil, wrapError(err, "create gist")
	}

	logger.Debug("published %s as gist %s", filename, created.GetID())
	return &domain.PublishResult{
		ID:  created.GetID(),
		URL: created.GetHTMLURL(),
	}, nil
}

// wrapError converts go-github errors to domain errors.
func wrapError(err error, operation string) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return fmt.Errorf("%w: %s: rate limited until %s",
			domain.ErrNetwork, operation, rateLimitErr.Rate.Reset.Format(time.Kitchen))
	}
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return fmt.Errorf("%w: %s: secondary rate limit", domain.ErrNetwork, operation)
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return fmt.Errorf("%w: %s: token rejected (%d %s)",
				domain.ErrInvalidInput, operation, ghErr.Response.StatusCode, ghErr.Message)
		case http.StatusUnprocessableEntity:
			return fmt.Errorf("%w: %s: %s", domain.ErrValidation, operation, ghErr.Message)
		default:
			return fmt.Errorf("%w: %s: status %d", domain.ErrNetwork, operation, ghErr.Response.StatusCode)
		}
	}

	return fmt.Errorf("%w: %s: %w", domain.ErrNetwork, operation, err)
}
