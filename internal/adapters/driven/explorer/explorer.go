package explorer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
	"github.com/custodia-labs/suitesmith/internal/core/ports/driven"
	"github.com/custodia-labs/suitesmith/internal/logger"
)

// Ensure Explorer implements the interface.
var _ driven.PageExplorer = (*Explorer)(nil)

const (
	// DefaultTimeout bounds a single page fetch.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "suitesmith-explorer/1.0"

	maxPerTag     = 20
	maxTextLen    = 100
	maxLocatorLen = 30
	maxBodyBytes  = 5 << 20
)

// interactiveTags are captured in this order.
var interactiveTags = []string{"button", "a", "input"}

// hiddenSelector matches elements that hide themselves and their subtree.
const hiddenSelector = "[hidden], [aria-hidden='true'], " +
	"[style*='display:none'], [style*='display: none'], " +
	"[style*='visibility:hidden'], [style*='visibility: hidden']"

// Explorer fetches pages and extracts their interactive elements.
type Explorer struct {
	client    *http.Client
	userAgent string
}

// Option configures an Explorer.
type Option func(*Explorer)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Explorer) {
		if c != nil {
			e.client = c
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(e *Explorer) {
		if ua != "" {
			e.userAgent = ua
		}
	}
}

// New creates an explorer.
func New(opts ...Option) *Explorer {
	e := &Explorer{
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Explore fetches rawURL and builds a snapshot of its title, interactive
// elements and layout.
func (e *Explorer) Explore(ctx context.Context, rawURL string) (*domain.PageSnapshot, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an http(s) URL", domain.ErrInvalidInput, rawURL)
	}

	doc, err := e.fetch(ctx, u.String())
	if err != nil {
		return nil, err
	}

	doc.Find("script, style, noscript, template").Remove()

	snap := &domain.PageSnapshot{
		URL:       u.String(),
		Title:     collapse(doc.Find("title").First().Text()),
		Elements:  extractElements(doc),
		Structure: analyzeStructure(doc),
	}
	logger.Debug("explored %s: %d elements, title %q", snap.URL, len(snap.Elements), snap.Title)
	return snap, nil
}

func (e *Explorer) fetch(ctx context.Context, target string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: fetching %s: %w", domain.ErrNetwork, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: fetching %s: status %d", domain.ErrNetwork, target, resp.StatusCode)
	}
	if !isHTML(resp.Header.Get("Content-Type")) {
		return nil, fmt.Errorf("%w: %s returned %s, not HTML",
			domain.ErrValidation, target, resp.Header.Get("Content-Type"))
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", domain.ErrValidation, target, err)
	}
	return doc, nil
}

// isHTML accepts a missing content type.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

func extractElements(doc *goquery.Document) []domain.PageElement {
	var elements []domain.PageElement
	for _, tag := range interactiveTags {
		doc.Find(tag).EachWithBreak(func(i int, s *goquery.Selection) bool {
			if i >= maxPerTag {
				return false
			}
			elements = append(elements, describe(tag, s))
			return true
		})
	}
	return elements
}

func describe(tag string, s *goquery.Selection) domain.PageElement {
	el := domain.PageElement{
		Tag:     tag,
		Text:    truncate(collapse(s.Text()), maxTextLen),
		Type:    s.AttrOr("type", ""),
		ID:      s.AttrOr("id", ""),
		Name:    s.AttrOr("name", ""),
		Visible: isVisible(tag, s),
	}
	el.Locator = bestLocator(s, el)
	return el
}

func isVisible(tag string, s *goquery.Selection) bool {
	if tag == "input" && strings.EqualFold(s.AttrOr("type", ""), "hidden") {
		return false
	}
	if s.Is(hiddenSelector) {
		return false
	}
	return s.ParentsFiltered(hiddenSelector).Length() == 0
}

// bestLocator picks the most stable selector available:
// data-testid, id, name, aria-label, text, then a tag selector.
func bestLocator(s *goquery.Selection, el domain.PageElement) string {
	if v := s.AttrOr("data-testid", ""); v != "" {
		return fmt.Sprintf("[data-testid='%s']", v)
	}
	if el.ID != "" {
		return "#" + el.ID
	}
	if el.Name != "" {
		return fmt.Sprintf("[name='%s']", el.Name)
	}
	if v := s.AttrOr("aria-label", ""); v != "" {
		return fmt.Sprintf("[aria-label='%s']", v)
	}
	if el.Text != "" {
		return fmt.Sprintf("text='%s'", truncate(el.Text, maxLocatorLen))
	}
	if el.Type != "" {
		return fmt.Sprintf("css=%s[type='%s']", el.Tag, el.Type)
	}
	return "css=" + el.Tag
}

func analyzeStructure(doc *goquery.Document) domain.PageStructure {
	return domain.PageStructure{
		Forms:     doc.Find("form").Length(),
		Buttons:   doc.Find("button").Length(),
		Inputs:    doc.Find("input").Length(),
		Links:     doc.Find("a").Length(),
		HasNav:    doc.Find("nav").Length() > 0,
		HasHeader: doc.Find("header").Length() > 0,
		HasFooter: doc.Find("footer").Length() > 0,
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
