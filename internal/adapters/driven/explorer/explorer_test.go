package explorer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

const shopPage = `<!doctype html>
<html>
<head><title>  Example   Shop </title><script>var x = "<button>fake</button>";</script></head>
<body>
<header><nav><a href="/">Home</a><a href="/cart" aria-label="Cart"></a></nav></header>
<form action="/search">
  <input type="search" name="q">
  <input type="hidden" name="csrf" value="t">
  <button data-testid="search-btn" type="submit">Search</button>
</form>
<div style="display: none"><button id="secret">Hidden</button></div>
<button id="signin">  Sign
  in </button>
<footer><a href="/careers">Careers</a></footer>
</body>
</html>`

func serve(t *testing.T, contentType, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", contentType)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func findElement(t *testing.T, els []domain.PageElement, locator string) domain.PageElement {
	t.Helper()
	for _, el := range els {
		if el.Locator == locator {
			return el
		}
	}
	t.Fatalf("no element with locator %s", locator)
	return domain.PageElement{}
}

func TestExplore(t *testing.T) {
	srv := serve(t, "text/html; charset=utf-8", shopPage)

	snap, err := New().Explore(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, srv.URL, snap.URL)
	assert.Equal(t, "Example Shop", snap.Title)

	assert.Equal(t, domain.PageStructure{
		Forms: 1, Buttons: 3, Inputs: 2, Links: 3,
		HasNav: true, HasHeader: true, HasFooter: true,
	}, snap.Structure)

	// buttons first, then links, then inputs
	require.Len(t, snap.Elements, 8)
	assert.Equal(t, "button", snap.Elements[0].Tag)
	assert.Equal(t, "input", snap.Elements[7].Tag)

	search := findElement(t, snap.Elements, "[data-testid='search-btn']")
	assert.Equal(t, "Search", search.Text)
	assert.Equal(t, "submit", search.Type)
	assert.True(t, search.Visible)

	signin := findElement(t, snap.Elements, "#signin")
	assert.Equal(t, "Sign in", signin.Text)
	assert.True(t, signin.Visible)

	assert.False(t, findElement(t, snap.Elements, "#secret").Visible)
	assert.False(t, findElement(t, snap.Elements, "[name='csrf']").Visible)
	assert.True(t, findElement(t, snap.Elements, "[name='q']").Visible)
	assert.True(t, findElement(t, snap.Elements, "[aria-label='Cart']").Visible)
	assert.True(t, findElement(t, snap.Elements, "text='Careers'").Visible)
}

func TestExplore_CapsElementsPerTag(t *testing.T) {
	body := "<html><body>" + strings.Repeat("<button>b</button>", 30) + "</body></html>"
	srv := serve(t, "text/html", body)

	snap, err := New().Explore(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Len(t, snap.Elements, maxPerTag)
	assert.Equal(t, 30, snap.Structure.Buttons)
}

func TestExplore_Errors(t *testing.T) {
	t.Run("not a url", func(t *testing.T) {
		_, err := New().Explore(context.Background(), "ftp://example.com")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := New().Explore(context.Background(), srv.URL)
		assert.ErrorIs(t, err, domain.ErrNetwork)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		target := srv.URL
		srv.Close()

		_, err := New().Explore(context.Background(), target)
		assert.ErrorIs(t, err, domain.ErrNetwork)
	})

	t.Run("not html", func(t *testing.T) {
		srv := serve(t, "application/json", `{"a":1}`)

		_, err := New().Explore(context.Background(), srv.URL)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("cancelled", func(t *testing.T) {
		srv := serve(t, "text/html", shopPage)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := New().Explore(ctx, srv.URL)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestBestLocator_Fallbacks(t *testing.T) {
	srv := serve(t, "text/html", `<html><body><input type="email"><button></button></body></html>`)

	snap, err := New(WithUserAgent(DefaultUserAgent)).Explore(context.Background(), srv.URL)

	require.NoError(t, err)
	require.Len(t, snap.Elements, 2)
	assert.Equal(t, "css=button", snap.Elements[0].Locator)
	assert.Equal(t, "css=input[type='email']", snap.Elements[1].Locator)
}
