// Package explorer captures web pages into domain.PageSnapshot values.
//
// The page is fetched over HTTP and its static HTML is parsed with goquery.
// Scripts are not executed, so elements rendered client-side are not seen.
// Visibility is inferred from hidden attributes and inline styles on the
// element and its ancestors.
package explorer
