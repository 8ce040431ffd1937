package domain

import (
	"encoding/json"
	"time"
)

// Exploration is a captured representation of a web page.
// Only Name may change after creation.
type Exploration struct {
	// ID is the unique identifier for the exploration.
	ID string `json:"id"`

	// Name is the human-readable display name.
	Name string `json:"name"`

	// URL is the page the exploration was taken from.
	URL string `json:"url"`

	// Page is the opaque page representation produced by the explorer.
	Page json.RawMessage `json:"page,omitempty"`

	// CreatedAt is when the exploration was recorded.
	CreatedAt time.Time `json:"created_at"`
}

// PageElement describes one interactive element found on a page.
type PageElement struct {
	Tag     string `json:"tag"`
	Text    string `json:"text"`
	Type    string `json:"type"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Visible bool   `json:"visible"`

	// Locator is the most reliable selector found for the element.
	Locator string `json:"locator,omitempty"`
}

// PageStructure summarises the high-level layout of a page.
type PageStructure struct {
	Forms     int  `json:"forms"`
	Buttons   int  `json:"buttons"`
	Inputs    int  `json:"inputs"`
	Links     int  `json:"links"`
	HasNav    bool `json:"has_nav"`
	HasHeader bool `json:"has_header"`
	HasFooter bool `json:"has_footer"`
}

// PageSnapshot is the payload returned by a page explorer.
// It is stored on an Exploration as an opaque document.
type PageSnapshot struct {
	URL       string        `json:"url"`
	Title     string        `json:"title"`
	Elements  []PageElement `json:"elements"`
	Structure PageStructure `json:"page_structure"`
}

// DecodePageSnapshot reads a page payload back into its typed form.
// Unknown fields are ignored; an empty payload yields an empty snapshot.
func DecodePageSnapshot(raw json.RawMessage) (PageSnapshot, error) {
	var snap PageSnapshot
	if len(raw) == 0 {
		return snap, nil
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		return PageSnapshot{}, err
	}
	return snap, nil
}

// VisibleElements returns the elements marked visible.
func (p PageSnapshot) VisibleElements() []PageElement {
	visible := make([]PageElement, 0, len(p.Elements))
	for _, el := range p.Elements {
		if el.Visible {
			visible = append(visible, el)
		}
	}
	return visible
}
