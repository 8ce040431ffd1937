package assistant

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

// Per-kind limits for element listings in prompts.
const (
	promptButtons = 8
	promptLinks   = 10
	promptInputs  = 6
	elementText   = 40
)

// SummarizeElements lists the visible buttons, links and inputs of a page
// for inclusion in a prompt.
func SummarizeElements(elements []domain.PageElement) string {
	if len(elements) == 0 {
		return "No interactive elements found"
	}

	var buttons, links, inputs []domain.PageElement
	for _, el := range elements {
		if !el.Visible {
			continue
		}
		switch el.Tag {
		case "button":
			if len(buttons) < promptButtons {
				buttons = append(buttons, el)
			}
		case "a":
			if len(links) < promptLinks {
				links = append(links, el)
			}
		case "input":
			if len(inputs) < promptInputs {
				inputs = append(inputs, el)
			}
		}
	}

	var b strings.Builder
	writeGroup(&b, "BUTTONS", "Button", buttons, func(el domain.PageElement) []string {
		return attrs("text", prefix(strings.TrimSpace(el.Text), elementText), "id", el.ID, "type", el.Type)
	})
	writeGroup(&b, "LINKS", "Link", links, func(el domain.PageElement) []string {
		return attrs("text", prefix(strings.TrimSpace(el.Text), elementText), "id", el.ID)
	})
	writeGroup(&b, "INPUTS", "Input", inputs, func(el domain.PageElement) []string {
		typ := el.Type
		if typ == "" {
			typ = "text"
		}
		return attrs("type", typ, "id", el.ID, "name", el.Name)
	})
	if b.Len() == 0 {
		return "No visible interactive elements found"
	}
	return strings.TrimSpace(b.String())
}

func writeGroup(b *strings.Builder, title, label string, els []domain.PageElement, describe func(domain.PageElement) []string) {
	if len(els) == 0 {
		return
	}
	fmt.Fprintf(b, "%s (%d shown):\n", title, len(els))
	for i, el := range els {
		parts := describe(el)
		desc := "no text/id"
		if len(parts) > 0 {
			desc = strings.Join(parts, ", ")
		}
		fmt.Fprintf(b, "  %d. %s: %s\n", i+1, label, desc)
	}
	b.WriteByte('\n')
}

// attrs renders non-empty key/value pairs as key='value'.
func attrs(kv ...string) []string {
	var out []string
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			out = append(out, fmt.Sprintf("%s='%s'", kv[i], kv[i+1]))
		}
	}
	return out
}

// SummarizeStructure renders page layout counts on one line.
func SummarizeStructure(s domain.PageStructure) string {
	return fmt.Sprintf("forms=%d buttons=%d inputs=%d links=%d nav=%t header=%t footer=%t",
		s.Forms, s.Buttons, s.Inputs, s.Links, s.HasNav, s.HasHeader, s.HasFooter)
}

// LocatorList renders elements with their preferred locators for code generation.
func LocatorList(elements []domain.PageElement) string {
	var b strings.Builder
	for _, el := range elements {
		if el.Locator == "" {
			continue
		}
		label := strings.TrimSpace(el.Text)
		if label == "" {
			label = el.Name
		}
		fmt.Fprintf(&b, "- %s %q: %s\n", el.Tag, prefix(label, elementText), el.Locator)
	}
	if b.Len() == 0 {
		return "None recorded"
	}
	return strings.TrimSpace(b.String())
}

// pageContext describes a stored page snapshot for the chat system prompt.
func pageContext(raw json.RawMessage) string {
	snap, err := domain.DecodePageSnapshot(raw)
	if err != nil || (snap.URL == "" && len(snap.Elements) == 0) {
		return "No page exploration recorded for this suite."
	}
	return fmt.Sprintf("URL: %s\nTitle: %s\nStructure: %s\n\n%s",
		snap.URL, snap.Title, SummarizeStructure(snap.Structure), SummarizeElements(snap.Elements))
}
