package enhance

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// NoTranslateAttr marks an element subtree as opted out of
// enhancement.
const NoTranslateAttr = "data-no-translate"

// NoTranslateClass is the class-based opt-out marker.
const NoTranslateClass = "notranslate"

// ignoredTags contains elements whose text content is never collected.
var ignoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
}

// collected holds the candidate strings of one pass and the text nodes
// carrying each string, keyed by exact trimmed value.
type collected struct {
	texts []string // unique, first-appearance order
	nodes map[string][]*html.Node
}

// collect walks the selection's text nodes, skipping ignored elements
// and opt-outs, deduplicating candidates by exact string value.
func collect(sel *goquery.Selection) *collected {
	c := &collected{nodes: make(map[string][]*html.Node)}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipElement(n) {
			return
		}

		if n.Type == html.TextNode {
			trimmed := strings.TrimSpace(n.Data)
			if trimmed != "" {
				if _, seen := c.nodes[trimmed]; !seen {
					c.texts = append(c.texts, trimmed)
				}
				c.nodes[trimmed] = append(c.nodes[trimmed], n)
			}
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}

	sel.Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			walk(n)
		}
	})

	return c
}

// skipElement reports whether an element subtree is excluded from
// enhancement.
func skipElement(n *html.Node) bool {
	if ignoredTags[strings.ToLower(n.Data)] {
		return true
	}
	for _, attr := range n.Attr {
		if attr.Key == NoTranslateAttr {
			return true
		}
		if attr.Key == "class" {
			for _, class := range strings.Fields(attr.Val) {
				if class == NoTranslateClass {
					return true
				}
			}
		}
	}
	return false
}

// apply replaces each collected node's text with its translation,
// matching by exact value. Re-applying the same translations is
// idempotent. It returns the texts still untranslated (translation
// equal to source, i.e. a cache miss).
func (c *collected) apply(outstanding []string, translations []string) []string {
	var remaining []string
	for i, source := range outstanding {
		translated := translations[i]
		if translated == source || translated == "" {
			remaining = append(remaining, source)
			continue
		}
		for _, n := range c.nodes[source] {
			n.Data = preserveWhitespace(n.Data, translated)
		}
	}
	return remaining
}

// preserveWhitespace keeps the original leading/trailing whitespace
// around the translated text.
func preserveWhitespace(original, translated string) string {
	leadingLen := len(original) - len(strings.TrimLeft(original, " \t\n\r"))
	leading := original[:leadingLen]

	trailingLen := len(original) - len(strings.TrimRight(original, " \t\n\r"))
	trailing := ""
	if trailingLen > 0 {
		trailing = original[len(original)-trailingLen:]
	}

	return leading + translated + trailing
}
