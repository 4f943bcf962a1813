package extract

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var footnotePattern = regexp.MustCompile(`\[[a-z0-9 ]{1,4}\]`)

func parseHTML(body []byte) (*html.Node, error) {
	return html.Parse(bytes.NewReader(body))
}

// textContent concatenates the text below n with whitespace collapsed.
func textContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	var buf strings.Builder
	collectText(n, &buf)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func collectText(n *html.Node, buf *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		buf.WriteString(n.Data)
	case html.ElementNode:
		switch n.Data {
		case "script", "style":
			return
		case "br", "li", "p", "div", "td", "th":
			buf.WriteString(" ")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, buf)
	}
}

// cellText prefers italic text inside a table cell and strips footnote markers.
func cellText(cell *html.Node) string {
	text := textContent(cell)
	if italic := cascadia.Query(cell, italicSel); italic != nil {
		if t := textContent(italic); t != "" {
			text = t
		}
	}
	return strings.TrimSpace(footnotePattern.ReplaceAllString(text, ""))
}

// nextSiblingMatching returns the first following element sibling of n that
// matches sel.
func nextSiblingMatching(n *html.Node, sel cascadia.Matcher) *html.Node {
	for c := n.NextSibling; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && sel.Match(c) {
			return c
		}
	}
	return nil
}

// children returns the element children of n matching sel.
func children(n *html.Node, sel cascadia.Matcher) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && sel.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

// walk visits the elements below n in document order.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if n.Type == html.ElementNode && !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// listItems returns the li elements below the first list following heading.
func listItems(heading *html.Node) []*html.Node {
	list := nextSiblingMatching(heading, listSel)
	if list == nil {
		return nil
	}
	return cascadia.QueryAll(list, liSel)
}

var (
	italicSel = cascadia.MustCompile("i")
	listSel   = cascadia.MustCompile("ul")
	liSel     = cascadia.MustCompile("li")
)

// splitPlatforms splits "(PC, PS5)" or "[PC, PS5]" into tokens.
func splitPlatforms(value string) []string {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(strings.TrimPrefix(value, "("), "[")
	value = strings.TrimSuffix(strings.TrimSuffix(value, ")"), "]")
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
