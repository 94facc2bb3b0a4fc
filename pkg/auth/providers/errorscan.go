package providers

import (
	"strings"

	"github.com/playwright-community/playwright-go"
	"golang.org/x/net/html"
)

// errorPhrases are the generic failure markers scanned when no provider
// heuristic matched.
var errorPhrases = []string{
	"invalid credentials",
	"login failed",
	"incorrect email or password",
	"incorrect password",
	"couldn't sign you in",
	"sign in failed",
	"authentication failed",
}

// errorClasses mark containers whose text, when non-empty, indicates a
// rendered error banner.
var errorClasses = []string{"error", "alert-error", "alert-danger"}

// hasErrorIndicators parses the page and reports whether a known error
// phrase or a populated error banner is present. Parse failures read as
// "no indicators": the scan is the last tiebreak and must not fail an
// attempt on its own.
func hasErrorIndicators(page playwright.Page) bool {
	content, err := page.Content()
	if err != nil {
		return false
	}
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return false
	}
	return scanNode(doc)
}

func scanNode(node *html.Node) bool {
	switch node.Type {
	case html.TextNode:
		text := strings.ToLower(node.Data)
		for _, phrase := range errorPhrases {
			if strings.Contains(text, phrase) {
				return true
			}
		}
	case html.ElementNode:
		if node.Data == "script" || node.Data == "style" {
			return false
		}
		if isErrorBanner(node) && strings.TrimSpace(nodeText(node)) != "" {
			return true
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if scanNode(child) {
			return true
		}
	}
	return false
}

func isErrorBanner(node *html.Node) bool {
	for _, attr := range node.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, class := range strings.Fields(attr.Val) {
			for _, marker := range errorClasses {
				if class == marker {
					return true
				}
			}
		}
	}
	return false
}

func nodeText(node *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return sb.String()
}
