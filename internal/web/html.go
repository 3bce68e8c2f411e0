package web

import (
	"strings"

	"golang.org/x/net/html"
)

// skippedTags never contribute to extracted text.
var skippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && skippedTags[node.Data] {
			return
		}
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attrValue(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && match(node) {
			found = append(found, node)
			// matched subtrees are not descended into; nested results
			// would double-report
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return found
}

func findAllByClass(n *html.Node, class string) []*html.Node {
	return findAll(n, func(node *html.Node) bool { return hasClass(node, class) })
}

func findAllByTag(n *html.Node, tag string) []*html.Node {
	return findAll(n, func(node *html.Node) bool { return node.Data == tag })
}

func firstByClass(n *html.Node, class string) *html.Node {
	if all := findAllByClass(n, class); len(all) > 0 {
		return all[0]
	}
	return nil
}

func firstByTag(n *html.Node, tag string) *html.Node {
	if all := findAllByTag(n, tag); len(all) > 0 {
		return all[0]
	}
	return nil
}
